package rules

import "strings"

// Capabilities describes what a canonical action type does, consulted by
// every rule that used to carry its own literal type list. One table keeps
// the lists from drifting apart.
type Capabilities struct {
	IsExternalCall bool // leaves the platform over the network
	IsRateLimited  bool // subject to provider rate limits
	NeedsTimeout   bool // should carry an explicit timeout
	IsCritical     bool // failure has business impact beyond the workflow
	IsCommunication bool // sends a message to a human
	IsEnrichment   bool // augments contact/record data
	IsBulk         bool // operates on many records per invocation
	IsPayment      bool // moves money
}

var capabilityTable = map[string]Capabilities{
	"api":          {IsExternalCall: true, IsRateLimited: true, NeedsTimeout: true, IsCritical: true},
	"api_call":     {IsExternalCall: true, IsRateLimited: true, NeedsTimeout: true, IsCritical: true},
	"webhook":      {IsExternalCall: true, IsRateLimited: true, NeedsTimeout: true, IsCritical: true},
	"http_request": {IsExternalCall: true, IsRateLimited: true, NeedsTimeout: true},
	"integration":  {IsExternalCall: true, NeedsTimeout: true, IsCritical: true},
	"payment":      {IsExternalCall: true, NeedsTimeout: true, IsCritical: true, IsPayment: true},
	"charge":       {IsExternalCall: true, NeedsTimeout: true, IsCritical: true, IsPayment: true},
	"email":        {IsRateLimited: true, IsCommunication: true},
	"sms":          {IsRateLimited: true, IsCommunication: true},
	"bulk_email":   {IsRateLimited: true, IsCommunication: true, IsBulk: true},
	"bulk_sms":     {IsRateLimited: true, IsCommunication: true, IsBulk: true},
	"bulk_update":  {IsBulk: true},
	"enrich_contact": {IsEnrichment: true},
	"update_contact": {IsEnrichment: true},
}

// CapabilitiesOf looks up the capability row for a raw action type.
// Unknown types have the zero value: no special capabilities.
func CapabilitiesOf(rawType string) Capabilities {
	return capabilityTable[strings.ToLower(strings.TrimSpace(rawType))]
}
