package normalize

import (
	"strings"

	"github.com/calyra/flowaudit/pkg/schema"
)

// kindTable is the fixed rawType → NodeKind lookup. Unknown types fall
// through to KindAction; trigger-like prefixes are matched separately so
// new platform trigger types classify correctly without table churn.
var kindTable = map[string]schema.NodeKind{
	// Actions.
	"email":           schema.KindAction,
	"sms":             schema.KindAction,
	"api":             schema.KindAction,
	"api_call":        schema.KindAction,
	"webhook":         schema.KindAction,
	"http_request":    schema.KindAction,
	"integration":     schema.KindAction,
	"payment":         schema.KindAction,
	"charge":          schema.KindAction,
	"add_tag":         schema.KindAction,
	"remove_tag":      schema.KindAction,
	"create_task":     schema.KindAction,
	"update_contact":  schema.KindAction,
	"enrich_contact":  schema.KindAction,
	"bulk_email":      schema.KindAction,
	"bulk_sms":        schema.KindAction,
	"bulk_update":     schema.KindAction,
	"notification":    schema.KindAction,
	"internal_notify": schema.KindAction,

	// Conditions.
	"condition": schema.KindCondition,
	"if":        schema.KindCondition,
	"branch":    schema.KindCondition,
	"split":     schema.KindCondition,
	"filter":    schema.KindCondition,

	// Delays.
	"delay": schema.KindDelay,
	"wait":  schema.KindDelay,

	// Triggers.
	"trigger":         schema.KindTrigger,
	"form_submitted":  schema.KindTrigger,
	"tag_added":       schema.KindTrigger,
	"tag_removed":     schema.KindTrigger,
	"contact_created": schema.KindTrigger,
	"contact_updated": schema.KindTrigger,
	"appointment":     schema.KindTrigger,
	"inbound_message": schema.KindTrigger,
	"webhook_trigger": schema.KindTrigger,
	"schedule":        schema.KindTrigger,
}

// KindOf maps a raw platform type string to its canonical NodeKind.
// Unrecognized types default to KindAction.
func KindOf(rawType string) schema.NodeKind {
	t := strings.ToLower(strings.TrimSpace(rawType))
	if k, ok := kindTable[t]; ok {
		return k
	}
	if strings.HasPrefix(t, "trigger_") || strings.HasSuffix(t, "_trigger") {
		return schema.KindTrigger
	}
	return schema.KindAction
}
