package rules

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/calyra/flowaudit/pkg/schema"
)

// InfiniteLoopRule reports every detected cycle that has no exit condition.
// Cycles with at least one edge leaving the cycle are survivable and are
// deliberately not reported here.
type InfiniteLoopRule struct{}

func (r *InfiniteLoopRule) ID() string                { return "FA001" }
func (r *InfiniteLoopRule) Name() string             { return "infinite-loop" }
func (r *InfiniteLoopRule) Category() string         { return schema.CategoryStructure }
func (r *InfiniteLoopRule) Severity() schema.Severity { return schema.SeverityCritical }

func (r *InfiniteLoopRule) Check(rc *Context) []schema.Issue {
	var issues []schema.Issue
	for _, loop := range rc.Loops {
		if loop.HasExitCondition {
			continue
		}
		issues = append(issues, schema.Issue{
			Severity: r.Severity(),
			Category: r.Category(),
			Title:    "Infinite Loop Detected",
			Description: fmt.Sprintf("The workflow contains a cycle through %s with no exit condition. Once entered, execution never leaves this loop.",
				strings.Join(loop.Nodes, " → ")),
			NodeRefs:      loop.Nodes[:len(loop.Nodes)-1],
			FixSuggestion: "Add a condition node on the cycle with a branch that leaves the loop, or remove the back edge.",
		})
	}
	return issues
}

// WebhookURLRule checks webhook and API actions for missing, unparsable, or
// loopback URLs. A loopback host means the workflow calls a machine that
// does not exist in production.
type WebhookURLRule struct{}

func (r *WebhookURLRule) ID() string                 { return "FA002" }
func (r *WebhookURLRule) Name() string              { return "webhook-url" }
func (r *WebhookURLRule) Category() string          { return schema.CategoryConfiguration }
func (r *WebhookURLRule) Severity() schema.Severity { return schema.SeverityCritical }

var loopbackHosts = map[string]bool{
	"localhost": true,
	"127.0.0.1": true,
	"0.0.0.0":   true,
	"::1":       true,
}

func (r *WebhookURLRule) Check(rc *Context) []schema.Issue {
	var issues []schema.Issue
	for _, n := range rc.Graph.Nodes {
		t := strings.ToLower(n.RawType)
		if t != "webhook" && t != "api" && t != "api_call" && t != "http_request" {
			continue
		}

		rawURL, ok := cfgString(n.Config, "url", "endpoint", "webhookUrl")
		if !ok || rawURL == "" {
			issues = append(issues, schema.Issue{
				Severity:      r.Severity(),
				Category:      r.Category(),
				Title:         "Webhook Missing URL",
				Description:   fmt.Sprintf("Node %q is a %s action with no URL configured; it will fail on every execution.", n.Label, t),
				NodeRefs:      []string{n.ID},
				FixSuggestion: "Set the url field in the action configuration to the production endpoint.",
			})
			continue
		}

		u, err := url.Parse(rawURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			issues = append(issues, schema.Issue{
				Severity:      r.Severity(),
				Category:      r.Category(),
				Title:         "Webhook URL Invalid",
				Description:   fmt.Sprintf("Node %q has URL %q which does not parse as an absolute URL.", n.Label, rawURL),
				NodeRefs:      []string{n.ID},
				FixSuggestion: "Replace the URL with a fully-qualified https endpoint.",
			})
			continue
		}

		if loopbackHosts[strings.ToLower(u.Hostname())] {
			issues = append(issues, schema.Issue{
				Severity:      r.Severity(),
				Category:      r.Category(),
				Title:         "Webhook Points to Localhost",
				Description:   fmt.Sprintf("Node %q calls %q. Loopback hosts are unreachable from the automation platform.", n.Label, rawURL),
				NodeRefs:      []string{n.ID},
				FixSuggestion: "Point the URL at the deployed service instead of a local development host.",
			})
		}
	}
	return issues
}

// PaymentRetryRule flags payment and charge actions lacking any retry
// configuration. A transient gateway failure without retry silently drops
// revenue.
type PaymentRetryRule struct{}

func (r *PaymentRetryRule) ID() string                 { return "FA003" }
func (r *PaymentRetryRule) Name() string              { return "payment-retry" }
func (r *PaymentRetryRule) Category() string          { return schema.CategoryErrorHandling }
func (r *PaymentRetryRule) Severity() schema.Severity { return schema.SeverityCritical }

func (r *PaymentRetryRule) Check(rc *Context) []schema.Issue {
	var issues []schema.Issue
	for _, n := range rc.Graph.Nodes {
		if !CapabilitiesOf(n.RawType).IsPayment {
			continue
		}
		if cfgHas(n.Config, "retry", "retryLogic", "maxRetries") {
			continue
		}
		issues = append(issues, schema.Issue{
			Severity:      r.Severity(),
			Category:      r.Category(),
			Title:         "Payment Action Without Retry Logic",
			Description:   fmt.Sprintf("Node %q processes a payment with no retry configuration. A transient gateway error will lose the charge.", n.Label),
			NodeRefs:      []string{n.ID},
			FixSuggestion: "Configure retry with a bounded attempt count and backoff on the payment action.",
		})
	}
	return issues
}

// APIEndpointRule flags API and integration actions that are missing an
// endpoint, or that declare requiresAuth without any credentials configured.
type APIEndpointRule struct{}

func (r *APIEndpointRule) ID() string                 { return "FA004" }
func (r *APIEndpointRule) Name() string              { return "api-endpoint" }
func (r *APIEndpointRule) Category() string          { return schema.CategorySecurity }
func (r *APIEndpointRule) Severity() schema.Severity { return schema.SeverityCritical }

func (r *APIEndpointRule) Check(rc *Context) []schema.Issue {
	var issues []schema.Issue
	for _, n := range rc.Graph.Nodes {
		t := strings.ToLower(n.RawType)
		if t != "api" && t != "api_call" && t != "integration" {
			continue
		}

		if _, ok := cfgString(n.Config, "endpoint", "url"); !ok {
			issues = append(issues, schema.Issue{
				Severity:      r.Severity(),
				Category:      r.Category(),
				Title:         "API Action Missing Endpoint",
				Description:   fmt.Sprintf("Node %q is an %s action with no endpoint configured.", n.Label, t),
				NodeRefs:      []string{n.ID},
				FixSuggestion: "Set the endpoint field to the target API URL.",
			})
		}

		if cfgBool(n.Config, "requiresAuth") && !cfgHas(n.Config, "credentials", "apiKey", "token", "authToken") {
			issues = append(issues, schema.Issue{
				Severity:      r.Severity(),
				Category:      r.Category(),
				Title:         "Authenticated API Call Without Credentials",
				Description:   fmt.Sprintf("Node %q requires authentication but has no credentials configured; every call will be rejected.", n.Label),
				NodeRefs:      []string{n.ID},
				FixSuggestion: "Attach a credential reference (apiKey, token, or credentials) to the action configuration.",
			})
		}
	}
	return issues
}
