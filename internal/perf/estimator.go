// Package perf estimates workflow execution cost statically: a per-kind
// time table over canonical nodes, a bottleneck list, and a complexity
// bucket. The workflow is never executed.
package perf

import (
	"fmt"
	"sort"
	"time"

	"github.com/calyra/flowaudit/internal/rules"
	"github.com/calyra/flowaudit/pkg/schema"
)

// Fixed per-kind step estimates.
const (
	externalCallSeconds = 2.0
	bulkSeconds         = 5.0
	defaultStepSeconds  = 0.1

	// bottleneckSeconds is the threshold above which a single step is
	// reported as a bottleneck regardless of its kind.
	bottleneckSeconds = 60.0

	// maxBottlenecks caps the reported bottleneck list.
	maxBottlenecks = 5
)

// Estimate walks the canonical nodes and produces the execution-time
// projection and complexity classification for the graph.
func Estimate(g *schema.CanonicalGraph) schema.PerformanceEstimate {
	var total float64
	var bottlenecks []schema.Bottleneck

	for _, n := range g.Nodes {
		secs, reason := stepSeconds(n)
		total += secs

		if secs > bottleneckSeconds {
			bottlenecks = append(bottlenecks, schema.Bottleneck{
				NodeID:  n.ID,
				Label:   n.Label,
				Seconds: secs,
				Reason:  reason,
			})
		} else if rules.CapabilitiesOf(n.RawType).IsExternalCall {
			bottlenecks = append(bottlenecks, schema.Bottleneck{
				NodeID:  n.ID,
				Label:   n.Label,
				Seconds: secs,
				Reason:  "external call latency depends on the remote service",
			})
		}
	}

	// Largest contributors first; stable on node ID for ties.
	sort.SliceStable(bottlenecks, func(i, j int) bool {
		if bottlenecks[i].Seconds != bottlenecks[j].Seconds {
			return bottlenecks[i].Seconds > bottlenecks[j].Seconds
		}
		return bottlenecks[i].NodeID < bottlenecks[j].NodeID
	})
	if len(bottlenecks) > maxBottlenecks {
		bottlenecks = bottlenecks[:maxBottlenecks]
	}

	return schema.PerformanceEstimate{
		EstimatedSteps: len(g.Nodes),
		EstimatedTime:  formatDuration(total),
		Complexity:     complexityOf(g),
		Bottlenecks:    bottlenecks,
	}
}

// stepSeconds returns the time estimate for one node and the reason used
// when the node surfaces as a bottleneck.
func stepSeconds(n schema.CanonicalNode) (float64, string) {
	if n.Kind == schema.KindDelay {
		if d, ok := delaySeconds(n.Config); ok {
			return d, "configured delay"
		}
		return defaultStepSeconds, "delay with no parseable duration"
	}

	caps := rules.CapabilitiesOf(n.RawType)
	switch {
	case caps.IsBulk:
		return bulkSeconds, "bulk operation"
	case caps.IsExternalCall:
		return externalCallSeconds, "external call"
	default:
		return defaultStepSeconds, "internal step"
	}
}

// delaySeconds parses the configured wait duration. Strings go through
// time.ParseDuration; bare numbers are read as seconds.
func delaySeconds(config map[string]any) (float64, bool) {
	for _, key := range []string{"duration", "delay", "wait"} {
		v, ok := config[key]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			if d, err := time.ParseDuration(t); err == nil {
				return d.Seconds(), true
			}
		case float64:
			return t, true
		case int:
			return float64(t), true
		}
	}
	return 0, false
}

// complexityOf buckets the graph by node count and an approximate branch
// count (edges − nodes + 2, the cyclomatic estimate for a connected graph).
func complexityOf(g *schema.CanonicalGraph) schema.Complexity {
	nodes := len(g.Nodes)
	branches := len(g.Edges) - nodes + 2
	if branches < 0 {
		branches = 0
	}

	switch {
	case nodes <= 10 && branches <= 3:
		return schema.ComplexityLow
	case nodes <= 25 && branches <= 8:
		return schema.ComplexityMedium
	case nodes <= 50 && branches <= 15:
		return schema.ComplexityHigh
	default:
		return schema.ComplexityVeryHigh
	}
}

// formatDuration renders a second count compactly ("45s", "3m20s", "2h5m").
func formatDuration(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) - m*60
		if s == 0 {
			return fmt.Sprintf("%dm", m)
		}
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) - h*60
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh%dm", h, m)
}
