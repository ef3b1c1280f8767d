package rules

import (
	"testing"

	"github.com/calyra/flowaudit/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissingErrorHandlingRule(t *testing.T) {
	doc := modernDoc([]schema.RawNode{
		node("w1", "webhook", map[string]any{"url": "https://example.com"}),
		node("w2", "api", map[string]any{"onError": "continue"}),
		node("a1", "add_tag", nil), // not an external call
	}, nil)
	issues := (&MissingErrorHandlingRule{}).Check(contextFor(doc))

	require.Len(t, issues, 1)
	assert.Equal(t, "External Call Without Error Handling", issues[0].Title)
	assert.Equal(t, []string{"w1"}, issues[0].NodeRefs)
}

func TestTriggerConflictRule(t *testing.T) {
	doc := modernDoc([]schema.RawNode{
		node("t1", "tag_added", nil),
		node("t2", "contact_updated", nil),
	}, nil)
	issues := (&TriggerConflictRule{}).Check(contextFor(doc))

	require.Len(t, issues, 1)
	assert.Equal(t, "Conflicting Triggers", issues[0].Title)
	assert.Equal(t, []string{"t1", "t2"}, issues[0].NodeRefs)
}

func TestRateLimitAdjacencyRule(t *testing.T) {
	doc := modernDoc([]schema.RawNode{
		node("e1", "email", nil),
		node("e2", "sms", nil),
		node("d1", "delay", nil),
		node("e3", "email", nil),
	}, []schema.RawConnection{
		{From: "e1", To: "e2"}, // both rate-limited: flagged
		{From: "e2", To: "d1"}, // delay breaks the pair
		{From: "d1", To: "e3"},
	})
	issues := (&RateLimitAdjacencyRule{}).Check(contextFor(doc))

	require.Len(t, issues, 1)
	assert.Equal(t, []string{"e1", "e2"}, issues[0].NodeRefs)
}

func TestHardcodedValueRule(t *testing.T) {
	tests := []struct {
		name   string
		config map[string]any
		want   int
	}{
		{"literal email", map[string]any{"to": "jamie@example.com"}, 1},
		{"templated email", map[string]any{"to": "{{contact.email}}"}, 0},
		{"literal phone", map[string]any{"toNumber": "+1 (555) 123-4567"}, 1},
		{"stripe style key", map[string]any{"apiKey": "sk_live_abcdef"}, 1},
		{"templated key", map[string]any{"apiKey": "{{secrets.stripe}}"}, 0},
		{"non-matching literal", map[string]any{"to": "not an email"}, 0},
		{"empty value", map[string]any{"to": ""}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := modernDoc([]schema.RawNode{node("n1", "email", tt.config)}, nil)
			issues := (&HardcodedValueRule{}).Check(contextFor(doc))
			assert.Len(t, issues, tt.want)
			if tt.want > 0 {
				assert.Equal(t, "Hardcoded Value In Templated Field", issues[0].Title)
			}
		})
	}
}
