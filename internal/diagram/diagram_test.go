package diagram

import (
	"strings"
	"testing"

	"github.com/calyra/flowaudit/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGraph() *schema.CanonicalGraph {
	return &schema.CanonicalGraph{
		Nodes: []schema.CanonicalNode{
			{ID: "t1", Kind: schema.KindTrigger, RawType: "form_submitted", Label: "New Lead"},
			{ID: "c1", Kind: schema.KindCondition, RawType: "condition", Label: "c1"},
			{ID: "d1", Kind: schema.KindDelay, RawType: "delay", Label: "d1"},
			{ID: "w1", Kind: schema.KindAction, RawType: "webhook", Label: "Notify CRM"},
		},
		Edges: []schema.CanonicalEdge{
			{ID: "e1", Source: "t1", Target: "c1"},
			{ID: "e2", Source: "c1", Target: "d1", Label: "true"},
			{ID: "e3", Source: "d1", Target: "w1"},
		},
	}
}

func TestBuildOverlaysWorstSeverity(t *testing.T) {
	issues := []schema.Issue{
		{Severity: schema.SeverityLow, NodeRefs: []string{"w1"}},
		{Severity: schema.SeverityCritical, NodeRefs: []string{"w1"}},
		{Severity: schema.SeverityMedium, NodeRefs: []string{"d1"}},
	}
	m := Build("Demo", sampleGraph(), issues)

	require.Len(t, m.Nodes, 4)
	byID := map[string]*Node{}
	for _, n := range m.Nodes {
		byID[n.ID] = n
	}
	assert.Equal(t, schema.SeverityCritical, byID["w1"].Severity)
	assert.Equal(t, schema.SeverityMedium, byID["d1"].Severity)
	assert.Equal(t, schema.Severity(""), byID["t1"].Severity)

	assert.Equal(t, "Demo", m.Title)
	assert.Len(t, m.Edges, 3)
	assert.Equal(t, "true", m.Edges[1].Label)
}

func TestBuildNodeLabels(t *testing.T) {
	m := Build("", sampleGraph(), nil)

	byID := map[string]*Node{}
	for _, n := range m.Nodes {
		byID[n.ID] = n
	}
	// Named nodes show the raw type alongside; anonymous ones stay bare.
	assert.Equal(t, "New Lead (form_submitted)", byID["t1"].Label)
	assert.Equal(t, "c1", byID["c1"].Label)
}

func TestRenderMermaidShapes(t *testing.T) {
	out := RenderMermaid(Build("Demo Flow", sampleGraph(), nil))

	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	assert.Contains(t, out, "%% Demo Flow")
	assert.Contains(t, out, `t1(["New Lead (form_submitted)"])`) // stadium trigger
	assert.Contains(t, out, `c1{"c1"}`)                          // diamond condition
	assert.Contains(t, out, `d1[/"d1"/]`)                        // parallelogram delay
	assert.Contains(t, out, `w1["Notify CRM (webhook)"]`)        // rectangle action
	assert.Contains(t, out, "t1 --> c1")
	assert.Contains(t, out, "c1 -->|true| d1")
}

func TestRenderMermaidSeverityClasses(t *testing.T) {
	issues := []schema.Issue{
		{Severity: schema.SeverityCritical, NodeRefs: []string{"w1"}},
	}
	out := RenderMermaid(Build("", sampleGraph(), issues))

	assert.Contains(t, out, "classDef critical")
	assert.Contains(t, out, "class w1 critical")
	assert.NotContains(t, out, "class t1")
}

func TestRenderMermaidEscaping(t *testing.T) {
	g := &schema.CanonicalGraph{
		Nodes: []schema.CanonicalNode{
			{ID: "my node-1", Kind: schema.KindAction, RawType: "email", Label: `Say "Hi"`},
		},
	}
	out := RenderMermaid(Build("", g, nil))

	assert.Contains(t, out, "my_node_1")
	assert.Contains(t, out, "#quot;Hi#quot;")
	assert.NotContains(t, out, `"Say "Hi""`)
}

func TestRenderMermaidEmptyModel(t *testing.T) {
	out := RenderMermaid(&Model{})
	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
}
