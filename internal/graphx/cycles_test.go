package graphx

import (
	"testing"

	"github.com/calyra/flowaudit/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindLoopsAcyclic(t *testing.T) {
	g := graph([]string{"a->b", "b->c", "a->c"}, nil)
	assert.Empty(t, FindLoops(g))
}

func TestFindLoopsSimpleCycle(t *testing.T) {
	g := graph([]string{"a->b", "b->c", "c->a"}, nil)
	loops := FindLoops(g)

	require.Len(t, loops, 1)
	assert.Equal(t, []string{"a", "b", "c", "a"}, loops[0].Nodes)
	assert.False(t, loops[0].HasExitCondition)
}

func TestFindLoopsSelfLoop(t *testing.T) {
	g := graph([]string{"a->a"}, nil)
	loops := FindLoops(g)

	require.Len(t, loops, 1)
	assert.Equal(t, []string{"a", "a"}, loops[0].Nodes)
	assert.False(t, loops[0].HasExitCondition)
}

func TestFindLoopsWithExit(t *testing.T) {
	// a → b → a plus b → d: the cycle has an escape edge.
	g := graph([]string{"a->b", "b->a", "b->d"}, nil)
	loops := FindLoops(g)

	require.Len(t, loops, 1)
	assert.True(t, loops[0].HasExitCondition)
	assert.True(t, loops[0].Contains("a"))
	assert.True(t, loops[0].Contains("b"))
	assert.False(t, loops[0].Contains("d"))
}

func TestFindLoopsDisconnectedComponents(t *testing.T) {
	g := graph([]string{"a->b", "x->y", "y->x"}, nil)
	loops := FindLoops(g)

	require.Len(t, loops, 1)
	assert.True(t, loops[0].Contains("x"))
}

func TestFindLoopsDanglingEdgeIgnored(t *testing.T) {
	g := graph([]string{"a->b"}, nil)
	g.Edges = append(g.Edges, schema.CanonicalEdge{ID: "bad", Source: "b", Target: "ghost"})
	assert.Empty(t, FindLoops(g))
}

func TestFindLoopsEmptyGraph(t *testing.T) {
	assert.Empty(t, FindLoops(&schema.CanonicalGraph{}))
}
