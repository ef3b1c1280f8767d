package graphx

import (
	"testing"

	"github.com/calyra/flowaudit/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopoSortLinear(t *testing.T) {
	g := graph([]string{"a->b", "b->c"}, nil)
	order, ok := TopoSort(g)

	require.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestTopoSortDiamond(t *testing.T) {
	g := graph([]string{"a->b", "a->c", "b->d", "c->d"}, nil)
	order, ok := TopoSort(g)

	require.True(t, ok)
	require.Len(t, order, 4)
	pos := map[string]int{}
	for i, id := range order {
		pos[id] = i
	}
	assert.Less(t, pos["a"], pos["b"])
	assert.Less(t, pos["a"], pos["c"])
	assert.Less(t, pos["b"], pos["d"])
	assert.Less(t, pos["c"], pos["d"])
}

func TestTopoSortCycle(t *testing.T) {
	g := graph([]string{"a->b", "b->a"}, nil)
	order, ok := TopoSort(g)

	assert.False(t, ok)
	assert.Nil(t, order)
}

func TestTopoSortCycleWithExitStillInvalid(t *testing.T) {
	// Exit conditions matter for Loop classification, not for topo validity.
	g := graph([]string{"a->b", "b->a", "b->d"}, nil)
	_, ok := TopoSort(g)
	assert.False(t, ok)
}

func TestTopoSortDeterministic(t *testing.T) {
	g := graph([]string{"c->z", "a->z", "b->z"}, nil)
	first, ok := TopoSort(g)
	require.True(t, ok)

	for i := 0; i < 10; i++ {
		again, ok := TopoSort(g)
		require.True(t, ok)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, []string{"a", "b", "c", "z"}, first)
}

func TestTopoSortEmpty(t *testing.T) {
	order, ok := TopoSort(&schema.CanonicalGraph{})
	assert.True(t, ok)
	assert.Empty(t, order)
}
