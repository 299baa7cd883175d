package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnionFindSingletons(t *testing.T) {
	uf := NewLayeredUnionFind()
	a := uf.Register()
	b := uf.Register()

	assert.Equal(t, a, uf.FindRoot(a))
	assert.Equal(t, b, uf.FindRoot(b))
	assert.NotEqual(t, uf.FindRoot(a), uf.FindRoot(b))
}

func TestUnionFindUnion(t *testing.T) {
	uf := NewLayeredUnionFind()
	a := uf.Register()
	b := uf.Register()

	uf.Union(a, b)
	assert.Equal(t, a, uf.FindRoot(b))
	assert.Equal(t, uf.FindRoot(a), uf.FindRoot(b))
}

func TestUnionFindChildLinksUnderParent(t *testing.T) {
	uf := NewLayeredUnionFind()
	a := uf.Register()
	b := uf.Register()
	c := uf.Register()

	uf.Union(a, b)
	uf.Union(a, c)

	assert.Equal(t, a, uf.FindRoot(b))
	assert.Equal(t, a, uf.FindRoot(c))
}

func TestUnionFindChoicepointRollback(t *testing.T) {
	uf := NewLayeredUnionFind()
	a := uf.Register()
	b := uf.Register()
	uf.Union(a, b)

	uf.PushChoicepoint()
	c := uf.Register()
	uf.Union(a, c)
	assert.Equal(t, a, uf.FindRoot(c))

	uf.PopChoicepoint()

	// The union made before the push survives.
	assert.Equal(t, a, uf.FindRoot(b))
	// Nodes registered inside the layer are forgotten; re-registering
	// yields the same id with a singleton root.
	assert.Equal(t, 2, uf.Len())
	c2 := uf.Register()
	assert.Equal(t, c, c2)
	assert.Equal(t, c2, uf.FindRoot(c2))
}

func TestUnionFindNestedChoicepoints(t *testing.T) {
	uf := NewLayeredUnionFind()
	a := uf.Register()
	b := uf.Register()
	c := uf.Register()

	uf.PushChoicepoint()
	uf.Union(a, b)
	uf.PushChoicepoint()
	uf.Union(a, c)

	assert.Equal(t, a, uf.FindRoot(c))
	uf.PopChoicepoint()
	assert.Equal(t, a, uf.FindRoot(b))
	assert.Equal(t, c, uf.FindRoot(c))
	uf.PopChoicepoint()
	assert.Equal(t, b, uf.FindRoot(b))
}

func TestUnionFindFindIsIdempotent(t *testing.T) {
	uf := NewLayeredUnionFind()
	a := uf.Register()
	b := uf.Register()
	c := uf.Register()
	uf.Union(a, b)
	uf.Union(b, c)

	first := uf.FindRoot(c)
	second := uf.FindRoot(c)
	assert.Equal(t, first, second)
}

func TestUnionFindCompactionRespectsFrozenLayers(t *testing.T) {
	uf := NewLayeredUnionFind()
	a := uf.Register()
	b := uf.Register()
	c := uf.Register()
	uf.Union(a, b)
	uf.Union(b, c)

	uf.PushChoicepoint()
	// Resolving inside the layer compacts into the top layer only.
	assert.Equal(t, a, uf.FindRoot(c))
	uf.PopChoicepoint()

	// The frozen chain still resolves the same way.
	assert.Equal(t, a, uf.FindRoot(c))
	assert.Equal(t, a, uf.FindRoot(b))
}

func TestUnionFindCellPayload(t *testing.T) {
	uf := NewLayeredUnionFind()
	a := uf.Register()
	b := uf.Register()
	uf.SetCell(a, CellIndex(7))

	_, ok := uf.Find(b)
	assert.False(t, ok)

	uf.Union(a, b)
	got, ok := uf.Find(b)
	assert.True(t, ok)
	assert.Equal(t, CellIndex(7), got)
}

func TestUnionFindPopWithoutPushPanics(t *testing.T) {
	uf := NewLayeredUnionFind()
	assert.Panics(t, func() {
		uf.PopChoicepoint()
	})
}

func TestUnionFindUnregisteredNodePanics(t *testing.T) {
	uf := NewLayeredUnionFind()
	assert.Panics(t, func() {
		uf.FindRoot(NodeID(3))
	})
}
