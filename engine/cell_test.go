package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBindingStoreReconstruction(t *testing.T) {
	b := NewBindingStore()
	x := b.PutVar("X")
	one := b.PutInt(1)
	f := b.PutStruct("f", x, one)

	assert.Equal(t, NewStruct("f", Variable("X"), Integer(1)), b.Term(f))
	assert.Equal(t, Variable("X"), b.Term(x))
	assert.Equal(t, Integer(1), b.Term(one))
}

func TestBindingStoreBinding(t *testing.T) {
	b := NewBindingStore()
	x := b.PutVar("X")
	one := b.PutInt(1)
	f := b.PutStruct("f", x, one)

	g := b.PutStruct("g", b.PutInt(2))
	b.Bind(g, x)

	assert.Equal(t, NewStruct("g", Integer(2)), b.Term(x))
	assert.Equal(t, NewStruct("f", NewStruct("g", Integer(2)), Integer(1)), b.Term(f))
}

func TestBindingStoreChoicepointRollback(t *testing.T) {
	b := NewBindingStore()
	x := b.PutVar("X")
	f := b.PutStruct("f", x)

	b.PushChoicepoint()
	a := b.PutStruct("a")
	b.Bind(a, x)
	assert.Equal(t, NewStruct("f", Atom("a")), b.Term(f))
	b.PopChoicepoint()

	// The binding and the allocation are both undone.
	assert.Equal(t, NewStruct("f", Variable("X")), b.Term(f))
	assert.Equal(t, 2, b.cells.Len())
}

func TestBindingStoreNestedChoicepoints(t *testing.T) {
	b := NewBindingStore()
	x := b.PutVar("X")
	y := b.PutVar("Y")

	b.PushChoicepoint()
	b.Bind(b.PutInt(1), x)

	b.PushChoicepoint()
	b.Bind(b.PutInt(2), y)
	assert.Equal(t, Integer(1), b.Term(x))
	assert.Equal(t, Integer(2), b.Term(y))

	b.PopChoicepoint()
	assert.Equal(t, Integer(1), b.Term(x))
	assert.Equal(t, Variable("Y"), b.Term(y))

	b.PopChoicepoint()
	assert.Equal(t, Variable("X"), b.Term(x))
}

func TestBindingStoreVarAliasing(t *testing.T) {
	b := NewBindingStore()
	x := b.PutVar("X")
	y := b.PutVar("Y")
	b.Bind(x, y)

	// Both resolve to the parent's cell.
	assert.Equal(t, Variable("X"), b.Term(y))

	b.Bind(b.PutInt(3), x)
	assert.Equal(t, Integer(3), b.Term(x))
	assert.Equal(t, Integer(3), b.Term(y))
}
