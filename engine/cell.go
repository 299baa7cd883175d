package engine

// Cell is one arena entry of a CellStore. Cells reference each other
// through ids, never pointers, so a store can be truncated wholesale when
// a choicepoint is popped.
type Cell interface {
	cell()
}

// VarCell represents an unbound variable.
type VarCell struct {
	Name string
}

func (VarCell) cell() {}

// IntCell represents an integer literal.
type IntCell struct {
	Value Integer
}

func (IntCell) cell() {}

// StructCell represents a structure; children are union-find node ids so
// argument resolution always follows the current bindings.
type StructCell struct {
	Functor  string
	Children []NodeID
}

func (StructCell) cell() {}

// CellStore is an append-only arena of cells addressed by CellIndex.
type CellStore struct {
	cells []Cell
}

// Put appends a cell and returns its index.
func (s *CellStore) Put(c Cell) CellIndex {
	s.cells = append(s.cells, c)
	return CellIndex(len(s.cells) - 1)
}

// At returns the cell at index i.
func (s *CellStore) At(i CellIndex) Cell { return s.cells[i] }

// Len reports the number of cells.
func (s *CellStore) Len() int { return len(s.cells) }

func (s *CellStore) truncate(n int) { s.cells = s.cells[:n] }

// BindingStore pairs a cell arena with a layered union-find: the two id
// spaces grow in lockstep, and a union-find root carries the index of the
// cell that represents its whole set. It is the register/heap-style
// binding half of an abstract-machine execution model.
type BindingStore struct {
	cells CellStore
	uf    *LayeredUnionFind
	marks []int
}

// NewBindingStore returns an empty store with the base choicepoint open.
func NewBindingStore() *BindingStore {
	return &BindingStore{uf: NewLayeredUnionFind()}
}

func (b *BindingStore) put(c Cell) NodeID {
	idx := b.cells.Put(c)
	id := b.uf.Register()
	b.uf.SetCell(id, idx)
	return id
}

// PutVar allocates an unbound variable node.
func (b *BindingStore) PutVar(name string) NodeID {
	return b.put(VarCell{Name: name})
}

// PutInt allocates an integer node.
func (b *BindingStore) PutInt(v Integer) NodeID {
	return b.put(IntCell{Value: v})
}

// PutStruct allocates a structure node over already-allocated children.
func (b *BindingStore) PutStruct(functor string, children ...NodeID) NodeID {
	var kids []NodeID
	if children != nil {
		kids = make([]NodeID, len(children))
		copy(kids, children)
	}
	return b.put(StructCell{Functor: functor, Children: kids})
}

// Bind merges child into parent's set; the merged set resolves to the
// parent's cell. Binding a variable to a value is Bind(value, variable).
func (b *BindingStore) Bind(parent, child NodeID) {
	b.uf.Union(parent, child)
}

// Resolve returns the representative cell of id's set.
func (b *BindingStore) Resolve(id NodeID) Cell {
	idx, ok := b.uf.Find(id)
	if !ok {
		panic("binding store: root without cell")
	}
	return b.cells.At(idx)
}

// Term reconstructs the term rooted at id, following bindings through the
// union-find. Bound sets render as their representative; an unbound
// variable renders as itself. The store holds no cyclic terms as long as
// bindings come from occurs-checked unification.
func (b *BindingStore) Term(id NodeID) Term {
	switch c := b.Resolve(id).(type) {
	case VarCell:
		return Variable(c.Name)
	case IntCell:
		return c.Value
	case StructCell:
		var args []Term
		if c.Children != nil {
			args = make([]Term, len(c.Children))
		}
		for i, child := range c.Children {
			args[i] = b.Term(child)
		}
		return Struct{Functor: c.Functor, Args: args}
	default:
		panic("binding store: unknown cell")
	}
}

// PushChoicepoint marks the current state for rollback.
func (b *BindingStore) PushChoicepoint() {
	b.uf.PushChoicepoint()
	b.marks = append(b.marks, b.cells.Len())
}

// PopChoicepoint undoes every allocation and binding made since the
// matching push. Panics when nothing was pushed.
func (b *BindingStore) PopChoicepoint() {
	b.uf.PopChoicepoint()
	mark := b.marks[len(b.marks)-1]
	b.marks = b.marks[:len(b.marks)-1]
	b.cells.truncate(mark)
}
