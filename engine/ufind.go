package engine

// NodeID identifies a registered union-find node.
type NodeID int

// CellIndex addresses a cell in a CellStore; it is the payload a
// union-find root may carry.
type CellIndex int

// ufLayer is one version boundary. A node with no parent entry in any
// layer is its own root. firstNode records where registration stood when
// the layer was opened, so popping can forget newer nodes in O(1).
type ufLayer struct {
	parent    map[NodeID]NodeID
	cell      map[NodeID]CellIndex
	firstNode NodeID
}

func newUFLayer(firstNode NodeID) ufLayer {
	return ufLayer{
		parent:    map[NodeID]NodeID{},
		cell:      map[NodeID]CellIndex{},
		firstNode: firstNode,
	}
}

// LayeredUnionFind is a persistent disjoint-set structure over integer
// node ids with choicepoint layers. Unions and path compaction write only
// into the top layer; all earlier layers stay frozen, so discarding the
// top layer restores every binding made since the matching push.
//
// Not safe for concurrent use; a reader exploring alternatives alongside
// a writer must clone the whole structure.
type LayeredUnionFind struct {
	layers []ufLayer
	next   NodeID
}

// NewLayeredUnionFind returns a structure with only the base layer open.
func NewLayeredUnionFind() *LayeredUnionFind {
	return &LayeredUnionFind{layers: []ufLayer{newUFLayer(0)}}
}

// Register allocates a fresh node, initially its own singleton root.
func (uf *LayeredUnionFind) Register() NodeID {
	id := uf.next
	uf.next++
	return id
}

// Len reports how many nodes are currently registered.
func (uf *LayeredUnionFind) Len() int { return int(uf.next) }

func (uf *LayeredUnionFind) top() *ufLayer {
	return &uf.layers[len(uf.layers)-1]
}

// parentOf consults the layers newest first; absence means self-root.
func (uf *LayeredUnionFind) parentOf(id NodeID) (NodeID, bool) {
	for i := len(uf.layers) - 1; i >= 0; i-- {
		if p, ok := uf.layers[i].parent[id]; ok {
			return p, true
		}
	}
	return 0, false
}

// FindRoot resolves the representative of id's set. Visited nodes are
// compacted straight to the root, in the top layer only.
func (uf *LayeredUnionFind) FindRoot(id NodeID) NodeID {
	if id >= uf.next {
		panic("union-find: unregistered node")
	}

	root := id
	for {
		p, ok := uf.parentOf(root)
		if !ok || p == root {
			break
		}
		root = p
	}

	top := uf.top()
	for n := id; n != root; {
		p, _ := uf.parentOf(n)
		top.parent[n] = root
		n = p
	}
	return root
}

// Find returns the cell payload attached to id's root, if any.
func (uf *LayeredUnionFind) Find(id NodeID) (CellIndex, bool) {
	root := uf.FindRoot(id)
	for i := len(uf.layers) - 1; i >= 0; i-- {
		if c, ok := uf.layers[i].cell[root]; ok {
			return c, true
		}
	}
	return 0, false
}

// SetCell attaches a cell payload to id's root.
func (uf *LayeredUnionFind) SetCell(id NodeID, c CellIndex) {
	uf.top().cell[uf.FindRoot(id)] = c
}

// Union merges the two sets, linking the child's root under the parent's
// root. The link is recorded in the current top layer.
func (uf *LayeredUnionFind) Union(parentID, childID NodeID) {
	pr := uf.FindRoot(parentID)
	cr := uf.FindRoot(childID)
	if pr == cr {
		return
	}
	uf.top().parent[cr] = pr
}

// PushChoicepoint opens a new mutable top layer. Every union, compaction,
// cell write, and registration from here on lands in it.
func (uf *LayeredUnionFind) PushChoicepoint() {
	uf.layers = append(uf.layers, newUFLayer(uf.next))
}

// PopChoicepoint discards the top layer and every node registered since
// the matching push, in O(1). Popping with no pushed layer is a
// mismatched push/pop pairing and panics.
func (uf *LayeredUnionFind) PopChoicepoint() {
	if len(uf.layers) == 1 {
		panic("union-find: pop choicepoint without matching push")
	}
	popped := uf.layers[len(uf.layers)-1]
	uf.layers = uf.layers[:len(uf.layers)-1]
	uf.next = popped.firstNode
}
