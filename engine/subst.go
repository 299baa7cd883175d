package engine

import "sort"

type color uint8

const (
	red color = iota
	black
)

// Substitution is a persistent mapping from variable names to terms.
// It is a red-black tree from Purely Functional Data Structures by Okasaki:
// Bind returns a new version sharing structure with the old one, so the
// DFS solver can backtrack by simply keeping the older pointer.
// The nil *Substitution is the empty substitution.
type Substitution struct {
	color       color
	left, right *Substitution
	binding
}

type binding struct {
	key   string
	value Term
}

// Lookup returns the term the named variable is bound to.
func (s *Substitution) Lookup(name string) (Term, bool) {
	node := s
	for {
		if node == nil {
			return nil, false
		}
		switch {
		case name < node.key:
			node = node.left
		case name > node.key:
			node = node.right
		default:
			return node.value, true
		}
	}
}

// Bind adds an entry, returning the new version. The receiver is unchanged.
func (s *Substitution) Bind(name string, t Term) *Substitution {
	ret := *s.insert(name, t)
	ret.color = black
	return &ret
}

func (s *Substitution) insert(k string, v Term) *Substitution {
	if s == nil {
		return &Substitution{color: red, binding: binding{key: k, value: v}}
	}
	switch {
	case k < s.key:
		ret := *s
		ret.left = s.left.insert(k, v)
		ret.balance()
		return &ret
	case k > s.key:
		ret := *s
		ret.right = s.right.insert(k, v)
		ret.balance()
		return &ret
	default:
		ret := *s
		ret.value = v
		return &ret
	}
}

func (s *Substitution) balance() {
	var (
		a, b, c, d *Substitution
		x, y, z    binding
	)
	switch {
	case s.left != nil && s.left.color == red:
		switch {
		case s.left.left != nil && s.left.left.color == red:
			a = s.left.left.left
			b = s.left.left.right
			c = s.left.right
			d = s.right
			x = s.left.left.binding
			y = s.left.binding
			z = s.binding
		case s.left.right != nil && s.left.right.color == red:
			a = s.left.left
			b = s.left.right.left
			c = s.left.right.right
			d = s.right
			x = s.left.binding
			y = s.left.right.binding
			z = s.binding
		default:
			return
		}
	case s.right != nil && s.right.color == red:
		switch {
		case s.right.left != nil && s.right.left.color == red:
			a = s.left
			b = s.right.left.left
			c = s.right.left.right
			d = s.right.right
			x = s.binding
			y = s.right.left.binding
			z = s.right.binding
		case s.right.right != nil && s.right.right.color == red:
			a = s.left
			b = s.right.left
			c = s.right.right.left
			d = s.right.right.right
			x = s.binding
			y = s.right.binding
			z = s.right.right.binding
		default:
			return
		}
	default:
		return
	}
	*s = Substitution{
		color:   red,
		left:    &Substitution{color: black, left: a, right: b, binding: x},
		right:   &Substitution{color: black, left: c, right: d, binding: z},
		binding: y,
	}
}

// Resolve follows the variable chain from t and returns the first
// non-variable term or the last free variable.
func (s *Substitution) Resolve(t Term) Term {
	var stop []string
	for {
		name, ok := varName(t)
		if !ok {
			return t
		}
		for _, seen := range stop {
			if name == seen {
				return t
			}
		}
		ref, ok := s.Lookup(name)
		if !ok {
			return t
		}
		stop = append(stop, name)
		t = ref
	}
}

// Apply normalizes t: every variable is dereferenced to a fixpoint and
// every subterm rebuilt.
func (s *Substitution) Apply(t Term) Term {
	switch t := s.Resolve(t).(type) {
	case Struct:
		var args []Term
		if t.Args != nil {
			args = make([]Term, len(t.Args))
		}
		for i, a := range t.Args {
			args[i] = s.Apply(a)
		}
		return Struct{Functor: t.Functor, Args: args}
	case List:
		var items []Term
		if t.Items != nil {
			items = make([]Term, len(t.Items))
		}
		for i, item := range t.Items {
			items[i] = s.Apply(item)
		}
		var tail Term
		if t.Tail != nil {
			tail = s.Apply(t.Tail)
		}
		return List{Items: items, Tail: tail}
	case Expr:
		return Expr{Op: t.Op, Left: s.Apply(t.Left), Right: s.Apply(t.Right)}
	default:
		return t
	}
}

// Names returns the bound variable names, sorted.
func (s *Substitution) Names() []string {
	var names []string
	s.walk(func(b binding) {
		names = append(names, b.key)
	})
	sort.Strings(names)
	return names
}

// Len reports the number of bindings.
func (s *Substitution) Len() int {
	n := 0
	s.walk(func(binding) { n++ })
	return n
}

func (s *Substitution) walk(f func(binding)) {
	if s == nil {
		return
	}
	s.left.walk(f)
	f(s.binding)
	s.right.walk(f)
}
