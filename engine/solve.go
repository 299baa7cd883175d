package engine

import "strconv"

// DefaultMaxDepth bounds the DFS solver's recursion when the caller does
// not choose a limit.
const DefaultMaxDepth = 4096

// Solver enumerates every derivation of a query by depth-first search
// with full backtracking, one substitution per answer.
type Solver struct {
	// MaxDepth bounds the derivation depth; exceeding it aborts the
	// whole search with a DepthError.
	MaxDepth int

	db      *Database
	counter int
}

// NewSolver returns a solver over db with the default depth limit.
func NewSolver(db *Database) *Solver {
	return &Solver{MaxDepth: DefaultMaxDepth, db: db}
}

func (s *Solver) fresh() string {
	s.counter++
	return strconv.Itoa(s.counter)
}

// Solve returns one substitution per successful derivation of the query,
// in clause program order.
func (s *Solver) Solve(query []Term) ([]*Substitution, error) {
	var solutions []*Substitution
	if err := s.search(query, nil, 0, &solutions); err != nil {
		return nil, err
	}
	return solutions, nil
}

func (s *Solver) search(goals []Term, sub *Substitution, depth int, solutions *[]*Substitution) error {
	if depth > s.MaxDepth {
		return &DepthError{Limit: s.MaxDepth}
	}
	if len(goals) == 0 {
		*solutions = append(*solutions, sub)
		return nil
	}

	goal := sub.Apply(goals[0])
	for _, c := range s.db.Lookup(goal) {
		rc := renameClause(c, s.fresh())
		next, ok := unifySubst(goal, rc.Head, sub)
		if !ok {
			continue
		}
		rest := make([]Term, 0, len(rc.Body)+len(goals)-1)
		rest = append(rest, rc.Body...)
		rest = append(rest, goals[1:]...)
		if err := s.search(rest, next, depth+1, solutions); err != nil {
			return err
		}
	}
	return nil
}

// unifySubst is classical Robinson unification over an immutable
// substitution: on success it returns the extended substitution, on
// failure the original is untouched and ok is false.
func unifySubst(a, b Term, sub *Substitution) (*Substitution, bool) {
	a = sub.Resolve(a)
	b = sub.Resolve(b)
	if f, err := foldTerm(a); err == nil {
		a = f
	}
	if f, err := foldTerm(b); err == nil {
		b = f
	}

	switch a := a.(type) {
	case Variable:
		if b, ok := b.(Variable); ok && a == b {
			return sub, true
		}
		if a.Anonymous() {
			return sub, true
		}
		if b, ok := b.(Variable); ok && b.Anonymous() {
			return sub, true
		}
		// A variable meeting its own range constraint adopts it.
		if b, ok := b.(RangeVar); ok && b.Name == string(a) {
			return sub.Bind(string(a), b), true
		}
		if occursSubst(string(a), b, sub) {
			return sub, false
		}
		return sub.Bind(string(a), b), true

	case RangeVar:
		switch b := b.(type) {
		case Integer:
			if !a.Contains(b) {
				return sub, false
			}
			if a.Anonymous() {
				return sub, true
			}
			return sub.Bind(a.Name, b), true
		case Variable:
			return unifySubst(b, a, sub)
		default:
			if a.Anonymous() {
				return sub, true
			}
			if occursSubst(a.Name, b, sub) {
				return sub, false
			}
			return sub.Bind(a.Name, b), true
		}

	case Integer:
		switch b := b.(type) {
		case Integer:
			return sub, a == b
		case Variable, RangeVar:
			return unifySubst(b, a, sub)
		default:
			return sub, false
		}

	case Struct:
		switch b := b.(type) {
		case Struct:
			if a.Functor != b.Functor || len(a.Args) != len(b.Args) {
				return sub, false
			}
			ok := true
			for i := range a.Args {
				sub, ok = unifySubst(a.Args[i], b.Args[i], sub)
				if !ok {
					return sub, false
				}
			}
			return sub, true
		case Variable, RangeVar:
			return unifySubst(b, a, sub)
		default:
			return sub, false
		}

	case List:
		switch b := b.(type) {
		case List:
			return unifyLists(a, b, sub)
		case Variable, RangeVar:
			return unifySubst(b, a, sub)
		default:
			return sub, false
		}

	case Expr:
		switch b := b.(type) {
		case Expr:
			if a.Op != b.Op {
				return sub, false
			}
			next, ok := unifySubst(a.Left, b.Left, sub)
			if !ok {
				return sub, false
			}
			return unifySubst(a.Right, b.Right, next)
		case Variable, RangeVar:
			return unifySubst(b, a, sub)
		default:
			return sub, false
		}

	default:
		return sub, false
	}
}

func unifyLists(a, b List, sub *Substitution) (*Substitution, bool) {
	if len(a.Items) == 0 && a.Tail == nil && len(b.Items) == 0 && b.Tail == nil {
		return sub, true
	}
	n := len(a.Items)
	if len(b.Items) < n {
		n = len(b.Items)
	}
	ok := true
	for i := 0; i < n; i++ {
		sub, ok = unifySubst(a.Items[i], b.Items[i], sub)
		if !ok {
			return sub, false
		}
	}

	switch {
	case len(a.Items) == len(b.Items):
		return unifySubst(tailOf(a), tailOf(b), sub)
	case len(a.Items) > len(b.Items):
		if b.Tail == nil {
			return sub, false
		}
		return unifySubst(List{Items: a.Items[n:], Tail: a.Tail}, b.Tail, sub)
	default:
		if a.Tail == nil {
			return sub, false
		}
		return unifySubst(a.Tail, List{Items: b.Items[n:], Tail: b.Tail}, sub)
	}
}

// occursSubst reports whether the named variable occurs in t under sub.
func occursSubst(name string, t Term, sub *Substitution) bool {
	switch t := sub.Resolve(t).(type) {
	case Variable:
		return string(t) == name
	case RangeVar:
		return t.Name == name
	case Struct:
		for _, a := range t.Args {
			if occursSubst(name, a, sub) {
				return true
			}
		}
		return false
	case List:
		for _, item := range t.Items {
			if occursSubst(name, item, sub) {
				return true
			}
		}
		return t.Tail != nil && occursSubst(name, t.Tail, sub)
	case Expr:
		return occursSubst(name, t.Left, sub) || occursSubst(name, t.Right, sub)
	default:
		return false
	}
}
