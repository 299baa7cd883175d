package engine

// pair is a pending unification obligation.
type pair struct {
	a Term
	b Term
}

// unifier carries the worklist state of one Unify call. The goals slice is
// the caller's buffer, rewritten in place as bindings land.
type unifier struct {
	goals    []Term
	work     []pair
	deferred []pair
	ranges   map[string]RangeVar
}

// Unify attempts to make t1 and t2 equal. On success the goal buffer has
// every occurrence of each newly bound variable replaced by its binding.
// On failure the buffer is left partially rewritten; callers attempt
// unification on a fresh clone per try.
//
// Arithmetic equalities that cannot be evaluated outright are deferred and
// handed to the constraint solver once the structural work is done; an
// insufficiently constrained equality is not a failure.
func Unify(t1, t2 Term, goals []Term) error {
	u := unifier{goals: goals, work: []pair{{a: t1, b: t2}}}
	for len(u.work) > 0 {
		p := u.work[len(u.work)-1]
		u.work = u.work[:len(u.work)-1]
		if err := u.step(p); err != nil {
			return err
		}
	}
	return u.settle()
}

// bind substitutes name with val across the goal buffer, the remaining
// worklist, and the deferred pairs, then re-queues every deferred pair: a
// fresh binding may make a stuck arithmetic expression evaluable.
func (u *unifier) bind(name string, val Term) {
	substituteAll(u.goals, name, val)
	for i, p := range u.work {
		u.work[i] = pair{a: substitute(p.a, name, val), b: substitute(p.b, name, val)}
	}
	for _, p := range u.deferred {
		u.work = append(u.work, pair{a: substitute(p.a, name, val), b: substitute(p.b, name, val)})
	}
	u.deferred = u.deferred[:0]
}

func (u *unifier) step(p pair) error {
	a, err := foldTerm(p.a)
	if err != nil {
		return unifyError(p.a, p.b, CauseArith)
	}
	b, err := foldTerm(p.b)
	if err != nil {
		return unifyError(p.a, p.b, CauseArith)
	}

	// An expression that survived folding still has free variables; park
	// the pair for the constraint solver instead of failing.
	if isExpr(a) || isExpr(b) {
		u.noteRanges(a)
		u.noteRanges(b)
		u.deferred = append(u.deferred, pair{a: a, b: b})
		return nil
	}

	switch a := a.(type) {
	case Variable:
		if b, ok := b.(Variable); ok && a == b {
			return nil
		}
		if a.Anonymous() {
			return nil
		}
		if b, ok := b.(Variable); ok && b.Anonymous() {
			return nil
		}
		// A variable meeting its own range constraint adopts it.
		if b, ok := b.(RangeVar); ok && b.Name == string(a) {
			u.bind(string(a), b)
			return nil
		}
		if occurs(string(a), b) {
			return unifyError(a, b, CauseOccurs)
		}
		u.bind(string(a), b)
		return nil

	case RangeVar:
		switch b := b.(type) {
		case RangeVar:
			return u.intersect(a, b)
		case Integer:
			if !a.Contains(b) {
				return unifyError(a, b, CauseOutOfRange)
			}
			if !a.Anonymous() {
				u.bind(a.Name, b)
			}
			return nil
		case Variable:
			if b.Anonymous() {
				return nil
			}
			// The plain variable takes the range constraint.
			u.bind(string(b), a)
			return nil
		default:
			if a.Anonymous() {
				return nil
			}
			if occurs(a.Name, b) {
				return unifyError(a, b, CauseOccurs)
			}
			u.bind(a.Name, b)
			return nil
		}

	case Integer:
		switch b := b.(type) {
		case Integer:
			if a != b {
				return unifyError(a, b, CauseMismatch)
			}
			return nil
		case Variable, RangeVar:
			u.work = append(u.work, pair{a: b, b: a})
			return nil
		default:
			return unifyError(a, b, CauseMismatch)
		}

	case Struct:
		switch b := b.(type) {
		case Struct:
			if a.Functor != b.Functor || len(a.Args) != len(b.Args) {
				return unifyError(a, b, CauseMismatch)
			}
			for i := len(a.Args) - 1; i >= 0; i-- {
				u.work = append(u.work, pair{a: a.Args[i], b: b.Args[i]})
			}
			return nil
		case Variable, RangeVar:
			u.work = append(u.work, pair{a: b, b: a})
			return nil
		default:
			return unifyError(a, b, CauseMismatch)
		}

	case List:
		switch b := b.(type) {
		case List:
			return u.lists(a, b)
		case Variable, RangeVar:
			u.work = append(u.work, pair{a: b, b: a})
			return nil
		default:
			return unifyError(a, b, CauseMismatch)
		}

	default:
		return unifyError(a, b, CauseMismatch)
	}
}

// intersect replaces two range variables with one fresh range variable
// carrying the tighter of each pair of bounds. On a tied boundary value
// exclusivity wins.
func (u *unifier) intersect(a, b RangeVar) error {
	if eq(a, b) {
		return nil
	}
	fresh := RangeVar{
		Name: a.Name + "&" + b.Name,
		Min:  tighterMin(a.Min, b.Min),
		Max:  tighterMax(a.Max, b.Max),
	}
	if fresh.Empty() {
		return unifyError(a, b, CauseEmptyRange)
	}
	if !a.Anonymous() {
		u.bind(a.Name, fresh)
	}
	if !b.Anonymous() && b.Name != a.Name {
		u.bind(b.Name, fresh)
	}
	return nil
}

func tighterMin(b1, b2 *Bound) *Bound {
	switch {
	case b1 == nil:
		return b2
	case b2 == nil:
		return b1
	case b1.Value > b2.Value:
		return b1
	case b2.Value > b1.Value:
		return b2
	default:
		return &Bound{Value: b1.Value, Inclusive: b1.Inclusive && b2.Inclusive}
	}
}

func tighterMax(b1, b2 *Bound) *Bound {
	switch {
	case b1 == nil:
		return b2
	case b2 == nil:
		return b1
	case b1.Value < b2.Value:
		return b1
	case b2.Value < b1.Value:
		return b2
	default:
		return &Bound{Value: b1.Value, Inclusive: b1.Inclusive && b2.Inclusive}
	}
}

// lists decomposes two lists: pairwise over the common prefix, then the
// unmatched suffix of the longer list against the shorter list's tail. An
// absent tail stands for the empty proper list.
func (u *unifier) lists(a, b List) error {
	if len(a.Items) == 0 && a.Tail == nil && len(b.Items) == 0 && b.Tail == nil {
		return nil
	}
	n := len(a.Items)
	if len(b.Items) < n {
		n = len(b.Items)
	}

	var rest pair
	switch {
	case len(a.Items) == len(b.Items):
		rest = pair{a: tailOf(a), b: tailOf(b)}
	case len(a.Items) > len(b.Items):
		if b.Tail == nil {
			return unifyError(a, b, CauseMismatch)
		}
		rest = pair{a: List{Items: a.Items[n:], Tail: a.Tail}, b: b.Tail}
	default:
		if a.Tail == nil {
			return unifyError(a, b, CauseMismatch)
		}
		rest = pair{a: a.Tail, b: List{Items: b.Items[n:], Tail: b.Tail}}
	}
	u.work = append(u.work, rest)

	// Pushed in reverse so the stack pops items left to right.
	for i := n - 1; i >= 0; i-- {
		u.work = append(u.work, pair{a: a.Items[i], b: b.Items[i]})
	}
	return nil
}

// noteRanges records the bounds of every range variable inside a deferred
// term, so a value the constraint solver later pins for it can be
// membership-checked before it lands in the goal buffer.
func (u *unifier) noteRanges(t Term) {
	switch t := t.(type) {
	case RangeVar:
		if t.Anonymous() {
			return
		}
		if u.ranges == nil {
			u.ranges = map[string]RangeVar{}
		}
		u.ranges[t.Name] = t
	case Struct:
		for _, a := range t.Args {
			u.noteRanges(a)
		}
	case List:
		for _, item := range t.Items {
			u.noteRanges(item)
		}
		if t.Tail != nil {
			u.noteRanges(t.Tail)
		}
	case Expr:
		u.noteRanges(t.Left)
		u.noteRanges(t.Right)
	}
}

func isExpr(t Term) bool {
	_, ok := t.(Expr)
	return ok
}

func tailOf(l List) Term {
	if l.Tail == nil {
		return List{}
	}
	return l.Tail
}

// settle hands the remaining deferred pairs to the constraint solver and
// constant-folds the goal buffer.
func (u *unifier) settle() error {
	if len(u.deferred) > 0 {
		s := NewSolverState()
		for _, p := range u.deferred {
			s.AddEquality(p.a, p.b)
		}
		switch res := s.Solve(); res.Outcome {
		case Contradiction:
			p := u.deferred[0]
			return unifyError(p.a, p.b, CauseArith)
		case Solved:
			for name, v := range res.Bindings {
				if r, ok := u.ranges[name]; ok && !r.Contains(v) {
					return unifyError(r, v, CauseOutOfRange)
				}
			}
			for name, v := range res.Bindings {
				substituteAll(u.goals, name, v)
			}
		case Unsolvable:
			// Last resort: a deferred pair whose sides both fold to
			// numbers is a plain equality.
			for _, p := range u.deferred {
				a, errA := foldTerm(p.a)
				b, errB := foldTerm(p.b)
				if errA != nil || errB != nil {
					return unifyError(p.a, p.b, CauseArith)
				}
				ai, aok := a.(Integer)
				bi, bok := b.(Integer)
				if aok && bok && ai != bi {
					return unifyError(p.a, p.b, CauseMismatch)
				}
			}
		}
	}

	for i, g := range u.goals {
		if f, err := foldTerm(g); err == nil {
			u.goals[i] = f
		}
	}
	return nil
}
