package engine

import (
	"fmt"

	"github.com/cockroachdb/apd"
)

// The context used for overflow-checked integer folding. Results must fit
// int64; anything wider surfaces as ErrIntOverflow.
var intFoldCtx = apd.Context{
	Precision:   34,
	MaxExponent: 6144,
	MinExponent: -6143,
	Traps:       apd.DefaultTraps,
}

func conditionAsErr(flags apd.Condition) error {
	e := flags & intFoldCtx.Traps
	if e == 0 {
		return ErrUndefined
	}

	for m := apd.Condition(1); m > 0; m <<= 1 {
		err := e & m
		if err == 0 {
			continue
		}

		switch err {
		case apd.Overflow:
			return ErrIntOverflow
		case apd.DivisionByZero:
			return ErrZeroDivisor
		default:
			return ErrUndefined
		}
	}

	return ErrUndefined
}

// evalInt applies op to two integers. Division truncates toward zero.
func evalInt(op ExprOp, a, b Integer) (Integer, error) {
	var x, y, z apd.Decimal
	x.SetInt64(int64(a))
	y.SetInt64(int64(b))

	var (
		c   apd.Condition
		err error
	)
	switch op {
	case OpAdd:
		c, err = intFoldCtx.Add(&z, &x, &y)
	case OpSub:
		c, err = intFoldCtx.Sub(&z, &x, &y)
	case OpMul:
		c, err = intFoldCtx.Mul(&z, &x, &y)
	case OpDiv:
		c, err = intFoldCtx.QuoInteger(&z, &x, &y)
	default:
		return 0, ErrUndefined
	}
	if err != nil {
		return 0, conditionAsErr(c)
	}

	n, err := z.Int64()
	if err != nil {
		return 0, ErrIntOverflow
	}
	return Integer(n), nil
}

// foldTerm reduces every arithmetic node of t whose operands are concrete
// to an Integer. Nodes still containing variables are rebuilt as they are.
func foldTerm(t Term) (Term, error) {
	switch t := t.(type) {
	case Expr:
		l, err := foldTerm(t.Left)
		if err != nil {
			return nil, err
		}
		r, err := foldTerm(t.Right)
		if err != nil {
			return nil, err
		}
		li, lok := l.(Integer)
		ri, rok := r.(Integer)
		if lok && rok {
			return evalInt(t.Op, li, ri)
		}
		return Expr{Op: t.Op, Left: l, Right: r}, nil
	case Struct:
		var args []Term
		if t.Args != nil {
			args = make([]Term, len(t.Args))
		}
		for i, a := range t.Args {
			f, err := foldTerm(a)
			if err != nil {
				return nil, err
			}
			args[i] = f
		}
		return Struct{Functor: t.Functor, Args: args}, nil
	case List:
		var items []Term
		if t.Items != nil {
			items = make([]Term, len(t.Items))
		}
		for i, item := range t.Items {
			f, err := foldTerm(item)
			if err != nil {
				return nil, err
			}
			items[i] = f
		}
		var tail Term
		if t.Tail != nil {
			f, err := foldTerm(t.Tail)
			if err != nil {
				return nil, err
			}
			tail = f
		}
		return List{Items: items, Tail: tail}, nil
	default:
		return t, nil
	}
}

// ConstraintKind distinguishes the normal forms the solver propagates.
type ConstraintKind uint8

const (
	// ConstraintEq is X = Y.
	ConstraintEq ConstraintKind = iota
	// ConstraintPlus is X = Y + C.
	ConstraintPlus
	// ConstraintMul is X = Y * C.
	ConstraintMul
	// ConstraintMinus is X = C - Y.
	ConstraintMinus
)

// Constraint is an arithmetic relation between at most two variables and
// one constant, in one of the four normal forms.
type Constraint struct {
	Kind ConstraintKind
	X    string
	Y    string
	C    Integer
}

func (c Constraint) String() string {
	switch c.Kind {
	case ConstraintEq:
		return fmt.Sprintf("%s = %s", c.X, c.Y)
	case ConstraintPlus:
		return fmt.Sprintf("%s = %s + %d", c.X, c.Y, c.C)
	case ConstraintMul:
		return fmt.Sprintf("%s = %s * %d", c.X, c.Y, c.C)
	case ConstraintMinus:
		return fmt.Sprintf("%s = %d - %s", c.X, c.C, c.Y)
	default:
		return "?"
	}
}

// SolveOutcome classifies the state of a constraint set after propagation.
type SolveOutcome uint8

const (
	// Solved means every constraint was discharged; Bindings holds the
	// exact value of each variable involved.
	Solved SolveOutcome = iota
	// Contradiction means the constraints admit no solution.
	Contradiction
	// Unsolvable means constraints remain that propagation cannot
	// discharge; the set is neither satisfied nor refuted.
	Unsolvable
)

func (o SolveOutcome) String() string {
	switch o {
	case Solved:
		return "solved"
	case Contradiction:
		return "contradiction"
	case Unsolvable:
		return "unsolvable"
	default:
		return "?"
	}
}

// SolveResult is the outcome of SolverState.Solve. Bindings is populated
// only when Outcome is Solved.
type SolveResult struct {
	Outcome  SolveOutcome
	Bindings map[string]Integer
}

// arithEq is an equality that could not be normalized yet; it is retried
// with known exact values substituted after every propagation round.
type arithEq struct {
	left  Term
	right Term
}

// SolverState accumulates arithmetic equalities, normalizes them into
// Constraint shapes with generated auxiliary variables, and propagates
// exact values to a fixpoint.
type SolverState struct {
	exacts        map[string]Integer
	constraints   []Constraint
	stuck         []arithEq
	contradiction bool
	auxSeq        int
}

// NewSolverState returns an empty solver.
func NewSolverState() *SolverState {
	return &SolverState{exacts: map[string]Integer{}}
}

// fresh allocates an auxiliary variable name. The "#" prefix keeps it out
// of the namespace the parser can produce.
func (s *SolverState) fresh() string {
	name := fmt.Sprintf("#a%d", s.auxSeq)
	s.auxSeq++
	return name
}

// PutExact records that name holds v. A different recorded value is a
// contradiction.
func (s *SolverState) PutExact(name string, v Integer) {
	if old, ok := s.exacts[name]; ok {
		if old != v {
			s.contradiction = true
		}
		return
	}
	s.exacts[name] = v
}

// Exact reports the known value of name, if any.
func (s *SolverState) Exact(name string) (Integer, bool) {
	v, ok := s.exacts[name]
	return v, ok
}

// AddEquality records the equality left = right. Equalities that cannot be
// normalized into constraint shapes are kept aside and retried once more
// exact values are known.
func (s *SolverState) AddEquality(left, right Term) {
	if !s.tryEquality(left, right) {
		s.stuck = append(s.stuck, arithEq{left: left, right: right})
	}
}

// tryEquality normalizes one equality. It reports false when no normal
// form exists for it yet.
func (s *SolverState) tryEquality(left, right Term) bool {
	left = s.substExacts(left)
	right = s.substExacts(right)

	l, err := foldTerm(left)
	if err != nil {
		s.contradiction = true
		return true
	}
	r, err := foldTerm(right)
	if err != nil {
		s.contradiction = true
		return true
	}

	if ln, ok := varName(l); ok {
		switch r := r.(type) {
		case Integer:
			s.PutExact(ln, r)
			return true
		case Expr:
			return s.bindExpr(ln, r)
		default:
			if rn, ok := varName(r); ok {
				s.constraints = append(s.constraints, Constraint{Kind: ConstraintEq, X: ln, Y: rn})
				return true
			}
			return false
		}
	}
	if _, ok := varName(r); ok {
		return s.tryEquality(r, l)
	}

	switch l := l.(type) {
	case Integer:
		switch r := r.(type) {
		case Integer:
			if l != r {
				s.contradiction = true
			}
			return true
		case Expr:
			aux := s.fresh()
			s.PutExact(aux, l)
			return s.bindExpr(aux, r)
		}
	case Expr:
		switch r := r.(type) {
		case Integer:
			aux := s.fresh()
			s.PutExact(aux, r)
			return s.bindExpr(aux, l)
		case Expr:
			aux := s.fresh()
			lOK := s.bindExpr(aux, l)
			rOK := s.bindExpr(aux, r)
			return lOK && rOK
		}
	}
	return false
}

// bindExpr normalizes x = e into constraint shapes, introducing auxiliary
// variables for compound operands. It reports false for shapes outside the
// constraint language: two unknown operands, or division by a variable.
func (s *SolverState) bindExpr(x string, e Expr) bool {
	lc, lConst := e.Left.(Integer)
	rc, rConst := e.Right.(Integer)

	if lConst && rConst {
		v, err := evalInt(e.Op, lc, rc)
		if err != nil {
			s.contradiction = true
			return true
		}
		s.PutExact(x, v)
		return true
	}
	if !lConst && !rConst {
		return false
	}

	if rConst {
		// x = Y op c
		y, ok := s.toVar(e.Left)
		if !ok {
			return false
		}
		switch e.Op {
		case OpAdd:
			s.constraints = append(s.constraints, Constraint{Kind: ConstraintPlus, X: x, Y: y, C: rc})
		case OpSub:
			s.constraints = append(s.constraints, Constraint{Kind: ConstraintPlus, X: x, Y: y, C: -rc})
		case OpMul:
			s.constraints = append(s.constraints, Constraint{Kind: ConstraintMul, X: x, Y: y, C: rc})
		case OpDiv:
			if rc == 0 {
				s.contradiction = true
				return true
			}
			// x = Y/c holds when Y = x*c.
			s.constraints = append(s.constraints, Constraint{Kind: ConstraintMul, X: y, Y: x, C: rc})
		}
		return true
	}

	// x = c op Y
	y, ok := s.toVar(e.Right)
	if !ok {
		return false
	}
	switch e.Op {
	case OpAdd:
		s.constraints = append(s.constraints, Constraint{Kind: ConstraintPlus, X: x, Y: y, C: lc})
	case OpSub:
		s.constraints = append(s.constraints, Constraint{Kind: ConstraintMinus, X: x, Y: y, C: lc})
	case OpMul:
		s.constraints = append(s.constraints, Constraint{Kind: ConstraintMul, X: x, Y: y, C: lc})
	case OpDiv:
		// Division by a variable stays out of the constraint language.
		return false
	}
	return true
}

// toVar reduces an operand to a variable name, allocating an auxiliary
// variable for a compound subexpression.
func (s *SolverState) toVar(t Term) (string, bool) {
	if n, ok := varName(t); ok {
		return n, true
	}
	if e, ok := t.(Expr); ok {
		aux := s.fresh()
		if !s.bindExpr(aux, e) {
			return "", false
		}
		return aux, true
	}
	return "", false
}

func varName(t Term) (string, bool) {
	switch t := t.(type) {
	case Variable:
		return string(t), true
	case RangeVar:
		return t.Name, true
	default:
		return "", false
	}
}

func (s *SolverState) substExacts(t Term) Term {
	for name, v := range s.exacts {
		t = substitute(t, name, v)
	}
	return t
}

// step propagates one constraint against the known exact values. It
// reports whether the constraint was discharged.
func (s *SolverState) step(c Constraint) bool {
	xv, xKnown := s.exacts[c.X]
	yv, yKnown := s.exacts[c.Y]

	put := func(name string, op ExprOp, a, b Integer) {
		v, err := evalInt(op, a, b)
		if err != nil {
			s.contradiction = true
			return
		}
		s.PutExact(name, v)
	}

	switch c.Kind {
	case ConstraintEq:
		switch {
		case xKnown:
			s.PutExact(c.Y, xv)
			return true
		case yKnown:
			s.PutExact(c.X, yv)
			return true
		}
	case ConstraintPlus: // X = Y + C
		switch {
		case yKnown:
			put(c.X, OpAdd, yv, c.C)
			return true
		case xKnown:
			put(c.Y, OpSub, xv, c.C)
			return true
		}
	case ConstraintMul: // X = Y * C
		switch {
		case yKnown:
			put(c.X, OpMul, yv, c.C)
			return true
		case xKnown:
			if c.C == 0 {
				if xv != 0 {
					s.contradiction = true
				}
				return true
			}
			if xv%c.C != 0 {
				// Not divisible: no integer Y exists, but the
				// constraint is kept rather than refuted.
				return false
			}
			s.PutExact(c.Y, xv/c.C)
			return true
		}
	case ConstraintMinus: // X = C - Y
		switch {
		case yKnown:
			put(c.X, OpSub, c.C, yv)
			return true
		case xKnown:
			put(c.Y, OpSub, c.C, xv)
			return true
		}
	}
	return false
}

// Solve propagates to a fixpoint and classifies the result.
func (s *SolverState) Solve() SolveResult {
	for changed := true; changed && !s.contradiction; {
		changed = false

		kept := make([]Constraint, 0, len(s.constraints))
		for _, c := range s.constraints {
			if s.contradiction {
				kept = append(kept, c)
				continue
			}
			if s.step(c) {
				changed = true
			} else {
				kept = append(kept, c)
			}
		}
		s.constraints = kept

		var still []arithEq
		for _, eq := range s.stuck {
			if s.contradiction {
				still = append(still, eq)
				continue
			}
			if s.tryEquality(eq.left, eq.right) {
				changed = true
			} else {
				still = append(still, eq)
			}
		}
		s.stuck = still
	}

	switch {
	case s.contradiction:
		return SolveResult{Outcome: Contradiction}
	case len(s.constraints) == 0 && len(s.stuck) == 0:
		bindings := make(map[string]Integer, len(s.exacts))
		for name, v := range s.exacts {
			bindings[name] = v
		}
		return SolveResult{Outcome: Solved, Bindings: bindings}
	default:
		return SolveResult{Outcome: Unsolvable}
	}
}
