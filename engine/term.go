package engine

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Term is a value handled by the engine: a variable, a range-constrained
// variable, an integer, a structure, a list, or an unevaluated arithmetic
// expression. Terms are immutable values compared structurally; binding a
// variable replaces whole subterms, it never mutates shared nodes.
type Term interface {
	fmt.Stringer
	term()
}

// Variable is a logic variable identified by name.
// The name "_" is the anonymous variable: it unifies with anything and is
// never bound.
type Variable string

// Anonymous reports whether the variable never takes a binding.
func (v Variable) Anonymous() bool { return v == "_" }

func (v Variable) term() {}

func (v Variable) String() string { return string(v) }

// Integer is an integer literal. The engine is integer-only.
type Integer int64

func (i Integer) term() {}

func (i Integer) String() string { return strconv.FormatInt(int64(i), 10) }

// Bound is one endpoint of a range constraint.
type Bound struct {
	Value     Integer
	Inclusive bool
}

func (b Bound) rel() string {
	if b.Inclusive {
		return "<="
	}
	return "<"
}

// RangeVar is a logic variable constrained to an integer interval.
// Either bound may be nil, leaving that side unbounded.
type RangeVar struct {
	Name string
	Min  *Bound
	Max  *Bound
}

// Anonymous reports whether the variable never takes a binding.
// Range checks still apply to an anonymous range variable.
func (r RangeVar) Anonymous() bool { return r.Name == "_" }

func (r RangeVar) term() {}

func (r RangeVar) String() string {
	var sb strings.Builder
	if r.Min != nil {
		fmt.Fprintf(&sb, "%s %s ", r.Min.Value, r.Min.rel())
	}
	sb.WriteString(r.Name)
	if r.Max != nil {
		fmt.Fprintf(&sb, " %s %s", r.Max.rel(), r.Max.Value)
	}
	return sb.String()
}

// Contains reports whether n lies within the interval, honoring
// inclusive/exclusive edges exactly.
func (r RangeVar) Contains(n Integer) bool {
	if min := r.Min; min != nil {
		if n < min.Value || (n == min.Value && !min.Inclusive) {
			return false
		}
	}
	if max := r.Max; max != nil {
		if n > max.Value || (n == max.Value && !max.Inclusive) {
			return false
		}
	}
	return true
}

// Empty reports whether the interval contains no integer at all.
func (r RangeVar) Empty() bool {
	if r.Min == nil || r.Max == nil {
		return false
	}
	lo := r.Min.Value
	if !r.Min.Inclusive {
		lo++
	}
	hi := r.Max.Value
	if !r.Max.Inclusive {
		hi--
	}
	return lo > hi
}

// Struct is a labeled term; a 0-arity struct plays the role of an atom.
type Struct struct {
	Functor string
	Args    []Term
}

// Atom builds the 0-arity struct for name.
func Atom(name string) Struct { return Struct{Functor: name} }

// NewStruct builds a struct term from a functor and arguments.
func NewStruct(functor string, args ...Term) Struct {
	return Struct{Functor: functor, Args: args}
}

// Arity returns the number of arguments.
func (s Struct) Arity() int { return len(s.Args) }

func (s Struct) term() {}

func (s Struct) String() string {
	if len(s.Args) == 0 {
		return s.Functor
	}
	var sb strings.Builder
	sb.WriteString(s.Functor)
	sb.WriteByte('(')
	for i, a := range s.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// List is a possibly-improper list. A nil Tail denotes the proper list
// terminator.
type List struct {
	Items []Term
	Tail  Term
}

// NewList builds a proper list of items.
func NewList(items ...Term) List { return List{Items: items} }

func (l List) term() {}

func (l List) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, item := range l.Items {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(item.String())
	}
	if l.Tail != nil {
		if len(l.Items) > 0 {
			sb.WriteString(" | ")
		}
		sb.WriteString(l.Tail.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

// ExprOp is an arithmetic operator of an expression node.
type ExprOp uint8

const (
	OpAdd ExprOp = iota
	OpSub
	OpMul
	OpDiv
)

func (op ExprOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	default:
		return "?"
	}
}

// Expr is an unevaluated arithmetic expression node.
type Expr struct {
	Op    ExprOp
	Left  Term
	Right Term
}

// NewExpr builds an arithmetic expression node.
func NewExpr(op ExprOp, left, right Term) Expr {
	return Expr{Op: op, Left: left, Right: right}
}

func (e Expr) term() {}

func (e Expr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
}

// Clause is a read-only database entry. An empty Body makes it a fact.
type Clause struct {
	Head Term
	Body []Term
}

// Fact builds a bodiless clause.
func Fact(head Term) Clause { return Clause{Head: head} }

// Rule builds a clause with a body.
func Rule(head Term, body ...Term) Clause { return Clause{Head: head, Body: body} }

// IsFact reports whether the clause has no body.
func (c Clause) IsFact() bool { return len(c.Body) == 0 }

func (c Clause) String() string {
	if c.IsFact() {
		return c.Head.String() + "."
	}
	var sb strings.Builder
	sb.WriteString(c.Head.String())
	sb.WriteString(" :- ")
	for i, g := range c.Body {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(g.String())
	}
	sb.WriteByte('.')
	return sb.String()
}

// eq compares two terms structurally.
func eq(t1, t2 Term) bool {
	switch t1 := t1.(type) {
	case Variable:
		t2, ok := t2.(Variable)
		return ok && t1 == t2
	case Integer:
		t2, ok := t2.(Integer)
		return ok && t1 == t2
	case RangeVar:
		t2, ok := t2.(RangeVar)
		return ok && t1.Name == t2.Name && eqBound(t1.Min, t2.Min) && eqBound(t1.Max, t2.Max)
	case Struct:
		t2, ok := t2.(Struct)
		if !ok || t1.Functor != t2.Functor || len(t1.Args) != len(t2.Args) {
			return false
		}
		for i := range t1.Args {
			if !eq(t1.Args[i], t2.Args[i]) {
				return false
			}
		}
		return true
	case List:
		t2, ok := t2.(List)
		if !ok || len(t1.Items) != len(t2.Items) {
			return false
		}
		for i := range t1.Items {
			if !eq(t1.Items[i], t2.Items[i]) {
				return false
			}
		}
		switch {
		case t1.Tail == nil && t2.Tail == nil:
			return true
		case t1.Tail == nil || t2.Tail == nil:
			return false
		default:
			return eq(t1.Tail, t2.Tail)
		}
	case Expr:
		t2, ok := t2.(Expr)
		return ok && t1.Op == t2.Op && eq(t1.Left, t2.Left) && eq(t1.Right, t2.Right)
	default:
		return false
	}
}

func eqBound(b1, b2 *Bound) bool {
	if b1 == nil || b2 == nil {
		return b1 == b2
	}
	return *b1 == *b2
}

// occurs reports whether a variable named name appears anywhere inside t,
// including nested structs, lists, and arithmetic nodes.
func occurs(name string, t Term) bool {
	switch t := t.(type) {
	case Variable:
		return string(t) == name
	case RangeVar:
		return t.Name == name
	case Struct:
		for _, a := range t.Args {
			if occurs(name, a) {
				return true
			}
		}
		return false
	case List:
		for _, item := range t.Items {
			if occurs(name, item) {
				return true
			}
		}
		return t.Tail != nil && occurs(name, t.Tail)
	case Expr:
		return occurs(name, t.Left) || occurs(name, t.Right)
	default:
		return false
	}
}

// substitute replaces every occurrence of the variable named name in t with
// val, rebuilding the spine of the term. Range-variable occurrences of the
// same name are replaced as well: once a name is bound its constraint has
// already been honored.
func substitute(t Term, name string, val Term) Term {
	switch t := t.(type) {
	case Variable:
		if string(t) == name {
			return val
		}
		return t
	case RangeVar:
		if t.Name == name {
			return val
		}
		return t
	case Struct:
		if !occurs(name, t) {
			return t
		}
		args := make([]Term, len(t.Args))
		for i, a := range t.Args {
			args[i] = substitute(a, name, val)
		}
		return Struct{Functor: t.Functor, Args: args}
	case List:
		if !occurs(name, t) {
			return t
		}
		items := make([]Term, len(t.Items))
		for i, item := range t.Items {
			items[i] = substitute(item, name, val)
		}
		var tail Term
		if t.Tail != nil {
			tail = substitute(t.Tail, name, val)
		}
		return List{Items: items, Tail: tail}
	case Expr:
		if !occurs(name, t) {
			return t
		}
		return Expr{Op: t.Op, Left: substitute(t.Left, name, val), Right: substitute(t.Right, name, val)}
	default:
		return t
	}
}

// substituteAll rewrites every term of the buffer in place.
func substituteAll(buf []Term, name string, val Term) {
	for i, t := range buf {
		buf[i] = substitute(t, name, val)
	}
}

// renameTerm appends "#"+suffix to every variable name in t, leaving the
// anonymous variable untouched. "#" cannot appear in a parsed variable
// name, so renamed variables never collide with source ones.
func renameTerm(t Term, suffix string) Term {
	switch t := t.(type) {
	case Variable:
		if t.Anonymous() {
			return t
		}
		return Variable(string(t) + "#" + suffix)
	case RangeVar:
		if t.Anonymous() {
			return t
		}
		return RangeVar{Name: t.Name + "#" + suffix, Min: t.Min, Max: t.Max}
	case Struct:
		var args []Term
		if t.Args != nil {
			args = make([]Term, len(t.Args))
		}
		for i, a := range t.Args {
			args[i] = renameTerm(a, suffix)
		}
		return Struct{Functor: t.Functor, Args: args}
	case List:
		var items []Term
		if t.Items != nil {
			items = make([]Term, len(t.Items))
		}
		for i, item := range t.Items {
			items[i] = renameTerm(item, suffix)
		}
		var tail Term
		if t.Tail != nil {
			tail = renameTerm(t.Tail, suffix)
		}
		return List{Items: items, Tail: tail}
	case Expr:
		return Expr{Op: t.Op, Left: renameTerm(t.Left, suffix), Right: renameTerm(t.Right, suffix)}
	default:
		return t
	}
}

// renameClause standardizes a clause apart: every use of a database clause
// gets variables suffixed with a fresh counter value so that two uses never
// alias.
func renameClause(c Clause, suffix string) Clause {
	out := Clause{Head: renameTerm(c.Head, suffix)}
	if len(c.Body) > 0 {
		out.Body = make([]Term, len(c.Body))
		for i, g := range c.Body {
			out.Body[i] = renameTerm(g, suffix)
		}
	}
	return out
}

// FreeVariables collects the names of the variables occurring in t, sorted,
// each name once. The anonymous variable is not collected.
func FreeVariables(t Term) []string {
	set := map[string]struct{}{}
	collectVariables(t, set)
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func collectVariables(t Term, set map[string]struct{}) {
	switch t := t.(type) {
	case Variable:
		if !t.Anonymous() {
			set[string(t)] = struct{}{}
		}
	case RangeVar:
		if !t.Anonymous() {
			set[t.Name] = struct{}{}
		}
	case Struct:
		for _, a := range t.Args {
			collectVariables(a, set)
		}
	case List:
		for _, item := range t.Items {
			collectVariables(item, set)
		}
		if t.Tail != nil {
			collectVariables(t.Tail, set)
		}
	case Expr:
		collectVariables(t.Left, set)
		collectVariables(t.Right, set)
	}
}
