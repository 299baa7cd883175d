package prolog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sorakumo/prolog/engine"
)

func TestInterpreterExecute(t *testing.T) {
	p := New()
	assert.NoError(t, p.Consult("parent(tom, bob). parent(bob, liz)."))

	resolved, err := p.Execute("parent(tom, X).")
	assert.NoError(t, err)
	assert.Equal(t, []Term{engine.NewStruct("parent", engine.Atom("tom"), engine.Atom("bob"))}, resolved)
}

func TestInterpreterExecuteWithTrace(t *testing.T) {
	p := New()
	assert.NoError(t, p.Consult("p(X, Y) :- q(X, Z), r(Z, Y). q(a, b). r(b, c)."))

	resolved, trace, err := p.ExecuteWithTrace("p(A, B).")
	assert.NoError(t, err)
	assert.Equal(t, engine.NewStruct("p", engine.Atom("a"), engine.Atom("c")), resolved[0])

	assert.Len(t, trace, 3)
	assert.Equal(t, engine.NewStruct("q", engine.Atom("a"), engine.Atom("b")), trace[1].SelectedGoal)
	assert.Equal(t, engine.NewStruct("r", engine.Atom("b"), engine.Atom("c")), trace[2].SelectedGoal)
}

func TestInterpreterSolve(t *testing.T) {
	p := New()
	assert.NoError(t, p.Consult(`
parent(a, b).
parent(b, c).
ancestor(X, Y) :- parent(X, Y).
ancestor(X, Y) :- parent(X, Z), ancestor(Z, Y).
`))

	solutions, err := p.Solve("ancestor(a, Y).")
	assert.NoError(t, err)
	assert.Equal(t, []Solution{
		{"Y": engine.Atom("b")},
		{"Y": engine.Atom("c")},
	}, solutions)
}

func TestInterpreterSolveGroundQuery(t *testing.T) {
	p := New()
	assert.NoError(t, p.Consult("parent(a, b)."))

	solutions, err := p.Solve("parent(a, b).")
	assert.NoError(t, err)
	assert.Equal(t, []Solution{{}}, solutions)

	solutions, err = p.Solve("parent(b, a).")
	assert.NoError(t, err)
	assert.Empty(t, solutions)
}

func TestInterpreterExecuteNoClause(t *testing.T) {
	p := New()
	assert.NoError(t, p.Consult("parent(tom, bob)."))

	_, err := p.Execute("sibling(tom, X).")
	var rerr *engine.RewriteError
	assert.ErrorAs(t, err, &rerr)
	assert.EqualError(t, err, "no clause matches goal sibling(tom, X)")
}

func TestInterpreterSyntaxErrorsPropagate(t *testing.T) {
	p := New()

	var serr *engine.SyntaxError
	assert.ErrorAs(t, p.Consult("broken("), &serr)

	_, err := p.Execute("also broken")
	assert.ErrorAs(t, err, &serr)
	_, err = p.Solve("also broken")
	assert.ErrorAs(t, err, &serr)
}

func TestInterpreterSolverDepthConfigurable(t *testing.T) {
	p := New()
	assert.NoError(t, p.Consult("loop :- loop."))
	p.Solver.MaxDepth = 16

	_, err := p.Solve("loop.")
	var derr *engine.DepthError
	assert.ErrorAs(t, err, &derr)
}

func TestInterpreterRangeQuery(t *testing.T) {
	p := New()
	assert.NoError(t, p.Consult("num(3). num(12)."))

	solutions, err := p.Solve("num(0 <= N < 10).")
	assert.NoError(t, err)
	assert.Equal(t, []Solution{{"N": engine.Integer(3)}}, solutions)
}
