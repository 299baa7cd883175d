package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvalInt(t *testing.T) {
	tests := []struct {
		name    string
		op      ExprOp
		a, b    Integer
		want    Integer
		wantErr error
	}{
		{name: "add", op: OpAdd, a: 3, b: 5, want: 8},
		{name: "sub", op: OpSub, a: 3, b: 5, want: -2},
		{name: "mul", op: OpMul, a: -4, b: 5, want: -20},
		{name: "div truncates", op: OpDiv, a: 10, b: 3, want: 3},
		{name: "div truncates toward zero", op: OpDiv, a: -7, b: 2, want: -3},
		{name: "zero divisor", op: OpDiv, a: 1, b: 0, wantErr: ErrZeroDivisor},
		{name: "add overflow", op: OpAdd, a: math.MaxInt64, b: 1, wantErr: ErrIntOverflow},
		{name: "mul overflow", op: OpMul, a: math.MaxInt64, b: math.MaxInt64, wantErr: ErrIntOverflow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evalInt(tt.op, tt.a, tt.b)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestFoldTerm(t *testing.T) {
	tests := []struct {
		name string
		in   Term
		want Term
	}{
		{
			name: "nested concrete expression",
			in:   NewExpr(OpMul, NewExpr(OpAdd, Integer(1), Integer(2)), Integer(4)),
			want: Integer(12),
		},
		{
			name: "expression with free variable survives",
			in:   NewExpr(OpAdd, Variable("X"), Integer(1)),
			want: NewExpr(OpAdd, Variable("X"), Integer(1)),
		},
		{
			name: "folds inside structs",
			in:   NewStruct("p", NewExpr(OpSub, Integer(5), Integer(2))),
			want: NewStruct("p", Integer(3)),
		},
		{
			name: "folds inside lists",
			in:   NewList(NewExpr(OpDiv, Integer(9), Integer(2))),
			want: NewList(Integer(4)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := foldTerm(tt.in)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSolverStateEqualities(t *testing.T) {
	tests := []struct {
		name        string
		left, right Term
		outcome     SolveOutcome
		wantVar     string
		wantValue   Integer
	}{
		{
			name:      "x plus constant",
			left:      NewExpr(OpAdd, Variable("X"), Integer(1)),
			right:     Integer(6),
			outcome:   Solved,
			wantVar:   "X",
			wantValue: 5,
		},
		{
			name:      "constant minus x",
			left:      NewExpr(OpSub, Integer(10), Variable("X")),
			right:     Integer(4),
			outcome:   Solved,
			wantVar:   "X",
			wantValue: 6,
		},
		{
			name:      "x times constant",
			left:      NewExpr(OpMul, Variable("X"), Integer(3)),
			right:     Integer(12),
			outcome:   Solved,
			wantVar:   "X",
			wantValue: 4,
		},
		{
			name:    "indivisible product stays unsolved",
			left:    NewExpr(OpMul, Variable("X"), Integer(2)),
			right:   Integer(5),
			outcome: Unsolvable,
		},
		{
			name:    "constant clash",
			left:    Integer(5),
			right:   Integer(6),
			outcome: Contradiction,
		},
		{
			name:      "division recovers multiplicand",
			left:      NewExpr(OpDiv, Variable("X"), Integer(2)),
			right:     Integer(5),
			outcome:   Solved,
			wantVar:   "X",
			wantValue: 10,
		},
		{
			name:      "nested expression with auxiliary variable",
			left:      NewExpr(OpMul, NewExpr(OpAdd, Variable("X"), Integer(1)), Integer(3)),
			right:     Integer(12),
			outcome:   Solved,
			wantVar:   "X",
			wantValue: 3,
		},
		{
			name:    "division by variable stays unsolved",
			left:    NewExpr(OpDiv, Integer(6), Variable("X")),
			right:   Integer(2),
			outcome: Unsolvable,
		},
		{
			name:    "two unknowns on one operator stay unsolved",
			left:    NewExpr(OpAdd, Variable("X"), Variable("Y")),
			right:   Integer(5),
			outcome: Unsolvable,
		},
		{
			name:    "variable equality with no knowns stays unsolved",
			left:    Variable("X"),
			right:   Variable("Y"),
			outcome: Unsolvable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSolverState()
			s.AddEquality(tt.left, tt.right)
			res := s.Solve()
			assert.Equal(t, tt.outcome, res.Outcome)
			if tt.outcome == Solved && tt.wantVar != "" {
				assert.Equal(t, tt.wantValue, res.Bindings[tt.wantVar])
			}
		})
	}
}

func TestSolverStateEqConstraint(t *testing.T) {
	s := NewSolverState()
	s.AddEquality(Variable("X"), Variable("Y"))
	s.PutExact("X", 7)

	res := s.Solve()
	assert.Equal(t, Solved, res.Outcome)
	assert.Equal(t, Integer(7), res.Bindings["Y"])
}

func TestSolverStatePutExactConflict(t *testing.T) {
	s := NewSolverState()
	s.PutExact("X", 1)
	s.PutExact("X", 2)

	res := s.Solve()
	assert.Equal(t, Contradiction, res.Outcome)
}

func TestSolverStateChainedEqualities(t *testing.T) {
	// X + 1 = 6 and Y = X * 2 pin both variables.
	s := NewSolverState()
	s.AddEquality(NewExpr(OpAdd, Variable("X"), Integer(1)), Integer(6))
	s.AddEquality(Variable("Y"), NewExpr(OpMul, Variable("X"), Integer(2)))

	res := s.Solve()
	assert.Equal(t, Solved, res.Outcome)
	assert.Equal(t, Integer(5), res.Bindings["X"])
	assert.Equal(t, Integer(10), res.Bindings["Y"])
}

func TestSolverStateConflictingEqualities(t *testing.T) {
	s := NewSolverState()
	s.AddEquality(NewExpr(OpAdd, Variable("X"), Integer(1)), Integer(6))
	s.AddEquality(NewExpr(OpAdd, Variable("X"), Integer(1)), Integer(7))

	res := s.Solve()
	assert.Equal(t, Contradiction, res.Outcome)
}

func TestConstraintString(t *testing.T) {
	assert.Equal(t, "X = Y", Constraint{Kind: ConstraintEq, X: "X", Y: "Y"}.String())
	assert.Equal(t, "X = Y + 3", Constraint{Kind: ConstraintPlus, X: "X", Y: "Y", C: 3}.String())
	assert.Equal(t, "X = Y * 2", Constraint{Kind: ConstraintMul, X: "X", Y: "Y", C: 2}.String())
	assert.Equal(t, "X = 9 - Y", Constraint{Kind: ConstraintMinus, X: "X", Y: "Y", C: 9}.String())
}
