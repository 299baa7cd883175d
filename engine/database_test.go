package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatabaseAddAndLookup(t *testing.T) {
	db := NewDatabase()
	assert.NoError(t, db.Add(Fact(NewStruct("parent", Atom("tom"), Atom("bob")))))
	assert.NoError(t, db.Add(Fact(NewStruct("parent", Atom("bob"), Atom("liz")))))
	assert.NoError(t, db.Add(Fact(NewStruct("age", Atom("tom"), Integer(60)))))

	got := db.Lookup(NewStruct("parent", Variable("A"), Variable("B")))
	assert.Len(t, got, 2)
	assert.Equal(t, Fact(NewStruct("parent", Atom("tom"), Atom("bob"))), got[0])

	assert.Len(t, db.Lookup(NewStruct("age", Variable("X"), Variable("Y"))), 1)
	assert.Empty(t, db.Lookup(NewStruct("parent", Variable("X"))))
	assert.Equal(t, 3, db.Len())
}

func TestDatabaseLookupDistinguishesArity(t *testing.T) {
	db := NewDatabase()
	assert.NoError(t, db.Add(Fact(NewStruct("p", Atom("a")))))
	assert.NoError(t, db.Add(Fact(NewStruct("p", Atom("a"), Atom("b")))))

	assert.Len(t, db.Lookup(NewStruct("p", Variable("X"))), 1)
	assert.Len(t, db.Lookup(NewStruct("p", Variable("X"), Variable("Y"))), 1)
}

func TestDatabaseVariableGoalSeesEverything(t *testing.T) {
	db := NewDatabase()
	assert.NoError(t, db.Add(Fact(NewStruct("p", Atom("a")))))
	assert.NoError(t, db.Add(Fact(NewStruct("q", Atom("b")))))

	assert.Len(t, db.Lookup(Variable("G")), 2)
}

func TestDatabaseRejectsNonStructHead(t *testing.T) {
	db := NewDatabase()
	assert.Error(t, db.Add(Fact(Integer(1))))
	assert.Error(t, db.Add(Fact(Variable("X"))))
}

func TestDatabaseConsult(t *testing.T) {
	db := NewDatabase()
	err := db.Consult(`
parent(tom, bob).
ancestor(X, Y) :- parent(X, Y).
`)
	assert.NoError(t, err)
	assert.Equal(t, 2, db.Len())

	// Program order is preserved across procedures.
	clauses := db.Clauses()
	assert.True(t, clauses[0].IsFact())
	assert.False(t, clauses[1].IsFact())
}

func TestDatabaseConsultSyntaxError(t *testing.T) {
	db := NewDatabase()
	err := db.Consult("parent(tom bob).")

	var serr *SyntaxError
	assert.ErrorAs(t, err, &serr)
	assert.Equal(t, 0, db.Len())
}
