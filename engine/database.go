package engine

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// procedureIndicator identifies a predicate by functor name and arity.
type procedureIndicator struct {
	name  string
	arity int
}

func (pi procedureIndicator) String() string {
	return fmt.Sprintf("%s/%d", pi.name, pi.arity)
}

func indicatorOf(t Term) (procedureIndicator, bool) {
	s, ok := t.(Struct)
	if !ok {
		return procedureIndicator{}, false
	}
	return procedureIndicator{name: s.Functor, arity: len(s.Args)}, true
}

// Database is an ordered collection of clauses, indexed by procedure.
// Program order is preserved both within a procedure and overall.
type Database struct {
	procs *orderedmap.OrderedMap[procedureIndicator, []Clause]
	all   []Clause
}

// NewDatabase returns an empty database.
func NewDatabase() *Database {
	return &Database{procs: orderedmap.New[procedureIndicator, []Clause]()}
}

// Add appends a clause. The head must be a struct (an atom counts as a
// 0-arity struct).
func (db *Database) Add(c Clause) error {
	pi, ok := indicatorOf(c.Head)
	if !ok {
		return fmt.Errorf("clause head must be a struct, got %s", c.Head)
	}
	cs, _ := db.procs.Get(pi)
	db.procs.Set(pi, append(cs, c))
	db.all = append(db.all, c)
	return nil
}

// Lookup returns the clauses of the procedure goal refers to, in program
// order. A goal that names no procedure (a variable, say) returns every
// clause, since any head might match it.
func (db *Database) Lookup(goal Term) []Clause {
	pi, ok := indicatorOf(goal)
	if !ok {
		return db.all
	}
	cs, _ := db.procs.Get(pi)
	return cs
}

// Clauses returns every clause in program order.
func (db *Database) Clauses() []Clause { return db.all }

// Len reports the number of clauses.
func (db *Database) Len() int { return len(db.all) }

// Consult parses source text and loads its clauses.
func (db *Database) Consult(src string) error {
	clauses, err := ParseProgram(src)
	if err != nil {
		return err
	}
	for _, c := range clauses {
		if err := db.Add(c); err != nil {
			return err
		}
	}
	return nil
}
