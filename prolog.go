// Package prolog is an embeddable miniature logic-programming runtime:
// a Prolog-like clause database with two resolution strategies, integer
// range constraints, and deferred arithmetic.
//
// The root package is a string-in, terms-out convenience layer; the full
// machinery lives in the engine package.
package prolog

import (
	"github.com/sorakumo/prolog/engine"
)

// Convenience aliases so embedders rarely need to import engine directly.
type (
	Term         = engine.Term
	Clause       = engine.Clause
	TraceStep    = engine.TraceStep
	Substitution = engine.Substitution
)

// Solution maps each variable of a query to the term it resolved to in
// one derivation.
type Solution map[string]Term

// Interpreter ties the parser, the clause database, and both resolution
// strategies together. Not safe for concurrent use.
type Interpreter struct {
	// DB is the clause database queries run against.
	DB *engine.Database
	// Solver runs exhaustive queries; its MaxDepth is adjustable.
	Solver *engine.Solver

	rewriter *engine.Rewriter
}

// New returns an interpreter with an empty database.
func New() *Interpreter {
	db := engine.NewDatabase()
	return &Interpreter{
		DB:       db,
		Solver:   engine.NewSolver(db),
		rewriter: engine.NewRewriter(db),
	}
}

// Consult parses source text and adds its facts and rules to the
// database.
func (i *Interpreter) Consult(src string) error {
	return i.DB.Consult(src)
}

// Execute resolves a query with the rewriting executor: the first clause
// whose head unifies with each goal wins and there is no backtracking.
// It returns the fully resolved goal buffer of the single derivation.
func (i *Interpreter) Execute(query string) ([]Term, error) {
	goals, err := engine.ParseQuery(query)
	if err != nil {
		return nil, err
	}
	return i.rewriter.Execute(goals)
}

// ExecuteWithTrace is Execute with a step-by-step record of the
// derivation: the goal selected, the clause matched, and the goals it
// introduced, per step.
func (i *Interpreter) ExecuteWithTrace(query string) ([]Term, []TraceStep, error) {
	goals, err := engine.ParseQuery(query)
	if err != nil {
		return nil, nil, err
	}
	return i.rewriter.ExecuteWithTrace(goals)
}

// Solve enumerates every derivation of the query with the DFS solver and
// returns one Solution per answer, each mapping the query's variables to
// their resolved terms.
func (i *Interpreter) Solve(query string) ([]Solution, error) {
	goals, err := engine.ParseQuery(query)
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	var vars []string
	for _, g := range goals {
		for _, name := range engine.FreeVariables(g) {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			vars = append(vars, name)
		}
	}

	subs, err := i.Solver.Solve(goals)
	if err != nil {
		return nil, err
	}

	solutions := make([]Solution, len(subs))
	for si, sub := range subs {
		sol := make(Solution, len(vars))
		for _, name := range vars {
			sol[name] = sub.Apply(engine.Variable(name))
		}
		solutions[si] = sol
	}
	return solutions, nil
}
