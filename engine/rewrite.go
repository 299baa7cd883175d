package engine

import "strconv"

// TraceStep records one resolution step of the rewriting executor.
type TraceStep struct {
	// SelectedGoal is the goal chosen at the resolved-count boundary, as
	// it stands once the winning clause head has unified with it.
	SelectedGoal Term
	// MatchedClause is the winning clause, already renamed apart.
	MatchedClause Clause
	// NewGoals are the body goals spliced in after unification.
	NewGoals []Term
}

// Rewriter resolves a query by SLD resolution without backtracking: for
// each goal the first database clause whose head unifies wins, and a
// failure deeper in the derivation is never retried. One derivation, at
// most one answer.
type Rewriter struct {
	db      *Database
	counter int
}

// NewRewriter returns a rewriter over db.
func NewRewriter(db *Database) *Rewriter {
	return &Rewriter{db: db}
}

// fresh returns a renaming suffix for standardizing a clause apart. The
// counter belongs to this rewriter, so distinct machines never share
// renaming state.
func (rw *Rewriter) fresh() string {
	rw.counter++
	return strconv.Itoa(rw.counter)
}

// Execute resolves the query and returns the fully resolved goal buffer.
func (rw *Rewriter) Execute(query []Term) ([]Term, error) {
	return rw.run(query, nil)
}

// ExecuteWithTrace resolves the query, additionally recording every step.
func (rw *Rewriter) ExecuteWithTrace(query []Term) ([]Term, []TraceStep, error) {
	var trace []TraceStep
	buf, err := rw.run(query, &trace)
	return buf, trace, err
}

func (rw *Rewriter) run(query []Term, trace *[]TraceStep) ([]Term, error) {
	buf := make([]Term, len(query))
	copy(buf, query)

	for resolved := 0; resolved < len(buf); resolved++ {
		goal := buf[resolved]

		matched := false
		for _, c := range rw.db.Lookup(goal) {
			rc := renameClause(c, rw.fresh())

			// Speculative attempt: clone the buffer with the clause
			// body spliced in right after the goal, and unify into
			// the clone. A failed attempt leaves buf untouched.
			trial := make([]Term, 0, len(buf)+len(rc.Body))
			trial = append(trial, buf[:resolved+1]...)
			trial = append(trial, rc.Body...)
			trial = append(trial, buf[resolved+1:]...)

			if err := Unify(goal, rc.Head, trial); err != nil {
				continue
			}

			if trace != nil {
				newGoals := make([]Term, len(rc.Body))
				copy(newGoals, trial[resolved+1:resolved+1+len(rc.Body)])
				*trace = append(*trace, TraceStep{
					SelectedGoal:  trial[resolved],
					MatchedClause: rc,
					NewGoals:      newGoals,
				})
			}

			buf = trial
			matched = true
			break
		}
		if !matched {
			return nil, &RewriteError{Goal: goal}
		}
	}
	return buf, nil
}
