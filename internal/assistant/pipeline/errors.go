package pipeline

import "errors"

var (
	// ErrEmptyQuery rejects a run with no query text.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrNoConcepts aborts a run when extraction produced no concepts and
	// the empty-concepts policy is "abort".
	ErrNoConcepts = errors.New("no search concepts extracted from query")

	// ErrNoResults means a concept's search returned zero entries. Treated
	// with the same severity as a fetch fault: the run fails fast.
	ErrNoResults = errors.New("search returned no results")
)
