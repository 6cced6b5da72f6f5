package optimizer

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/vector-bt/internal/strategy"
)

// Evaluation is the outcome of one parameter combination
type Evaluation struct {
	Index       int
	Params      strategy.Params
	Score       float64
	Sharpe      float64
	FinalPnL    float64
	MaxDrawdown float64
	Duration    time.Duration
	Err         error
}

// Failed reports whether the combination was skipped
func (e Evaluation) Failed() bool {
	return e.Err != nil
}

// Result is the outcome of a grid search
type Result struct {
	RunID      uuid.UUID
	Category   Category
	BestParams strategy.Params
	// BestScore stays -Inf when no combination produced a comparable score
	BestScore   float64
	BestIndex   int
	Evaluations []Evaluation
	Skipped     int
	Duration    time.Duration
}

// Found reports whether any combination won
func (r *Result) Found() bool {
	return r.BestIndex >= 0
}

// Evaluated returns how many combinations produced a score
func (r *Result) Evaluated() int {
	return len(r.Evaluations) - r.Skipped
}

// Ranked returns evaluations ordered by score, best first. Ties keep
// enumeration order; NaN scores follow comparable ones and failures come last.
func (r *Result) Ranked() []Evaluation {
	ranked := make([]Evaluation, len(r.Evaluations))
	copy(ranked, r.Evaluations)
	sort.SliceStable(ranked, func(i, j int) bool {
		gi, gj := rankGroup(ranked[i]), rankGroup(ranked[j])
		if gi != gj {
			return gi < gj
		}
		if gi == 0 {
			return ranked[i].Score > ranked[j].Score
		}
		return false
	})
	return ranked
}

// Top returns the n best-ranked evaluations; n <= 0 returns all
func (r *Result) Top(n int) []Evaluation {
	ranked := r.Ranked()
	if n <= 0 || n > len(ranked) {
		return ranked
	}
	return ranked[:n]
}

// Errors returns the failures of skipped combinations in enumeration order
func (r *Result) Errors() []error {
	var errs []error
	for _, ev := range r.Evaluations {
		if ev.Err != nil {
			errs = append(errs, ev.Err)
		}
	}
	return errs
}

func rankGroup(e Evaluation) int {
	switch {
	case e.Err != nil:
		return 2
	case math.IsNaN(e.Score):
		return 1
	default:
		return 0
	}
}
