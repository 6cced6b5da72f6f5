package optimizer

import (
	"errors"
	"fmt"

	"github.com/yourusername/vector-bt/internal/strategy"
)

var (
	// ErrInvalidCategory is returned before any evaluation when the metric name is unknown
	ErrInvalidCategory = errors.New("invalid optimization category")
	// ErrEmptySearchSpace is returned when a parameter has no candidate values
	ErrEmptySearchSpace = errors.New("empty search space")
	// ErrInvalidGrid is returned for unnamed or duplicated grid parameters
	ErrInvalidGrid = errors.New("invalid parameter grid")
)

// EvaluationError records why one parameter combination was skipped
type EvaluationError struct {
	Index  int
	Params strategy.Params
	Err    error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("combination %d %v: %v", e.Index, map[string]any(e.Params), e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}
