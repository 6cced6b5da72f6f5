package optimizer

import (
	"fmt"

	"github.com/yourusername/vector-bt/internal/config"
	"github.com/yourusername/vector-bt/internal/strategy"
)

// Param is one named list of candidate values
type Param struct {
	Name   string
	Values []any
}

// Grid is an ordered parameter search space. Order matters: the first
// parameter varies slowest during enumeration.
type Grid []Param

// GridFromConfig converts the configured grid list, keeping its order
func GridFromConfig(params []config.GridParamConfig) Grid {
	grid := make(Grid, 0, len(params))
	for _, p := range params {
		values := make([]any, len(p.Values))
		copy(values, p.Values)
		grid = append(grid, Param{Name: p.Name, Values: values})
	}
	return grid
}

// Validate checks parameter names
func (g Grid) Validate() error {
	seen := make(map[string]bool, len(g))
	for i, p := range g {
		if p.Name == "" {
			return fmt.Errorf("%w: parameter %d has no name", ErrInvalidGrid, i)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: parameter %q appears twice", ErrInvalidGrid, p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

// Size returns the number of combinations
func (g Grid) Size() int {
	size := 1
	for _, p := range g {
		size *= len(p.Values)
	}
	return size
}

// Names returns the parameter names in grid order
func (g Grid) Names() []string {
	names := make([]string, len(g))
	for i, p := range g {
		names[i] = p.Name
	}
	return names
}

// Combinations enumerates the Cartesian product with the last parameter
// varying fastest. An empty grid yields a single empty combination.
func (g Grid) Combinations() ([]strategy.Params, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	for _, p := range g {
		if len(p.Values) == 0 {
			return nil, fmt.Errorf("%w: parameter %q has no values", ErrEmptySearchSpace, p.Name)
		}
	}

	combos := make([]strategy.Params, 0, g.Size())
	idx := make([]int, len(g))
	for {
		params := make(strategy.Params, len(g))
		for i, p := range g {
			params[p.Name] = p.Values[idx[i]]
		}
		combos = append(combos, params)

		// odometer increment from the rightmost parameter
		i := len(g) - 1
		for ; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(g[i].Values) {
				break
			}
			idx[i] = 0
		}
		if i < 0 {
			return combos, nil
		}
	}
}
