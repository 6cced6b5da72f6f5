// Package timeseries provides the timestamped float series used by the backtest engine.
package timeseries

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

var (
	// ErrMisaligned is returned when two series do not share an identical index
	ErrMisaligned = errors.New("series index mismatch")
	// ErrUnordered is returned when timestamps are not strictly increasing
	ErrUnordered = errors.New("timestamps must be strictly increasing")
	// ErrEmpty is returned by reductions over an empty series
	ErrEmpty = errors.New("series is empty")
)

// Point is a single observation
type Point struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// Series is an ordered sequence of observations
type Series []Point

// New builds a series from parallel slices of timestamps and values
func New(times []time.Time, values []float64) (Series, error) {
	if len(times) != len(values) {
		return nil, fmt.Errorf("%w: %d timestamps, %d values", ErrMisaligned, len(times), len(values))
	}
	s := make(Series, len(times))
	for i := range times {
		s[i] = Point{Time: times[i], Value: values[i]}
	}
	return s, s.Validate()
}

// FromValues builds a series on a synthetic index starting at start and spaced by step
func FromValues(start time.Time, step time.Duration, values ...float64) Series {
	s := make(Series, len(values))
	for i, v := range values {
		s[i] = Point{Time: start.Add(time.Duration(i) * step), Value: v}
	}
	return s
}

// Validate checks that timestamps are strictly increasing
func (s Series) Validate() error {
	for i := 1; i < len(s); i++ {
		if !s[i].Time.After(s[i-1].Time) {
			return fmt.Errorf("%w: index %d (%s) after %s", ErrUnordered, i, s[i].Time.Format(time.RFC3339), s[i-1].Time.Format(time.RFC3339))
		}
	}
	return nil
}

// Len returns the number of observations
func (s Series) Len() int {
	return len(s)
}

// Values returns a copy of the observation values
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// Times returns a copy of the index
func (s Series) Times() []time.Time {
	out := make([]time.Time, len(s))
	for i, p := range s {
		out[i] = p.Time
	}
	return out
}

// Last returns the final observation value
func (s Series) Last() (float64, error) {
	if len(s) == 0 {
		return math.NaN(), ErrEmpty
	}
	return s[len(s)-1].Value, nil
}

// Slice returns the sub-series [from, to)
func (s Series) Slice(from, to int) Series {
	if from < 0 {
		from = 0
	}
	if to > len(s) {
		to = len(s)
	}
	if from >= to {
		return Series{}
	}
	out := make(Series, to-from)
	copy(out, s[from:to])
	return out
}

// Drop returns the series without its first n observations
func (s Series) Drop(n int) Series {
	return s.Slice(n, len(s))
}

// Aligned reports an error unless other shares this series' index exactly
func (s Series) Aligned(other Series) error {
	if len(s) != len(other) {
		return fmt.Errorf("%w: length %d vs %d", ErrMisaligned, len(s), len(other))
	}
	for i := range s {
		if !s[i].Time.Equal(other[i].Time) {
			return fmt.Errorf("%w: index %d has %s vs %s", ErrMisaligned, i, s[i].Time.Format(time.RFC3339), other[i].Time.Format(time.RFC3339))
		}
	}
	return nil
}

// Map applies fn to every value, keeping the index
func (s Series) Map(fn func(float64) float64) Series {
	out := make(Series, len(s))
	for i, p := range s {
		out[i] = Point{Time: p.Time, Value: fn(p.Value)}
	}
	return out
}

// Equal reports whether both series have the same index and bitwise-equal values,
// treating NaN as equal to NaN.
func (s Series) Equal(other Series) bool {
	if s.Aligned(other) != nil {
		return false
	}
	for i := range s {
		a, b := s[i].Value, other[i].Value
		if a == b || (math.IsNaN(a) && math.IsNaN(b)) {
			continue
		}
		return false
	}
	return true
}

// ToCSV exports the series to a CSV string
func (s Series) ToCSV() string {
	var buf bytes.Buffer
	buf.WriteString("time,value\n")
	for _, p := range s {
		buf.WriteString(p.Time.Format(time.RFC3339))
		buf.WriteString(",")
		buf.WriteString(strconv.FormatFloat(p.Value, 'f', 6, 64))
		buf.WriteString("\n")
	}
	return buf.String()
}

// MarshalJSON encodes non-finite values as null
func (p Point) MarshalJSON() ([]byte, error) {
	type point struct {
		Time  time.Time `json:"time"`
		Value *float64  `json:"value"`
	}
	out := point{Time: p.Time}
	if !math.IsNaN(p.Value) && !math.IsInf(p.Value, 0) {
		v := p.Value
		out.Value = &v
	}
	return json.Marshal(out)
}

// ToJSON exports the series to a JSON string
func (s Series) ToJSON() string {
	data, _ := json.Marshal(s)
	return string(data)
}
