package timeseries

import "math"

// Diff returns the first difference s[t]-s[t-1], dropping the first observation
func (s Series) Diff() Series {
	if len(s) < 2 {
		return Series{}
	}
	out := make(Series, len(s)-1)
	for i := 1; i < len(s); i++ {
		out[i-1] = Point{Time: s[i].Time, Value: s[i].Value - s[i-1].Value}
	}
	return out
}

// PctChange returns (s[t]-s[t-1]) / (s[t-1]+offset), dropping the first observation.
// A zero denominator yields NaN.
func (s Series) PctChange(offset float64) Series {
	if len(s) < 2 {
		return Series{}
	}
	out := make(Series, len(s)-1)
	for i := 1; i < len(s); i++ {
		base := s[i-1].Value + offset
		value := math.NaN()
		if base != 0 {
			value = (s[i].Value - s[i-1].Value) / base
		}
		out[i-1] = Point{Time: s[i].Time, Value: value}
	}
	return out
}

// Mul multiplies two aligned series element-wise
func (s Series) Mul(other Series) (Series, error) {
	if err := s.Aligned(other); err != nil {
		return nil, err
	}
	out := make(Series, len(s))
	for i := range s {
		out[i] = Point{Time: s[i].Time, Value: s[i].Value * other[i].Value}
	}
	return out, nil
}

// Sub subtracts other from s element-wise
func (s Series) Sub(other Series) (Series, error) {
	if err := s.Aligned(other); err != nil {
		return nil, err
	}
	out := make(Series, len(s))
	for i := range s {
		out[i] = Point{Time: s[i].Time, Value: s[i].Value - other[i].Value}
	}
	return out, nil
}

// CumSum returns the running total. NaN observations contribute nothing.
func (s Series) CumSum() Series {
	out := make(Series, len(s))
	total := 0.0
	for i, p := range s {
		if !math.IsNaN(p.Value) {
			total += p.Value
		}
		out[i] = Point{Time: p.Time, Value: total}
	}
	return out
}

// CumMax returns the running maximum. NaN observations are skipped; leading NaNs stay NaN.
func (s Series) CumMax() Series {
	out := make(Series, len(s))
	peak := math.NaN()
	for i, p := range s {
		if !math.IsNaN(p.Value) && (math.IsNaN(peak) || p.Value > peak) {
			peak = p.Value
		}
		out[i] = Point{Time: p.Time, Value: peak}
	}
	return out
}

// Min returns the smallest non-NaN value
func (s Series) Min() (float64, error) {
	if len(s) == 0 {
		return math.NaN(), ErrEmpty
	}
	low := math.NaN()
	for _, p := range s {
		if math.IsNaN(p.Value) {
			continue
		}
		if math.IsNaN(low) || p.Value < low {
			low = p.Value
		}
	}
	return low, nil
}

// NanMean returns the mean of non-NaN values, NaN when there are none
func (s Series) NanMean() float64 {
	sum := 0.0
	n := 0
	for _, p := range s {
		if math.IsNaN(p.Value) {
			continue
		}
		sum += p.Value
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// NanStd returns the population standard deviation of non-NaN values
func (s Series) NanStd() float64 {
	mean := s.NanMean()
	if math.IsNaN(mean) {
		return math.NaN()
	}
	variance := 0.0
	n := 0
	for _, p := range s {
		if math.IsNaN(p.Value) {
			continue
		}
		diff := p.Value - mean
		variance += diff * diff
		n++
	}
	return math.Sqrt(variance / float64(n))
}

// AbsDiffSum returns the sum of |s[t]-s[t-1]|, skipping NaN steps
func (s Series) AbsDiffSum() float64 {
	total := 0.0
	for _, p := range s.Diff() {
		if math.IsNaN(p.Value) {
			continue
		}
		total += math.Abs(p.Value)
	}
	return total
}

// RollingMean returns the trailing mean over window observations. The first
// window-1 values are NaN.
func (s Series) RollingMean(window int) Series {
	out := make(Series, len(s))
	sum := 0.0
	for i, p := range s {
		sum += p.Value
		if i >= window {
			sum -= s[i-window].Value
		}
		value := math.NaN()
		if window > 0 && i >= window-1 {
			value = sum / float64(window)
		}
		out[i] = Point{Time: p.Time, Value: value}
	}
	return out
}

// RollingStd returns the trailing population standard deviation over window observations
func (s Series) RollingStd(window int) Series {
	out := make(Series, len(s))
	for i, p := range s {
		value := math.NaN()
		if window > 0 && i >= window-1 {
			value = s.Slice(i-window+1, i+1).NanStd()
		}
		out[i] = Point{Time: p.Time, Value: value}
	}
	return out
}

// Shift lags the series by n observations, filling the head with fill
func (s Series) Shift(n int, fill float64) Series {
	out := make(Series, len(s))
	for i, p := range s {
		value := fill
		if i-n >= 0 && i-n < len(s) {
			value = s[i-n].Value
		}
		out[i] = Point{Time: p.Time, Value: value}
	}
	return out
}
