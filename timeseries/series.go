// Package timeseries provides core time series data structures and operations.
package timeseries

import (
	"errors"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Series represents an equally spaced time series with timestamps and values.
// Missing observations are stored as NaN.
type Series struct {
	Timestamps []time.Time
	Values     []float64
	Name       string
	Period     int // Seasonal period, 0 when unknown
}

// New creates a new time series from values.
func New(values []float64) *Series {
	timestamps := make([]time.Time, len(values))
	base := time.Now()
	for i := range timestamps {
		timestamps[i] = base.Add(time.Duration(i) * time.Hour)
	}
	return &Series{
		Timestamps: timestamps,
		Values:     values,
	}
}

// NewWithTimestamps creates a time series with explicit timestamps.
func NewWithTimestamps(timestamps []time.Time, values []float64) (*Series, error) {
	if len(timestamps) != len(values) {
		return nil, errors.New("timestamps and values must have the same length")
	}
	return &Series{
		Timestamps: timestamps,
		Values:     values,
	}, nil
}

// Len returns the length of the series, missing observations included.
func (s *Series) Len() int {
	return len(s.Values)
}

// Missing returns the positions of the missing observations.
func (s *Series) Missing() []int {
	var idx []int
	for i, v := range s.Values {
		if math.IsNaN(v) {
			idx = append(idx, i)
		}
	}
	return idx
}

// HasMissing reports whether any observation is missing.
func (s *Series) HasMissing() bool {
	for _, v := range s.Values {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// Filled returns a copy of the values with missing observations set to fill.
func (s *Series) Filled(fill float64) []float64 {
	out := make([]float64, len(s.Values))
	for i, v := range s.Values {
		if math.IsNaN(v) {
			v = fill
		}
		out[i] = v
	}
	return out
}

// observed returns the non-missing values.
func (s *Series) observed() []float64 {
	out := make([]float64, 0, len(s.Values))
	for _, v := range s.Values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Mean calculates the arithmetic mean of the observed values.
func (s *Series) Mean() float64 {
	x := s.observed()
	if len(x) == 0 {
		return 0
	}
	return stat.Mean(x, nil)
}

// Variance calculates the variance of the observed values.
func (s *Series) Variance() float64 {
	x := s.observed()
	if len(x) < 2 {
		return 0
	}
	return stat.Variance(x, nil)
}

// Std calculates the standard deviation of the observed values.
func (s *Series) Std() float64 {
	return math.Sqrt(s.Variance())
}

// Min returns the minimum observed value.
func (s *Series) Min() float64 {
	x := s.observed()
	if len(x) == 0 {
		return math.NaN()
	}
	min := x[0]
	for _, v := range x[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// Max returns the maximum observed value.
func (s *Series) Max() float64 {
	x := s.observed()
	if len(x) == 0 {
		return math.NaN()
	}
	max := x[0]
	for _, v := range x[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// Median returns the median observed value.
func (s *Series) Median() float64 {
	sorted := s.observed()
	if len(sorted) == 0 {
		return math.NaN()
	}
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Slice returns a slice of the series from start to end (exclusive).
func (s *Series) Slice(start, end int) *Series {
	if start < 0 {
		start = 0
	}
	if end > len(s.Values) {
		end = len(s.Values)
	}
	if start >= end {
		return &Series{Values: []float64{}, Name: s.Name, Period: s.Period}
	}

	values := make([]float64, end-start)
	copy(values, s.Values[start:end])

	timestamps := make([]time.Time, len(values))
	if len(s.Timestamps) >= end {
		copy(timestamps, s.Timestamps[start:end])
	}

	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       s.Name,
		Period:     s.Period,
	}
}

// Copy creates a deep copy of the series.
func (s *Series) Copy() *Series {
	values := make([]float64, len(s.Values))
	copy(values, s.Values)

	timestamps := make([]time.Time, len(s.Timestamps))
	copy(timestamps, s.Timestamps)

	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       s.Name,
		Period:     s.Period,
	}
}

// InferPeriod guesses the seasonal period from the median spacing of the
// timestamps: 12 for monthly, 4 for quarterly, 52 for weekly, 7 for daily and
// 1 for yearly data. It returns 0 when the spacing is not recognized.
func (s *Series) InferPeriod() int {
	if len(s.Timestamps) < 2 {
		return 0
	}
	gaps := make([]float64, 0, len(s.Timestamps)-1)
	for i := 1; i < len(s.Timestamps); i++ {
		gaps = append(gaps, s.Timestamps[i].Sub(s.Timestamps[i-1]).Hours()/24)
	}
	sort.Float64s(gaps)
	days := gaps[len(gaps)/2]

	switch {
	case days >= 0.9 && days <= 1.1:
		return 7
	case days >= 6.5 && days <= 7.5:
		return 52
	case days >= 28 && days <= 31:
		return 12
	case days >= 89 && days <= 92:
		return 4
	case days >= 365 && days <= 366:
		return 1
	}
	return 0
}
