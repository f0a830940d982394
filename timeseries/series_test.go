package timeseries

import (
	"math"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	s := New(values)

	if s.Len() != 5 {
		t.Errorf("Expected length 5, got %d", s.Len())
	}

	for i, v := range s.Values {
		if v != values[i] {
			t.Errorf("Expected value %f at index %d, got %f", values[i], i, v)
		}
	}
}

func TestMean(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"simple", []float64{1, 2, 3, 4, 5}, 3.0},
		{"single", []float64{5}, 5.0},
		{"negative", []float64{-1, -2, -3}, -2.0},
		{"mixed", []float64{-1, 0, 1}, 0.0},
		{"empty", []float64{}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.values)
			result := s.Mean()
			if math.Abs(result-tt.expected) > 1e-10 {
				t.Errorf("Expected mean %f, got %f", tt.expected, result)
			}
		})
	}
}

func TestVariance(t *testing.T) {
	s := New([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	expected := 4.571428571428571

	result := s.Variance()
	if math.Abs(result-expected) > 1e-10 {
		t.Errorf("Expected variance %f, got %f", expected, result)
	}
}

func TestStd(t *testing.T) {
	s := New([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	expected := math.Sqrt(4.571428571428571)

	result := s.Std()
	if math.Abs(result-expected) > 1e-10 {
		t.Errorf("Expected std %f, got %f", expected, result)
	}
}

func TestMinMax(t *testing.T) {
	s := New([]float64{5, 2, 8, 1, 9, 3})

	if s.Min() != 1 {
		t.Errorf("Expected min 1, got %f", s.Min())
	}

	if s.Max() != 9 {
		t.Errorf("Expected max 9, got %f", s.Max())
	}
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"odd", []float64{1, 3, 5}, 3.0},
		{"even", []float64{1, 2, 3, 4}, 2.5},
		{"single", []float64{5}, 5.0},
		{"unsorted", []float64{5, 1, 3}, 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.values)
			result := s.Median()
			if math.Abs(result-tt.expected) > 1e-10 {
				t.Errorf("Expected median %f, got %f", tt.expected, result)
			}
		})
	}
}

func TestSlice(t *testing.T) {
	s := New([]float64{1, 2, 3, 4, 5})
	sliced := s.Slice(1, 4)

	expected := []float64{2, 3, 4}
	if len(sliced.Values) != len(expected) {
		t.Errorf("Expected length %d, got %d", len(expected), len(sliced.Values))
	}

	for i, v := range sliced.Values {
		if math.Abs(v-expected[i]) > 1e-10 {
			t.Errorf("Expected %f at index %d, got %f", expected[i], i, v)
		}
	}
}

func TestCopy(t *testing.T) {
	s := New([]float64{1, 2, 3})
	copied := s.Copy()

	// Modify original
	s.Values[0] = 100

	// Copy should be unchanged
	if copied.Values[0] != 1 {
		t.Errorf("Copy was modified when original changed")
	}
}

func TestMissing(t *testing.T) {
	s := New([]float64{1, math.NaN(), 3, math.NaN(), 5})

	if !s.HasMissing() {
		t.Fatal("Expected missing observations")
	}
	missing := s.Missing()
	if len(missing) != 2 || missing[0] != 1 || missing[1] != 3 {
		t.Errorf("Expected missing [1 3], got %v", missing)
	}

	if s.Mean() != 3 {
		t.Errorf("Expected mean of observed values 3, got %f", s.Mean())
	}
	if s.Median() != 3 {
		t.Errorf("Expected median 3, got %f", s.Median())
	}

	filled := s.Filled(0)
	if filled[1] != 0 || filled[3] != 0 || filled[4] != 5 {
		t.Errorf("Unexpected filled values %v", filled)
	}
	if !math.IsNaN(s.Values[1]) {
		t.Error("Filled must not modify the series")
	}

	if New([]float64{1, 2}).HasMissing() {
		t.Error("Expected no missing observations")
	}
}

func TestInferPeriod(t *testing.T) {
	tests := []struct {
		name     string
		step     func(i int) time.Time
		expected int
	}{
		{"monthly", func(i int) time.Time { return time.Date(2020, time.Month(1+i), 1, 0, 0, 0, 0, time.UTC) }, 12},
		{"quarterly", func(i int) time.Time { return time.Date(2020, time.Month(1+3*i), 1, 0, 0, 0, 0, time.UTC) }, 4},
		{"daily", func(i int) time.Time { return time.Date(2020, 1, 1+i, 0, 0, 0, 0, time.UTC) }, 7},
		{"hourly", func(i int) time.Time { return time.Date(2020, 1, 1, i, 0, 0, 0, time.UTC) }, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timestamps := make([]time.Time, 10)
			for i := range timestamps {
				timestamps[i] = tt.step(i)
			}
			s, err := NewWithTimestamps(timestamps, make([]float64, 10))
			if err != nil {
				t.Fatal(err)
			}
			if got := s.InferPeriod(); got != tt.expected {
				t.Errorf("Expected period %d, got %d", tt.expected, got)
			}
		})
	}
}
