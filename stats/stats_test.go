package stats

import (
	"math"
	"testing"
)

func TestACF(t *testing.T) {
	// Create a simple AR(1) process
	n := 100
	phi := 0.8
	values := make([]float64, n)
	values[0] = 0
	for i := 1; i < n; i++ {
		values[i] = phi*values[i-1] + (float64(i%10)-5)/10
	}

	acf := ACF(values, 10)

	if acf == nil {
		t.Fatal("ACF returned nil")
	}

	// ACF at lag 0 should be 1
	if math.Abs(acf[0]-1.0) > 1e-10 {
		t.Errorf("ACF at lag 0 should be 1, got %f", acf[0])
	}

	if acf[1] < 0.5 {
		t.Errorf("ACF at lag 1 should be strongly positive for AR(1) with phi=0.8, got %f", acf[1])
	}
}

func TestACFConstant(t *testing.T) {
	if acf := ACF([]float64{2, 2, 2, 2}, 2); acf != nil {
		t.Errorf("Expected nil ACF for a constant series, got %v", acf)
	}
	if acf := ACF(nil, 2); acf != nil {
		t.Errorf("Expected nil ACF for an empty series, got %v", acf)
	}
}

func TestACFWithConfidence(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i) + math.Sin(float64(i)/10)
	}

	result := ACFWithConfidence(values, 20)

	if result == nil {
		t.Fatal("ACFWithConfidence returned nil")
	}

	// Confidence bounds should be approximately 1.96/sqrt(n)
	expected := 1.96 / math.Sqrt(100)
	if math.Abs(result.ConfBounds-expected) > 0.01 {
		t.Errorf("Expected confidence bounds ~%f, got %f", expected, result.ConfBounds)
	}
	if len(result.Lags) != 21 {
		t.Errorf("Expected 21 lags, got %d", len(result.Lags))
	}
}

func TestSignificantLags(t *testing.T) {
	values := []float64{1.0, 0.5, 0.3, 0.1, 0.05, -0.2, -0.5}
	confBound := 0.15

	significant := SignificantLags(values, confBound)

	// Should include lags 1, 2, 5, 6 (values > 0.15 or < -0.15, excluding lag 0)
	expected := []int{1, 2, 5, 6}
	if len(significant) != len(expected) {
		t.Fatalf("Expected %d significant lags, got %d", len(expected), len(significant))
	}
	for i := range expected {
		if significant[i] != expected[i] {
			t.Errorf("Expected lag %d at position %d, got %d", expected[i], i, significant[i])
		}
	}
}

func TestLjungBox(t *testing.T) {
	n := 100
	whiteNoise := make([]float64, n)
	state := uint64(7)
	for i := range whiteNoise {
		state = state*6364136223846793005 + 1442695040888963407
		whiteNoise[i] = float64(state>>11)/float64(1<<53) - 0.5
	}

	result := LjungBox(whiteNoise, 10, 0)
	if result == nil {
		t.Fatal("LjungBox returned nil")
	}
	if result.PValue < 0 || result.PValue > 1 {
		t.Errorf("P-value out of range: %f", result.PValue)
	}

	t.Logf("Ljung-Box - Q: %f, P-Value: %f, DOF: %d",
		result.Statistic, result.PValue, result.DOF)

	// Autocorrelated series should fail
	autocorrelated := make([]float64, n)
	for i := 1; i < n; i++ {
		autocorrelated[i] = 0.9*autocorrelated[i-1] + whiteNoise[i]
	}

	result2 := LjungBox(autocorrelated, 10, 0)
	if result2 == nil {
		t.Fatal("LjungBox returned nil for autocorrelated data")
	}
	if result2.PValue > 0.01 {
		t.Errorf("Expected significant autocorrelation, p-value %f", result2.PValue)
	}
	if result2.Statistic <= result.Statistic {
		t.Errorf("Expected larger Q for autocorrelated data: %f <= %f", result2.Statistic, result.Statistic)
	}

	if LjungBox(whiteNoise[:5], 10, 0) != nil {
		t.Error("Expected nil for fewer than 10 observations")
	}
}

func TestLjungBoxDegreesOfFreedom(t *testing.T) {
	values := make([]float64, 50)
	for i := range values {
		values[i] = math.Sin(float64(i) * 1.3)
	}
	result := LjungBox(values, 12, 2)
	if result == nil {
		t.Fatal("LjungBox returned nil")
	}
	if result.DOF != 10 {
		t.Errorf("Expected 10 degrees of freedom, got %d", result.DOF)
	}
}

func TestDurbinWatson(t *testing.T) {
	tests := []struct {
		name      string
		residuals []float64
		expected  float64
	}{
		{
			name:      "alternating",
			residuals: []float64{1, -1, 1, -1, 1, -1, 1, -1},
			expected:  3.5,
		},
		{
			name:      "positive autocorrelation",
			residuals: []float64{1, 1, 1, 1, -1, -1, -1, -1},
			expected:  0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DurbinWatson(tt.residuals)
			if result == nil {
				t.Fatal("DurbinWatson returned nil")
			}
			if math.Abs(result.Statistic-tt.expected) > 1e-12 {
				t.Errorf("Expected DW %f, got %f", tt.expected, result.Statistic)
			}
		})
	}
}

func TestRobustScale(t *testing.T) {
	// Symmetric values whose median absolute value is 0.6745 scale to 1.
	values := []float64{-2, -0.6744897501960817, 0.1, 0.6744897501960817, 3}
	got := RobustScale(values, DefaultScalePercentile)
	if math.Abs(got-1) > 1e-9 {
		t.Errorf("Expected scale 1, got %f", got)
	}

	// NaN values are ignored.
	withNaN := append([]float64{math.NaN()}, values...)
	if s := RobustScale(withNaN, DefaultScalePercentile); math.Abs(s-got) > 1e-12 {
		t.Errorf("NaN should be ignored: got %f, want %f", s, got)
	}

	if !math.IsNaN(RobustScale(nil, 0.5)) {
		t.Error("Expected NaN for empty input")
	}
	if !math.IsNaN(RobustScale(values, 1)) {
		t.Error("Expected NaN for percentile 1")
	}
}

func TestRobustScaleIsResistant(t *testing.T) {
	values := make([]float64, 101)
	for i := range values {
		values[i] = float64(i-50) / 50
	}
	base := RobustScale(values, DefaultScalePercentile)
	values[10] = 1000
	if s := RobustScale(values, DefaultScalePercentile); math.Abs(s-base) > 0.05 {
		t.Errorf("Single large value moved the scale from %f to %f", base, s)
	}
}
