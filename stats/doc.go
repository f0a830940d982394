// Package stats provides statistical functions for model residuals.
//
// This package includes autocorrelation functions, diagnostic tests for
// fitted regression-ARIMA models and robust scale estimation for outlier
// statistics.
//
// # Autocorrelation Functions
//
// Analyze autocorrelation patterns:
//
//	// Autocorrelation Function
//	acf := stats.ACF(residuals, 20)
//
//	// ACF with confidence bounds
//	acfResult := stats.ACFWithConfidence(residuals, 20)
//	significant := stats.SignificantLags(acfResult.Values, acfResult.ConfBounds)
//
// # Residual Diagnostics
//
// Test residuals for autocorrelation:
//
//	// Ljung-Box test for autocorrelation
//	lb := stats.LjungBox(residuals, 24, p+q)
//	if lb.PValue > 0.05 {
//	    // Residuals are white noise (good)
//	}
//
//	// Durbin-Watson test
//	dw := stats.DurbinWatson(residuals)
//
// # Robust Scale
//
// Estimate a standard deviation that ignores a few large values:
//
//	// Median absolute value / Φ⁻¹(0.75)
//	sigma := stats.RobustScale(residuals, stats.DefaultScalePercentile)
package stats
