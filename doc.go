// Package goregarima fits regression-ARIMA models and detects outliers in
// time series.
//
// The engine estimates a seasonal ARIMA model with regression effects by
// generalized least squares, then searches additive outliers, level shifts,
// transitory changes and seasonal outliers, adding the most significant ones
// and removing those that lose significance until the outlier set is stable.
//
// # Quick Start
//
// Detect outliers in a monthly series with the airline model:
//
//	problem := regarima.NewProblem(series.Values, arima.Airline(12))
//	det, _ := outliers.NewDetector(outliers.MethodExact, outliers.DefaultFactories(), outliers.DefaultDetectorConfig())
//	loop := outliers.NewLoop(regarima.NewEstimator(regarima.DefaultEstimatorConfig()), det, outliers.DefaultLoopConfig())
//	if _, err := loop.Process(problem); err != nil {
//	    return err
//	}
//	for _, o := range loop.Outliers() {
//	    fmt.Println(o.Name())
//	}
//
// # Packages
//
// The library is organized into the following packages:
//
//   - linalg: Toeplitz solvers, banded Cholesky and least squares kernels
//   - arima: ARIMA specifications, lag polynomials and ARMA filters
//   - optim: Levenberg-Marquardt and BFGS minimizers
//   - regarima: GLS estimation of regression-ARIMA models
//   - outliers: outlier factories, detectors and the selection loop
//   - stats: autocorrelation, residual diagnostics and robust scale
//   - timeseries: series container and CSV loading
//
// The demo command runs the whole pipeline on a CSV file.
package goregarima
