// Package outliers detects additive outliers, level shifts, transitory
// changes and seasonal outliers in regression-ARIMA models.
//
// A Factory builds the regression variable of one outlier type. A Detector
// computes the t-statistic of adding each (position, type) candidate to a
// fitted model; three realizations are available:
//
//   - Exact whitens each candidate with the ARMA filter and projects it on
//     the QR factor of the whitened design.
//   - Trench works with the inverse of the ARMA covariance matrix, computed
//     once, and restricts the products to the support of each candidate.
//   - Approximate ignores the regression effects and correlates filtered
//     outlier patterns with the residuals.
//
// The Loop alternates detection and estimation: it adds the most
// significant candidate while its |t| exceeds the critical value, then
// removes accepted outliers that are no longer significant.
//
//	det, _ := outliers.NewDetector(outliers.MethodExact, outliers.DefaultFactories(), outliers.DefaultDetectorConfig())
//	loop := outliers.NewLoop(regarima.NewEstimator(regarima.DefaultEstimatorConfig()), det, outliers.DefaultLoopConfig())
//	changed, err := loop.Process(problem)
package outliers
