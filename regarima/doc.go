// Package regarima estimates regression models with seasonal ARIMA errors.
//
// A Problem holds the observations, the ARIMA specification and the
// regression variables. GLS fits the regression for given ARMA parameters
// through the exact whitening filter of the differenced model, and the
// Estimator searches the ARMA parameters maximizing the concentrated
// likelihood:
//
//	est := regarima.NewEstimator(regarima.DefaultEstimatorConfig())
//	res, err := est.Process(regarima.NewProblem(y, arima.Airline(12)))
//
// Missing observations are handled as additive outliers whose coefficients
// give the interpolated values.
package regarima
