// Package arima implements seasonal ARIMA model specifications and the ARMA
// machinery used by regression-ARIMA estimation.
//
// A SARIMA (p,d,q)(P,D,Q)m model is written in backshift-operator form
//
//	Φ(B) Φs(B^m) (1-B)^d (1-B^m)^D y_t = Θ(B) Θs(B^m) ε_t
//
// where every polynomial starts with 1, e.g. Φ(B) = 1 + φ1 B + ... + φp B^p.
// With this convention a unit root at B = 1 shows up as coefficients summing
// to -1.
//
// # Specifications
//
// Create a specification and read its operators:
//
//	spec := arima.Airline(12)         // (0,1,1)(0,1,1)12
//	ar := spec.AR()                    // Φ(B)Φs(B^12)
//	ma := spec.MA()                    // Θ(B)Θs(B^12)
//	delta := spec.Differencing()       // (1-B)(1-B^12)
//
//	custom := arima.New(arima.Order{P: 1, D: 1, Q: 1})
//	custom.ARCoeffs[0] = -0.5
//
// Specifications are values: estimation returns a new Spec and Clone gives a
// deep copy.
//
// # Stationarity
//
// Coefficients map to partial autocorrelations and back:
//
//	r, ok := arima.ToPACF(spec.MACoeffs)  // ok is false if not invertible
//	c := arima.FromPACF(r)                // always stable when |r[i]| < 1
//
// # Autocovariances and Filtering
//
//	acov, err := arima.Autocovariance(ar, ma, 24)
//
//	f, err := arima.NewFilter(ar, ma, len(w))
//	e := f.Apply(w)                        // standardized innovations
//	logDet := f.LogDet()                   // log |Σ| for unit innovation variance
//
// The filter is exact: Apply returns L⁻¹w for the Cholesky factor L of the
// covariance matrix of w, computed in O(n·max(p,q)²).
package arima
