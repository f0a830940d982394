// Package optim minimizes nonlinear sums of squares.
//
// A Problem supplies the residual vector r(x); minimizers look for the x
// minimizing Σ r_i(x)². Residual functions may reject points outside their
// domain by returning false.
//
//	p := optim.Problem{Dim: 2, Len: len(t), Residuals: func(dst, x []float64) bool {
//	    for i := range t {
//	        dst[i] = y[i] - x[0]*math.Exp(x[1]*t[i])
//	    }
//	    return true
//	}}
//	res, err := optim.LevenbergMarquardt{}.Minimize(p, []float64{1, 0}, optim.DefaultSettings())
//
// LevenbergMarquardt is the default method. BFGS wraps the quasi-Newton
// minimizer of gonum/optimize. Both report the Gauss-Newton curvature JᵀJ at
// the solution, from which parameter covariances are derived.
package optim
