// Package linalg provides the dense and structured linear algebra used by the
// regression-ARIMA estimators.
//
// Dense work (QR, Cholesky, inversion) is delegated to gonum's mat package.
// The structured routines that gonum does not provide live here:
//
//   - Durbin: Levinson-Durbin solution of Yule-Walker systems
//   - ToeplitzInverse: Trench's O(n²) inversion of a symmetric Toeplitz matrix
//   - BandCholesky: Cholesky factor of a symmetric band matrix
//
// # Basic Usage
//
// Invert the covariance matrix of a stationary process:
//
//	s, err := linalg.ToeplitzInverse(acov)
//	if err != nil {
//	    // covariance is not positive definite
//	}
//
// Fit an ordinary least-squares model:
//
//	ls, err := linalg.NewLeastSquares(x, y)
//	fmt.Println(ls.Coefficients, ls.SSQ)
package linalg
