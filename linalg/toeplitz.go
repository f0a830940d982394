package linalg

import "gonum.org/v1/gonum/mat"

// Durbin solves the Yule-Walker system T y = -(r[1], ..., r[k]) where T is the
// k×k symmetric Toeplitz matrix built on r[0], ..., r[k-1] and r[0] == 1.
// It returns y together with the normalized prediction error of order k.
//
// With this sign convention y holds the coefficients of the polynomial
// 1 + y[0] B + ... + y[k-1] B^k of the fitted autoregression.
func Durbin(r []float64) ([]float64, float64, error) {
	k := len(r) - 1
	if k < 1 {
		return nil, 1, nil
	}

	y := make([]float64, k)
	z := make([]float64, k)
	y[0] = -r[1]
	beta := 1.0
	alpha := -r[1]

	for n := 1; n < k; n++ {
		beta *= 1 - alpha*alpha
		if beta <= 0 {
			return nil, 0, ErrNotPositiveDefinite
		}
		s := r[n+1]
		for i := 0; i < n; i++ {
			s += r[n-i] * y[i]
		}
		alpha = -s / beta
		for i := 0; i < n; i++ {
			z[i] = y[i] + alpha*y[n-1-i]
		}
		copy(y[:n], z[:n])
		y[n] = alpha
	}

	beta *= 1 - alpha*alpha
	if beta <= 0 {
		return nil, 0, ErrNotPositiveDefinite
	}
	return y, beta, nil
}

// ToeplitzInverse computes the inverse of the n×n symmetric Toeplitz matrix
// whose first row is acov, using Trench's algorithm.
func ToeplitzInverse(acov []float64) (*mat.SymDense, error) {
	n := len(acov)
	if n == 0 {
		return nil, ErrEmpty
	}
	g0 := acov[0]
	if g0 <= 0 {
		return nil, ErrNotPositiveDefinite
	}
	if n == 1 {
		return mat.NewSymDense(1, []float64{1 / g0}), nil
	}

	r := make([]float64, n)
	for i, v := range acov {
		r[i] = v / g0
	}

	y, _, err := Durbin(r)
	if err != nil {
		return nil, err
	}
	// Durbin on r[0..n-1] solves the (n-1)×(n-1) system.
	s := 1.0
	for i := 0; i < n-1; i++ {
		s += r[i+1] * y[i]
	}
	if s <= 0 {
		return nil, ErrNotPositiveDefinite
	}
	gamma := 1 / s

	v := make([]float64, n-1)
	for i := range v {
		v[i] = gamma * y[n-2-i]
	}

	// b holds the entries with i <= j and i+j <= n-1; the rest follows from
	// symmetry and persymmetry.
	b := make([]float64, n*n)
	b[0] = gamma
	for j := 1; j < n; j++ {
		b[j] = v[n-j-1]
	}
	for i := 1; i <= (n-1)/2; i++ {
		for j := i; j < n-i; j++ {
			b[i*n+j] = b[(i-1)*n+j-1] + (v[n-j-1]*v[n-i-1]-v[i-1]*v[j-1])/gamma
		}
	}

	inv := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			var x float64
			if i+j <= n-1 {
				x = b[i*n+j]
			} else {
				x = b[(n-1-j)*n+n-1-i]
			}
			inv.SetSym(i, j, x/g0)
		}
	}
	return inv, nil
}
