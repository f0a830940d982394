package arima

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// PsiWeights returns the first n coefficients of the moving average
// representation ma(B)/ar(B).
func PsiWeights(ar, ma Polynomial, n int) []float64 {
	return Ratio(ma, ar, n)
}

// PiWeights returns the first n coefficients of the autoregressive
// representation ar(B)/ma(B).
func PiWeights(ar, ma Polynomial, n int) []float64 {
	return Ratio(ar, ma, n)
}

// Autocovariance returns the autocovariances at lags 0..n-1 of the stationary
// ARMA process ar(B) w_t = ma(B) ε_t with unit innovation variance.
func Autocovariance(ar, ma Polynomial, n int) ([]float64, error) {
	if n <= 0 {
		return nil, nil
	}
	if len(ar) == 0 || ar[0] != 1 {
		return nil, fmt.Errorf("%w: autoregressive polynomial must start with 1", ErrInvalidParameters)
	}
	if !IsStable(ar[1:]) {
		return nil, ErrNotStationary
	}
	p := len(ar) - 1
	q := len(ma) - 1
	if q < 0 {
		ma, q = One(), 0
	}

	// rhs[h] = Σ_{j>=h} ma[j] ψ[j-h], the covariance of ma(B)ε_t with w_{t-h}.
	psi := PsiWeights(ar, ma, q+1)
	rhs := make([]float64, q+1)
	for h := 0; h <= q; h++ {
		for j := h; j <= q; j++ {
			rhs[h] += ma[j] * psi[j-h]
		}
	}
	at := func(h int) float64 {
		if h > q {
			return 0
		}
		return rhs[h]
	}

	acov := make([]float64, max(n, p+1))
	if p == 0 {
		for h := range acov {
			acov[h] = at(h)
		}
		return acov[:n], nil
	}

	a := mat.NewDense(p+1, p+1, nil)
	b := mat.NewVecDense(p+1, nil)
	for h := 0; h <= p; h++ {
		for i := 0; i <= p; i++ {
			lag := h - i
			if lag < 0 {
				lag = -lag
			}
			a.Set(h, lag, a.At(h, lag)+ar[i])
		}
		b.SetVec(h, at(h))
	}
	var g mat.VecDense
	if err := g.SolveVec(a, b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotStationary, err)
	}
	for h := 0; h <= p; h++ {
		acov[h] = g.AtVec(h)
	}
	for h := p + 1; h < len(acov); h++ {
		s := at(h)
		for i := 1; i <= p; i++ {
			s -= ar[i] * acov[h-i]
		}
		acov[h] = s
	}
	return acov[:n], nil
}

// MAAutocovariance returns the autocovariances Σ_k ma[k] ma[k+h] for lags
// 0..deg(ma) of the pure moving average ma(B) ε_t.
func MAAutocovariance(ma Polynomial) []float64 {
	q := len(ma) - 1
	if q < 0 {
		return []float64{1}
	}
	g := make([]float64, q+1)
	for h := 0; h <= q; h++ {
		for k := 0; k+h <= q; k++ {
			g[h] += ma[k] * ma[k+h]
		}
	}
	return g
}
