package arima

import (
	"fmt"

	"github.com/sartorproj/goregarima/linalg"
)

// Filter is the exact whitening filter of a stationary ARMA process observed
// at n consecutive times. Apply returns L⁻¹w where LLᵀ is the covariance
// matrix of w for a unit innovation variance.
//
// The observations are first transformed to z_t = w_t for t < p and
// z_t = ar(B) w_t afterwards, whose covariance matrix is banded with
// bandwidth max(p, q), then whitened with a banded Cholesky factor.
type Filter struct {
	ar   Polynomial
	n, p int
	chol *linalg.BandCholesky
}

// NewFilter prepares the filter for series of length n.
func NewFilter(ar, ma Polynomial, n int) (*Filter, error) {
	if n <= 0 {
		return nil, linalg.ErrEmpty
	}
	if len(ar) == 0 {
		ar = One()
	}
	if len(ma) == 0 {
		ma = One()
	}
	p := len(ar) - 1
	q := len(ma) - 1

	gw, err := Autocovariance(ar, ma, max(p, 1))
	if err != nil {
		return nil, err
	}
	gma := MAAutocovariance(ma)
	psi := PsiWeights(ar, ma, p+q+1)

	at := func(i, j int) float64 {
		switch {
		case i < p:
			return gw[i-j]
		case j >= p:
			if h := i - j; h <= q {
				return gma[h]
			}
			return 0
		default:
			// Cov(w_j, ar(B) w_i) = Σ_k ma[k] ψ[j-i+k].
			s := 0.0
			for k := i - j; k <= q; k++ {
				s += ma[k] * psi[j-i+k]
			}
			return s
		}
	}

	chol, err := linalg.NewBandCholesky(n, max(p, q), at)
	if err != nil {
		return nil, fmt.Errorf("arma filter: %w", err)
	}
	return &Filter{ar: ar, n: n, p: p, chol: chol}, nil
}

// Len returns the series length the filter was built for.
func (f *Filter) Len() int {
	return f.n
}

// Apply returns the standardized innovations of w. It panics if len(w)
// differs from Len.
func (f *Filter) Apply(w []float64) []float64 {
	if len(w) != f.n {
		panic(linalg.ErrDimensionMismatch)
	}
	z := make([]float64, f.n)
	for t := range z {
		if t < f.p {
			z[t] = w[t]
			continue
		}
		s := 0.0
		for i, c := range f.ar {
			s += c * w[t-i]
		}
		z[t] = s
	}
	f.chol.SolveLower(z)
	return z
}

// LogDet returns the logarithm of the determinant of the covariance matrix
// of the observations for a unit innovation variance.
func (f *Filter) LogDet() float64 {
	return f.chol.LogDet()
}
