package arima

import "math"

// maxPACF bounds the partial autocorrelations produced by ToPACF so the
// inverse mapping stays finite.
const maxPACF = 0.9999

// ToPACF maps the coefficients c of 1 + c[0] B + ... + c[p-1] B^p to the
// partial autocorrelations of the corresponding autoregression, using the
// step-down Levinson recursion. The second result is false when the
// polynomial has a root on or inside the unit circle.
func ToPACF(c []float64) ([]float64, bool) {
	p := len(c)
	a := make([]float64, p)
	for i, v := range c {
		a[i] = -v
	}
	r := make([]float64, p)
	prev := make([]float64, p)
	for j := p; j >= 1; j-- {
		rj := a[j-1]
		if math.Abs(rj) >= 1 || math.IsNaN(rj) {
			return nil, false
		}
		r[j-1] = rj
		den := 1 - rj*rj
		for i := 1; i < j; i++ {
			prev[i-1] = (a[i-1] + rj*a[j-i-1]) / den
		}
		copy(a[:j-1], prev[:j-1])
	}
	return r, true
}

// FromPACF maps partial autocorrelations back to polynomial coefficients with
// the step-up Levinson recursion. Any r with |r[i]| < 1 yields a stable
// polynomial.
func FromPACF(r []float64) []float64 {
	p := len(r)
	a := make([]float64, p)
	next := make([]float64, p)
	for j := 1; j <= p; j++ {
		rj := r[j-1]
		for i := 1; i < j; i++ {
			next[i-1] = a[i-1] - rj*a[j-i-1]
		}
		copy(a[:j-1], next[:j-1])
		a[j-1] = rj
	}
	c := make([]float64, p)
	for i, v := range a {
		c[i] = -v
	}
	return c
}

// IsStable reports whether all roots of 1 + c[0] B + ... lie outside the unit
// circle.
func IsStable(c []float64) bool {
	_, ok := ToPACF(c)
	return ok
}

// ClampPACF limits every partial autocorrelation to ±0.9999.
func ClampPACF(r []float64) {
	for i, v := range r {
		r[i] = math.Max(-maxPACF, math.Min(maxPACF, v))
	}
}

// Stabilize returns c when it is stable, otherwise coefficients shrunk as
// c[i] ρ^(i+1) with ρ = 0.95, repeatedly, until the polynomial is stable.
func Stabilize(c []float64) []float64 {
	out := append([]float64{}, c...)
	for iter := 0; iter < 500; iter++ {
		if IsStable(out) {
			return out
		}
		f := 1.0
		for i := range out {
			f *= 0.95
			out[i] *= f
		}
	}
	return make([]float64, len(c))
}
