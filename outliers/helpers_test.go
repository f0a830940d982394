package outliers

import (
	"math"
	"math/rand/v2"
)

// uniform returns n unit-variance innovations from a uniform distribution.
// Their light tails keep spurious outliers away from the critical values.
func uniform(seed uint64, n int) []float64 {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	e := make([]float64, n)
	for i := range e {
		e[i] = math.Sqrt(3) * (2*r.Float64() - 1)
	}
	return e
}

// airlineSeries simulates (1-B)(1-B^12) y = (1+θB)(1+ΘB^12) ε around 100.
func airlineSeries(seed uint64, n int, theta, btheta float64) []float64 {
	const burn = 50
	e := uniform(seed, n+burn)
	y := make([]float64, n+burn)
	for t := range y {
		w := e[t]
		if t >= 1 {
			w += theta * e[t-1]
			y[t] += y[t-1]
		}
		if t >= 12 {
			w += btheta * e[t-12]
			y[t] += y[t-12]
		}
		if t >= 13 {
			w += theta * btheta * e[t-13]
			y[t] -= y[t-13]
		}
		y[t] += w
	}
	out := y[burn:]
	for i := range out {
		out[i] += 100
	}
	return out
}

// armaSeries simulates (1+φB) y = (1+θB) ε around level.
func armaSeries(seed uint64, n int, phi, theta, level float64) []float64 {
	const burn = 100
	e := uniform(seed, n+burn)
	y := make([]float64, n+burn)
	for t := range y {
		y[t] = e[t]
		if t >= 1 {
			y[t] += theta*e[t-1] - phi*y[t-1]
		}
	}
	out := y[burn:]
	for i := range out {
		out[i] += level
	}
	return out
}
