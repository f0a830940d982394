package outliers

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/sartorproj/goregarima/arima"
	"github.com/sartorproj/goregarima/regarima"
)

// Approximate correlates the innovations of the fitted model with the
// effect of each candidate on them, π(B)·kernel with π = Φδ/Θ, ignoring the
// existing regressors. Every candidate costs O(n): the sum of squares of its
// effect is updated as the position slides along the series.
type Approximate struct {
	core
}

// NewApproximate creates an approximate detector.
func NewApproximate(factories []Factory, cfg DetectorConfig) *Approximate {
	d := &Approximate{}
	d.core = newCore(factories, cfg, d.statistics)
	return d
}

func (d *Approximate) statistics(g *regarima.GLS) error {
	n := d.table.Len()
	deg := g.Differencing().Degree()
	e := g.Residuals()
	spec := g.Spec()
	pi := arima.PiWeights(spec.FullAR(), spec.MA(), n)

	for k, f := range d.factories {
		h := convolve(pi, f.Kernel(n), n)
		var ss float64
		window := -1
		d.defined(k, func(pos int) {
			// Σ h_j² over j < n-pos.
			end := n - pos
			if window < 0 {
				ss = floats.Dot(h[:end], h[:end])
			} else {
				for j := end; j < window; j++ {
					ss -= h[j] * h[j]
				}
			}
			window = end

			den := ss
			lo := max(pos, deg)
			if pos < deg {
				skip := h[:deg-pos]
				den -= floats.Dot(skip, skip)
			}
			if lo >= n || !(den > 0) {
				d.table.Set(pos, k, 0)
				return
			}
			num := floats.Dot(e[lo-deg:], h[lo-pos:end])
			d.table.Set(pos, k, num/(d.scale*math.Sqrt(den)))
		})
	}
	return nil
}

// convolve returns the first n coefficients of the product of the series a
// and b.
func convolve(a, b []float64, n int) []float64 {
	out := make([]float64, n)
	for i, ai := range a[:min(n, len(a))] {
		if ai == 0 {
			continue
		}
		for j, bj := range b[:min(n-i, len(b))] {
			out[i+j] += ai * bj
		}
	}
	return out
}
