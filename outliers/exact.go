package outliers

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/sartorproj/goregarima/regarima"
)

// minVariance is the relative residual variance of a candidate below which
// it is treated as collinear with the existing regressors.
const minVariance = 1e-9

// Exact computes the GLS t-statistics by whitening every candidate with the
// exact ARMA filter and projecting it on the QR factor of the whitened
// design cached by the GLS fit.
type Exact struct {
	core
}

// NewExact creates an exact detector.
func NewExact(factories []Factory, cfg DetectorConfig) *Exact {
	d := &Exact{}
	d.core = newCore(factories, cfg, d.statistics)
	return d
}

func (d *Exact) statistics(g *regarima.GLS) error {
	e := g.Residuals()
	buf := make([]float64, d.table.Len())
	for k, f := range d.factories {
		d.defined(k, func(pos int) {
			f.Fill(pos, buf)
			cw := g.Whiten(g.Difference(buf))
			norm := floats.Dot(cw, cw)
			t := statistic(floats.Dot(cw, e), norm, g.ProjectedNorm(cw), d.scale)
			d.table.Set(pos, k, t)
		})
	}
	return nil
}

// statistic returns num / (scale·sqrt(norm - proj)), the t-statistic of a
// candidate whose whitened column has squared norm norm, of which proj lies
// in the span of the whitened regressors.
func statistic(num, norm, proj, scale float64) float64 {
	den := norm - proj
	if !(den > minVariance*norm) {
		return 0
	}
	return num / (scale * math.Sqrt(den))
}
