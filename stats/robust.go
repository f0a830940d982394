package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultScalePercentile selects the median of the absolute values.
const DefaultScalePercentile = 0.5

// RobustScale estimates the standard deviation of residual-like values from
// the pct-quantile of their absolute values, rescaled by Φ⁻¹(0.5 + pct/2) so
// that it is consistent for normal data. With pct = 0.5 this is the median
// absolute deviation about zero. NaN values are ignored; the result is NaN
// when nothing remains or pct is outside (0, 1).
func RobustScale(x []float64, pct float64) float64 {
	if !(pct > 0 && pct < 1) {
		return math.NaN()
	}
	abs := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			abs = append(abs, math.Abs(v))
		}
	}
	if len(abs) == 0 {
		return math.NaN()
	}
	sort.Float64s(abs)
	q := stat.Quantile(pct, stat.Empirical, abs, nil)
	return q / distuv.UnitNormal.Quantile(0.5+pct/2)
}
