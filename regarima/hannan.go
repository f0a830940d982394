package regarima

import (
	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/goregarima/arima"
	"github.com/sartorproj/goregarima/linalg"
	"github.com/sartorproj/goregarima/stats"
)

// HannanRissanen returns starting values for the free ARMA parameters of
// p.Spec. The regression effects are removed by OLS on the differenced
// model, a long autoregression estimated by Yule-Walker provides proxies
// for the innovations, and the ARMA coefficients come from the linear
// regression
//
//	u_t - a_t = -Σ φ_i u_{t-i} - Σ Φ_j u_{t-js} + Σ θ_i a_{t-i} + Σ Θ_j a_{t-js}
//
// The result is projected onto the stationary and invertible region. When
// the series is too short the default starting values are returned.
func HannanRissanen(p *Problem) *arima.Spec {
	spec := p.Spec
	fallback := defaultStart(spec)
	if spec.FreeCount() == 0 {
		return spec.Clone()
	}

	lm, err := newLinearModel(p)
	if err != nil {
		return fallback
	}
	ols, err := linalg.NewLeastSquares(lm.x, lm.y)
	if err != nil {
		return fallback
	}
	u := ols.Residuals
	m := len(u)

	o := spec.Order
	arLag := o.P + o.SP*o.M
	maLag := o.Q + o.SQ*o.M
	maxLag := max(arLag, maLag)

	// Long autoregression
	h := min(max(2*maxLag, 10), m/3)
	if maLag == 0 {
		h = 0
	}
	a := make([]float64, m)
	if h > 0 {
		acf := stats.ACF(u, h)
		if len(acf) != h+1 {
			return fallback
		}
		phi, _, err := linalg.Durbin(acf)
		if err != nil {
			return fallback
		}
		longAR := append(arima.Polynomial{1}, phi...)
		copy(a[h:], longAR.Filter(u))
	}

	type column struct {
		param int
		value func(t int) float64
	}
	var cols []column
	lagU := func(l int) func(int) float64 { return func(t int) float64 { return -u[t-l] } }
	lagA := func(l int) func(int) float64 { return func(t int) float64 { return a[t-l] } }
	idx := 0
	for i := 1; i <= o.P; i++ {
		cols = append(cols, column{idx, lagU(i)})
		idx++
	}
	for j := 1; j <= o.SP; j++ {
		cols = append(cols, column{idx, lagU(j * o.M)})
		idx++
	}
	for i := 1; i <= o.Q; i++ {
		cols = append(cols, column{idx, lagA(i)})
		idx++
	}
	for j := 1; j <= o.SQ; j++ {
		cols = append(cols, column{idx, lagA(j * o.M)})
		idx++
	}

	start := h + maxLag
	rows := m - start
	free := spec.FreeCount()
	if rows <= free+1 {
		return fallback
	}

	params := spec.Parameters()
	x := mat.NewDense(rows, free, nil)
	y := make([]float64, rows)
	for r := 0; r < rows; r++ {
		t := start + r
		y[r] = u[t] - a[t]
		j := 0
		for _, c := range cols {
			if spec.IsFixed(c.param) {
				y[r] -= params[c.param] * c.value(t)
				continue
			}
			x.Set(r, j, c.value(t))
			j++
		}
	}
	fit, err := linalg.NewLeastSquares(x, y)
	if err != nil {
		return fallback
	}

	s := spec.Clone()
	s.SetFreeParameters(fit.Coefficients)
	stabilize(s)
	return s
}

// stabilize projects every polynomial of s onto the stable region. Blocks
// holding fixed parameters only have their free parameters reset.
func stabilize(s *arima.Spec) {
	all := s.Parameters()
	offset := 0
	o := s.Order
	for _, n := range []int{o.P, o.SP, o.Q, o.SQ} {
		c := all[offset : offset+n]
		if !arima.IsStable(c) {
			fixed := false
			for i := range c {
				fixed = fixed || s.IsFixed(offset+i)
			}
			if fixed {
				for i := range c {
					if !s.IsFixed(offset + i) {
						c[i] = 0
					}
				}
			} else {
				copy(c, arima.Stabilize(c))
			}
		}
		offset += n
	}
	s.SetParameters(all)
}
