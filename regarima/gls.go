package regarima

import (
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/goregarima/arima"
	"github.com/sartorproj/goregarima/linalg"
)

// MeanName is the name of the mean regressor in estimation results.
const MeanName = "mean"

// MissingName returns the name of the impulse regressor estimating the
// missing observation at pos.
func MissingName(pos int) string {
	return "missing." + strconv.Itoa(pos)
}

// linearModel is the regression after differencing: δ(B)y = δ(B)X β + w.
type linearModel struct {
	delta arima.Polynomial
	y     []float64
	x     *mat.Dense
	names []string
}

func newLinearModel(p *Problem) (*linearModel, error) {
	delta := p.Spec.Differencing()
	n := len(p.Y)
	d := len(delta) - 1
	m := n - d
	if m <= 0 {
		return nil, fmt.Errorf("%w: series shorter than the differencing", ErrInvalidProblem)
	}

	y := make([]float64, n)
	for i, v := range p.Y {
		if !math.IsNaN(v) {
			y[i] = v
		}
	}
	lm := &linearModel{delta: delta, y: delta.Filter(y)}

	var cols [][]float64
	if p.Mean {
		ones := make([]float64, m)
		floats.AddConst(1, ones)
		cols = append(cols, ones)
		lm.names = append(lm.names, MeanName)
	}
	for _, v := range p.Variables {
		cols = append(cols, delta.Filter(v.Values))
		lm.names = append(lm.names, v.Name)
	}
	for _, pos := range p.Missing() {
		impulse := make([]float64, n)
		impulse[pos] = 1
		cols = append(cols, delta.Filter(impulse))
		lm.names = append(lm.names, MissingName(pos))
	}

	if len(cols) > 0 {
		lm.x = mat.NewDense(m, len(cols), nil)
		for j, c := range cols {
			lm.x.SetCol(j, c)
		}
	}
	return lm, nil
}

// GLS is the generalized least-squares fit of a problem for fixed ARMA
// parameters. All quantities refer to the differenced model; whitened values
// are L⁻¹ times the differenced ones, with LLᵀ the ARMA covariance matrix for
// a unit innovation variance.
type GLS struct {
	spec   *arima.Spec
	model  *linearModel
	filter *arima.Filter
	xw     *mat.Dense
	fit    *linalg.LeastSquares
}

// NewGLS fits the regression of p with the ARMA parameters of spec.
func NewGLS(p *Problem, spec *arima.Spec) (*GLS, error) {
	if spec == nil {
		spec = p.Spec
	}
	model, err := newLinearModel(&Problem{Y: p.Y, Spec: spec, Mean: p.Mean, Variables: p.Variables})
	if err != nil {
		return nil, err
	}
	return newGLS(model, spec)
}

func newGLS(model *linearModel, spec *arima.Spec) (*GLS, error) {
	m := len(model.y)
	filter, err := arima.NewFilter(spec.AR(), spec.MA(), m)
	if err != nil {
		return nil, err
	}
	g := &GLS{spec: spec, model: model, filter: filter}

	yw := filter.Apply(model.y)
	if model.x != nil {
		_, k := model.x.Dims()
		g.xw = mat.NewDense(m, k, nil)
		col := make([]float64, m)
		for j := 0; j < k; j++ {
			mat.Col(col, j, model.x)
			g.xw.SetCol(j, filter.Apply(col))
		}
	}
	g.fit, err = linalg.NewLeastSquares(g.xw, yw)
	if err != nil {
		return nil, fmt.Errorf("gls: %w", err)
	}
	return g, nil
}

// Spec returns the ARMA specification of the fit.
func (g *GLS) Spec() *arima.Spec {
	return g.spec
}

// Len returns the number of differenced observations.
func (g *GLS) Len() int {
	return len(g.model.y)
}

// Names returns the names of the regressors, in coefficient order.
func (g *GLS) Names() []string {
	return g.model.names
}

// Coefficients returns the regression coefficients.
func (g *GLS) Coefficients() []float64 {
	return g.fit.Coefficients
}

// Residuals returns the whitened GLS residuals. Their variance is σ².
func (g *GLS) Residuals() []float64 {
	return g.fit.Residuals
}

// SSQ returns the sum of squares of the whitened residuals.
func (g *GLS) SSQ() float64 {
	return g.fit.SSQ
}

// LogDet returns log|Σ| for the ARMA covariance with unit innovation variance.
func (g *GLS) LogDet() float64 {
	return g.filter.LogDet()
}

// Differencing returns δ(B).
func (g *GLS) Differencing() arima.Polynomial {
	return g.model.delta
}

// Difference applies δ(B) to an undifferenced column.
func (g *GLS) Difference(col []float64) []float64 {
	return g.model.delta.Filter(col)
}

// Whiten returns L⁻¹d for a differenced column d.
func (g *GLS) Whiten(d []float64) []float64 {
	return g.filter.Apply(d)
}

// ProjectedNorm returns the squared norm of the projection of a whitened
// column on the whitened regressors.
func (g *GLS) ProjectedNorm(w []float64) float64 {
	return g.fit.ProjectedNorm(w)
}

// Design returns the differenced regressors, or nil without regressors.
func (g *GLS) Design() *mat.Dense {
	return g.model.x
}

// DifferencedResiduals returns δ(B)y - δ(B)Xβ.
func (g *GLS) DifferencedResiduals() []float64 {
	u := append([]float64(nil), g.model.y...)
	if g.model.x == nil {
		return u
	}
	var xb mat.VecDense
	xb.MulVec(g.model.x, mat.NewVecDense(len(g.fit.Coefficients), g.fit.Coefficients))
	for i := range u {
		u[i] -= xb.AtVec(i)
	}
	return u
}

// Likelihood returns the concentrated likelihood statistics of the fit.
func (g *GLS) Likelihood() Likelihood {
	return newLikelihood(g.Len(), g.fit.Columns(), g.spec.FreeCount(), g.SSQ(), g.LogDet())
}

// regression returns the coefficients with standard errors and t-statistics
// based on σ² = SSQ / degrees of freedom.
func (g *GLS) regression(ll Likelihood) (coef, se, t []float64) {
	coef = append([]float64(nil), g.fit.Coefficients...)
	se = make([]float64, len(coef))
	t = make([]float64, len(coef))
	cov, err := g.fit.Unscaled()
	if err != nil || cov == nil {
		return coef, se, t
	}
	df := ll.DegreesOfFreedom()
	if df <= 0 {
		df = 1
	}
	sig2 := ll.SSQ / float64(df)
	for i := range coef {
		se[i] = math.Sqrt(sig2 * cov.At(i, i))
		if se[i] > 0 {
			t[i] = coef[i] / se[i]
		}
	}
	return coef, se, t
}
