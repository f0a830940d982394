package regarima

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/goregarima/arima"
	"github.com/sartorproj/goregarima/linalg"
	"github.com/sartorproj/goregarima/optim"
)

func levelShift(n, pos int, size float64) []float64 {
	x := make([]float64, n)
	for i := pos; i < n; i++ {
		x[i] = size
	}
	return x
}

func TestProblemValidate(t *testing.T) {
	y := airlineSeries(1, 60, -0.6, -0.5)

	p := NewProblem(y, arima.Airline(12))
	require.NoError(t, p.Validate())

	assert.ErrorIs(t, NewProblem(y, nil).Validate(), ErrInvalidProblem)
	assert.ErrorIs(t, NewProblem(y[:14], arima.Airline(12)).Validate(), ErrInvalidProblem)

	assert.Equal(t, 43, p.Capacity())
	assert.Equal(t, 0, NewProblem(y, nil).Capacity())

	short := NewProblem(y[:17], arima.Airline(12))
	require.NoError(t, short.Validate())
	assert.Equal(t, 0, short.Capacity())
	short.Variables = append(short.Variables, Variable{Name: "x", Values: levelShift(17, 8, 1)})
	assert.ErrorIs(t, short.Validate(), ErrInvalidProblem)

	require.NoError(t, p.AddVariable(Variable{Name: "x", Values: levelShift(60, 30, 1)}))
	assert.Equal(t, 42, p.Capacity())
	assert.ErrorIs(t, p.AddVariable(Variable{Name: "x", Values: levelShift(60, 20, 1)}), ErrInvalidProblem)
	assert.ErrorIs(t, p.AddVariable(Variable{Name: "short", Values: []float64{1}}), ErrInvalidProblem)
	assert.Equal(t, 0, p.IndexOf("x"))

	p.Variables = append(p.Variables, Variable{Name: "x", Values: levelShift(60, 10, 1)})
	assert.ErrorIs(t, p.Validate(), ErrInvalidProblem)

	require.NoError(t, p.RemoveVariable("x"))
	assert.ErrorIs(t, p.RemoveVariable("nope"), ErrUnknownVariable)
}

func TestProblemCloneIsDeep(t *testing.T) {
	y := airlineSeries(2, 40, -0.6, -0.5)
	p := NewProblem(y, arima.Airline(12))
	require.NoError(t, p.AddVariable(Variable{Name: "ls", Values: levelShift(40, 20, 1)}))

	c := p.Clone()
	c.Y[0] = 1000
	c.Variables[0].Values[0] = 1000
	c.Spec.MACoeffs[0] = 0.9
	require.NoError(t, c.AddVariable(Variable{Name: "other", Values: make([]float64, 40)}))

	assert.NotEqual(t, 1000.0, p.Y[0])
	assert.Equal(t, 0.0, p.Variables[0].Values[0])
	assert.Equal(t, -0.2, p.Spec.MACoeffs[0])
	assert.Len(t, p.Variables, 1)
}

// The GLS coefficients equal (XᵀΣ⁻¹X)⁻¹XᵀΣ⁻¹y computed with the dense inverse.
func TestGLSMatchesDenseSolution(t *testing.T) {
	n := 50
	spec := arima.New(arima.Order{P: 1, Q: 1})
	spec.ARCoeffs[0] = -0.5
	spec.MACoeffs[0] = 0.3
	y := armaSeries(3, n, -0.5, 0.3)
	x := levelShift(n, 25, 1)
	for i := range y {
		y[i] += 2 + 3*x[i]
	}
	p := &Problem{Y: y, Spec: spec, Mean: true, Variables: []Variable{{Name: "ls", Values: x}}}

	g, err := NewGLS(p, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{MeanName, "ls"}, g.Names())
	assert.Equal(t, n, g.Len())

	acov, err := arima.Autocovariance(spec.AR(), spec.MA(), n)
	require.NoError(t, err)
	sinv, err := linalg.ToeplitzInverse(acov)
	require.NoError(t, err)

	design := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		design.Set(i, 0, 1)
		design.Set(i, 1, x[i])
	}
	var sx, xsx mat.Dense
	sx.Mul(sinv, design)
	xsx.Mul(design.T(), &sx)
	var xsy mat.VecDense
	xsy.MulVec(sx.T(), mat.NewVecDense(n, y))
	var beta mat.VecDense
	require.NoError(t, beta.SolveVec(&xsx, &xsy))

	assert.InDelta(t, beta.AtVec(0), g.Coefficients()[0], 1e-8)
	assert.InDelta(t, beta.AtVec(1), g.Coefficients()[1], 1e-8)

	// SSQ is the Σ⁻¹ quadratic form of the differenced residuals.
	u := g.DifferencedResiduals()
	uv := mat.NewVecDense(n, u)
	assert.InDelta(t, mat.Inner(uv, sinv, uv), g.SSQ(), 1e-8)

	var chol mat.Cholesky
	require.True(t, chol.Factorize(sinv))
	assert.InDelta(t, -chol.LogDet(), g.LogDet(), 1e-9)
}

func TestGLSMissingValues(t *testing.T) {
	y := airlineSeries(4, 72, -0.6, -0.5)
	y[30] = math.NaN()
	p := NewProblem(y, arima.Airline(12))
	g, err := NewGLS(p, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{MissingName(30)}, g.Names())
	assert.Equal(t, 72-13, g.Len())
	assert.Len(t, g.Difference(make([]float64, 72)), 72-13)
}

func TestLikelihoodCriteria(t *testing.T) {
	m, k, np := 100, 2, 2
	ssq, logDet := 120.0, 3.0
	l := newLikelihood(m, k, np, ssq, logDet)

	n := float64(m)
	ll := -0.5 * (n*math.Log(2*math.Pi) + n*math.Log(ssq/n) + n + logDet)
	assert.InDelta(t, ll, l.LogLik, 1e-12)
	assert.InDelta(t, -2*ll+10, l.AIC, 1e-9)
	assert.InDelta(t, -2*ll+10*n/(n-6), l.AICc, 1e-9)
	assert.InDelta(t, -2*ll+5*math.Log(n), l.BIC, 1e-9)
	assert.Equal(t, 96, l.DegreesOfFreedom())
	assert.InDelta(t, 1.2, l.Sigma2, 1e-12)

	tiny := newLikelihood(3, 1, 1, 1, 0)
	assert.True(t, math.IsInf(tiny.AICc, 1))
}

func TestObjectiveScale(t *testing.T) {
	// Σ e²·|Σ|^(1/m) is the sum of squares of the scaled residuals.
	m, logDet := 40, 2.5
	s := objectiveScale(m, logDet)
	assert.InDelta(t, math.Exp(logDet/float64(m)), s*s, 1e-12)
}

func TestMappingRoundTrip(t *testing.T) {
	spec := arima.New(arima.Order{P: 2, Q: 1, SQ: 1, M: 4})
	spec.ARCoeffs = []float64{-0.5, 0.2}
	spec.MACoeffs = []float64{0.4}
	spec.SMACoeffs = []float64{-0.3}

	mp := newMapping(spec)
	assert.Equal(t, 4, mp.Dim())
	back, ok := mp.Spec(mp.Internal(spec))
	require.True(t, ok)
	assert.InDeltaSlice(t, spec.Parameters(), back.Parameters(), 1e-12)

	// Every internal point maps to a stable polynomial.
	s, ok := mp.Spec([]float64{5, -5, 3, -3})
	require.True(t, ok)
	assert.True(t, s.IsStationary())
	assert.True(t, s.IsInvertible())
}

func TestMappingPartiallyFixed(t *testing.T) {
	spec := arima.New(arima.Order{P: 2, Q: 1})
	spec.ARCoeffs = []float64{-0.5, 0.2}
	spec.MACoeffs = []float64{0.4}
	spec.Fixed = []bool{false, true, false}

	mp := newMapping(spec)
	assert.Equal(t, 2, mp.Dim())
	x := mp.Internal(spec)
	assert.Equal(t, -0.5, x[0])

	s, ok := mp.Spec([]float64{-0.7, 0})
	require.True(t, ok)
	assert.Equal(t, []float64{-0.7, 0.2}, s.ARCoeffs)

	_, ok = mp.Spec([]float64{-3, 0})
	assert.False(t, ok)
}

func TestHannanRissanen(t *testing.T) {
	t.Run("ar1", func(t *testing.T) {
		spec := arima.New(arima.Order{P: 1})
		y := armaSeries(5, 400, -0.6, 0)
		s := HannanRissanen(NewProblem(y, spec))
		assert.InDelta(t, -0.6, s.ARCoeffs[0], 0.1)
	})
	t.Run("ma1", func(t *testing.T) {
		spec := arima.New(arima.Order{Q: 1})
		y := armaSeries(6, 400, 0, 0.5)
		s := HannanRissanen(NewProblem(y, spec))
		assert.InDelta(t, 0.5, s.MACoeffs[0], 0.15)
	})
	t.Run("fixed", func(t *testing.T) {
		spec := arima.New(arima.Order{P: 1, Q: 1})
		spec.MACoeffs[0] = 0.25
		spec.Fixed = []bool{false, true}
		y := armaSeries(7, 200, -0.5, 0.25)
		s := HannanRissanen(NewProblem(y, spec))
		assert.Equal(t, 0.25, s.MACoeffs[0])
		assert.True(t, s.IsStationary())
	})
	t.Run("short", func(t *testing.T) {
		spec := arima.Airline(12)
		s := HannanRissanen(NewProblem(airlineSeries(8, 20, -0.6, -0.5), spec))
		assert.Equal(t, defaultStart(spec).Parameters(), s.Parameters())
	})
}

func TestStartingPointText(t *testing.T) {
	for _, sp := range []StartingPoint{StartZero, StartDefault, StartHannanRissanen, StartMultiple} {
		text, err := sp.MarshalText()
		require.NoError(t, err)
		var back StartingPoint
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, sp, back)
	}
	_, err := ParseStartingPoint("random")
	assert.Error(t, err)
}

func TestDefaultStarts(t *testing.T) {
	spec := arima.New(arima.Order{P: 1, Q: 1, SP: 1, SQ: 1, M: 12})
	assert.Equal(t, []float64{-0.1, -0.1, -0.2, -0.4}, defaultStart(spec).Parameters())
	assert.InDeltaSlice(t, []float64{-0.3, -0.3, -0.4, -0.6}, perturbedStart(spec).Parameters(), 1e-12)
}

func TestEstimatorAirline(t *testing.T) {
	y := airlineSeries(9, 144, -0.6, -0.5)
	cfg := DefaultEstimatorConfig()
	cfg.Logger = zaptest.NewLogger(t)
	p := NewProblem(y, arima.Airline(12))
	est, err := NewEstimator(cfg).Process(p)
	require.NoError(t, err)
	assert.Equal(t, -0.2, p.Spec.MACoeffs[0])
	assert.NotSame(t, p, est.Problem)

	assert.InDelta(t, -0.6, est.Spec.MACoeffs[0], 0.2)
	assert.InDelta(t, -0.5, est.Spec.SMACoeffs[0], 0.25)
	assert.True(t, est.Spec.IsInvertible())
	assert.Equal(t, 144-13, est.Likelihood.Observations)
	assert.Equal(t, 2, est.Likelihood.Parameters)
	assert.False(t, math.IsNaN(est.Likelihood.LogLik))
	assert.GreaterOrEqual(t, est.Attempts, 1)
	assert.Len(t, est.Residuals, 144-13)

	require.NotNil(t, est.Covariance)
	require.Len(t, est.ParameterStdErrors, 2)
	assert.Greater(t, est.ParameterStdErrors[0], 0.0)
	assert.Less(t, est.ParameterStdErrors[0], 0.3)
	require.NotNil(t, est.LjungBox)
	assert.Equal(t, 24, est.LjungBox.Lags)

}

func TestEstimatorStartingPoints(t *testing.T) {
	y := airlineSeries(10, 120, -0.4, -0.6)
	var lls []float64
	for _, sp := range []StartingPoint{StartZero, StartDefault, StartHannanRissanen, StartMultiple} {
		cfg := DefaultEstimatorConfig()
		cfg.StartingPoint = sp
		est, err := NewEstimator(cfg).Process(NewProblem(y, arima.Airline(12)))
		require.NoError(t, err, sp.String())
		lls = append(lls, est.Likelihood.LogLik)
	}
	for _, ll := range lls[1:] {
		assert.InDelta(t, lls[0], ll, 0.5)
	}
}

func TestEstimatorBFGS(t *testing.T) {
	y := airlineSeries(11, 120, -0.6, -0.5)
	cfg := DefaultEstimatorConfig()
	lm, err := NewEstimator(cfg).Process(NewProblem(y, arima.Airline(12)))
	require.NoError(t, err)

	cfg.Minimizer = optim.BFGS{}
	bfgs, err := NewEstimator(cfg).Process(NewProblem(y, arima.Airline(12)))
	require.NoError(t, err)
	assert.InDelta(t, lm.Likelihood.LogLik, bfgs.Likelihood.LogLik, 0.05)
}

func TestEstimatorRegressionAndMissing(t *testing.T) {
	n := 120
	y := airlineSeries(12, n, -0.6, -0.5)
	orig := y[45]
	ls := levelShift(n, 60, 1)
	for i := range y {
		y[i] += 10 * ls[i]
	}
	y[45] = math.NaN()

	p := NewProblem(y, arima.Airline(12))
	require.NoError(t, p.AddVariable(Variable{Name: "ls", Values: ls}))
	est, err := NewEstimator(DefaultEstimatorConfig()).Process(p)
	require.NoError(t, err)

	assert.Equal(t, []string{"ls", MissingName(45)}, est.Names)
	c, err := est.Coefficient("ls")
	require.NoError(t, err)
	assert.InDelta(t, 10, c, 3)
	tstat, err := est.TStat("ls")
	require.NoError(t, err)
	assert.Greater(t, tstat, 5.0)
	_, err = est.TStat("missing")
	assert.ErrorIs(t, err, ErrUnknownVariable)

	filled := est.Interpolated()
	assert.False(t, math.IsNaN(filled[45]))
	assert.InDelta(t, orig, filled[45], 5)
	assert.True(t, math.IsNaN(p.Y[45]))
	assert.Equal(t, filled, est.Corrected(), "only outlier variables are removed")
}

func TestEstimationCorrected(t *testing.T) {
	n := 96
	y := airlineSeries(14, n, -0.6, -0.5)
	ao := make([]float64, n)
	ao[30] = 1
	y[30] += 8

	p := NewProblem(y, arima.Airline(12))
	require.NoError(t, p.AddVariable(Variable{Name: "AO.30", Values: ao, Outlier: true}))
	est, err := NewEstimator(DefaultEstimatorConfig()).Process(p)
	require.NoError(t, err)

	c, err := est.Coefficient("AO.30")
	require.NoError(t, err)
	corrected := est.Corrected()
	for i := range y {
		want := y[i]
		if i == 30 {
			want -= c
		}
		assert.InDelta(t, want, corrected[i], 1e-9)
	}
}

func TestEstimatorFixedParameter(t *testing.T) {
	y := airlineSeries(13, 120, -0.6, -0.5)
	spec := arima.Airline(12)
	spec.SMACoeffs[0] = -0.5
	spec.Fixed = []bool{false, true}

	est, err := NewEstimator(DefaultEstimatorConfig()).Process(NewProblem(y, spec))
	require.NoError(t, err)
	assert.Equal(t, -0.5, est.Spec.SMACoeffs[0])
	assert.Equal(t, 1, est.Likelihood.Parameters)
	require.NotNil(t, est.Covariance)
	assert.Equal(t, 0.0, est.Covariance.At(1, 1))
	assert.Equal(t, 0.0, est.Covariance.At(0, 1))
	assert.Greater(t, est.Covariance.At(0, 0), 0.0)
}

func TestEstimatorNoFreeParameters(t *testing.T) {
	y := airlineSeries(14, 60, -0.6, -0.5)
	spec := arima.Airline(12)
	spec.Fixed = []bool{true, true}
	est, err := NewEstimator(DefaultEstimatorConfig()).Process(NewProblem(y, spec))
	require.NoError(t, err)
	assert.Equal(t, spec.Parameters(), est.Spec.Parameters())
	assert.Nil(t, est.Covariance)
}

func TestEstimatorInvalidProblem(t *testing.T) {
	_, err := NewEstimator(DefaultEstimatorConfig()).Process(NewProblem([]float64{1, 2, 3}, arima.Airline(12)))
	assert.ErrorIs(t, err, ErrInvalidProblem)
}

func TestSimplifyCommonFactor(t *testing.T) {
	e := NewEstimator(DefaultEstimatorConfig())

	spec := arima.New(arima.Order{P: 1, Q: 1})
	spec.ARCoeffs[0] = -0.97
	spec.MACoeffs[0] = -0.95
	s, ok := e.simplify(spec, -1)
	require.True(t, ok)
	assert.Equal(t, []float64{0}, s.ARCoeffs)
	assert.Equal(t, []float64{0}, s.MACoeffs)
	_, ok = e.simplify(spec, 1)
	assert.False(t, ok)

	spec.ARCoeffs[0] = 0.96
	spec.MACoeffs[0] = 0.92
	_, ok = e.simplify(spec, 1)
	assert.True(t, ok)

	spec = arima.New(arima.Order{P: 2, Q: 1})
	spec.ARCoeffs = []float64{-0.5, -0.45}
	spec.MACoeffs = []float64{-0.95}
	s, ok = e.simplify(spec, -1)
	require.True(t, ok)
	assert.InDelta(t, 0.5, s.ARCoeffs[0], 1e-12)
	assert.Equal(t, 0.0, s.ARCoeffs[1])

	spec.Fixed = []bool{false, true, false}
	_, ok = e.simplify(spec, -1)
	assert.False(t, ok)
}

func TestCancelUnitRoots(t *testing.T) {
	y := armaSeries(15, 150, -0.3, 0)
	spec := arima.New(arima.Order{P: 1, Q: 1})
	spec.ARCoeffs[0] = -0.97
	spec.MACoeffs[0] = -0.96
	p := NewProblem(y, spec)

	model, err := newLinearModel(p)
	require.NoError(t, err)
	g, err := newGLS(model, spec)
	require.NoError(t, err)

	cfg := DefaultEstimatorConfig()
	cfg.Logger = zaptest.NewLogger(t)
	e := NewEstimator(cfg)
	near := e.estimation(p, model, g, 0)
	require.Equal(t, 0, near.UnitRootsCancelled)

	est := e.cancelUnitRoots(p, model, near)
	assert.Equal(t, 1, est.UnitRootsCancelled)
	assert.GreaterOrEqual(t, est.Likelihood.LogLik, near.Likelihood.LogLik)
	assert.NotEqual(t, near.Spec.Parameters(), est.Spec.Parameters())
	_, shared := e.simplify(est.Spec, -1)
	assert.False(t, shared, "the common factor at B = 1 is gone")

	// Without a common factor the estimation is returned unchanged.
	spec.ARCoeffs[0] = 0.5
	spec.MACoeffs[0] = -0.5
	g, err = newGLS(model, spec)
	require.NoError(t, err)
	far := e.estimation(p, model, g, 0)
	assert.Same(t, far, e.cancelUnitRoots(p, model, far))
}
