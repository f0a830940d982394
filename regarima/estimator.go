package regarima

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/goregarima/arima"
	"github.com/sartorproj/goregarima/linalg"
	"github.com/sartorproj/goregarima/optim"
	"github.com/sartorproj/goregarima/stats"
)

// StartingPoint selects how the initial ARMA parameters are computed.
type StartingPoint int

const (
	// StartZero starts every free parameter at 0.
	StartZero StartingPoint = iota
	// StartDefault uses -0.1 for AR, -0.2 for MA and -0.4 for seasonal MA
	// coefficients.
	StartDefault
	// StartHannanRissanen uses the Hannan-Rissanen estimates.
	StartHannanRissanen
	// StartMultiple refines both the Hannan-Rissanen estimates and a
	// perturbed default start at low precision and keeps the better one.
	StartMultiple
)

var startingPointNames = map[StartingPoint]string{
	StartZero:           "zero",
	StartDefault:        "default",
	StartHannanRissanen: "hannan-rissanen",
	StartMultiple:       "multiple",
}

func (s StartingPoint) String() string {
	if name, ok := startingPointNames[s]; ok {
		return name
	}
	return fmt.Sprintf("StartingPoint(%d)", int(s))
}

// ParseStartingPoint parses the names printed by StartingPoint.String.
func ParseStartingPoint(name string) (StartingPoint, error) {
	for s, n := range startingPointNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("regarima: unknown starting point %q", name)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *StartingPoint) UnmarshalText(text []byte) error {
	v, err := ParseStartingPoint(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (s StartingPoint) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// EstimatorConfig holds the estimation settings.
type EstimatorConfig struct {
	// Precision is the convergence criterion of the first attempt.
	Precision float64
	// MaxIterations bounds the iterations of every attempt.
	MaxIterations int
	StartingPoint StartingPoint
	// MaxAttempts bounds the number of minimizations. Each retry disables
	// maximum likelihood and relaxes the precision tenfold.
	MaxAttempts int
	// MaximumLikelihood minimizes SSQ·|Σ|^(1/m) instead of the GLS sum of
	// squares.
	MaximumLikelihood bool
	// CheckUnitRoots enables the cancellation of common (1-B) and (1+B)
	// factors of the regular AR and MA polynomials.
	CheckUnitRoots    bool
	UnitRootTolerance float64
	// LjungBoxLags is the number of residual autocorrelations tested.
	// Zero selects 2 periods for seasonal models and 12 lags otherwise.
	LjungBoxLags int
	// Minimizer defaults to Levenberg-Marquardt.
	Minimizer optim.Minimizer
	Logger    *zap.Logger
}

// DefaultEstimatorConfig returns the default estimation settings.
func DefaultEstimatorConfig() EstimatorConfig {
	return EstimatorConfig{
		Precision:         1e-7,
		MaxIterations:     100,
		StartingPoint:     StartMultiple,
		MaxAttempts:       3,
		MaximumLikelihood: true,
		CheckUnitRoots:    true,
		UnitRootTolerance: 0.1,
	}
}

const (
	// Settings of the short refinements used by StartMultiple.
	startPrecision  = 1e-3
	startIterations = 10

	derivativeStep = 1e-6
)

// Estimator fits the ARMA parameters of regression-ARIMA problems by
// maximizing the concentrated GLS likelihood.
type Estimator struct {
	cfg       EstimatorConfig
	minimizer optim.Minimizer
	logger    *zap.Logger
}

// NewEstimator creates an estimator. Zero numeric settings take their
// default values.
func NewEstimator(cfg EstimatorConfig) *Estimator {
	def := DefaultEstimatorConfig()
	if cfg.Precision <= 0 {
		cfg.Precision = def.Precision
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = def.MaxIterations
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.UnitRootTolerance <= 0 {
		cfg.UnitRootTolerance = def.UnitRootTolerance
	}
	e := &Estimator{cfg: cfg, minimizer: cfg.Minimizer, logger: cfg.Logger}
	if e.minimizer == nil {
		e.minimizer = optim.LevenbergMarquardt{}
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e
}

// Config returns the effective configuration.
func (e *Estimator) Config() EstimatorConfig {
	return e.cfg
}

// Process estimates p from the configured starting point.
func (e *Estimator) Process(p *Problem) (*Estimation, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	start, err := e.Start(p)
	if err != nil {
		return nil, err
	}
	return e.Optimize(p, start)
}

// Start computes the starting parameters of p.
func (e *Estimator) Start(p *Problem) (*arima.Spec, error) {
	spec := p.Spec
	switch e.cfg.StartingPoint {
	case StartZero:
		s := spec.Clone()
		s.SetFreeParameters(make([]float64, s.FreeCount()))
		return s, nil
	case StartDefault:
		return defaultStart(spec), nil
	case StartHannanRissanen:
		return HannanRissanen(p), nil
	case StartMultiple:
		return e.multipleStart(p)
	}
	return nil, fmt.Errorf("%w: %v", ErrInvalidProblem, e.cfg.StartingPoint)
}

func (e *Estimator) multipleStart(p *Problem) (*arima.Spec, error) {
	model, err := newLinearModel(p)
	if err != nil {
		return nil, err
	}
	settings := optim.Settings{Precision: startPrecision, MaxIterations: startIterations, Step: derivativeStep}

	best, bestLL := defaultStart(p.Spec), math.Inf(-1)
	candidates := []struct {
		name string
		spec *arima.Spec
	}{
		{"hannan-rissanen", HannanRissanen(p)},
		{"perturbed-default", perturbedStart(p.Spec)},
	}
	for _, c := range candidates {
		res, spec, err := e.minimize(model, c.spec, settings, e.cfg.MaximumLikelihood)
		if spec == nil || (err != nil && !errors.Is(err, optim.ErrNoConvergence)) {
			e.logger.Debug("starting point rejected", zap.String("start", c.name), zap.Error(err))
			continue
		}
		g, err := newGLS(model, spec)
		if err != nil {
			continue
		}
		ll := g.Likelihood().LogLik
		e.logger.Debug("starting point",
			zap.String("start", c.name),
			zap.Float64("loglik", ll),
			zap.Int("iterations", res.Iterations))
		if ll > bestLL {
			best, bestLL = spec, ll
		}
	}
	return best, nil
}

// Optimize estimates p from the parameters of start, which must have the
// order and fixed parameters of p.Spec. After a successful minimization
// common unit roots of the regular polynomials are cancelled when enabled.
func (e *Estimator) Optimize(p *Problem, start *arima.Spec) (*Estimation, error) {
	q := &Problem{Y: p.Y, Spec: start, Mean: p.Mean, Variables: p.Variables}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	model, err := newLinearModel(q)
	if err != nil {
		return nil, err
	}
	est, err := e.optimize(q, model, start)
	if err != nil {
		return nil, err
	}
	if e.cfg.CheckUnitRoots {
		est = e.cancelUnitRoots(q, model, est)
	}
	return est, nil
}

// optimize runs the attempts with decreasing requirements.
func (e *Estimator) optimize(p *Problem, model *linearModel, start *arima.Spec) (*Estimation, error) {
	settings := optim.Settings{
		Precision:     e.cfg.Precision,
		MaxIterations: e.cfg.MaxIterations,
		Step:          derivativeStep,
	}
	ml := e.cfg.MaximumLikelihood
	var last error
	for attempt := 1; attempt <= e.cfg.MaxAttempts; attempt++ {
		res, spec, err := e.minimize(model, start, settings, ml)
		if err == nil {
			var g *GLS
			if g, err = newGLS(model, spec); err == nil {
				est := e.estimation(p, model, g, res.Iterations)
				est.Attempts = attempt
				e.logger.Debug("estimation done",
					zap.Stringer("spec", spec),
					zap.Float64("loglik", est.Likelihood.LogLik),
					zap.Int("attempt", attempt),
					zap.Int("iterations", res.Iterations))
				return est, nil
			}
		}
		last = err
		e.logger.Warn("estimation attempt failed",
			zap.Int("attempt", attempt),
			zap.Float64("precision", settings.Precision),
			zap.Bool("ml", ml),
			zap.Error(err))
		ml = false
		settings.Precision *= 10
	}
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrNotConverged, e.cfg.MaxAttempts, last)
}

// minimize runs the minimizer once. The result and the spec are returned
// together with optim.ErrNoConvergence when the iteration limit is hit.
func (e *Estimator) minimize(model *linearModel, start *arima.Spec, s optim.Settings, ml bool) (*optim.Result, *arima.Spec, error) {
	mp := newMapping(start)
	m := len(model.y)
	prob := optim.Problem{
		Dim: mp.Dim(),
		Len: m,
		Residuals: func(dst, x []float64) bool {
			spec, ok := mp.Spec(x)
			if !ok {
				return false
			}
			g, err := newGLS(model, spec)
			if err != nil {
				return false
			}
			copy(dst, g.Residuals())
			if ml {
				floats.Scale(objectiveScale(m, g.LogDet()), dst)
			}
			return true
		},
	}
	res, err := e.minimizer.Minimize(prob, mp.Internal(start), s)
	if res == nil {
		return nil, nil, err
	}
	spec, ok := mp.Spec(res.X)
	if !ok {
		return nil, nil, fmt.Errorf("%w: minimizer left the stationary region", optim.ErrNoConvergence)
	}
	return res, spec, err
}

func (e *Estimator) estimation(p *Problem, model *linearModel, g *GLS, iterations int) *Estimation {
	spec := g.Spec()
	ll := g.Likelihood()
	coef, se, t := g.regression(ll)
	fitted := p.Clone()
	fitted.Spec = spec.Clone()
	est := &Estimation{
		Problem:      fitted,
		Spec:         spec,
		Names:        g.Names(),
		Coefficients: coef,
		StdErrors:    se,
		TStats:       t,
		Likelihood:   ll,
		Residuals:    g.Residuals(),
		Iterations:   iterations,
	}
	est.Covariance = parameterCovariance(model, g)
	if est.Covariance != nil {
		n := est.Covariance.SymmetricDim()
		est.ParameterStdErrors = make([]float64, n)
		for i := 0; i < n; i++ {
			est.ParameterStdErrors[i] = math.Sqrt(est.Covariance.At(i, i))
		}
	}

	lags := e.cfg.LjungBoxLags
	if lags <= 0 {
		lags = 12
		if spec.Order.M > 1 {
			lags = 2 * spec.Order.M
		}
	}
	est.LjungBox = stats.LjungBox(est.Residuals, lags, ll.Parameters)
	return est
}

// parameterCovariance returns σ²(JᵀJ)⁻¹ for the Jacobian J of the whitened
// residuals with respect to the free coefficients, expanded with zeros for
// the fixed ones. It returns nil when the information matrix is singular.
func parameterCovariance(model *linearModel, g *GLS) *mat.SymDense {
	spec := g.Spec()
	mp := newMapping(spec)
	nf := mp.Dim()
	if nf == 0 {
		return nil
	}
	prob := optim.Problem{
		Dim: nf,
		Len: g.Len(),
		Residuals: func(dst, c []float64) bool {
			s, ok := mp.coefficientSpec(c)
			if !ok {
				return false
			}
			h, err := newGLS(model, s)
			if err != nil {
				return false
			}
			copy(dst, h.Residuals())
			return true
		},
	}
	j := prob.Jacobian(spec.FreeParameters(), g.Residuals(), derivativeStep)
	inv, err := linalg.InverseSPD(optim.Curvature(j))
	if err != nil {
		return nil
	}
	sigma2 := g.SSQ() / float64(g.Len())

	np := spec.Order.ParameterCount()
	free := make([]int, 0, nf)
	for i := 0; i < np; i++ {
		if !spec.IsFixed(i) {
			free = append(free, i)
		}
	}
	cov := mat.NewSymDense(np, nil)
	for a, i := range free {
		for b := a; b < nf; b++ {
			cov.SetSym(i, free[b], sigma2*inv.At(a, b))
		}
	}
	return cov
}

// defaultStart sets the free parameters to the default starting values.
func defaultStart(spec *arima.Spec) *arima.Spec {
	return shiftedStart(spec, 0)
}

// perturbedStart moves the default starting values by -0.2.
func perturbedStart(spec *arima.Spec) *arima.Spec {
	return shiftedStart(spec, -0.2)
}

func shiftedStart(spec *arima.Spec, shift float64) *arima.Spec {
	s := spec.Clone()
	all := s.Parameters()
	o := s.Order
	values := []float64{-0.1, -0.1, -0.2, -0.4}
	offset := 0
	for k, n := range []int{o.P, o.SP, o.Q, o.SQ} {
		for i := offset; i < offset+n; i++ {
			if !s.IsFixed(i) {
				all[i] = values[k] + shift
			}
		}
		offset += n
	}
	s.SetParameters(all)
	stabilize(s)
	return s
}
