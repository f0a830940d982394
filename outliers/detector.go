package outliers

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/sartorproj/goregarima/regarima"
	"github.com/sartorproj/goregarima/stats"
)

// Candidate is a (position, type) cell of the statistic table.
type Candidate struct {
	Pos  int
	Kind int // Index of the factory
	Code string
	T    float64
}

// Outlier returns the candidate as a non-prespecified outlier.
func (c Candidate) Outlier() Outlier {
	return Outlier{Code: c.Code, Pos: c.Pos}
}

// Detector computes, for a fitted model, the t-statistic of adding every
// candidate outlier, without refitting the model per candidate.
type Detector interface {
	// Factories returns the outlier types, indexed by kind.
	Factories() []Factory
	// Prepare sets the estimation domain and the domain searched for
	// outliers, in the same coordinates. Positions are then relative to the
	// start of the estimation domain. All exclusions are reset.
	Prepare(estimation, outliers Span) error
	// Process binds a copy of p and computes the statistics. It returns
	// false when they cannot be computed.
	Process(p *regarima.Problem) bool
	Exclude(pos, kind int)
	ExcludeAll(pos int)
	Allow(pos, kind int)
	// MaxOutlier returns the usable candidate with the largest |t|.
	MaxOutlier() (Candidate, bool)
	T(pos, kind int) float64
	// Coeff returns the estimated effect of a candidate, T·Scale.
	Coeff(pos, kind int) float64
	// Scale returns the robust standard deviation of the residuals.
	Scale() float64
	// Clear drops the bound model and every cached value.
	Clear()
}

// Method selects a detector realization.
type Method int

const (
	// MethodExact computes exact GLS statistics from the whitened design.
	MethodExact Method = iota
	// MethodApproximate ignores the existing regressors and correlates
	// filtered outlier patterns with the residuals.
	MethodApproximate
	// MethodTrench computes exact GLS statistics from the inverse of the
	// ARMA covariance matrix.
	MethodTrench
)

var methodNames = map[Method]string{
	MethodExact:       "exact",
	MethodApproximate: "approximate",
	MethodTrench:      "trench",
}

func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Method) UnmarshalText(text []byte) error {
	for v, name := range methodNames {
		if name == string(text) {
			*m = v
			return nil
		}
	}
	return fmt.Errorf("outliers: unknown detection method %q", text)
}

// MarshalText implements encoding.TextMarshaler.
func (m Method) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// DetectorConfig holds the settings shared by every detector.
type DetectorConfig struct {
	// ScalePercentile is the quantile of the absolute residuals used for the
	// robust scale; 0.5 gives the median absolute deviation.
	ScalePercentile float64
	Logger          *zap.Logger
}

// DefaultDetectorConfig returns the default detector settings.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{ScalePercentile: stats.DefaultScalePercentile}
}

// NewDetector creates the detector of a method.
func NewDetector(method Method, factories []Factory, cfg DetectorConfig) (Detector, error) {
	if len(factories) == 0 {
		return nil, ErrNoFactories
	}
	switch method {
	case MethodExact:
		return NewExact(factories, cfg), nil
	case MethodApproximate:
		return NewApproximate(factories, cfg), nil
	case MethodTrench:
		return NewTrench(factories, cfg), nil
	}
	return nil, fmt.Errorf("outliers: unknown detection method %v", method)
}

type state int

const (
	stale state = iota
	fresh
)

// core holds what the realizations share: the factories, the statistic
// table, the bound model and the lazily computed statistics.
type core struct {
	factories []Factory
	pct       float64
	logger    *zap.Logger

	table  *Table
	bounds Span

	state state
	model *regarima.Problem
	scale float64

	// compute fills the statistics of the defined cells for the fitted
	// model g, with residual scale c.scale.
	compute func(g *regarima.GLS) error
}

func newCore(factories []Factory, cfg DetectorConfig, compute func(*regarima.GLS) error) core {
	c := core{
		factories: factories,
		pct:       cfg.ScalePercentile,
		logger:    cfg.Logger,
		compute:   compute,
	}
	if c.pct <= 0 || c.pct >= 1 {
		c.pct = stats.DefaultScalePercentile
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

func (c *core) Factories() []Factory {
	return c.factories
}

func (c *core) Prepare(estimation, outliers Span) error {
	if len(c.factories) == 0 {
		return ErrNoFactories
	}
	if estimation.Start < 0 || estimation.Len() == 0 {
		return fmt.Errorf("%w: estimation domain %v", ErrInvalidDomain, estimation)
	}
	bounds := estimation.Intersect(outliers)
	if bounds.Len() == 0 {
		return fmt.Errorf("%w: outlier domain %v outside %v", ErrInvalidDomain, outliers, estimation)
	}
	n := estimation.Len()
	c.bounds = Span{Start: bounds.Start - estimation.Start, End: bounds.End - estimation.Start}
	if c.table != nil && c.table.Len() == n && c.table.Kinds() == len(c.factories) {
		c.table.Reset()
		c.table.Undefine()
	} else {
		c.table = NewTable(n, len(c.factories))
	}
	for k, f := range c.factories {
		start, end := f.Domain(n)
		c.table.Define(k, Span{Start: start, End: end}.Intersect(c.bounds))
	}
	c.Clear()
	return nil
}

func (c *core) Process(p *regarima.Problem) bool {
	if c.table == nil || p.Len() != c.table.Len() {
		return false
	}
	c.Clear()
	c.model = p.Clone()
	return c.ensure()
}

// ensure computes the statistics when they are stale.
func (c *core) ensure() bool {
	if c.state == fresh {
		return true
	}
	if c.model == nil {
		return false
	}
	g, err := regarima.NewGLS(c.model, nil)
	if err != nil {
		c.logger.Debug("outlier detection failed", zap.Error(err))
		return false
	}
	c.scale = stats.RobustScale(g.Residuals(), c.pct)
	if !(c.scale > 0) {
		c.logger.Debug("outlier detection failed: degenerate residual scale", zap.Float64("scale", c.scale))
		return false
	}
	clear(c.table.t)
	if err := c.compute(g); err != nil {
		c.logger.Debug("outlier detection failed", zap.Error(err))
		return false
	}
	c.state = fresh
	return true
}

func (c *core) Exclude(pos, kind int) {
	if c.table != nil {
		c.table.Exclude(pos, kind)
	}
}

func (c *core) ExcludeAll(pos int) {
	if c.table != nil {
		c.table.ExcludeAll(pos)
	}
}

func (c *core) Allow(pos, kind int) {
	if c.table != nil {
		c.table.Allow(pos, kind)
	}
}

func (c *core) MaxOutlier() (Candidate, bool) {
	if c.table == nil || !c.ensure() {
		return Candidate{}, false
	}
	pos, kind, ok := c.table.Max()
	if !ok {
		return Candidate{}, false
	}
	return Candidate{Pos: pos, Kind: kind, Code: c.factories[kind].Code(), T: c.table.T(pos, kind)}, true
}

func (c *core) T(pos, kind int) float64 {
	if c.table == nil || !c.ensure() {
		return 0
	}
	return c.table.T(pos, kind)
}

func (c *core) Coeff(pos, kind int) float64 {
	return c.T(pos, kind) * c.scale
}

func (c *core) Scale() float64 {
	return c.scale
}

func (c *core) Clear() {
	c.state = stale
	c.model = nil
	c.scale = 0
}

// Table returns the statistic table, nil before Prepare.
func (c *core) Table() *Table {
	return c.table
}

// defined calls fn for every position where kind is defined, in increasing
// order. Excluded cells are computed too so that Allow needs no update.
func (c *core) defined(kind int, fn func(pos int)) {
	for pos := c.bounds.Start; pos < c.bounds.End; pos++ {
		if c.table.Defined(pos, kind) {
			fn(pos)
		}
	}
}
