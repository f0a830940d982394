package outliers

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/sartorproj/goregarima/regarima"
)

// LoopConfig holds the settings of the selection loop.
type LoopConfig struct {
	// CriticalValue is the |t| above which a candidate is accepted. Zero
	// selects DefaultCriticalValue of the series length.
	CriticalValue float64
	// MaxIterations bounds the outliers added by one growing phase and the
	// number of grow/prune rounds.
	MaxIterations int
	// Reduction is the relative decrease of the critical value applied by
	// ContinueProcessing, which never goes below MinCriticalValue.
	Reduction        float64
	MinCriticalValue float64
	// Span restricts the positions searched for outliers. An empty span
	// searches the whole series.
	Span   Span
	Logger *zap.Logger
}

// DefaultLoopConfig returns the default loop settings.
func DefaultLoopConfig() LoopConfig {
	return LoopConfig{
		MaxIterations:    30,
		Reduction:        DefaultReduction,
		MinCriticalValue: MinCriticalValue,
	}
}

// Action is the kind of a loop event.
type Action string

const (
	ActionAdd           Action = "add"
	ActionRemove        Action = "remove"
	ActionCycle         Action = "cycle"
	ActionCriticalValue Action = "critical-value"
)

// Event is an entry of the processing log.
type Event struct {
	Action        Action
	Outlier       Outlier
	T             float64
	CriticalValue float64
}

// Loop adds the most significant outliers to a regression-ARIMA problem and
// removes the accepted ones that lose significance, re-estimating the model
// after each change.
//
// A Loop owns its detector and is not safe for concurrent use.
type Loop struct {
	estimator *regarima.Estimator
	detector  Detector
	cfg       LoopConfig
	logger    *zap.Logger

	problem     *regarima.Problem
	estimation  *regarima.Estimation
	outliers    []Outlier
	cv          float64
	events      []Event
	stale       bool
	lastRemoved *Outlier
}

// NewLoop creates a loop. Zero settings take their default values.
func NewLoop(estimator *regarima.Estimator, detector Detector, cfg LoopConfig) *Loop {
	def := DefaultLoopConfig()
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = def.MaxIterations
	}
	if cfg.Reduction <= 0 || cfg.Reduction >= 1 {
		cfg.Reduction = def.Reduction
	}
	if cfg.MinCriticalValue <= 0 {
		cfg.MinCriticalValue = def.MinCriticalValue
	}
	l := &Loop{estimator: estimator, detector: detector, cfg: cfg, logger: cfg.Logger}
	if l.logger == nil {
		l.logger = zap.NewNop()
	}
	return l
}

// Process searches the outliers of a copy of p. It reports whether outliers
// were added or removed. Outlier variables already in p are kept when they
// are prespecified and may be removed otherwise.
func (l *Loop) Process(p *regarima.Problem) (bool, error) {
	if len(l.detector.Factories()) == 0 {
		return false, ErrNoFactories
	}
	if err := p.Validate(); err != nil {
		return false, err
	}
	n := p.Len()
	span := l.cfg.Span
	if span.Len() == 0 {
		span = Span{Start: 0, End: n}
	}
	if err := l.detector.Prepare(Span{Start: 0, End: n}, span); err != nil {
		return false, err
	}

	l.problem = p.Clone()
	l.estimation = nil
	l.outliers = nil
	l.events = nil
	for _, pos := range p.Missing() {
		l.detector.ExcludeAll(pos)
	}
	for _, v := range p.Variables {
		if !v.Outlier {
			continue
		}
		o, err := ParseName(v.Name)
		if err != nil {
			return false, err
		}
		o.Prespecified = v.Prespecified
		if k := l.kind(o.Code); k >= 0 {
			l.detector.Exclude(o.Pos, k)
		}
		l.outliers = append(l.outliers, o)
	}

	l.cv = l.cfg.CriticalValue
	if l.cv <= 0 {
		l.cv = DefaultCriticalValue(n)
	}
	est, err := l.estimator.Process(l.problem)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrEstimation, err)
	}
	l.setEstimation(est)
	l.logger.Debug("outlier detection started",
		zap.Int("n", n),
		zap.Float64("cv", l.cv),
		zap.Stringer("spec", est.Spec))
	return l.run()
}

// ContinueProcessing lowers the critical value by the configured reduction,
// down to the minimum, and searches again. It returns false without work
// once the minimum has been reached.
func (l *Loop) ContinueProcessing() (bool, error) {
	if l.problem == nil {
		return false, ErrNotProcessed
	}
	if l.cv <= l.cfg.MinCriticalValue {
		return false, nil
	}
	return l.ContinueProcessingWith(math.Max(l.cv*(1-l.cfg.Reduction), l.cfg.MinCriticalValue))
}

// ContinueProcessingWith searches again with the critical value cv.
func (l *Loop) ContinueProcessingWith(cv float64) (bool, error) {
	if l.problem == nil {
		return false, ErrNotProcessed
	}
	l.cv = cv
	l.record(Event{Action: ActionCriticalValue, CriticalValue: cv})
	return l.run()
}

// Problem returns the current problem, with the accepted outliers among its
// variables and the estimated ARIMA parameters. It must not be modified.
func (l *Loop) Problem() *regarima.Problem {
	return l.problem
}

// Outliers returns the accepted outliers, in order of acceptance.
func (l *Loop) Outliers() []Outlier {
	return append([]Outlier(nil), l.outliers...)
}

// Estimation returns the estimation of the current problem.
func (l *Loop) Estimation() *regarima.Estimation {
	return l.estimation
}

// CriticalValue returns the current critical value.
func (l *Loop) CriticalValue() float64 {
	return l.cv
}

// Log returns the processing events.
func (l *Loop) Log() []Event {
	return append([]Event(nil), l.events...)
}

func (l *Loop) run() (bool, error) {
	l.lastRemoved = nil
	changed := false
	for round := 0; round < l.cfg.MaxIterations; round++ {
		added, err := l.grow()
		changed = changed || added > 0
		if err != nil {
			return changed, err
		}
		removed, cycle, err := l.prune()
		changed = changed || removed > 0
		if err != nil {
			return changed, err
		}
		if removed == 0 || cycle {
			break
		}
	}
	return changed, nil
}

// grow adds the most significant candidate while it exceeds the critical
// value and the problem has room for another regressor.
func (l *Loop) grow() (int, error) {
	added := 0
	for added < l.cfg.MaxIterations {
		if err := l.update(); err != nil {
			return added, err
		}
		if l.problem.Capacity() == 0 {
			l.logger.Debug("no degrees of freedom left for outliers",
				zap.Int("outliers", len(l.outliers)))
			break
		}
		if !l.detector.Process(l.estimation.Problem) {
			l.logger.Debug("outlier statistics unavailable")
			break
		}
		c, ok := l.detector.MaxOutlier()
		if !ok || math.Abs(c.T) <= l.cv {
			break
		}
		if err := l.add(c); err != nil {
			return added, err
		}
		added++
	}
	return added, l.update()
}

// prune removes the least significant outlier while it is below the
// critical value. It stops on a cycle: removing the outlier removed by the
// previous pruning step.
func (l *Loop) prune() (int, bool, error) {
	removed := 0
	for {
		i, t := l.weakest()
		if i < 0 || math.Abs(t) >= l.cv {
			return removed, false, nil
		}
		o := l.outliers[i]
		if err := l.remove(i, t); err != nil {
			return removed, false, err
		}
		removed++
		if err := l.update(); err != nil {
			return removed, false, err
		}
		if l.lastRemoved != nil && *l.lastRemoved == o {
			l.record(Event{Action: ActionCycle, Outlier: o, T: t, CriticalValue: l.cv})
			return removed, true, nil
		}
		l.lastRemoved = &o
	}
}

// weakest returns the index and t-statistic of the removable outlier with
// the smallest |t|, or -1.
func (l *Loop) weakest() (int, float64) {
	best, bestT := -1, 0.0
	for i, o := range l.outliers {
		if o.Prespecified {
			continue
		}
		t, err := l.estimation.TStat(o.Name())
		if err != nil {
			continue
		}
		if best < 0 || math.Abs(t) < math.Abs(bestT) {
			best, bestT = i, t
		}
	}
	return best, bestT
}

func (l *Loop) add(c Candidate) error {
	f := l.detector.Factories()[c.Kind]
	o := c.Outlier()
	v := regarima.Variable{Name: o.Name(), Values: column(f, c.Pos, l.problem.Len()), Outlier: true}
	if err := l.problem.AddVariable(v); err != nil {
		return err
	}
	l.detector.Exclude(c.Pos, c.Kind)
	l.outliers = append(l.outliers, o)
	l.stale = true
	l.record(Event{Action: ActionAdd, Outlier: o, T: c.T, CriticalValue: l.cv})
	return nil
}

func (l *Loop) remove(i int, t float64) error {
	o := l.outliers[i]
	if err := l.problem.RemoveVariable(o.Name()); err != nil {
		return err
	}
	if k := l.kind(o.Code); k >= 0 {
		l.detector.Allow(o.Pos, k)
	}
	l.outliers = append(l.outliers[:i], l.outliers[i+1:]...)
	l.stale = true
	l.record(Event{Action: ActionRemove, Outlier: o, T: t, CriticalValue: l.cv})
	return nil
}

// update re-estimates the problem after a change, from the current
// parameters.
func (l *Loop) update() error {
	if !l.stale {
		return nil
	}
	est, err := l.estimator.Optimize(l.problem, l.problem.Spec)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEstimation, err)
	}
	l.setEstimation(est)
	return nil
}

func (l *Loop) setEstimation(est *regarima.Estimation) {
	l.estimation = est
	l.problem.Spec = est.Spec.Clone()
	l.stale = false
}

func (l *Loop) kind(code string) int {
	for k, f := range l.detector.Factories() {
		if f.Code() == code {
			return k
		}
	}
	return -1
}

func (l *Loop) record(ev Event) {
	l.events = append(l.events, ev)
	l.logger.Debug("outlier loop",
		zap.String("action", string(ev.Action)),
		zap.Stringer("outlier", ev.Outlier),
		zap.Float64("t", ev.T),
		zap.Float64("cv", ev.CriticalValue))
}
