package regarima

import (
	"math"

	"go.uber.org/zap"

	"github.com/sartorproj/goregarima/arima"
)

// commonRoots are the linear factors (1 + aB) checked for cancellation:
// (1-B) and (1+B).
var commonRoots = []float64{-1, 1}

// cancelUnitRoots looks for a factor shared by the regular AR and MA
// polynomials of est at B = 1 and B = -1. A shared factor is divided out of
// both, the parameters are re-estimated from the simplified values, and the
// new estimation replaces est unless its likelihood is lower.
func (e *Estimator) cancelUnitRoots(p *Problem, model *linearModel, est *Estimation) *Estimation {
	for _, a := range commonRoots {
		simplified, ok := e.simplify(est.Spec, a)
		if !ok {
			continue
		}
		cand, err := e.optimize(p, model, simplified)
		if err != nil {
			e.logger.Debug("unit root cancellation failed", zap.Float64("root", -1/a), zap.Error(err))
			continue
		}
		if cand.Likelihood.LogLik < est.Likelihood.LogLik {
			e.logger.Debug("unit root cancellation rejected",
				zap.Float64("root", -1/a),
				zap.Float64("loglik", cand.Likelihood.LogLik),
				zap.Float64("previous", est.Likelihood.LogLik))
			continue
		}
		e.logger.Debug("unit root cancelled",
			zap.Float64("root", -1/a),
			zap.Stringer("spec", cand.Spec))
		cand.Iterations += est.Iterations
		cand.UnitRootsCancelled = est.UnitRootsCancelled + 1
		est = cand
	}
	return est
}

// simplify divides (1 + aB) out of the regular AR and MA polynomials of spec
// when both nearly vanish at B = -1/a. The orders are kept: the last
// coefficient of each simplified polynomial is zero.
func (e *Estimator) simplify(spec *arima.Spec, a float64) (*arima.Spec, bool) {
	o := spec.Order
	if o.P == 0 || o.Q == 0 {
		return nil, false
	}
	for i := 0; i < o.P; i++ {
		if spec.IsFixed(i) {
			return nil, false
		}
	}
	for i := 0; i < o.Q; i++ {
		if spec.IsFixed(o.P + o.SP + i) {
			return nil, false
		}
	}

	ar := arima.Lag(spec.ARCoeffs, 1)
	ma := arima.Lag(spec.MACoeffs, 1)
	root := -1 / a
	tol := e.cfg.UnitRootTolerance
	if math.Abs(ar.Eval(root)) >= tol || math.Abs(ma.Eval(root)) >= tol {
		return nil, false
	}

	qar, _ := ar.DivideLinear(a)
	qma, _ := ma.DivideLinear(a)
	s := spec.Clone()
	clear(s.ARCoeffs)
	clear(s.MACoeffs)
	copy(s.ARCoeffs, qar.Coefficients())
	copy(s.MACoeffs, qma.Coefficients())
	stabilize(s)
	return s, true
}
