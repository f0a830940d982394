package optim

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"
)

// BFGS minimizes the sum of squares as a general smooth function with the
// quasi-Newton method of gonum/optimize and central-difference gradients.
type BFGS struct{}

// Minimize implements Minimizer.
func (BFGS) Minimize(p Problem, x0 []float64, s Settings) (*Result, error) {
	if err := p.validate(x0); err != nil {
		return nil, err
	}
	r, ssq, ok := p.evaluate(x0)
	if !ok {
		return nil, ErrInvalidStart
	}
	if p.Dim == 0 {
		return &Result{X: append([]float64(nil), x0...), Residuals: r, SSQ: ssq}, nil
	}

	f := func(x []float64) float64 {
		_, v, ok := p.evaluate(x)
		if !ok {
			return math.Inf(1)
		}
		return v
	}
	problem := optimize.Problem{
		Func: f,
		Grad: func(grad, x []float64) {
			fd.Gradient(grad, f, x, &fd.Settings{
				Formula: fd.Central,
				Step:    s.Step,
			})
		},
	}
	settings := &optimize.Settings{
		GradientThreshold: 1e-10,
		MajorIterations:   s.MaxIterations,
		Converger: &optimize.FunctionConverge{
			Relative:   s.Precision,
			Iterations: 3,
		},
	}

	res, err := optimize.Minimize(problem, x0, settings, &optimize.BFGS{})
	if res == nil {
		return nil, fmt.Errorf("bfgs: %w", err)
	}
	x := append([]float64(nil), res.X...)
	r, ssq, ok = p.evaluate(x)
	if !ok {
		return nil, fmt.Errorf("bfgs: %w", ErrInvalidStart)
	}
	out := result(x, r, ssq, res.MajorIterations)
	switch {
	case err == nil:
		return out, nil
	case errors.Is(err, optimize.ErrNoProgress), errors.Is(err, optimize.ErrLinesearcherFailure):
		// The line search cannot improve on X with finite-difference gradients.
		return out, nil
	case res.Status == optimize.IterationLimit:
		return out, ErrNoConvergence
	}
	return out, fmt.Errorf("bfgs: %w", err)
}
