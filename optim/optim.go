package optim

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNoConvergence is returned when the iteration limit is reached before
	// the precision criterion is met.
	ErrNoConvergence = errors.New("optim: no convergence")

	// ErrInvalidStart is returned when the residuals cannot be evaluated at the
	// starting point.
	ErrInvalidStart = errors.New("optim: starting point outside the domain")

	// ErrDimension is returned for an empty or inconsistent problem.
	ErrDimension = errors.New("optim: invalid problem dimensions")
)

// Problem is a nonlinear least-squares problem: minimize Σ r_i(x)² over x.
type Problem struct {
	// Dim is the number of parameters.
	Dim int
	// Len is the number of residuals.
	Len int
	// Residuals stores r(x) into dst. It returns false when x lies outside
	// the domain of the function.
	Residuals func(dst, x []float64) bool
}

// Settings controls a minimization.
type Settings struct {
	// Precision is the relative decrease of the objective below which the
	// iteration stops.
	Precision float64
	// MaxIterations bounds the number of outer iterations.
	MaxIterations int
	// Step is the finite-difference step used for derivatives.
	Step float64
}

// DefaultSettings returns the default minimization settings.
func DefaultSettings() Settings {
	return Settings{
		Precision:     1e-7,
		MaxIterations: 100,
		Step:          1e-6,
	}
}

// Result is the outcome of a minimization.
type Result struct {
	X          []float64
	Residuals  []float64
	SSQ        float64
	Iterations int
}

// Minimizer minimizes a least-squares problem from a starting point.
type Minimizer interface {
	Minimize(p Problem, x0 []float64, s Settings) (*Result, error)
}

func (p Problem) validate(x0 []float64) error {
	if p.Residuals == nil || p.Len <= 0 || p.Dim < 0 || len(x0) != p.Dim {
		return ErrDimension
	}
	return nil
}

// evaluate returns r(x) and its sum of squares.
func (p Problem) evaluate(x []float64) ([]float64, float64, bool) {
	r := make([]float64, p.Len)
	if !p.Residuals(r, x) {
		return nil, 0, false
	}
	ssq := floats.Dot(r, r)
	if math.IsNaN(ssq) || math.IsInf(ssq, 0) {
		return nil, 0, false
	}
	return r, ssq, true
}

// Jacobian returns the central-difference Jacobian of the residuals at x.
// Points outside the domain contribute the residuals at x, that is a zero
// one-sided difference.
func (p Problem) Jacobian(x, rx []float64, step float64) *mat.Dense {
	j := mat.NewDense(p.Len, p.Dim, nil)
	f := func(y, at []float64) {
		if !p.Residuals(y, at) {
			copy(y, rx)
		}
	}
	fd.Jacobian(j, f, x, &fd.JacobianSettings{
		Formula: fd.Central,
		Step:    step,
	})
	return j
}

// Curvature returns JᵀJ for the Jacobian j, the Gauss-Newton approximation
// of half the Hessian of the objective.
func Curvature(j *mat.Dense) *mat.SymDense {
	_, n := j.Dims()
	a := mat.NewSymDense(n, nil)
	a.SymOuterK(1, j.T())
	return a
}

func result(x, r []float64, ssq float64, iter int) *Result {
	return &Result{X: x, Residuals: r, SSQ: ssq, Iterations: iter}
}
