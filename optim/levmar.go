package optim

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/goregarima/linalg"
)

const (
	initialDamping = 1e-3
	maxDamping     = 1e10
	minDamping     = 1e-12
)

// LevenbergMarquardt minimizes sums of squares with a damped Gauss-Newton
// iteration. Derivatives are central differences.
type LevenbergMarquardt struct{}

// Minimize implements Minimizer.
func (LevenbergMarquardt) Minimize(p Problem, x0 []float64, s Settings) (*Result, error) {
	if err := p.validate(x0); err != nil {
		return nil, err
	}
	x := append([]float64(nil), x0...)
	r, ssq, ok := p.evaluate(x)
	if !ok {
		return nil, ErrInvalidStart
	}
	if p.Dim == 0 {
		return &Result{X: x, Residuals: r, SSQ: ssq}, nil
	}

	lambda := initialDamping
	dx := make([]float64, p.Dim)
	for iter := 1; iter <= s.MaxIterations; iter++ {
		j := p.Jacobian(x, r, s.Step)
		a := Curvature(j)
		g := mat.NewVecDense(p.Dim, nil)
		g.MulVec(j.T(), mat.NewVecDense(p.Len, r))

		improved, converged := false, false
		for lambda <= maxDamping {
			if !dampedStep(dx, a, g, lambda) {
				lambda *= 10
				continue
			}
			xn := make([]float64, p.Dim)
			floats.AddTo(xn, x, dx)
			rn, ssqn, ok := p.evaluate(xn)
			if !ok || ssqn >= ssq {
				lambda *= 10
				continue
			}

			decrease := (ssq - ssqn) / math.Max(ssq, math.SmallestNonzeroFloat64)
			small := floats.Norm(dx, 2) <= s.Precision*(floats.Norm(x, 2)+s.Precision)
			x, r, ssq = xn, rn, ssqn
			lambda = math.Max(lambda/10, minDamping)
			improved = true
			converged = decrease <= s.Precision || small
			break
		}
		if !improved || converged {
			// No damping produced a decrease: x is a minimum to working precision.
			return result(x, r, ssq, iter), nil
		}
	}
	return result(x, r, ssq, s.MaxIterations), ErrNoConvergence
}

// dampedStep solves (A + λ diag(A)) dx = -g.
func dampedStep(dx []float64, a *mat.SymDense, g *mat.VecDense, lambda float64) bool {
	n := a.SymmetricDim()
	m := mat.NewSymDense(n, nil)
	m.CopySym(a)
	for i := 0; i < n; i++ {
		d := a.At(i, i)
		m.SetSym(i, i, d+lambda*math.Max(d, 1e-12))
	}
	step, err := linalg.SolveSPD(m, g.RawVector().Data)
	if err != nil {
		return false
	}
	floats.ScaleTo(dx, -1, step)
	return true
}
