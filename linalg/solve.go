package linalg

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// rankTolerance is the relative size below which a diagonal entry of the
// triangular factor is treated as zero.
const rankTolerance = 1e-12

// LeastSquares is an ordinary least-squares fit y = Xb + e computed through
// a Householder QR decomposition of X.
type LeastSquares struct {
	Coefficients []float64
	Residuals    []float64
	SSQ          float64

	x *mat.Dense
	r *mat.TriDense
}

// NewLeastSquares fits y on the columns of x. A nil x (or one without
// columns) yields the trivial fit with residuals equal to y.
func NewLeastSquares(x *mat.Dense, y []float64) (*LeastSquares, error) {
	ls := &LeastSquares{x: x}
	if x == nil || x.IsEmpty() {
		ls.Residuals = append([]float64(nil), y...)
		ls.SSQ = floats.Dot(y, y)
		return ls, nil
	}

	m, k := x.Dims()
	if m != len(y) {
		return nil, ErrDimensionMismatch
	}
	if m < k {
		return nil, ErrSingular
	}

	var qr mat.QR
	qr.Factorize(x)

	var full mat.Dense
	qr.RTo(&full)
	r := mat.NewTriDense(k, mat.Upper, nil)
	dmax := 0.0
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			r.SetTri(i, j, full.At(i, j))
		}
		dmax = math.Max(dmax, math.Abs(full.At(i, i)))
	}
	for i := 0; i < k; i++ {
		if math.Abs(r.At(i, i)) <= rankTolerance*dmax || dmax == 0 {
			return nil, ErrSingular
		}
	}
	ls.r = r

	var b mat.VecDense
	if err := qr.SolveVecTo(&b, false, mat.NewVecDense(m, y)); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, fmt.Errorf("least squares: %w", err)
		}
	}
	ls.Coefficients = make([]float64, k)
	for i := range ls.Coefficients {
		ls.Coefficients[i] = b.AtVec(i)
	}

	var fit mat.VecDense
	fit.MulVec(x, &b)
	ls.Residuals = make([]float64, m)
	for i := range ls.Residuals {
		ls.Residuals[i] = y[i] - fit.AtVec(i)
	}
	ls.SSQ = floats.Dot(ls.Residuals, ls.Residuals)
	return ls, nil
}

// Columns returns the number of regressors of the fit.
func (ls *LeastSquares) Columns() int {
	if ls.r == nil {
		return 0
	}
	k, _ := ls.r.Dims()
	return k
}

// ProjectedNorm returns ‖Qᵀc‖², the squared norm of the projection of c onto
// the column space of X, using back-substitution on the triangular factor.
func (ls *LeastSquares) ProjectedNorm(c []float64) float64 {
	k := ls.Columns()
	if k == 0 {
		return 0
	}
	m, _ := ls.x.Dims()
	v := make([]float64, k)
	col := make([]float64, m)
	for j := 0; j < k; j++ {
		mat.Col(col, j, ls.x)
		v[j] = floats.Dot(col, c)
	}
	z := ls.SolveRT(v)
	return floats.Dot(z, z)
}

// SolveRT solves Rᵀz = v for z.
func (ls *LeastSquares) SolveRT(v []float64) []float64 {
	k := ls.Columns()
	if k == 0 {
		return nil
	}
	var z mat.VecDense
	if err := z.SolveVec(ls.r.T(), mat.NewVecDense(k, v)); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return make([]float64, k)
		}
	}
	return z.RawVector().Data
}

// Unscaled returns (XᵀX)⁻¹, the covariance of the coefficients for a unit
// error variance.
func (ls *LeastSquares) Unscaled() (*mat.SymDense, error) {
	k := ls.Columns()
	if k == 0 {
		return nil, nil
	}
	var rinv mat.TriDense
	if err := rinv.InverseTri(ls.r); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, ErrSingular
		}
	}
	c := mat.NewSymDense(k, nil)
	c.SymOuterK(1, &rinv)
	return c, nil
}

// InverseSPD inverts a symmetric positive definite matrix through its
// Cholesky decomposition.
func InverseSPD(a mat.Symmetric) (*mat.SymDense, error) {
	var chol mat.Cholesky
	if ok := chol.Factorize(a); !ok {
		return nil, ErrNotPositiveDefinite
	}
	var inv mat.SymDense
	if err := chol.InverseTo(&inv); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}
	return &inv, nil
}

// SolveSPD solves a x = b for a symmetric positive definite a.
func SolveSPD(a mat.Symmetric, b []float64) ([]float64, error) {
	var chol mat.Cholesky
	if ok := chol.Factorize(a); !ok {
		return nil, ErrNotPositiveDefinite
	}
	var x mat.VecDense
	if err := chol.SolveVecTo(&x, mat.NewVecDense(len(b), b)); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, err
		}
	}
	out := make([]float64, len(b))
	for i := range out {
		out[i] = x.AtVec(i)
	}
	return out, nil
}
