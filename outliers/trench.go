package outliers

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/goregarima/arima"
	"github.com/sartorproj/goregarima/linalg"
	"github.com/sartorproj/goregarima/regarima"
)

const (
	// genericFraction is the share of the series above which a differenced
	// candidate is handled as a dense vector instead of a shifted kernel.
	genericFraction = 0.5
	// kernelTolerance is the size, relative to the largest value, below
	// which a differenced candidate is taken as equal to its constant
	// tail. It truncates the geometric decay of transitory changes.
	kernelTolerance = 1e-12
)

// Trench computes the GLS t-statistics from S = Σ⁻¹, the inverse of the
// covariance matrix of the differenced ARMA process obtained with Trench's
// algorithm. With X the differenced regressors, u the differenced residuals
// and d a differenced candidate,
//
//	t = dᵀSu / (σ·sqrt(dᵀSd - zᵀ(XᵀSX)⁻¹z)),  z = XᵀSd
//
// SX, Su and XᵀSX are computed once. Differencing turns most candidates into
// a short kernel followed by a constant tail (zero for AO, LS and SO once
// differenced, the level for undifferenced LS); the products with S are
// then restricted to the kernel, and the constant parts use cumulated row
// sums of S.
//
// Each factory is differenced once per fit; the candidate at a position is a
// slice of that template, and dᵀSd of its kernel is carried from one
// position to the next with the displacement structure of S. After the
// O(m²) products above, a position costs O(L·(k+1)) for a kernel of length L
// and k regressors.
type Trench struct {
	core
}

// NewTrench creates a Trench detector.
func NewTrench(factories []Factory, cfg DetectorConfig) *Trench {
	d := &Trench{}
	d.core = newCore(factories, cfg, d.statistics)
	return d
}

// shape is a differenced candidate: c0 on [0, lo), head on [lo, hi) and c1
// on [hi, m).
type shape struct {
	c0, c1 float64
	lo, hi int
	head   []float64
}

// newShape splits d into its constant ends and its head. Values within tol
// of an end constant belong to the end, and constants within tol of zero
// are zero.
func newShape(d []float64, tol float64) shape {
	m := len(d)
	s := shape{c0: d[0], c1: d[m-1]}
	for s.lo < m && math.Abs(d[s.lo]-s.c0) <= tol {
		s.lo++
	}
	s.hi = m
	for s.hi > s.lo && math.Abs(d[s.hi-1]-s.c1) <= tol {
		s.hi--
	}
	if math.Abs(s.c0) <= tol {
		s.c0 = 0
	}
	if math.Abs(s.c1) <= tol {
		s.c1 = 0
	}
	s.head = d[s.lo:s.hi]
	return s
}

// template is the differenced effect of a factory at every lag: the
// differenced candidate at pos is d[n-pos : n-pos+m]. Its shape is the
// shape of the candidate at pos = n.
type template struct {
	n   int
	d   []float64
	tol float64
	shape
}

func newTemplate(f Factory, g *regarima.GLS, n int) *template {
	buf := make([]float64, 2*n)
	f.Fill(n, buf)
	d := g.Difference(buf)
	tol := kernelTolerance * floats.Norm(d, math.Inf(1))
	return &template{n: n, d: d, tol: tol, shape: newShape(d, tol)}
}

// at returns the differenced candidate at pos for m differenced
// observations.
func (t *template) at(pos, m int) []float64 {
	return t.d[t.n-pos : t.n-pos+m]
}

// shifted returns the shape of the candidate at pos. It is valid when the
// head lies inside [0, m).
func (t *template) shifted(pos int) shape {
	sh := t.shape
	sh.lo += pos - t.n
	sh.hi += pos - t.n
	return sh
}

// headRun carries hᵀSh of a head across consecutive positions.
type headRun struct {
	lo    int
	q     float64
	valid bool
}

// trenchCache holds the products with S of one fitted model.
type trenchCache struct {
	m int
	s *mat.SymDense
	// cumulated sums: suffix[i][h] = Σ_{j>=h} S[i][j] and
	// rows[l][h] = Σ_{i<l} suffix[i][h].
	suffix *mat.Dense
	rows   *mat.Dense

	v        []float64 // Su
	prefixV  []float64 // prefixV[l] = Σ_{i<l} v_i
	w        *mat.Dense
	prefixW  *mat.Dense // prefixW[l][j] = Σ_{i<l} W[i][j]
	chol     *mat.Cholesky
	k        int
	readySum bool

	// x is the first column of S and y its reversed shift, y_0 = 0 and
	// y_i = x_{m-i}, so that S[i][j] = S[i-1][j-1] + (x_i x_j - y_i y_j)/x_0.
	x, y []float64
}

func newTrenchCache(g *regarima.GLS) (*trenchCache, error) {
	spec := g.Spec()
	m := g.Len()
	acov, err := arima.Autocovariance(spec.AR(), spec.MA(), m)
	if err != nil {
		return nil, err
	}
	s, err := linalg.ToeplitzInverse(acov)
	if err != nil {
		return nil, fmt.Errorf("trench: %w", err)
	}
	c := &trenchCache{m: m, s: s, x: make([]float64, m), y: make([]float64, m)}
	for i := 0; i < m; i++ {
		c.x[i] = s.At(i, 0)
	}
	for i := 1; i < m; i++ {
		c.y[i] = c.x[m-i]
	}

	u := g.DifferencedResiduals()
	var v mat.VecDense
	v.MulVec(s, mat.NewVecDense(m, u))
	c.v = make([]float64, m)
	c.prefixV = make([]float64, m+1)
	for i := 0; i < m; i++ {
		c.v[i] = v.AtVec(i)
		c.prefixV[i+1] = c.prefixV[i] + c.v[i]
	}

	if x := g.Design(); x != nil {
		_, c.k = x.Dims()
		c.w = mat.NewDense(m, c.k, nil)
		c.w.Mul(s, x)
		a := mat.NewSymDense(c.k, nil)
		var xsx mat.Dense
		xsx.Mul(x.T(), c.w)
		for i := 0; i < c.k; i++ {
			for j := i; j < c.k; j++ {
				a.SetSym(i, j, 0.5*(xsx.At(i, j)+xsx.At(j, i)))
			}
		}
		c.chol = &mat.Cholesky{}
		if !c.chol.Factorize(a) {
			return nil, fmt.Errorf("trench: %w", linalg.ErrNotPositiveDefinite)
		}
		c.prefixW = mat.NewDense(m+1, c.k, nil)
		for i := 0; i < m; i++ {
			for j := 0; j < c.k; j++ {
				c.prefixW.Set(i+1, j, c.prefixW.At(i, j)+c.w.At(i, j))
			}
		}
	}
	return c, nil
}

// cumulate computes the cumulated row sums of S used by constant parts.
func (c *trenchCache) cumulate() {
	if c.readySum {
		return
	}
	m := c.m
	c.suffix = mat.NewDense(m, m+1, nil)
	for i := 0; i < m; i++ {
		for h := m - 1; h >= 0; h-- {
			c.suffix.Set(i, h, c.suffix.At(i, h+1)+c.s.At(i, h))
		}
	}
	c.rows = mat.NewDense(m+1, m+1, nil)
	for l := 0; l < m; l++ {
		for h := 0; h <= m; h++ {
			c.rows.Set(l+1, h, c.rows.At(l, h)+c.suffix.At(l, h))
		}
	}
	c.readySum = true
}

// terms returns dᵀSu, dᵀSd and z = XᵀSd for a differenced candidate.
func (c *trenchCache) terms(d []float64, tol float64) (num, quad float64, z []float64) {
	sh := newShape(d, tol)
	if sh.hi-sh.lo > c.limit() {
		return c.generic(d)
	}
	return c.shapeTerms(sh, c.headQuad(sh))
}

// shapeTerms returns the terms of a candidate of shape sh whose head has
// the quadratic form hq.
func (c *trenchCache) shapeTerms(sh shape, hq float64) (float64, float64, []float64) {
	if sh.c0 == 0 && sh.c1 == 0 {
		return c.difference(sh, hq)
	}
	return c.cumulated(sh, hq)
}

// limit is the longest head handled as a kernel.
func (c *trenchCache) limit() int {
	return int(genericFraction * float64(c.m))
}

// generic handles any candidate with dense products.
func (c *trenchCache) generic(d []float64) (float64, float64, []float64) {
	dv := mat.NewVecDense(c.m, d)
	var sd mat.VecDense
	sd.MulVec(c.s, dv)
	num := floats.Dot(d, c.v)
	quad := mat.Dot(dv, &sd)
	var z []float64
	if c.k > 0 {
		var zv mat.VecDense
		zv.MulVec(c.w.T(), dv)
		z = zv.RawVector().Data
	}
	return num, quad, z
}

// difference handles candidates vanishing outside their kernel.
func (c *trenchCache) difference(sh shape, hq float64) (float64, float64, []float64) {
	num := floats.Dot(sh.head, c.v[sh.lo:sh.hi])
	return num, hq, c.headZ(sh)
}

// cumulated handles kernels with constant non-zero parts.
func (c *trenchCache) cumulated(sh shape, hq float64) (float64, float64, []float64) {
	c.cumulate()
	m := c.m
	lo, hi := sh.lo, sh.hi

	num := floats.Dot(sh.head, c.v[lo:hi]) +
		sh.c0*c.prefixV[lo] + sh.c1*(c.prefixV[m]-c.prefixV[hi])

	quad := hq
	var hp, hs float64
	for i, x := range sh.head {
		row := lo + i
		hp += x * (c.suffix.At(row, 0) - c.suffix.At(row, lo))
		hs += x * c.suffix.At(row, hi)
	}
	pp := c.rows.At(lo, 0) - c.rows.At(lo, lo)
	ss := c.rows.At(m, hi) - c.rows.At(hi, hi)
	ps := c.rows.At(lo, hi)
	quad += 2*sh.c0*hp + 2*sh.c1*hs +
		sh.c0*sh.c0*pp + sh.c1*sh.c1*ss + 2*sh.c0*sh.c1*ps

	z := c.headZ(sh)
	for j := range z {
		z[j] += sh.c0*c.prefixW.At(lo, j) +
			sh.c1*(c.prefixW.At(m, j)-c.prefixW.At(hi, j))
	}
	return num, quad, z
}

// headQuadAt returns hᵀSh for the head of sh and records it in run. When
// the head moved by one position since the previous call, the form is
// updated by ((xᵀh)² - (yᵀh)²)/x_0 instead of being recomputed.
func (c *trenchCache) headQuadAt(sh shape, run *headRun) float64 {
	if run.valid && sh.lo == run.lo+1 {
		cx := floats.Dot(sh.head, c.x[sh.lo:sh.hi])
		cy := floats.Dot(sh.head, c.y[sh.lo:sh.hi])
		run.q += (cx*cx - cy*cy) / c.x[0]
	} else {
		run.q = c.headQuad(sh)
	}
	run.lo, run.valid = sh.lo, true
	return run.q
}

func (c *trenchCache) headQuad(sh shape) float64 {
	var q float64
	for i, x := range sh.head {
		if x == 0 {
			continue
		}
		row := sh.lo + i
		q += x * x * c.s.At(row, row)
		for j := i + 1; j < len(sh.head); j++ {
			q += 2 * x * sh.head[j] * c.s.At(row, sh.lo+j)
		}
	}
	return q
}

func (c *trenchCache) headZ(sh shape) []float64 {
	if c.k == 0 {
		return nil
	}
	z := make([]float64, c.k)
	for i, x := range sh.head {
		if x == 0 {
			continue
		}
		for j := range z {
			z[j] += x * c.w.At(sh.lo+i, j)
		}
	}
	return z
}

// projected returns zᵀ(XᵀSX)⁻¹z.
func (c *trenchCache) projected(z []float64) float64 {
	if c.k == 0 {
		return 0
	}
	zv := mat.NewVecDense(c.k, z)
	var y mat.VecDense
	if err := c.chol.SolveVecTo(&y, zv); err != nil {
		return 0
	}
	return mat.Dot(zv, &y)
}

func (d *Trench) statistics(g *regarima.GLS) error {
	c, err := newTrenchCache(g)
	if err != nil {
		return err
	}
	n := d.table.Len()
	for k, f := range d.factories {
		tp := newTemplate(f, g, n)
		var run headRun
		d.defined(k, func(pos int) {
			var num, quad float64
			var z []float64
			if sh := tp.shifted(pos); sh.lo >= 0 && sh.hi <= c.m && len(sh.head) <= c.limit() {
				num, quad, z = c.shapeTerms(sh, c.headQuadAt(sh, &run))
			} else {
				num, quad, z = c.terms(tp.at(pos, c.m), tp.tol)
			}
			d.table.Set(pos, k, statistic(num, quad, c.projected(z), d.scale))
		})
	}
	return nil
}
