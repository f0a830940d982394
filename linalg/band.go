package linalg

import "math"

// BandCholesky is the lower Cholesky factor of an n×n symmetric positive
// definite matrix whose entries vanish more than w positions off the diagonal.
type BandCholesky struct {
	n, w int
	// l[i*(w+1)+d] holds L(i, i-d).
	l []float64
}

// NewBandCholesky factorizes the band matrix whose lower entries are given by
// at(i, j) for i-w <= j <= i.
func NewBandCholesky(n, w int, at func(i, j int) float64) (*BandCholesky, error) {
	if n <= 0 {
		return nil, ErrEmpty
	}
	if w < 0 {
		w = 0
	}
	c := &BandCholesky{n: n, w: w, l: make([]float64, n*(w+1))}

	for i := 0; i < n; i++ {
		for d := min(i, w); d >= 0; d-- {
			j := i - d
			s := at(i, j)
			for k := max(0, i-w); k < j; k++ {
				s -= c.l[i*(w+1)+i-k] * c.l[j*(w+1)+j-k]
			}
			if d == 0 {
				if s <= 0 || math.IsNaN(s) {
					return nil, ErrNotPositiveDefinite
				}
				c.l[i*(w+1)] = math.Sqrt(s)
			} else {
				c.l[i*(w+1)+d] = s / c.l[j*(w+1)]
			}
		}
	}
	return c, nil
}

// Size returns the dimension of the factorized matrix.
func (c *BandCholesky) Size() int {
	return c.n
}

// Bandwidth returns the number of sub-diagonals of the factor.
func (c *BandCholesky) Bandwidth() int {
	return c.w
}

// SolveLower overwrites b with L⁻¹b.
func (c *BandCholesky) SolveLower(b []float64) {
	w := c.w
	for i := 0; i < c.n; i++ {
		s := b[i]
		for d := 1; d <= min(i, w); d++ {
			s -= c.l[i*(w+1)+d] * b[i-d]
		}
		b[i] = s / c.l[i*(w+1)]
	}
}

// LogDet returns the logarithm of the determinant of the factorized matrix.
func (c *BandCholesky) LogDet() float64 {
	s := 0.0
	for i := 0; i < c.n; i++ {
		s += math.Log(c.l[i*(c.w+1)])
	}
	return 2 * s
}
