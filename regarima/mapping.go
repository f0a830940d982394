package regarima

import (
	"math"

	"github.com/sartorproj/goregarima/arima"
)

// block is one polynomial of the parameter vector (AR, SAR, MA or SMA).
type block struct {
	offset, n int
	free      int
	// pacf blocks are fully estimated and parameterized by atanh of their
	// partial autocorrelations, which keeps every point stable. Partially
	// fixed blocks use their coefficients directly and are checked instead.
	pacf bool
}

// mapping converts between the free ARMA parameters of a specification and
// the unconstrained vector seen by the minimizer.
type mapping struct {
	spec   *arima.Spec
	blocks []block
	dim    int
}

func newMapping(spec *arima.Spec) *mapping {
	o := spec.Order
	m := &mapping{spec: spec, dim: spec.FreeCount()}
	offset := 0
	for _, n := range []int{o.P, o.SP, o.Q, o.SQ} {
		b := block{offset: offset, n: n, pacf: n > 0}
		for i := offset; i < offset+n; i++ {
			if spec.IsFixed(i) {
				b.pacf = false
			} else {
				b.free++
			}
		}
		m.blocks = append(m.blocks, b)
		offset += n
	}
	return m
}

// Dim returns the number of free parameters.
func (m *mapping) Dim() int {
	return m.dim
}

// Internal returns the unconstrained vector of spec, which must share the
// order and the fixed flags of the mapping. Unstable PACF blocks are
// stabilized first.
func (m *mapping) Internal(spec *arima.Spec) []float64 {
	all := spec.Parameters()
	x := make([]float64, 0, m.dim)
	for _, b := range m.blocks {
		c := all[b.offset : b.offset+b.n]
		if b.pacf {
			r, ok := arima.ToPACF(c)
			if !ok {
				r, _ = arima.ToPACF(arima.Stabilize(c))
			}
			arima.ClampPACF(r)
			for _, v := range r {
				x = append(x, math.Atanh(v))
			}
			continue
		}
		for i, v := range c {
			if !spec.IsFixed(b.offset + i) {
				x = append(x, v)
			}
		}
	}
	return x
}

// Spec returns a new specification holding the parameters encoded by x. It
// returns false when a directly parameterized block is not stable.
func (m *mapping) Spec(x []float64) (*arima.Spec, bool) {
	all := m.spec.Parameters()
	j := 0
	for _, b := range m.blocks {
		c := all[b.offset : b.offset+b.n]
		if b.pacf {
			r := make([]float64, b.n)
			for i := range r {
				r[i] = math.Tanh(x[j])
				j++
			}
			copy(c, arima.FromPACF(r))
			continue
		}
		for i := range c {
			if !m.spec.IsFixed(b.offset + i) {
				c[i] = x[j]
				j++
			}
		}
		if b.free > 0 && !arima.IsStable(c) {
			return nil, false
		}
	}
	s := m.spec.Clone()
	s.SetParameters(all)
	return s, true
}

// coefficientSpec sets the free coefficients directly, without any
// transformation. Used for derivatives in coefficient space.
func (m *mapping) coefficientSpec(c []float64) (*arima.Spec, bool) {
	s := m.spec.Clone()
	s.SetFreeParameters(c)
	if !s.IsStationary() {
		return nil, false
	}
	return s, true
}
