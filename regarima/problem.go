package regarima

import (
	"fmt"
	"math"

	"github.com/sartorproj/goregarima/arima"
)

// Variable is a named regression variable observed over the whole series.
type Variable struct {
	Name   string
	Values []float64
	// Outlier marks columns generated by outlier detection.
	Outlier bool
	// Prespecified columns are never removed by outlier pruning.
	Prespecified bool
}

// Problem is a regression-ARIMA problem
//
//	y_t = Σ β_j x_jt + u_t,   Φ(B)Φs(B^m)δ(B) u_t = Θ(B)Θs(B^m) ε_t
//
// Missing observations (NaN in Y) are estimated as additive outliers: the
// observation is set to zero and an impulse regressor is added for it.
type Problem struct {
	Y         []float64
	Spec      *arima.Spec
	Mean      bool
	Variables []Variable
}

// NewProblem creates a problem without regressors. Y and spec are not copied.
func NewProblem(y []float64, spec *arima.Spec) *Problem {
	return &Problem{Y: y, Spec: spec}
}

// Len returns the number of observations, missing ones included.
func (p *Problem) Len() int {
	return len(p.Y)
}

// Missing returns the positions of the missing observations.
func (p *Problem) Missing() []int {
	var idx []int
	for i, v := range p.Y {
		if math.IsNaN(v) {
			idx = append(idx, i)
		}
	}
	return idx
}

// RegressorCount returns the number of columns of the regression, including
// the mean and the missing-value impulses.
func (p *Problem) RegressorCount() int {
	k := len(p.Variables) + len(p.Missing())
	if p.Mean {
		k++
	}
	return k
}

// Validate checks the dimensions of the problem.
func (p *Problem) Validate() error {
	if p.Spec == nil {
		return fmt.Errorf("%w: no ARIMA specification", ErrInvalidProblem)
	}
	if err := p.Spec.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProblem, err)
	}
	seen := make(map[string]bool, len(p.Variables))
	for _, v := range p.Variables {
		if len(v.Values) != len(p.Y) {
			return fmt.Errorf("%w: variable %q has %d values for %d observations",
				ErrInvalidProblem, v.Name, len(v.Values), len(p.Y))
		}
		if seen[v.Name] {
			return fmt.Errorf("%w: duplicate variable %q", ErrInvalidProblem, v.Name)
		}
		seen[v.Name] = true
	}
	if m, need := p.dimensions(); m <= need {
		return fmt.Errorf("%w: %d differenced observations for %d parameters",
			ErrInvalidProblem, m, need)
	}
	return nil
}

// dimensions returns the number of differenced observations and the number
// of estimated parameters, the innovation variance included.
func (p *Problem) dimensions() (m, need int) {
	m = len(p.Y) - p.Spec.Order.DifferencingDegree()
	return m, p.RegressorCount() + p.Spec.FreeCount() + 1
}

// Capacity returns the number of regressors that can still be added before
// the problem stops validating. It is 0 for an invalid problem.
func (p *Problem) Capacity() int {
	if p.Spec == nil {
		return 0
	}
	m, need := p.dimensions()
	return max(0, m-need-1)
}

// Clone returns a deep copy of the problem.
func (p *Problem) Clone() *Problem {
	c := &Problem{
		Y:    append([]float64(nil), p.Y...),
		Mean: p.Mean,
	}
	if p.Spec != nil {
		c.Spec = p.Spec.Clone()
	}
	if p.Variables != nil {
		c.Variables = make([]Variable, len(p.Variables))
		for i, v := range p.Variables {
			v.Values = append([]float64(nil), v.Values...)
			c.Variables[i] = v
		}
	}
	return c
}

// AddVariable appends a regressor.
func (p *Problem) AddVariable(v Variable) error {
	if len(v.Values) != len(p.Y) {
		return fmt.Errorf("%w: variable %q has %d values for %d observations",
			ErrInvalidProblem, v.Name, len(v.Values), len(p.Y))
	}
	if p.IndexOf(v.Name) >= 0 {
		return fmt.Errorf("%w: duplicate variable %q", ErrInvalidProblem, v.Name)
	}
	p.Variables = append(p.Variables, v)
	return nil
}

// RemoveVariable removes the named regressor.
func (p *Problem) RemoveVariable(name string) error {
	i := p.IndexOf(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownVariable, name)
	}
	p.Variables = append(p.Variables[:i], p.Variables[i+1:]...)
	return nil
}

// IndexOf returns the position of the named variable, or -1.
func (p *Problem) IndexOf(name string) int {
	for i, v := range p.Variables {
		if v.Name == name {
			return i
		}
	}
	return -1
}
