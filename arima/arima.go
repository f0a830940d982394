// Package arima implements seasonal ARIMA model specifications and the ARMA
// machinery built on them.
package arima

import "fmt"

// Order represents SARIMA model order (p, d, q) x (P, D, Q, m).
type Order struct {
	P int // Non-seasonal AR order
	D int // Non-seasonal differencing order
	Q int // Non-seasonal MA order
	// Seasonal components
	SP int // Seasonal AR order
	SD int // Seasonal differencing order
	SQ int // Seasonal MA order
	M  int // Seasonal period (e.g., 12 for monthly data with yearly seasonality)
}

// IsSeasonal reports whether the order has any seasonal component.
func (o Order) IsSeasonal() bool {
	return o.SP > 0 || o.SD > 0 || o.SQ > 0
}

// Validate checks that the order is well formed.
func (o Order) Validate() error {
	if o.P < 0 || o.D < 0 || o.Q < 0 || o.SP < 0 || o.SD < 0 || o.SQ < 0 {
		return fmt.Errorf("%w: negative order %v", ErrInvalidOrder, o)
	}
	if o.IsSeasonal() && o.M < 2 {
		return fmt.Errorf("%w: seasonal part needs a period >= 2, got %d", ErrInvalidOrder, o.M)
	}
	return nil
}

// DifferencingDegree returns the degree of (1-B)^D (1-B^m)^SD.
func (o Order) DifferencingDegree() int {
	return o.D + o.SD*o.M
}

// ParameterCount returns the number of ARMA coefficients.
func (o Order) ParameterCount() int {
	return o.P + o.SP + o.Q + o.SQ
}

// String formats the order as (p,d,q)(P,D,Q)m.
func (o Order) String() string {
	if !o.IsSeasonal() {
		return fmt.Sprintf("(%d,%d,%d)", o.P, o.D, o.Q)
	}
	return fmt.Sprintf("(%d,%d,%d)(%d,%d,%d)%d", o.P, o.D, o.Q, o.SP, o.SD, o.SQ, o.M)
}

// Spec is a SARIMA specification with its current coefficients. The model is
//
//	Φ(B) Φs(B^m) (1-B)^D (1-B^m)^SD y_t = Θ(B) Θs(B^m) ε_t
//
// with Φ(B) = 1 + ARCoeffs[0] B + ... and Θ(B) = 1 + MACoeffs[0] B + ....
//
// Coefficients are addressed as one parameter vector in the order AR, SAR,
// MA, SMA. Fixed, when non-nil, flags the parameters that estimation keeps.
type Spec struct {
	Order     Order
	ARCoeffs  []float64 // Non-seasonal AR coefficients
	SARCoeffs []float64 // Seasonal AR coefficients
	MACoeffs  []float64 // Non-seasonal MA coefficients
	SMACoeffs []float64 // Seasonal MA coefficients
	Fixed     []bool
}

// New creates a specification of the given order with zero coefficients.
func New(order Order) *Spec {
	return &Spec{
		Order:     order,
		ARCoeffs:  make([]float64, order.P),
		SARCoeffs: make([]float64, order.SP),
		MACoeffs:  make([]float64, order.Q),
		SMACoeffs: make([]float64, order.SQ),
	}
}

// Airline returns the (0,1,1)(0,1,1)m model with the usual starting values.
func Airline(period int) *Spec {
	s := New(Order{D: 1, Q: 1, SD: 1, SQ: 1, M: period})
	s.MACoeffs[0] = -0.2
	s.SMACoeffs[0] = -0.4
	return s
}

// Validate checks the order and the coefficient slices.
func (s *Spec) Validate() error {
	if err := s.Order.Validate(); err != nil {
		return err
	}
	o := s.Order
	if len(s.ARCoeffs) != o.P || len(s.SARCoeffs) != o.SP ||
		len(s.MACoeffs) != o.Q || len(s.SMACoeffs) != o.SQ {
		return ErrInvalidParameters
	}
	if s.Fixed != nil && len(s.Fixed) != o.ParameterCount() {
		return fmt.Errorf("%w: %d fixed flags for %d parameters",
			ErrInvalidParameters, len(s.Fixed), o.ParameterCount())
	}
	return nil
}

// Clone returns a deep copy of the specification.
func (s *Spec) Clone() *Spec {
	c := &Spec{
		Order:     s.Order,
		ARCoeffs:  append([]float64{}, s.ARCoeffs...),
		SARCoeffs: append([]float64{}, s.SARCoeffs...),
		MACoeffs:  append([]float64{}, s.MACoeffs...),
		SMACoeffs: append([]float64{}, s.SMACoeffs...),
	}
	if s.Fixed != nil {
		c.Fixed = append([]bool{}, s.Fixed...)
	}
	return c
}

// Parameters returns the coefficients as one vector (AR, SAR, MA, SMA).
func (s *Spec) Parameters() []float64 {
	p := make([]float64, 0, s.Order.ParameterCount())
	p = append(p, s.ARCoeffs...)
	p = append(p, s.SARCoeffs...)
	p = append(p, s.MACoeffs...)
	return append(p, s.SMACoeffs...)
}

// SetParameters copies p into the coefficients.
func (s *Spec) SetParameters(p []float64) {
	n := copy(s.ARCoeffs, p)
	n += copy(s.SARCoeffs, p[n:])
	n += copy(s.MACoeffs, p[n:])
	copy(s.SMACoeffs, p[n:])
}

// IsFixed reports whether parameter i is kept out of estimation.
func (s *Spec) IsFixed(i int) bool {
	return s.Fixed != nil && s.Fixed[i]
}

// FreeCount returns the number of estimated parameters.
func (s *Spec) FreeCount() int {
	n := 0
	for i := 0; i < s.Order.ParameterCount(); i++ {
		if !s.IsFixed(i) {
			n++
		}
	}
	return n
}

// FreeParameters returns the estimated parameters in vector order.
func (s *Spec) FreeParameters() []float64 {
	all := s.Parameters()
	free := make([]float64, 0, len(all))
	for i, v := range all {
		if !s.IsFixed(i) {
			free = append(free, v)
		}
	}
	return free
}

// SetFreeParameters copies p into the estimated parameters.
func (s *Spec) SetFreeParameters(p []float64) {
	all := s.Parameters()
	j := 0
	for i := range all {
		if !s.IsFixed(i) {
			all[i] = p[j]
			j++
		}
	}
	s.SetParameters(all)
}

// AR returns the stationary autoregressive polynomial Φ(B)Φs(B^m).
func (s *Spec) AR() Polynomial {
	return Lag(s.ARCoeffs, 1).Times(Lag(s.SARCoeffs, s.Order.M))
}

// MA returns the moving average polynomial Θ(B)Θs(B^m).
func (s *Spec) MA() Polynomial {
	return Lag(s.MACoeffs, 1).Times(Lag(s.SMACoeffs, s.Order.M))
}

// Differencing returns δ(B) = (1-B)^D (1-B^m)^SD.
func (s *Spec) Differencing() Polynomial {
	return Differencing(s.Order)
}

// Differencing returns the differencing polynomial of an order.
func Differencing(o Order) Polynomial {
	d := Lag([]float64{-1}, 1).Power(o.D)
	if o.SD > 0 {
		d = d.Times(Lag([]float64{-1}, o.M).Power(o.SD))
	}
	return d
}

// FullAR returns Φ(B)Φs(B^m)δ(B), the complete autoregressive operator.
func (s *Spec) FullAR() Polynomial {
	return s.AR().Times(s.Differencing())
}

// IsStationary reports whether both autoregressive factors are stationary.
func (s *Spec) IsStationary() bool {
	return IsStable(s.ARCoeffs) && IsStable(s.SARCoeffs)
}

// IsInvertible reports whether both moving average factors are invertible.
func (s *Spec) IsInvertible() bool {
	return IsStable(s.MACoeffs) && IsStable(s.SMACoeffs)
}

// String formats the specification for logs and reports.
func (s *Spec) String() string {
	return fmt.Sprintf("%v ar=%.4f sar=%.4f ma=%.4f sma=%.4f",
		s.Order, s.ARCoeffs, s.SARCoeffs, s.MACoeffs, s.SMACoeffs)
}
