package arima

import "math"

// Polynomial holds the coefficients c[0] + c[1] B + ... + c[d] B^d of a
// polynomial in the backshift operator B.
type Polynomial []float64

// One returns the constant polynomial 1.
func One() Polynomial {
	return Polynomial{1}
}

// Lag builds 1 + c[0] B^step + c[1] B^(2 step) + ....
func Lag(c []float64, step int) Polynomial {
	if step < 1 {
		step = 1
	}
	p := make(Polynomial, len(c)*step+1)
	p[0] = 1
	for i, v := range c {
		p[(i+1)*step] = v
	}
	return p
}

// Degree returns the degree of the polynomial, ignoring trailing zeros.
func (p Polynomial) Degree() int {
	d := len(p) - 1
	for d > 0 && p[d] == 0 {
		d--
	}
	return d
}

// Coefficient returns c[i], or 0 when i is out of range.
func (p Polynomial) Coefficient(i int) float64 {
	if i < 0 || i >= len(p) {
		return 0
	}
	return p[i]
}

// Times returns the product p·q.
func (p Polynomial) Times(q Polynomial) Polynomial {
	if len(p) == 0 || len(q) == 0 {
		return Polynomial{}
	}
	r := make(Polynomial, len(p)+len(q)-1)
	for i, a := range p {
		if a == 0 {
			continue
		}
		for j, b := range q {
			r[i+j] += a * b
		}
	}
	return r
}

// Power returns p^k for k >= 0.
func (p Polynomial) Power(k int) Polynomial {
	r := One()
	for i := 0; i < k; i++ {
		r = r.Times(p)
	}
	return r
}

// Eval evaluates the polynomial at x.
func (p Polynomial) Eval(x float64) float64 {
	s := 0.0
	for i := len(p) - 1; i >= 0; i-- {
		s = s*x + p[i]
	}
	return s
}

// Trim drops the trailing coefficients whose magnitude is below eps.
func (p Polynomial) Trim(eps float64) Polynomial {
	d := len(p)
	for d > 1 && math.Abs(p[d-1]) <= eps {
		d--
	}
	return append(Polynomial(nil), p[:d]...)
}

// Coefficients returns c[1..], the coefficients following the leading 1.
func (p Polynomial) Coefficients() []float64 {
	if len(p) < 2 {
		return nil
	}
	return append([]float64(nil), p[1:]...)
}

// DivideLinear divides p by (1 + aB). It returns the quotient q, of degree
// deg(p)-1, and the remainder r such that p = (1 + aB)q + r B^deg(p).
func (p Polynomial) DivideLinear(a float64) (Polynomial, float64) {
	d := len(p) - 1
	if d < 1 {
		return Polynomial{}, p.Coefficient(0)
	}
	q := make(Polynomial, d)
	prev := 0.0
	for i := 0; i < d; i++ {
		q[i] = p[i] - a*prev
		prev = q[i]
	}
	return q, p[d] - a*prev
}

// Ratio returns the first n coefficients of the power series num(B)/den(B).
// den[0] must be non-zero.
func Ratio(num, den Polynomial, n int) []float64 {
	out := make([]float64, n)
	if n == 0 || len(den) == 0 {
		return out
	}
	d0 := den[0]
	for j := 0; j < n; j++ {
		s := num.Coefficient(j)
		for i := 1; i < len(den) && i <= j; i++ {
			s -= den[i] * out[j-i]
		}
		out[j] = s / d0
	}
	return out
}

// Filter applies p(B) to x, returning the len(x)-deg(p) values
// Σ c[i] x[t-i] for t >= deg(p).
func (p Polynomial) Filter(x []float64) []float64 {
	d := len(p) - 1
	if d < 0 || len(x) <= d {
		return nil
	}
	out := make([]float64, len(x)-d)
	for t := d; t < len(x); t++ {
		s := 0.0
		for i, c := range p {
			if c != 0 {
				s += c * x[t-i]
			}
		}
		out[t-d] = s
	}
	return out
}
