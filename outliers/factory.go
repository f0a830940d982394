package outliers

import (
	"fmt"
	"strconv"
	"strings"
)

// Outlier type codes.
const (
	CodeAO = "AO"
	CodeLS = "LS"
	CodeTC = "TC"
	CodeSO = "SO"
)

// DefaultTCRate is the decay rate of transitory changes.
const DefaultTCRate = 0.7

// Factory generates the regression variable of one outlier type.
type Factory interface {
	// Code returns the type code used in variable names.
	Code() string
	// Fill writes the effect of an outlier at pos into buf.
	Fill(pos int, buf []float64)
	// Kernel returns the first n values of the effect of an outlier,
	// starting at its position. Values before the position are ignored.
	Kernel(n int) []float64
	// Domain returns the positions [start, end) where the outlier can be
	// estimated in a series of length n.
	Domain(n int) (start, end int)
}

// AdditiveOutlier is a single-observation impulse.
type AdditiveOutlier struct{}

// Code implements Factory.
func (AdditiveOutlier) Code() string { return CodeAO }

// Fill implements Factory.
func (AdditiveOutlier) Fill(pos int, buf []float64) {
	clear(buf)
	buf[pos] = 1
}

// Kernel implements Factory.
func (AdditiveOutlier) Kernel(n int) []float64 {
	k := make([]float64, n)
	if n > 0 {
		k[0] = 1
	}
	return k
}

// Domain implements Factory.
func (AdditiveOutlier) Domain(n int) (int, int) { return 0, n }

// LevelShift is a permanent step. Zero-ended shifts are -1 before the
// position and 0 from it on; otherwise 0 before and 1 from the position.
type LevelShift struct {
	ZeroEnded bool
}

// Code implements Factory.
func (LevelShift) Code() string { return CodeLS }

// Fill implements Factory.
func (ls LevelShift) Fill(pos int, buf []float64) {
	for i := range buf {
		switch {
		case i < pos && ls.ZeroEnded:
			buf[i] = -1
		case i >= pos && !ls.ZeroEnded:
			buf[i] = 1
		default:
			buf[i] = 0
		}
	}
}

// Kernel implements Factory.
func (LevelShift) Kernel(n int) []float64 {
	k := make([]float64, n)
	for i := range k {
		k[i] = 1
	}
	return k
}

// Domain implements Factory. A shift at the first observation is a constant.
func (LevelShift) Domain(n int) (int, int) { return 1, n }

// TransitoryChange is an impulse decaying geometrically with Rate.
type TransitoryChange struct {
	Rate float64
}

// Code implements Factory.
func (TransitoryChange) Code() string { return CodeTC }

// Fill implements Factory.
func (tc TransitoryChange) Fill(pos int, buf []float64) {
	clear(buf[:pos])
	v := 1.0
	for i := pos; i < len(buf); i++ {
		buf[i] = v
		v *= tc.Rate
	}
}

// Kernel implements Factory.
func (tc TransitoryChange) Kernel(n int) []float64 {
	k := make([]float64, n)
	v := 1.0
	for i := range k {
		k[i] = v
		v *= tc.Rate
	}
	return k
}

// Domain implements Factory.
func (TransitoryChange) Domain(n int) (int, int) { return 0, n }

// SeasonalOutlier is a seasonal step: from the position on, 1 in the
// affected season and -1/(Period-1) in the others, so that every full year
// sums to zero. Zero-ended outliers carry the opposite pattern before the
// position and are 0 from it on.
type SeasonalOutlier struct {
	Period    int
	ZeroEnded bool
}

// Code implements Factory.
func (SeasonalOutlier) Code() string { return CodeSO }

func (so SeasonalOutlier) value(lag int) float64 {
	if lag%so.Period == 0 {
		return 1
	}
	return -1 / float64(so.Period-1)
}

// Fill implements Factory.
func (so SeasonalOutlier) Fill(pos int, buf []float64) {
	for i := range buf {
		switch {
		case i < pos && so.ZeroEnded:
			buf[i] = -so.value(pos - i)
		case i >= pos && !so.ZeroEnded:
			buf[i] = so.value(i - pos)
		default:
			buf[i] = 0
		}
	}
}

// Kernel implements Factory.
func (so SeasonalOutlier) Kernel(n int) []float64 {
	k := make([]float64, n)
	for i := range k {
		k[i] = so.value(i)
	}
	return k
}

// Domain implements Factory. A full period is required on both sides.
func (so SeasonalOutlier) Domain(n int) (int, int) {
	if so.Period < 2 {
		return 0, 0
	}
	return so.Period, max(so.Period, n-so.Period)
}

// DefaultFactories returns the AO, LS and TC factories.
func DefaultFactories() []Factory {
	return []Factory{
		AdditiveOutlier{},
		LevelShift{ZeroEnded: true},
		TransitoryChange{Rate: DefaultTCRate},
	}
}

// NewFactory returns the factory of a type code. The period is used by
// seasonal outliers.
func NewFactory(code string, period int) (Factory, error) {
	switch strings.ToUpper(code) {
	case CodeAO:
		return AdditiveOutlier{}, nil
	case CodeLS:
		return LevelShift{ZeroEnded: true}, nil
	case CodeTC:
		return TransitoryChange{Rate: DefaultTCRate}, nil
	case CodeSO:
		if period < 2 {
			return nil, fmt.Errorf("%w: seasonal outliers need a period, got %d", ErrInvalidFactory, period)
		}
		return SeasonalOutlier{Period: period, ZeroEnded: true}, nil
	}
	return nil, fmt.Errorf("%w: unknown outlier type %q", ErrInvalidFactory, code)
}

// Outlier is an accepted outlier.
type Outlier struct {
	Code         string
	Pos          int
	Prespecified bool
}

// Name returns the regression variable name, e.g. "LS.60".
func (o Outlier) Name() string {
	return o.Code + "." + strconv.Itoa(o.Pos)
}

func (o Outlier) String() string {
	return o.Name()
}

// ParseName parses a variable name built by Outlier.Name.
func ParseName(name string) (Outlier, error) {
	code, pos, ok := strings.Cut(name, ".")
	if !ok {
		return Outlier{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	p, err := strconv.Atoi(pos)
	if err != nil || p < 0 || code == "" {
		return Outlier{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return Outlier{Code: code, Pos: p}, nil
}

// column returns the variable of an outlier at pos in a series of length n.
func column(f Factory, pos, n int) []float64 {
	buf := make([]float64, n)
	f.Fill(pos, buf)
	return buf
}
