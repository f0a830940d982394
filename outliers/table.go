package outliers

import "math"

// Span is the half-open range of positions [Start, End).
type Span struct {
	Start, End int
}

// Len returns the number of positions of the span.
func (s Span) Len() int {
	return max(0, s.End-s.Start)
}

// Contains reports whether pos lies in the span.
func (s Span) Contains(pos int) bool {
	return pos >= s.Start && pos < s.End
}

// Intersect returns the positions common to s and o.
func (s Span) Intersect(o Span) Span {
	return Span{Start: max(s.Start, o.Start), End: min(s.End, o.End)}
}

// Table holds the t-statistics of every (position, type) cell. A cell is
// usable when its outlier is defined at that position and it has not been
// excluded. Exclusions persist until Allow or Reset.
type Table struct {
	n, kinds int
	t        []float64
	defined  []bool
	excluded []bool
}

// NewTable creates a table for n positions and the given number of types.
func NewTable(n, kinds int) *Table {
	return &Table{
		n:        n,
		kinds:    kinds,
		t:        make([]float64, n*kinds),
		defined:  make([]bool, n*kinds),
		excluded: make([]bool, n*kinds),
	}
}

// Len returns the number of positions.
func (tb *Table) Len() int { return tb.n }

// Kinds returns the number of outlier types.
func (tb *Table) Kinds() int { return tb.kinds }

func (tb *Table) index(pos, kind int) (int, bool) {
	if pos < 0 || pos >= tb.n || kind < 0 || kind >= tb.kinds {
		return 0, false
	}
	return pos*tb.kinds + kind, true
}

// Define marks the cells of kind inside span as defined.
func (tb *Table) Define(kind int, span Span) {
	for pos := max(0, span.Start); pos < min(tb.n, span.End); pos++ {
		tb.defined[pos*tb.kinds+kind] = true
	}
}

// Defined reports whether the outlier kind is defined at pos.
func (tb *Table) Defined(pos, kind int) bool {
	i, ok := tb.index(pos, kind)
	return ok && tb.defined[i]
}

// Usable reports whether the cell is defined and not excluded.
func (tb *Table) Usable(pos, kind int) bool {
	i, ok := tb.index(pos, kind)
	return ok && tb.defined[i] && !tb.excluded[i]
}

// Exclude removes the cell from the search.
func (tb *Table) Exclude(pos, kind int) {
	if i, ok := tb.index(pos, kind); ok {
		tb.excluded[i] = true
	}
}

// ExcludeAll removes every type at pos from the search.
func (tb *Table) ExcludeAll(pos int) {
	for k := 0; k < tb.kinds; k++ {
		tb.Exclude(pos, k)
	}
}

// Allow re-enables an excluded cell.
func (tb *Table) Allow(pos, kind int) {
	if i, ok := tb.index(pos, kind); ok {
		tb.excluded[i] = false
	}
}

// Reset clears every exclusion and statistic. Defined cells are kept.
func (tb *Table) Reset() {
	clear(tb.t)
	clear(tb.excluded)
}

// Undefine marks every cell as undefined.
func (tb *Table) Undefine() {
	clear(tb.defined)
}

// Set stores a t-statistic.
func (tb *Table) Set(pos, kind int, t float64) {
	if i, ok := tb.index(pos, kind); ok {
		tb.t[i] = t
	}
}

// T returns the t-statistic of a cell, or 0 outside the table.
func (tb *Table) T(pos, kind int) float64 {
	if i, ok := tb.index(pos, kind); ok {
		return tb.t[i]
	}
	return 0
}

// Max returns the usable cell with the largest |t|. Ties go to the first
// cell in position-major order.
func (tb *Table) Max() (pos, kind int, ok bool) {
	best := -1.0
	for p := 0; p < tb.n; p++ {
		for k := 0; k < tb.kinds; k++ {
			i := p*tb.kinds + k
			if !tb.defined[i] || tb.excluded[i] {
				continue
			}
			if a := math.Abs(tb.t[i]); a > best {
				best, pos, kind, ok = a, p, k, true
			}
		}
	}
	return pos, kind, ok
}
