package outliers

// Critical value schedule.
const (
	shortCriticalValue = 3.0
	longCriticalValue  = 4.0
	shortSeries        = 50
	longSeries         = 450

	// MinCriticalValue is the floor of the reductions of ContinueProcessing.
	MinCriticalValue = 2.8
	// DefaultReduction is the relative reduction of ContinueProcessing.
	DefaultReduction = 0.12
)

// DefaultCriticalValue returns the critical value used for a series of n
// observations: 3 below 50 observations, 4 from 450 on, linear in between.
func DefaultCriticalValue(n int) float64 {
	switch {
	case n < shortSeries:
		return shortCriticalValue
	case n >= longSeries:
		return longCriticalValue
	}
	slope := (longCriticalValue - shortCriticalValue) / float64(longSeries-shortSeries)
	return shortCriticalValue + slope*float64(n-shortSeries)
}
