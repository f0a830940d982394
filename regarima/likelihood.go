package regarima

import "math"

// Likelihood holds the concentrated Gaussian likelihood of a fitted problem
// and the derived information criteria.
type Likelihood struct {
	Observations int // Differenced observations
	Regressors   int
	Parameters   int // Free ARMA parameters
	SSQ          float64
	LogDet       float64
	Sigma2       float64 // Maximum likelihood innovation variance, SSQ/m
	LogLik       float64
	AIC          float64
	AICc         float64 // Corrected AIC for small sample sizes
	BIC          float64
}

func newLikelihood(m, k, np int, ssq, logDet float64) Likelihood {
	n := float64(m)
	l := Likelihood{
		Observations: m,
		Regressors:   k,
		Parameters:   np,
		SSQ:          ssq,
		LogDet:       logDet,
		Sigma2:       ssq / n,
	}
	l.LogLik = -0.5 * (n*math.Log(2*math.Pi) + n*math.Log(ssq/n) + n + logDet)

	// Parameters: ARMA + regressors + innovation variance
	kf := float64(np + k + 1)
	l.AIC = -2*l.LogLik + 2*kf
	if n-kf-1 > 0 {
		l.AICc = -2*l.LogLik + 2*kf*n/(n-kf-1)
	} else {
		l.AICc = math.Inf(1)
	}
	l.BIC = -2*l.LogLik + kf*math.Log(n)
	return l
}

// DegreesOfFreedom returns the differenced observations minus the regressors
// and the free ARMA parameters.
func (l Likelihood) DegreesOfFreedom() int {
	return l.Observations - l.Regressors - l.Parameters
}

// objectiveScale is the factor applied to whitened residuals so that their
// sum of squares SSQ·|Σ|^(1/m) is minimized by the maximum likelihood estimate.
func objectiveScale(m int, logDet float64) float64 {
	return math.Exp(logDet / (2 * float64(m)))
}
