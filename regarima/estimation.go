package regarima

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/goregarima/arima"
	"github.com/sartorproj/goregarima/stats"
)

// Estimation is the result of a regression-ARIMA estimation.
type Estimation struct {
	// Problem is a copy of the estimated problem holding Spec.
	Problem *Problem
	Spec    *arima.Spec

	// Regression coefficients, in the order of Names: the mean, the
	// variables and the missing-value impulses.
	Names        []string
	Coefficients []float64
	StdErrors    []float64
	TStats       []float64

	Likelihood Likelihood
	// Residuals are the standardized one-step innovations of the model.
	Residuals []float64

	// Covariance of the ARMA parameters in the order of Spec.Parameters,
	// with zero rows and columns for fixed parameters. Nil when the
	// information matrix could not be inverted.
	Covariance         *mat.SymDense
	ParameterStdErrors []float64

	LjungBox *stats.LjungBoxResult

	Iterations         int
	Attempts           int
	UnitRootsCancelled int
}

func (e *Estimation) index(name string) (int, error) {
	for i, n := range e.Names {
		if n == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrUnknownVariable, name)
}

// Coefficient returns the coefficient of the named regressor.
func (e *Estimation) Coefficient(name string) (float64, error) {
	i, err := e.index(name)
	if err != nil {
		return 0, err
	}
	return e.Coefficients[i], nil
}

// TStat returns the t-statistic of the named regressor.
func (e *Estimation) TStat(name string) (float64, error) {
	i, err := e.index(name)
	if err != nil {
		return 0, err
	}
	return e.TStats[i], nil
}

// Interpolated returns the observations with missing values replaced by
// their estimates.
func (e *Estimation) Interpolated() []float64 {
	y := append([]float64(nil), e.Problem.Y...)
	for _, pos := range e.Problem.Missing() {
		if c, err := e.Coefficient(MissingName(pos)); err == nil {
			y[pos] = -c
		}
	}
	return y
}

// Corrected returns the interpolated observations without the estimated
// effect of the outlier variables.
func (e *Estimation) Corrected() []float64 {
	y := e.Interpolated()
	for _, v := range e.Problem.Variables {
		if !v.Outlier {
			continue
		}
		if c, err := e.Coefficient(v.Name); err == nil {
			floats.AddScaled(y, -c, v.Values)
		}
	}
	return y
}
