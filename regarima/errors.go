package regarima

import "errors"

var (
	// ErrInvalidProblem reports a problem that cannot be estimated: bad
	// orders, inconsistent regressors or too few observations.
	ErrInvalidProblem = errors.New("regarima: invalid problem")

	// ErrNotConverged is returned when every estimation attempt failed.
	ErrNotConverged = errors.New("regarima: estimation did not converge")

	// ErrUnknownVariable is returned when a named regressor does not exist.
	ErrUnknownVariable = errors.New("regarima: unknown variable")
)
