package outliers

import "errors"

var (
	// ErrNoFactories is returned when a detector has no outlier types.
	ErrNoFactories = errors.New("outliers: no outlier factories")

	// ErrInvalidDomain is returned for an empty or inconsistent domain.
	ErrInvalidDomain = errors.New("outliers: invalid domain")

	// ErrInvalidFactory reports an unknown or misconfigured outlier type.
	ErrInvalidFactory = errors.New("outliers: invalid outlier type")

	// ErrInvalidName is returned for a variable name that does not denote
	// an outlier.
	ErrInvalidName = errors.New("outliers: invalid outlier name")

	// ErrEstimation is returned when the model cannot be estimated. It wraps
	// the estimator error.
	ErrEstimation = errors.New("outliers: model could not be estimated")

	// ErrNotProcessed is returned by ContinueProcessing before Process.
	ErrNotProcessed = errors.New("outliers: loop has not processed a problem")
)
