package arima

import "errors"

var (
	// ErrInvalidOrder reports negative orders or a seasonal part without a
	// period.
	ErrInvalidOrder = errors.New("arima: invalid model order")

	// ErrInvalidParameters reports parameter slices that do not match the order.
	ErrInvalidParameters = errors.New("arima: parameters do not match the order")

	// ErrNotStationary reports an autoregressive polynomial with a root on or
	// inside the unit circle.
	ErrNotStationary = errors.New("arima: autoregressive polynomial is not stationary")
)
