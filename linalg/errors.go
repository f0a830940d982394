package linalg

import "errors"

var (
	// ErrNotPositiveDefinite is returned when a matrix that must be symmetric
	// positive definite is not (failed Cholesky, non-positive prediction error).
	ErrNotPositiveDefinite = errors.New("linalg: matrix is not positive definite")

	// ErrSingular is returned when a factorization reveals a rank-deficient
	// matrix.
	ErrSingular = errors.New("linalg: matrix is singular")

	// ErrDimensionMismatch is returned when operands have incompatible sizes.
	ErrDimensionMismatch = errors.New("linalg: dimension mismatch")

	// ErrEmpty is returned when an operation needs at least one element.
	ErrEmpty = errors.New("linalg: empty input")
)
