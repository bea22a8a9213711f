package bayesspace

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is wrapped by every error returned from input validation.
// Validation runs before the first iteration, so no trace is returned with it.
var ErrInvalidInput = errors.New("invalid input")

// ErrNotPositiveDefinite is wrapped when a matrix that must be symmetric
// positive-definite fails its Cholesky factorization.
var ErrNotPositiveDefinite = errors.New("matrix is not positive definite")

// NumericalError reports a fatal numerical failure inside the sampler loop.
// The Result returned alongside it holds every iteration completed before
// Iteration.
type NumericalError struct {
	Iteration int    // iteration that failed
	Step      string // "mean", "precision", "weight" or "label"
	Err       error
}

func (e *NumericalError) Error() string {
	return fmt.Sprintf("bayesspace: %s update failed at iteration %d: %v", e.Step, e.Iteration, e.Err)
}

func (e *NumericalError) Unwrap() error { return e.Err }

// invalidf formats a validation error that wraps ErrInvalidInput.
func invalidf(format string, args ...any) error {
	return fmt.Errorf("bayesspace: %w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
