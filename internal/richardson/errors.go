package richardson

import (
	"errors"
	"fmt"
)

// Domain errors for the solver pipeline.
var (
	// ErrInvalidConfiguration indicates a pair count incompatible with the
	// dispersion spectrum's available level slots.
	ErrInvalidConfiguration = errors.New("richardson: invalid configuration")

	// ErrStepRejected indicates a Newton iteration whose backtracking
	// search found no improving step fraction. Recovered by the
	// continuation driver through step bisection.
	ErrStepRejected = errors.New("richardson: newton step rejected")

	// ErrStepTooSmall indicates the homotopy step shrank below its floor.
	ErrStepTooSmall = errors.New("richardson: continuation step below minimum")
)

// ConvergenceError reports a Newton solve that exhausted its iteration
// budget at a fixed coupling value.
type ConvergenceError struct {
	G          float64
	Iterations int
	Residual   float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("richardson: no convergence at g=%.6g after %d iterations (residual %.3e)",
		e.G, e.Iterations, e.Residual)
}

// ContinuationError reports a fatal homotopy failure, carrying the last
// coupling value reached and the residual norm there so a caller can
// retune the schedule without rerunning blind.
type ContinuationError struct {
	G        float64
	Step     int
	Residual float64
	Wrapped  error
}

func (e *ContinuationError) Error() string {
	return fmt.Sprintf("richardson: continuation stalled at g=%.6g (step %d, residual %.3e): %v",
		e.G, e.Step, e.Residual, e.Wrapped)
}

func (e *ContinuationError) Unwrap() error {
	return e.Wrapped
}
