package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for configuration and run handling. Per-tick simulation
// operations never fail; these surface only from construction and IO.
var (
	// ErrParameterBounds indicates a parameter value is outside its valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrUnknownPreset indicates a preset name that is not registered.
	ErrUnknownPreset = errors.New("dynamo: unknown preset")

	// ErrEmptyRun indicates a run or series without any samples.
	ErrEmptyRun = errors.New("dynamo: run has no samples")

	// ErrInvalidState indicates a NaN or Inf showed up in simulation state.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")
)

// StepError wraps an error with the tick it was observed at.
type StepError struct {
	Tick    int
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("tick %d: %v", e.Tick, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}

// Bounded returns a wrapped ErrParameterBounds naming the offending field.
func Bounded(field string, value any, want string) error {
	return fmt.Errorf("%w: %s=%v (want %s)", ErrParameterBounds, field, value, want)
}
