// Package checkpointer implements saving and restoring the state of
// an experiment: model weights, optimizer and scheduler state, step
// counters, and best-score bookkeeping.
package checkpointer

import (
	"errors"
	"fmt"
)

// Stater is a component whose state can be saved into and restored
// from a checkpoint, such as a model, optimizer, or scheduler. The
// state is an opaque blob to the checkpointer.
type Stater interface {
	StateDict() ([]byte, error)
	LoadStateDict([]byte) error
}

// Mode determines the comparison direction used when deciding whether
// a score improves on the best score seen so far.
type Mode string

const (
	Min Mode = "min" // Lower scores are better
	Max Mode = "max" // Higher scores are better
)

// Validate returns an error if the Mode is neither Min nor Max
func (m Mode) Validate() error {
	if m != Min && m != Max {
		return &CheckpointError{
			Op:  "validate",
			Err: fmt.Errorf("%w: %q", errInvalidMode, string(m)),
		}
	}
	return nil
}

// CheckpointError implements errors unique to checkpointing
type CheckpointError struct {
	Op  string
	Err error
}

// Error satisfies the error interface
func (e *CheckpointError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error
func (e *CheckpointError) Unwrap() error {
	return e.Err
}

var errInvalidMode = errors.New("mode must be min or max")

// IsInvalidMode returns whether or not an error reports that a
// comparison Mode was invalid.
func IsInvalidMode(err error) bool {
	return errors.Is(err, errInvalidMode)
}
