package pipeline

import (
	"errors"
	"fmt"
)

// Error kinds a run can fail with. A RunError matches its kind with errors.Is.
var (
	ErrInvalidQuery      = errors.New("invalid query")
	ErrCollectionFailure = errors.New("collection failure")
	ErrArtifactWrite     = errors.New("artifact write failure")
	ErrInternal          = errors.New("internal error")
	ErrCanceled          = errors.New("run canceled")
)

// RunError is the single error returned by a failed run
type RunError struct {
	Stage State // State the run was in when it failed
	Kind  error // One of the Err* kinds above
	Err   error // Underlying cause
}

func (e *RunError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Stage, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Stage, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is/As
func (e *RunError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindOf returns the kind of a run error, or nil when err is not one
func KindOf(err error) error {
	var re *RunError
	if errors.As(err, &re) {
		return re.Kind
	}
	return nil
}
