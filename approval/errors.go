package approval

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNoProfileStore is returned when Approve is attempted without a
	// profile-update capability. Recoverable: the run stays in Draft.
	ErrNoProfileStore = errors.New("no profile store available for approval")

	// ErrRunNotComputed is returned when Approve is attempted before any
	// summaries have been computed for the run.
	ErrRunNotComputed = errors.New("run has not been computed")

	// ErrInvalidTransition is returned for a state machine edge that does
	// not exist (e.g. re-approving, locking a draft).
	ErrInvalidTransition = errors.New("invalid approval transition")

	// ErrRunNotEditable is returned when sick-hour overrides are edited
	// after the run has left Draft.
	ErrRunNotEditable = errors.New("run is no longer editable")

	// ErrNegativeOverride is returned for a negative sick-hours override.
	ErrNegativeOverride = errors.New("sick-hours override cannot be negative")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// TransitionError reports a rejected state machine edge.
type TransitionError struct {
	RunID string
	From  State
	Event string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("run %s: cannot %s from state %s", e.RunID, e.Event, e.From)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// NotEditableError reports an override edit against a non-draft run.
type NotEditableError struct {
	RunID string
	State State
}

func (e *NotEditableError) Error() string {
	return fmt.Sprintf("run %s: overrides are frozen in state %s", e.RunID, e.State)
}

func (e *NotEditableError) Unwrap() error { return ErrRunNotEditable }
