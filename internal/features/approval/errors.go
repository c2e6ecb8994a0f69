package approval

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the instance id does not exist.
	ErrNotFound = errors.New("approval instance not found")

	// ErrAlreadyFinalized means the instance reached a terminal status;
	// retried calls should treat this as a no-op.
	ErrAlreadyFinalized = errors.New("approval instance already finalized")

	// ErrVersionConflict means another mutation won the race on this
	// instance; at most one transition succeeds per step.
	ErrVersionConflict = errors.New("approval instance was modified concurrently")

	// ErrNotCurrentApprover means the actor is not the resolved approver
	// of the current step and holds no override permission.
	ErrNotCurrentApprover = errors.New("actor is not the current approver")

	// ErrNotRequester means someone other than the original requester
	// tried to cancel.
	ErrNotRequester = errors.New("only the requester may cancel")

	// ErrUnresolvableApprover aborts materialization when a non-skippable
	// step has no resolvable approver.
	ErrUnresolvableApprover = errors.New("approver could not be resolved")

	// ErrStepNotDue is returned by AutoAdvance when the current step has
	// no timeout or the deadline has not passed.
	ErrStepNotDue = errors.New("current step is not due for auto-approval")
)

// UnresolvableApproverError names the offending step.
type UnresolvableApproverError struct {
	StepOrder int
	StepName  string
}

func (e *UnresolvableApproverError) Error() string {
	return fmt.Sprintf("approver could not be resolved for step %d (%s)", e.StepOrder, e.StepName)
}

func (e *UnresolvableApproverError) Unwrap() error {
	return ErrUnresolvableApprover
}
