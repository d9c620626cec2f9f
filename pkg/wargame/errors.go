package wargame

import "fmt"

// ValidationError is a submission-time logical failure: bad
// authorization, impossible path, nation mismatch, duplicate, cooldown.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return fmt.Sprintf("validation: %s", e.Reason) }

// ConflictingOrder names an existing order a new submission collides with.
type ConflictingOrder struct {
	OrderID   string
	OrderType string
}

// ConflictRequiresConfirmation is returned when a submission collides
// with existing PENDING/ONGOING orders on the same units/entities. A
// retry with override=true resolves it by superseding the listed orders.
type ConflictRequiresConfirmation struct {
	Existing []ConflictingOrder
}

func (e *ConflictRequiresConfirmation) Error() string {
	return fmt.Sprintf("confirmation needed: %d conflicting order(s)", len(e.Existing))
}

// ExecutionFailure is raised when an order was valid at submission but an
// invariant it depended on broke by execution time (referenced entity
// deleted, faction left, etc). The order is marked FAILED by the caller.
type ExecutionFailure struct {
	Reason string
}

func (e *ExecutionFailure) Error() string { return fmt.Sprintf("execution failure: %s", e.Reason) }

// Transient wraps a retry-eligible Store error. The orchestrator retries
// the whole phase once before escalating to Fatal.
type Transient struct {
	Err error
}

func (e *Transient) Error() string { return fmt.Sprintf("transient: %v", e.Err) }
func (e *Transient) Unwrap() error { return e.Err }

// Fatal wraps a non-retryable Store/OS error. The turn is aborted; state
// is left consistent at the last committed phase boundary.
type Fatal struct {
	Err error
}

func (e *Fatal) Error() string { return fmt.Sprintf("fatal: %v", e.Err) }
func (e *Fatal) Unwrap() error { return e.Err }
