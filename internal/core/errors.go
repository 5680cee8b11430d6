package core

import (
	"errors"
	"fmt"
)

// The ledger distinguishes four failure classes. Validation and not-found
// errors are recoverable and guarantee no state change. Persistence errors
// abort the whole logical operation. Inconsistency errors mean the stored
// balances and the transaction log can no longer be trusted; callers should
// halt instead of continuing with silently wrong arithmetic.

// ValidationError is returned before any mutation when user input is invalid.
type ValidationError struct {
	msg string
}

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{msg: msg}
}

func (e *ValidationError) Error() string { return e.msg }

// NotFoundError is returned when a referenced entity does not exist.
type NotFoundError struct {
	Kind string
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// PersistenceError wraps a storage failure. The logical operation it aborted
// left prior state intact.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// InconsistencyError reports divergence between the transaction log and the
// stored balances, for example a ledger entry referencing an account row that
// no longer exists.
type InconsistencyError struct {
	Msg string
	Err error
}

func (e *InconsistencyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ledger inconsistency: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("ledger inconsistency: %s", e.Msg)
}

func (e *InconsistencyError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}

func IsInconsistency(err error) bool {
	var i *InconsistencyError
	return errors.As(err, &i)
}
