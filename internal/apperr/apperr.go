// Package apperr holds the error types every store operation returns to its caller.
//
// Callers branch on them with errors.As; stores wrap driver errors into them before
// they cross the operation boundary.
package apperr

import (
	"errors"
	"fmt"
)

// NotFoundError reports that a referenced cart, order, product or customer does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("no %s found", e.Resource)
	}
	return fmt.Sprintf("no %s with id %s", e.Resource, e.ID)
}

// ValidationError reports structurally invalid input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ConflictError reports a mutation against an aggregate that changed or vanished underneath it.
type ConflictError struct {
	Resource string
	ID       string
	Reason   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Resource, e.ID, e.Reason)
}

// TransactionError is an atomic-commit failure. Nothing was applied; the caller may retry.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction failed during %s: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

func NotFound(resource string, id any) error {
	return &NotFoundError{Resource: resource, ID: fmtID(id)}
}

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func Conflict(resource string, id any, reason string) error {
	return &ConflictError{Resource: resource, ID: fmtID(id), Reason: reason}
}

func Transaction(op string, err error) error {
	return &TransactionError{Op: op, Err: err}
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

func IsTransaction(err error) bool {
	var target *TransactionError
	return errors.As(err, &target)
}

func fmtID(id any) string {
	if id == nil {
		return ""
	}
	return fmt.Sprint(id)
}
