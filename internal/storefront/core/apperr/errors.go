// Package apperr defines the failure taxonomy shared by the storefront core
// and its adapters.
//
// Validation and not-found errors are produced locally, before or instead of
// a mutation. Store errors wrap an opaque driver cause which callers may log
// but must not show to clients.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports malformed or missing caller input. Fields maps a
// field name to true when that field was missing or invalid.
type ValidationError struct {
	Message string
	Fields  map[string]bool
}

func (e *ValidationError) Error() string {
	bad := e.InvalidFields()
	if len(bad) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(bad, ", "))
}

// InvalidFields returns the names of the flagged fields, sorted.
func (e *ValidationError) InvalidFields() []string {
	var out []string
	for name, bad := range e.Fields {
		if bad {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// NotFoundError reports that a referenced entity does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Entity + " not found"
	}
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// ConflictError reports an identifier collision or a stale revision.
type ConflictError struct {
	Entity string
	ID     string
	Reason string
}

func (e *ConflictError) Error() string {
	msg := fmt.Sprintf("%s %q conflict", e.Entity, e.ID)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// StoreError wraps a persistence failure. The cause is kept for diagnostics.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store: %s: %v", e.Op, e.Err) }

func (e *StoreError) Unwrap() error { return e.Err }

func Validation(msg string, fields map[string]bool) error {
	return &ValidationError{Message: msg, Fields: fields}
}

func NotFound(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

func Conflict(entity, id, reason string) error {
	return &ConflictError{Entity: entity, ID: id, Reason: reason}
}

// Store wraps err as a StoreError for op. A nil err returns nil and errors
// already carrying a taxonomy type are returned unchanged.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsValidation(err) || IsNotFound(err) || IsConflict(err) {
		return err
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}
