// Package fault defines the error taxonomy shared by every layer of the
// content engine.
//
// Five codes exist. NotFound and ValidationFailed come out of local
// mutations and never touch the in-memory tree. DataIntegrity is raised (or
// collected as an Issue) when a loaded document contradicts its own
// invariants. PersistenceConflict and TransportError come from the
// synchronization boundary.
package fault

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Code categorizes an Error.
type Code string

const (
	// CodeNotFound means the target id is no longer present. Callers re-fetch.
	CodeNotFound Code = "NOT_FOUND"

	// CodeValidationFailed means an author-facing rule was violated.
	CodeValidationFailed Code = "VALIDATION_FAILED"

	// CodeDataIntegrity means a cross-reference or tag inconsistency was found
	// outside the normal mutation path.
	CodeDataIntegrity Code = "DATA_INTEGRITY"

	// CodePersistenceConflict means the remote write was rejected because the
	// document changed underneath the caller.
	CodePersistenceConflict Code = "PERSISTENCE_CONFLICT"

	// CodeTransport means the storage layer itself failed.
	CodeTransport Code = "TRANSPORT_ERROR"
)

// Error is the structured error returned by engine operations.
type Error struct {
	Code    Code
	Message string

	// Entity names the kind of node involved ("track", "stage", "option", ...).
	Entity string

	// ID is the identity of the node involved, when there is one.
	ID string

	Details map[string]string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Entity != "" && e.ID != "" {
		fmt.Fprintf(&b, " (%s=%s)", e.Entity, e.ID)
	}
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%s", k, e.Details[k])
		}
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound reports that entity id is not present.
func NotFound(entity, id string) *Error {
	return &Error{
		Code:    CodeNotFound,
		Message: entity + " not found",
		Entity:  entity,
		ID:      id,
	}
}

// Validation reports an author-facing rule violation.
func Validation(format string, args ...any) *Error {
	return &Error{
		Code:    CodeValidationFailed,
		Message: fmt.Sprintf(format, args...),
	}
}

// Integrity reports a data integrity violation.
func Integrity(format string, args ...any) *Error {
	return &Error{
		Code:    CodeDataIntegrity,
		Message: fmt.Sprintf(format, args...),
	}
}

// Conflict reports a rejected whole-document write.
func Conflict(trackID string, expected, actual int64) *Error {
	return &Error{
		Code:    CodePersistenceConflict,
		Message: "track was modified concurrently; reload and re-apply",
		Entity:  "track",
		ID:      trackID,
		Details: map[string]string{
			"expected_version": fmt.Sprintf("%d", expected),
			"actual_version":   fmt.Sprintf("%d", actual),
		},
	}
}

// Transport wraps a storage failure.
func Transport(op string, err error) *Error {
	return &Error{
		Code:    CodeTransport,
		Message: op + " failed",
		Err:     err,
	}
}

// CodeOf returns the Code of the first *Error in err's chain, or "" if
// there is none.
func CodeOf(err error) Code {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// IsNotFound reports whether err is a NotFound error.
func IsNotFound(err error) bool { return Is(err, CodeNotFound) }

// IsValidation reports whether err is a ValidationFailed error.
func IsValidation(err error) bool { return Is(err, CodeValidationFailed) }

// IsIntegrity reports whether err is a DataIntegrity error.
func IsIntegrity(err error) bool { return Is(err, CodeDataIntegrity) }

// IsConflict reports whether err is a PersistenceConflict error.
func IsConflict(err error) bool { return Is(err, CodePersistenceConflict) }

// IsTransport reports whether err is a TransportError.
func IsTransport(err error) bool { return Is(err, CodeTransport) }
