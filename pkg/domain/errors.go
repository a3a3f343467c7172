package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrSchemaMismatch is matched by every SchemaMismatchError.
var ErrSchemaMismatch = errors.New("schema mismatch")

// SchemaMismatchError is returned by Merge when a partial update names a field
// that is not in the reducer table or carries a value of the wrong type.
type SchemaMismatchError struct {
	Key    string
	Reason string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch on field %q: %s", e.Key, e.Reason)
}

func (e *SchemaMismatchError) Is(target error) bool {
	return target == ErrSchemaMismatch
}

// RunError records the first unrecovered failure of a run.
type RunError struct {
	// Stage is the name of the node that failed.
	Stage string `json:"stage"`
	// Message is a short classification of the failure (e.g. "timeout", "schema_mismatch").
	Message string `json:"message"`
	// Detail carries the underlying error text for logs. It is never shown to users.
	Detail string `json:"detail,omitempty"`
}

func (e *RunError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s", e.Stage, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Stage, e.Message, e.Detail)
}
