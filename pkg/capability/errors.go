package capability

import (
	"errors"
	"fmt"
)

// FailureKind classifies why an invocation failed.
type FailureKind string

const (
	KindTimeout       FailureKind = "timeout"
	KindTransport     FailureKind = "transport"
	KindSchemaInvalid FailureKind = "schema_invalid"
)

// Failure is returned by Adapter.Invoke when every attempt failed.
type Failure struct {
	Kind     FailureKind
	Detail   string
	Attempts int
	Err      error
}

func (f *Failure) Error() string {
	msg := fmt.Sprintf("capability %s after %d attempt(s)", f.Kind, f.Attempts)
	if f.Detail != "" {
		msg += ": " + f.Detail
	}
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// AsFailure extracts a *Failure from err.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks a provider error as not worth retrying (bad credentials,
// malformed request, unknown model).
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}
