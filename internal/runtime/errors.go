package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/tutorgraph/pkg/capability"
	"github.com/aretw0/tutorgraph/pkg/domain"
)

// ErrNilDefinition is returned by Run when no graph is given.
var ErrNilDefinition = errors.New("graph definition is nil")

// Failure kinds recorded in RunError.Message besides the capability kinds.
const (
	KindPanic          = "panic"
	KindRouting        = "routing"
	KindStepLimit      = "step_limit"
	KindSchemaMismatch = "schema_mismatch"
	KindCanceled       = "canceled"
	KindHandler        = "handler"
)

// PanicError wraps a value recovered from a handler.
type PanicError struct {
	Node  string
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("node %s panicked: %v", e.Node, e.Value)
}

func classify(err error) string {
	var panicErr *PanicError
	switch {
	case errors.As(err, &panicErr):
		return KindPanic
	case errors.Is(err, domain.ErrSchemaMismatch):
		return KindSchemaMismatch
	}
	if f, ok := capability.AsFailure(err); ok {
		return string(f.Kind)
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	return KindHandler
}
