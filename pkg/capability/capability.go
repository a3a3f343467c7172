package capability

import (
	"context"
	"time"

	"github.com/aretw0/tutorgraph/pkg/domain"
	"github.com/aretw0/tutorgraph/pkg/schema"
)

// Segment is one role-tagged piece of a prompt.
type Segment struct {
	Role domain.Role `json:"role"`
	Text string      `json:"text"`
}

// System is a shorthand for a system instruction segment.
func System(text string) Segment { return Segment{Role: domain.RoleSystem, Text: text} }

// User is a shorthand for a user segment.
func User(text string) Segment { return Segment{Role: domain.RoleUser, Text: text} }

// Assistant is a shorthand for an assistant segment.
func Assistant(text string) Segment { return Segment{Role: domain.RoleAssistant, Text: text} }

// FromMessages converts conversation turns into prompt segments.
func FromMessages(messages []domain.Message) []Segment {
	out := make([]Segment, 0, len(messages))
	for _, m := range messages {
		out = append(out, Segment{Role: m.Role, Text: m.Text})
	}
	return out
}

// Options tune a single invocation.
type Options struct {
	Model       string
	Temperature float32
	// MaxRetries is the number of additional attempts after the first one.
	MaxRetries int
	// Timeout bounds each attempt. Zero means no per-attempt deadline.
	Timeout time.Duration
}

// Request is a capability invocation.
type Request struct {
	Prompt []Segment
	// Schema is the expected output shape. A nil schema selects free-text mode.
	Schema schema.Schema
	// SchemaName labels the schema for providers with native structured output.
	SchemaName string
	Options    Options
}

// Result is a successful invocation.
type Result struct {
	// Data is the structured output. It always satisfies the request schema.
	Data map[string]any
	// Text is the raw answer; in free-text mode it is trimmed.
	Text string
	// Attempts is the number of provider calls made.
	Attempts int
}

// Adapter invokes a reasoning capability and returns a validated result or a *Failure.
type Adapter interface {
	Invoke(ctx context.Context, req Request) (Result, error)
}

// ProviderRequest is a single outbound call.
type ProviderRequest struct {
	Model       string
	Temperature float32
	Messages    []Segment
	Schema      schema.Schema
	SchemaName  string
}

// Provider performs exactly one call to a reasoning service and returns its raw text answer.
type Provider interface {
	Complete(ctx context.Context, req ProviderRequest) (string, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, req ProviderRequest) (string, error)

func (f ProviderFunc) Complete(ctx context.Context, req ProviderRequest) (string, error) {
	return f(ctx, req)
}

// Middleware decorates a Provider.
type Middleware func(Provider) Provider

// Chain wraps p with mws. The first middleware is the outermost.
func Chain(p Provider, mws ...Middleware) Provider {
	for i := len(mws) - 1; i >= 0; i-- {
		p = mws[i](p)
	}
	return p
}
