package testutils

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aretw0/tutorgraph/pkg/capability"
	"github.com/stretchr/testify/mock"
)

// Reply is one scripted provider answer.
type Reply struct {
	Text  string
	Err   error
	Delay time.Duration
}

// ScriptedProvider answers calls with a fixed sequence of replies. Once the
// script is exhausted the last reply is repeated.
type ScriptedProvider struct {
	mu      sync.Mutex
	replies []Reply
	calls   []capability.ProviderRequest
}

// NewScriptedProvider creates a provider that plays replies in order.
func NewScriptedProvider(replies ...Reply) *ScriptedProvider {
	return &ScriptedProvider{replies: replies}
}

func (p *ScriptedProvider) Complete(ctx context.Context, req capability.ProviderRequest) (string, error) {
	p.mu.Lock()
	idx := len(p.calls)
	p.calls = append(p.calls, req)
	if len(p.replies) == 0 {
		p.mu.Unlock()
		return "", errors.New("no scripted reply")
	}
	if idx >= len(p.replies) {
		idx = len(p.replies) - 1
	}
	reply := p.replies[idx]
	p.mu.Unlock()

	if reply.Delay > 0 {
		select {
		case <-time.After(reply.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return reply.Text, reply.Err
}

// Calls returns the requests received so far.
func (p *ScriptedProvider) Calls() []capability.ProviderRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]capability.ProviderRequest, len(p.calls))
	copy(out, p.calls)
	return out
}

// CallCount returns the number of requests received so far.
func (p *ScriptedProvider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

// MockAdapter is a testify mock of capability.Adapter.
type MockAdapter struct {
	mock.Mock
}

func (m *MockAdapter) Invoke(ctx context.Context, req capability.Request) (capability.Result, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(capability.Result)
	return res, args.Error(1)
}

// SchemaNamed matches requests carrying the given schema name.
func SchemaNamed(name string) any {
	return mock.MatchedBy(func(req capability.Request) bool {
		return req.SchemaName == name
	})
}

// FreeText matches requests without an output schema.
func FreeText() any {
	return mock.MatchedBy(func(req capability.Request) bool {
		return req.Schema == nil
	})
}
