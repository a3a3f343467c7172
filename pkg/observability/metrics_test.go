package observability_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/tutorgraph/pkg/capability"
	"github.com/aretw0/tutorgraph/pkg/domain"
	"github.com/aretw0/tutorgraph/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RunAndNodeHooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	hooks := m.Hooks()
	ctx := context.Background()
	base := domain.EventBase{Graph: "enriched", RunID: "r1"}

	hooks.OnNodeLeave(ctx, &domain.NodeEvent{EventBase: base, NodeID: "validate_request", Duration: time.Millisecond})
	hooks.OnNodeLeave(ctx, &domain.NodeEvent{EventBase: base, NodeID: "generate_queries", Error: errors.New("boom")})
	hooks.OnRunEnd(ctx, &domain.RunEvent{
		EventBase: base,
		Steps:     2,
		Duration:  time.Second,
		Error:     &domain.RunError{Stage: "generate_queries", Message: "timeout"},
	})
	hooks.OnRunEnd(ctx, &domain.RunEvent{EventBase: domain.EventBase{Graph: "validation"}, Steps: 1})

	expected := `
# HELP tutorgraph_runs_total Total number of graph runs by outcome
# TYPE tutorgraph_runs_total counter
tutorgraph_runs_total{graph="enriched",outcome="error"} 1
tutorgraph_runs_total{graph="validation",outcome="ok"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "tutorgraph_runs_total"))

	expected = `
# HELP tutorgraph_run_failures_total Failed runs by stage and failure kind
# TYPE tutorgraph_run_failures_total counter
tutorgraph_run_failures_total{graph="enriched",kind="timeout",stage="generate_queries"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "tutorgraph_run_failures_total"))

	expected = `
# HELP tutorgraph_node_visits_total Total number of node executions
# TYPE tutorgraph_node_visits_total counter
tutorgraph_node_visits_total{graph="enriched",node="generate_queries",outcome="error"} 1
tutorgraph_node_visits_total{graph="enriched",node="validate_request",outcome="ok"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "tutorgraph_node_visits_total"))

	count, err := testutil.GatherAndCount(reg, "tutorgraph_run_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMetrics_ProviderMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	fail := true
	provider := capability.ProviderFunc(func(ctx context.Context, req capability.ProviderRequest) (string, error) {
		if fail {
			fail = false
			return "", errors.New("unavailable")
		}
		return `{"ok":true}`, nil
	})
	wrapped := capability.Chain(provider, m.ProviderMiddleware())

	req := capability.ProviderRequest{Model: "gemini-2.5-flash"}
	_, err = wrapped.Complete(context.Background(), req)
	require.Error(t, err)
	out, err := wrapped.Complete(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)

	expected := `
# HELP tutorgraph_provider_calls_total Outbound reasoning provider calls
# TYPE tutorgraph_provider_calls_total counter
tutorgraph_provider_calls_total{model="gemini-2.5-flash",outcome="error"} 1
tutorgraph_provider_calls_total{model="gemini-2.5-flash",outcome="ok"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "tutorgraph_provider_calls_total"))
}

func TestMetrics_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	_, err = observability.NewMetrics(reg)
	assert.Error(t, err)
}

func TestMetrics_Handler(t *testing.T) {
	m, err := observability.NewMetrics(nil)
	require.NoError(t, err)

	m.Hooks().OnRunEnd(context.Background(), &domain.RunEvent{EventBase: domain.EventBase{Graph: "tutoring"}})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), `tutorgraph_runs_total{graph="tutoring",outcome="ok"} 1`)
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	hooks := observability.LogHooks(logger)
	ctx := context.Background()

	hooks.OnNodeEnter(ctx, &domain.NodeEvent{EventBase: domain.EventBase{RunID: "r1"}, NodeID: "tutor_response"})
	hooks.OnRunEnd(ctx, &domain.RunEvent{
		EventBase: domain.EventBase{Graph: "tutoring", RunID: "r1"},
		Error:     &domain.RunError{Stage: "tutor_response", Message: "transport"},
	})

	out := buf.String()
	assert.Contains(t, out, `"msg":"node_enter"`)
	assert.Contains(t, out, `"node_id":"tutor_response"`)
	assert.Contains(t, out, `"level":"WARN"`)
	assert.Contains(t, out, `"kind":"transport"`)
}
