package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/aretw0/tutorgraph/pkg/capability"
	"github.com/aretw0/tutorgraph/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tutorgraph"

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds the Prometheus collectors of the service.
type Metrics struct {
	registry prometheus.Gatherer

	runs             *prometheus.CounterVec
	runDuration      *prometheus.HistogramVec
	nodeVisits       *prometheus.CounterVec
	nodeDuration     *prometheus.HistogramVec
	runFailures      *prometheus.CounterVec
	providerCalls    *prometheus.CounterVec
	providerDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg uses a fresh registry.
func NewMetrics(reg *prometheus.Registry) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: reg,
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of graph runs by outcome",
		}, []string{"graph", "outcome"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of graph runs",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"graph"}),
		nodeVisits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "node_visits_total",
			Help:      "Total number of node executions",
		}, []string{"graph", "node", "outcome"}),
		nodeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "node_duration_seconds",
			Help:      "Duration of node executions",
			Buckets:   prometheus.DefBuckets,
		}, []string{"graph", "node"}),
		runFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "run_failures_total",
			Help:      "Failed runs by stage and failure kind",
		}, []string{"graph", "stage", "kind"}),
		providerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "calls_total",
			Help:      "Outbound reasoning provider calls",
		}, []string{"model", "outcome"}),
		providerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "call_duration_seconds",
			Help:      "Latency of outbound reasoning provider calls",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"model"}),
	}

	for _, c := range []prometheus.Collector{
		m.runs, m.runDuration, m.nodeVisits, m.nodeDuration, m.runFailures,
		m.providerCalls, m.providerDuration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks feeding the run and node collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunEnd: func(_ context.Context, e *domain.RunEvent) {
			outcome := OutcomeOK
			if e.Error != nil {
				outcome = OutcomeError
				m.runFailures.WithLabelValues(e.Graph, e.Error.Stage, e.Error.Message).Inc()
			}
			m.runs.WithLabelValues(e.Graph, outcome).Inc()
			m.runDuration.WithLabelValues(e.Graph).Observe(e.Duration.Seconds())
		},
		OnNodeLeave: func(_ context.Context, e *domain.NodeEvent) {
			outcome := OutcomeOK
			if e.Error != nil {
				outcome = OutcomeError
			}
			m.nodeVisits.WithLabelValues(e.Graph, e.NodeID, outcome).Inc()
			m.nodeDuration.WithLabelValues(e.Graph, e.NodeID).Observe(e.Duration.Seconds())
		},
	}
}

// ProviderMiddleware counts and times every outbound provider call.
func (m *Metrics) ProviderMiddleware() capability.Middleware {
	return func(next capability.Provider) capability.Provider {
		return capability.ProviderFunc(func(ctx context.Context, req capability.ProviderRequest) (string, error) {
			start := time.Now()
			out, err := next.Complete(ctx, req)
			outcome := OutcomeOK
			if err != nil {
				outcome = OutcomeError
			}
			m.providerCalls.WithLabelValues(req.Model, outcome).Inc()
			m.providerDuration.WithLabelValues(req.Model).Observe(time.Since(start).Seconds())
			return out, err
		})
	}
}

// Handler serves the collected metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
