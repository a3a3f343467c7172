package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/tutorgraph/pkg/domain"
)

// LogHooks returns lifecycle hooks that log every run and node event at debug
// level, and failed runs at warn level.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunStart: func(ctx context.Context, e *domain.RunEvent) {
			logger.DebugContext(ctx, "run_start", "graph", e.Graph, "run_id", e.RunID)
		},
		OnRunEnd: func(ctx context.Context, e *domain.RunEvent) {
			if e.Error != nil {
				logger.WarnContext(ctx, "run_end",
					"graph", e.Graph,
					"run_id", e.RunID,
					"steps", e.Steps,
					"duration", e.Duration,
					"stage", e.Error.Stage,
					"kind", e.Error.Message)
				return
			}
			logger.DebugContext(ctx, "run_end",
				"graph", e.Graph, "run_id", e.RunID, "steps", e.Steps, "duration", e.Duration)
		},
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node_enter", "run_id", e.RunID, "node_id", e.NodeID)
		},
		OnNodeLeave: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node_leave",
				"run_id", e.RunID,
				"node_id", e.NodeID,
				"duration", e.Duration,
				"changed", e.Changed,
				"err", e.Error)
		},
	}
}
