package runtime

import (
	"context"
	"time"

	"github.com/aretw0/tutorgraph/pkg/domain"
)

func (e *Engine) base(run *runInfo, typ domain.EventType) domain.EventBase {
	return domain.EventBase{
		Timestamp: time.Now(),
		Type:      typ,
		RunID:     run.id,
		Graph:     run.graph,
	}
}

func (e *Engine) emitRunStart(ctx context.Context, run *runInfo) {
	if e.hooks.OnRunStart == nil {
		return
	}
	e.hooks.OnRunStart(ctx, &domain.RunEvent{EventBase: e.base(run, domain.EventRunStart)})
}

func (e *Engine) emitRunEnd(ctx context.Context, run *runInfo, state *domain.State) {
	run.logger.DebugContext(ctx, "run finished", "steps", run.steps, "history", state.History, "failed", state.Failed())
	if e.hooks.OnRunEnd == nil {
		return
	}
	e.hooks.OnRunEnd(ctx, &domain.RunEvent{
		EventBase: e.base(run, domain.EventRunEnd),
		Steps:     run.steps,
		Duration:  time.Since(run.start),
		Error:     state.Error,
	})
}

func (e *Engine) emitNodeEnter(ctx context.Context, run *runInfo, nodeID string) {
	if e.hooks.OnNodeEnter == nil {
		return
	}
	e.hooks.OnNodeEnter(ctx, &domain.NodeEvent{
		EventBase: e.base(run, domain.EventNodeEnter),
		NodeID:    nodeID,
	})
}

func (e *Engine) emitNodeLeave(ctx context.Context, run *runInfo, nodeID string, started time.Time, changed []string, err error) {
	if e.hooks.OnNodeLeave == nil {
		return
	}
	e.hooks.OnNodeLeave(ctx, &domain.NodeEvent{
		EventBase: e.base(run, domain.EventNodeLeave),
		NodeID:    nodeID,
		Duration:  time.Since(started),
		Changed:   changed,
		Error:     err,
	})
}
