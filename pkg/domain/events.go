package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRunStart  EventType = "run_start"
	EventRunEnd    EventType = "run_end"
	EventNodeEnter EventType = "node_enter"
	EventNodeLeave EventType = "node_leave"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id"`
	Graph     string    `json:"graph"`
}

// RunEvent marks the beginning or the end of a run.
type RunEvent struct {
	EventBase
	Steps    int           `json:"steps,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	Error    *RunError     `json:"error,omitempty"`
}

// NodeEvent represents entry or exit from a node.
type NodeEvent struct {
	EventBase
	NodeID   string        `json:"node_id"`
	Duration time.Duration `json:"duration,omitempty"`
	// Changed lists the state fields written by the node (leave events only).
	Changed []string `json:"changed,omitempty"`
	Error   error    `json:"-"`
}

// LifecycleHooks defines callbacks for runner observability.
type LifecycleHooks struct {
	OnRunStart  func(context.Context, *RunEvent)
	OnRunEnd    func(context.Context, *RunEvent)
	OnNodeEnter func(context.Context, *NodeEvent)
	OnNodeLeave func(context.Context, *NodeEvent)
}

// Combine returns hooks that call every non-nil callback of each input in order.
func Combine(hooks ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnRunStart: func(ctx context.Context, e *RunEvent) {
			for _, h := range hooks {
				if h.OnRunStart != nil {
					h.OnRunStart(ctx, e)
				}
			}
		},
		OnRunEnd: func(ctx context.Context, e *RunEvent) {
			for _, h := range hooks {
				if h.OnRunEnd != nil {
					h.OnRunEnd(ctx, e)
				}
			}
		},
		OnNodeEnter: func(ctx context.Context, e *NodeEvent) {
			for _, h := range hooks {
				if h.OnNodeEnter != nil {
					h.OnNodeEnter(ctx, e)
				}
			}
		},
		OnNodeLeave: func(ctx context.Context, e *NodeEvent) {
			for _, h := range hooks {
				if h.OnNodeLeave != nil {
					h.OnNodeLeave(ctx, e)
				}
			}
		},
	}
}
