package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/aretw0/tutorgraph/pkg/config"
	"github.com/aretw0/tutorgraph/pkg/domain"
	"github.com/aretw0/tutorgraph/pkg/graph"
	"github.com/google/uuid"
)

// DefaultMaxSteps bounds the number of node executions in a single run.
const DefaultMaxSteps = 25

// Engine executes compiled graphs. It holds no per-run state and is safe for
// concurrent use.
type Engine struct {
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	maxSteps int
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithMaxSteps overrides the step limit. Values below 1 are ignored.
func WithMaxSteps(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxSteps = n
		}
	}
}

// NewEngine creates a new engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		logger:   slog.New(slog.NewJSONHandler(io.Discard, nil)),
		maxSteps: DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run walks def from its entry node until END, merging every partial update
// through the graph's reducer table.
//
// Expected failures (capability failures, rejected partials, routing errors,
// panics, the step limit) stop the run and are recorded in the returned
// state's Error field. The error return is reserved for a nil definition.
func (e *Engine) Run(ctx context.Context, def *graph.Definition, initial *domain.State, cfg config.Config) (*domain.State, error) {
	if def == nil {
		return nil, ErrNilDefinition
	}

	run := &runInfo{
		id:     uuid.NewString(),
		graph:  def.Name(),
		start:  time.Now(),
		logger: e.logger.With("graph", def.Name()),
	}
	run.logger = run.logger.With("run_id", run.id)

	state := initial.Clone()
	state.Error = nil

	e.emitRunStart(ctx, run)
	run.logger.DebugContext(ctx, "run started", "entry", def.Entry(), "messages", len(state.Messages))

	current := def.Entry()
	for current != graph.END {
		if err := ctx.Err(); err != nil {
			state = e.fail(ctx, run, state, current, KindCanceled, err)
			break
		}
		if run.steps >= e.maxSteps {
			state = e.fail(ctx, run, state, current, KindStepLimit,
				fmt.Errorf("run exceeded %d steps", e.maxSteps))
			break
		}

		node, ok := def.Node(current)
		if !ok {
			// Compile guarantees every target exists; this only trips on a hand-built Definition.
			state = e.fail(ctx, run, state, current, KindRouting, fmt.Errorf("unknown node %q", current))
			break
		}

		run.steps++
		next, nextNode, failure := e.step(ctx, run, def, node, state, cfg)
		state = next
		if failure != nil {
			break
		}
		current = nextNode
	}

	e.emitRunEnd(ctx, run, state)
	return state, nil
}

type runInfo struct {
	id     string
	graph  string
	start  time.Time
	steps  int
	logger *slog.Logger
}

// step executes one node and resolves its successor. The returned state is
// the merged state on success and the failed state otherwise.
func (e *Engine) step(ctx context.Context, run *runInfo, def *graph.Definition, node graph.Node, state *domain.State, cfg config.Config) (*domain.State, string, *domain.RunError) {
	started := time.Now()
	e.emitNodeEnter(ctx, run, node.Name)

	entered := state.Clone()
	entered.History = append(entered.History, node.Name)

	partial, err := invoke(ctx, node, state, cfg)
	if err != nil {
		failed := e.fail(ctx, run, entered, node.Name, classify(err), err)
		e.emitNodeLeave(ctx, run, node.Name, started, nil, err)
		return failed, "", failed.Error
	}

	if err := checkOutputs(node, partial); err != nil {
		failed := e.fail(ctx, run, entered, node.Name, KindSchemaMismatch, err)
		e.emitNodeLeave(ctx, run, node.Name, started, nil, err)
		return failed, "", failed.Error
	}

	merged, err := domain.Merge(entered, partial, def.Reducers())
	if err != nil {
		failed := e.fail(ctx, run, entered, node.Name, KindSchemaMismatch, err)
		e.emitNodeLeave(ctx, run, node.Name, started, nil, err)
		return failed, "", failed.Error
	}

	var changed []string
	if diff := domain.Diff(state, merged); diff != nil {
		changed = diff.ChangedKeys()
		run.logger.DebugContext(ctx, "node completed", "node", node.Name, "changed", changed, "diff", diff)
	}

	next, err := def.Next(node.Name, merged)
	if err != nil {
		failed := e.fail(ctx, run, merged, node.Name, KindRouting, err)
		e.emitNodeLeave(ctx, run, node.Name, started, changed, err)
		return failed, "", failed.Error
	}

	e.emitNodeLeave(ctx, run, node.Name, started, changed, nil)
	run.logger.DebugContext(ctx, "transition", "from", node.Name, "to", next)
	return merged, next, nil
}

// invoke runs the handler, converting a panic into a *PanicError.
func invoke(ctx context.Context, node graph.Node, state *domain.State, cfg config.Config) (partial domain.Partial, err error) {
	defer func() {
		if r := recover(); r != nil {
			partial = nil
			err = &PanicError{Node: node.Name, Value: r}
		}
	}()
	return node.Handler(ctx, state, cfg)
}

// checkOutputs rejects fields the node did not declare.
func checkOutputs(node graph.Node, partial domain.Partial) error {
	for _, key := range partial.Keys() {
		if !slices.Contains(node.Outputs, key) {
			return &domain.SchemaMismatchError{
				Key:    key,
				Reason: fmt.Sprintf("not a declared output of node %q", node.Name),
			}
		}
	}
	return nil
}

// fail records the first failure of the run and returns the resulting state.
func (e *Engine) fail(ctx context.Context, run *runInfo, state *domain.State, stage, kind string, err error) *domain.State {
	failed := state.Clone()
	failed.Error = &domain.RunError{
		Stage:   stage,
		Message: kind,
		Detail:  err.Error(),
	}
	run.logger.WarnContext(ctx, "run failed", "node", stage, "kind", kind, "error", err)
	return failed
}
