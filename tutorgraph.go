package tutorgraph

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/tutorgraph/internal/logging"
	"github.com/aretw0/tutorgraph/internal/runtime"
	"github.com/aretw0/tutorgraph/pkg/capability"
	"github.com/aretw0/tutorgraph/pkg/config"
	"github.com/aretw0/tutorgraph/pkg/domain"
	"github.com/aretw0/tutorgraph/pkg/nodes"
	"github.com/aretw0/tutorgraph/pkg/pipeline"
	"github.com/aretw0/tutorgraph/pkg/prompts"
	"github.com/aretw0/tutorgraph/pkg/registry"
)

// Version is the release version of the module.
//
//go:embed VERSION
var Version string

// Engine is the high-level entry point for the library.
// It compiles the built-in topologies once and runs them by name.
type Engine struct {
	runtime     *runtime.Engine
	graphs      *registry.Registry
	cfg         config.Config
	prompts     prompts.Builder
	hooks       domain.LifecycleHooks
	middlewares []capability.Middleware
	maxSteps    int
	logger      *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets the logger shared by the runner, the nodes and the adapter.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithConfig sets the run configuration used by Run.
func WithConfig(cfg config.Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithPrompts replaces the built-in prompt templates.
func WithPrompts(builder prompts.Builder) Option {
	return func(e *Engine) {
		e.prompts = builder
	}
}

// WithProviderMiddleware decorates every provider call.
func WithProviderMiddleware(mws ...capability.Middleware) Option {
	return func(e *Engine) {
		e.middlewares = append(e.middlewares, mws...)
	}
}

// WithMaxSteps bounds the number of nodes a single run may execute.
func WithMaxSteps(n int) Option {
	return func(e *Engine) {
		e.maxSteps = n
	}
}

// New creates an Engine answering through provider.
func New(provider capability.Provider, opts ...Option) (*Engine, error) {
	if provider == nil {
		return nil, errors.New("provider is required")
	}

	e := &Engine{
		cfg:      config.Default(),
		maxSteps: runtime.DefaultMaxSteps,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.prompts == nil {
		builder, err := prompts.New()
		if err != nil {
			return nil, fmt.Errorf("failed to load prompt templates: %w", err)
		}
		e.prompts = builder
	}
	if err := e.cfg.Validate(); err != nil {
		return nil, err
	}

	client := capability.NewClient(provider,
		capability.WithLogger(e.logger),
		capability.WithMiddleware(e.middlewares...),
	)

	graphs, err := pipeline.New(client, e.prompts, nodes.WithLogger(e.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to build graphs: %w", err)
	}
	e.graphs = graphs

	e.runtime = runtime.NewEngine(
		runtime.WithLogger(e.logger),
		runtime.WithLifecycleHooks(e.hooks),
		runtime.WithMaxSteps(e.maxSteps),
	)
	return e, nil
}

// Run executes the named topology against initial and returns the final state.
// Pipeline failures are reported in the returned state's Error field.
func (e *Engine) Run(ctx context.Context, graphName string, initial *domain.State) (*domain.State, error) {
	def, err := e.graphs.Get(graphName)
	if err != nil {
		return nil, err
	}
	return e.runtime.Run(ctx, def, initial, e.cfg)
}

// Graphs returns the compiled topologies.
func (e *Engine) Graphs() *registry.Registry {
	return e.graphs
}

// Runtime returns the graph runner.
func (e *Engine) Runtime() *runtime.Engine {
	return e.runtime
}

// Config returns the run configuration.
func (e *Engine) Config() config.Config {
	return e.cfg
}
