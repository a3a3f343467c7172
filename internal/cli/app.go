package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/aretw0/tutorgraph"
	"github.com/aretw0/tutorgraph/pkg/adapters/loam"
	"github.com/aretw0/tutorgraph/pkg/adapters/memory"
	"github.com/aretw0/tutorgraph/pkg/adapters/openai"
	"github.com/aretw0/tutorgraph/pkg/adapters/redis"
	"github.com/aretw0/tutorgraph/pkg/capability"
	"github.com/aretw0/tutorgraph/pkg/chat"
	"github.com/aretw0/tutorgraph/pkg/config"
	"github.com/aretw0/tutorgraph/pkg/domain"
	"github.com/aretw0/tutorgraph/pkg/observability"
	"github.com/aretw0/tutorgraph/pkg/persistence/middleware"
	"github.com/aretw0/tutorgraph/pkg/ports"
	"github.com/aretw0/tutorgraph/pkg/prompts"
	"github.com/aretw0/tutorgraph/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

// App holds every component wired from the settings.
type App struct {
	Settings config.Settings
	Logger   *slog.Logger
	Engine   *tutorgraph.Engine
	Chat     *chat.Service
	Sessions *session.Manager
	Metrics  *observability.Metrics

	closers []func() error
}

// BuildOption customizes Build.
type BuildOption func(*buildOptions)

type buildOptions struct {
	provider capability.Provider
	registry *prometheus.Registry
}

// WithProvider replaces the OpenAI-compatible provider built from the settings.
func WithProvider(p capability.Provider) BuildOption {
	return func(o *buildOptions) {
		o.provider = p
	}
}

// WithMetricsRegistry registers the collectors on reg instead of a fresh registry.
func WithMetricsRegistry(reg *prometheus.Registry) BuildOption {
	return func(o *buildOptions) {
		o.registry = reg
	}
}

// Build wires the application from settings.
func Build(ctx context.Context, settings config.Settings, logger *slog.Logger, opts ...BuildOption) (*App, error) {
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}

	runCfg, err := settings.RunConfig()
	if err != nil {
		return nil, err
	}

	templates, err := loadPrompts(ctx, settings.Prompts.Dir)
	if err != nil {
		return nil, err
	}

	provider := o.provider
	if provider == nil {
		p, err := openai.NewFromAPIKey(settings.APIKey(), settings.Provider.BaseURL, runCfg.ContentModel)
		if err != nil {
			return nil, fmt.Errorf("provider (key from $%s): %w", settings.Provider.APIKeyEnv, err)
		}
		provider = p
	}

	metrics, err := observability.NewMetrics(o.registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	middlewares := providerMiddlewares(settings.Provider, metrics)

	engine, err := tutorgraph.New(provider,
		tutorgraph.WithLogger(logger),
		tutorgraph.WithConfig(runCfg),
		tutorgraph.WithPrompts(templates),
		tutorgraph.WithProviderMiddleware(middlewares...),
		tutorgraph.WithLifecycleHooks(domain.Combine(metrics.Hooks(), observability.LogHooks(logger))),
	)
	if err != nil {
		return nil, err
	}
	if _, err := engine.Graphs().Get(settings.Chat.Graph); err != nil {
		return nil, fmt.Errorf("chat.graph: %w", err)
	}

	app := &App{
		Settings: settings,
		Logger:   logger,
		Engine:   engine,
		Metrics:  metrics,
	}

	store, sessionOpts, err := app.sessionStore(settings.Session)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Sessions = session.NewManager(store, append(sessionOpts, session.WithLogger(logger))...)

	app.Chat = chat.NewService(engine.Runtime(), engine.Graphs(), runCfg,
		chat.WithSessions(app.Sessions),
		chat.WithDefaultGraph(settings.Chat.Graph),
		chat.WithMaxInputSize(settings.Chat.MaxInputSize),
		chat.WithLogger(logger),
	)
	return app, nil
}

// Close releases the session backend.
func (a *App) Close() error {
	var firstErr error
	for _, c := range a.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (a *App) sessionStore(s config.SessionSettings) (ports.SessionStore, []session.Option, error) {
	var (
		store ports.SessionStore
		opts  []session.Option
	)
	if s.Backend == "redis" {
		rs := redis.New(s.RedisAddr, s.RedisPassword, s.RedisDB,
			redis.WithTTL(s.TTL),
			redis.WithPrefix(s.Prefix),
		)
		a.closers = append(a.closers, rs.Close)
		a.Logger.Info("Using Redis session store", "addr", s.RedisAddr, "prefix", rs.Prefix())
		store = rs
		opts = append(opts, session.WithLocker(redis.NewLocker(rs.Client(), rs.Prefix())))
	} else {
		store = memory.NewStore()
	}

	mws, err := storeMiddlewares(s)
	if err != nil {
		return nil, nil, err
	}
	return middleware.Chain(store, mws...), opts, nil
}

// storeMiddlewares builds the redaction and encryption layers. Redaction runs
// first so the sealed body holds the masked text.
func storeMiddlewares(s config.SessionSettings) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware

	patterns := slices.Clone(s.RedactPatterns)
	if s.RedactPII {
		patterns = append(patterns, middleware.DefaultPIIPatterns...)
	}
	if len(patterns) > 0 {
		pii, err := middleware.NewPIIMiddleware(patterns)
		if err != nil {
			return nil, fmt.Errorf("session.redact_patterns: %w", err)
		}
		mws = append(mws, pii)
	}

	if s.EncryptionKeyEnv != "" {
		raw := os.Getenv(s.EncryptionKeyEnv)
		if raw == "" {
			return nil, fmt.Errorf("session encryption key not set: export $%s", s.EncryptionKeyEnv)
		}
		key, err := middleware.ParseKey(raw)
		if err != nil {
			return nil, fmt.Errorf("$%s: %w", s.EncryptionKeyEnv, err)
		}
		enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			return nil, err
		}
		mws = append(mws, enc)
	}
	return mws, nil
}

// providerMiddlewares places the rate limiter outside the metrics middleware
// so recorded call durations exclude time spent waiting for a token.
func providerMiddlewares(s config.ProviderSettings, metrics *observability.Metrics) []capability.Middleware {
	var mws []capability.Middleware
	if rps := s.RequestsPerSecond; rps > 0 {
		burst := s.Burst
		if burst < 1 {
			burst = 1
		}
		mws = append(mws, capability.RateLimit(rate.NewLimiter(rate.Limit(rps), burst)))
	}
	return append(mws, metrics.ProviderMiddleware())
}

// loadPrompts returns the built-in templates, overridden by the Markdown pack in dir if set.
func loadPrompts(ctx context.Context, dir string) (*prompts.Templates, error) {
	if dir == "" {
		return prompts.New()
	}
	overrides, err := loam.LoadDir(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load prompt pack: %w", err)
	}
	return prompts.New(prompts.WithTemplates(overrides))
}
