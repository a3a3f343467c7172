package nodes

import (
	"io"
	"log/slog"

	"github.com/aretw0/tutorgraph/pkg/capability"
	"github.com/aretw0/tutorgraph/pkg/config"
	"github.com/aretw0/tutorgraph/pkg/prompts"
)

// Node names. They double as the stage recorded in a run error.
const (
	ValidateRequest = "validate_request"
	GenerateQueries = "generate_queries"
	TutorResponse   = "tutor_response"
)

// DefaultIntent is assumed when the validation stage extracted no intent.
const DefaultIntent = "코딩 인터뷰 문제 분석"

// Option configures the node handlers.
type Option func(*deps)

// WithLogger sets the logger used by the handlers.
func WithLogger(logger *slog.Logger) Option {
	return func(d *deps) {
		if logger != nil {
			d.logger = logger
		}
	}
}

type deps struct {
	adapter capability.Adapter
	prompts prompts.Builder
	logger  *slog.Logger
}

func newDeps(adapter capability.Adapter, builder prompts.Builder, opts []Option) *deps {
	d := &deps{
		adapter: adapter,
		prompts: builder,
		logger:  slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func stageOptions(model string, temperature float32, cfg config.Config) capability.Options {
	return capability.Options{
		Model:       model,
		Temperature: temperature,
		MaxRetries:  cfg.MaxRetries,
		Timeout:     cfg.Timeout,
	}
}
