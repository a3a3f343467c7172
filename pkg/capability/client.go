package capability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/tutorgraph/pkg/schema"
)

// Client is the default Adapter. It validates structured answers and retries
// failed attempts without backoff, making exactly one provider call per attempt.
type Client struct {
	provider Provider
	logger   *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for attempt diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMiddleware decorates the provider. The first middleware is the outermost.
func WithMiddleware(mws ...Middleware) Option {
	return func(c *Client) {
		c.provider = Chain(c.provider, mws...)
	}
}

// NewClient creates an adapter over provider.
func NewClient(provider Provider, opts ...Option) *Client {
	c := &Client{
		provider: provider,
		logger:   slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Invoke implements Adapter.
func (c *Client) Invoke(ctx context.Context, req Request) (Result, error) {
	attempts := 1 + max(req.Options.MaxRetries, 0)
	preq := ProviderRequest{
		Model:       req.Options.Model,
		Temperature: req.Options.Temperature,
		Messages:    req.Prompt,
		Schema:      req.Schema,
		SchemaName:  req.SchemaName,
	}

	var last *Failure
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if last == nil {
				last = &Failure{Kind: classify(err), Attempts: attempt - 1, Err: err}
			}
			break
		}

		raw, err := c.call(ctx, preq, req.Options)
		if err != nil {
			last = &Failure{Kind: classify(err), Attempts: attempt, Err: err}
			c.logger.Warn("capability attempt failed",
				"model", preq.Model, "attempt", attempt, "of", attempts, "kind", last.Kind, "error", err)
			if IsPermanent(err) {
				break
			}
			continue
		}

		if req.Schema == nil {
			return Result{Text: strings.TrimSpace(raw), Attempts: attempt}, nil
		}

		data, err := decodeStructured(raw, req.Schema)
		if err != nil {
			last = &Failure{Kind: KindSchemaInvalid, Detail: err.Error(), Attempts: attempt}
			c.logger.Warn("capability answer rejected",
				"model", preq.Model, "attempt", attempt, "of", attempts,
				"fields", schema.FailedKeys(err), "error", err)
			continue
		}
		return Result{Data: data, Text: raw, Attempts: attempt}, nil
	}

	c.logger.Error("capability exhausted", "model", preq.Model, "kind", last.Kind, "attempts", last.Attempts)
	return Result{}, last
}

func (c *Client) call(ctx context.Context, req ProviderRequest, opts Options) (string, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	raw, err := c.provider.Complete(ctx, req)
	if err != nil {
		// Providers do not always wrap the deadline error.
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
		}
		return "", err
	}
	return raw, nil
}

func classify(err error) FailureKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindTransport
}

// decodeStructured parses raw as a JSON object, tolerating Markdown code fences
// and surrounding prose, and validates it against s.
func decodeStructured(raw string, s schema.Schema) (map[string]any, error) {
	body := extractJSON(raw)
	if body == "" {
		return nil, errors.New("answer contains no JSON object")
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		return nil, fmt.Errorf("answer is not valid JSON: %w", err)
	}

	if err := schema.Validate(s, data); err != nil {
		return nil, err
	}
	return data, nil
}

func extractJSON(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimPrefix(text, "json")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}
	if strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}") {
		return text
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}
