package nodes

import (
	"context"
	"fmt"

	"github.com/aretw0/tutorgraph/pkg/capability"
	"github.com/aretw0/tutorgraph/pkg/config"
	"github.com/aretw0/tutorgraph/pkg/domain"
	"github.com/aretw0/tutorgraph/pkg/graph"
	"github.com/aretw0/tutorgraph/pkg/prompts"
	"github.com/aretw0/tutorgraph/pkg/schema"
)

// SearchQuerySchema is the query plan expected from the enrichment prompt.
var SearchQuerySchema = schema.Schema{
	"queries":   schema.Slice(schema.String()),
	"rationale": schema.String(),
}

type queryPlan struct {
	Queries   []string `json:"queries"`
	Rationale string   `json:"rationale"`
}

// Enrichment plans search queries for a validated request.
func Enrichment(adapter capability.Adapter, builder prompts.Builder, opts ...Option) graph.Node {
	d := newDeps(adapter, builder, opts)
	return graph.Node{
		Name:    GenerateQueries,
		Handler: d.enrich,
		RequiredConfig: []string{
			config.KeySearchModel, config.KeySearchTemperature, config.KeyMaxSearchQueries,
			config.KeyMaxRetries, config.KeyTimeout,
		},
		Outputs:     []string{domain.KeySearchQueries, domain.KeySearchRationale},
		Description: "Generates search queries for the learner intent",
	}
}

func (d *deps) enrich(ctx context.Context, state *domain.State, cfg config.Config) (domain.Partial, error) {
	message := domain.LatestUserMessage(state.Messages)
	intent := state.UserIntent
	if intent == "" {
		intent = DefaultIntent
	}

	prompt, err := d.prompts.SearchQueries(message, intent, cfg.MaxSearchQueries)
	if err != nil {
		return nil, fmt.Errorf("failed to build search prompt: %w", err)
	}

	res, err := d.adapter.Invoke(ctx, capability.Request{
		Prompt:     prompt,
		Schema:     SearchQuerySchema,
		SchemaName: "search_queries",
		Options:    stageOptions(cfg.SearchModel, cfg.Temperature.Search, cfg),
	})
	if err != nil {
		return nil, err
	}

	var plan queryPlan
	if err := schema.Decode(res.Data, &plan); err != nil {
		return nil, err
	}

	queries := plan.Queries
	if cfg.MaxSearchQueries > 0 && len(queries) > cfg.MaxSearchQueries {
		d.logger.DebugContext(ctx, "truncating search queries", "got", len(queries), "max", cfg.MaxSearchQueries)
		queries = queries[:cfg.MaxSearchQueries]
	}
	if queries == nil {
		queries = []string{}
	}

	return domain.Partial{
		domain.KeySearchQueries:   queries,
		domain.KeySearchRationale: plan.Rationale,
	}, nil
}
