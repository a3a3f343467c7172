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

// ValidationSchema is the verdict expected from the classification prompt.
var ValidationSchema = schema.Schema{
	"is_specific":            schema.Bool(),
	"clarification_question": schema.String(),
	"extracted_requirements": schema.Object(schema.Schema{
		"intent": schema.Optional(schema.String()),
	}),
}

type verdict struct {
	IsSpecific            bool   `json:"is_specific"`
	ClarificationQuestion string `json:"clarification_question"`
	ExtractedRequirements struct {
		Intent string `json:"intent"`
	} `json:"extracted_requirements"`
}

// Validation classifies the latest user message as a specific coding question
// or asks the learner to clarify it.
func Validation(adapter capability.Adapter, builder prompts.Builder, opts ...Option) graph.Node {
	d := newDeps(adapter, builder, opts)
	return graph.Node{
		Name:           ValidateRequest,
		Handler:        d.validate,
		RequiredConfig: []string{config.KeyValidationModel, config.KeyValidationTemperature, config.KeyMaxRetries, config.KeyTimeout},
		Outputs:        []string{domain.KeyIsRequestValid, domain.KeyUserResponse, domain.KeyUserIntent},
		Description:    "Classifies the request and extracts the learner intent",
	}
}

func (d *deps) validate(ctx context.Context, state *domain.State, cfg config.Config) (domain.Partial, error) {
	message := domain.LatestUserMessage(state.Messages)

	prompt, err := d.prompts.Validation(message)
	if err != nil {
		return nil, fmt.Errorf("failed to build validation prompt: %w", err)
	}

	res, err := d.adapter.Invoke(ctx, capability.Request{
		Prompt:     prompt,
		Schema:     ValidationSchema,
		SchemaName: "request_validation",
		Options:    stageOptions(cfg.ValidationModel, cfg.Temperature.Validation, cfg),
	})
	if err != nil {
		return nil, err
	}

	var v verdict
	if err := schema.Decode(res.Data, &v); err != nil {
		return nil, err
	}

	response := ""
	if !v.IsSpecific {
		response = v.ClarificationQuestion
	}

	d.logger.DebugContext(ctx, "request classified",
		"valid", v.IsSpecific,
		"intent", v.ExtractedRequirements.Intent,
		"attempts", res.Attempts)

	return domain.Partial{
		domain.KeyIsRequestValid: v.IsSpecific,
		domain.KeyUserResponse:   response,
		domain.KeyUserIntent:     v.ExtractedRequirements.Intent,
	}, nil
}
