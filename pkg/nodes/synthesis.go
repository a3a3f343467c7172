package nodes

import (
	"context"
	"fmt"

	"github.com/aretw0/tutorgraph/pkg/capability"
	"github.com/aretw0/tutorgraph/pkg/config"
	"github.com/aretw0/tutorgraph/pkg/domain"
	"github.com/aretw0/tutorgraph/pkg/graph"
	"github.com/aretw0/tutorgraph/pkg/prompts"
)

// Synthesis produces the tutor reply. Before the learner has said anything it
// answers with the greeting and never calls the adapter.
func Synthesis(adapter capability.Adapter, builder prompts.Builder, opts ...Option) graph.Node {
	d := newDeps(adapter, builder, opts)
	return graph.Node{
		Name:           TutorResponse,
		Handler:        d.synthesize,
		RequiredConfig: []string{config.KeyContentModel, config.KeyContentTemperature, config.KeyMaxRetries, config.KeyTimeout},
		Outputs:        []string{domain.KeyMessages, domain.KeyUserResponse},
		Description:    "Replies to the learner as a Socratic coding tutor",
	}
}

func (d *deps) synthesize(ctx context.Context, state *domain.State, cfg config.Config) (domain.Partial, error) {
	if !domain.HasUserMessage(state.Messages) {
		greeting, err := d.prompts.Greeting(state.Topics)
		if err != nil {
			return nil, fmt.Errorf("failed to build greeting: %w", err)
		}
		return reply(greeting), nil
	}

	prompt, err := d.prompts.Tutor(prompts.TutorInput{
		Code:    state.Code(),
		Persona: state.Persona,
		Topics:  state.Topics,
		History: state.Messages,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build tutor prompt: %w", err)
	}

	res, err := d.adapter.Invoke(ctx, capability.Request{
		Prompt:  prompt,
		Options: stageOptions(cfg.ContentModel, cfg.Temperature.Content, cfg),
	})
	if err != nil {
		return nil, err
	}

	d.logger.DebugContext(ctx, "tutor reply generated", "chars", len(res.Text), "attempts", res.Attempts)
	return reply(res.Text), nil
}

func reply(text string) domain.Partial {
	return domain.Partial{
		domain.KeyMessages:     domain.AssistantMessage(text),
		domain.KeyUserResponse: text,
	}
}
