// Package openai provides a capability.Provider backed by any OpenAI-compatible
// Chat Completions endpoint, using github.com/sashabaranov/go-openai.
//
// The default base URL targets Google's OpenAI-compatible Gemini endpoint.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/aretw0/tutorgraph/pkg/capability"
	"github.com/aretw0/tutorgraph/pkg/domain"
)

// GeminiBaseURL is Google's OpenAI-compatible endpoint.
const GeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// ChatClient captures the subset of the go-openai client used by the provider.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (
		openai.ChatCompletionResponse, error)
}

// Options configures the provider.
type Options struct {
	Client       ChatClient
	DefaultModel string
	// NativeSchema sends the output schema as a json_schema response format.
	// Disable it for endpoints without structured-output support; the schema
	// is then enforced by the capability adapter alone.
	NativeSchema bool
}

// Provider implements capability.Provider.
type Provider struct {
	chat         ChatClient
	model        string
	nativeSchema bool
}

// New builds a provider from the given options.
func New(opts Options) (*Provider, error) {
	if opts.Client == nil {
		return nil, errors.New("openai client is required")
	}
	if opts.DefaultModel == "" {
		return nil, errors.New("default model is required")
	}
	return &Provider{chat: opts.Client, model: opts.DefaultModel, nativeSchema: opts.NativeSchema}, nil
}

// NewFromAPIKey constructs a provider using the default go-openai HTTP client.
// An empty baseURL selects GeminiBaseURL.
func NewFromAPIKey(apiKey, baseURL, defaultModel string) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("api key is required")
	}
	if baseURL == "" {
		baseURL = GeminiBaseURL
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return New(Options{
		Client:       openai.NewClientWithConfig(cfg),
		DefaultModel: defaultModel,
		NativeSchema: true,
	})
}

// Complete sends one chat completion and returns the first choice's content.
func (p *Provider) Complete(ctx context.Context, req capability.ProviderRequest) (string, error) {
	if len(req.Messages) == 0 {
		return "", capability.Permanent(errors.New("messages are required"))
	}
	modelID := req.Model
	if modelID == "" {
		modelID = p.model
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, seg := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    chatRole(seg.Role),
			Content: seg.Text,
		})
	}

	request := openai.ChatCompletionRequest{
		Model:       modelID,
		Messages:    messages,
		Temperature: req.Temperature,
	}
	if req.Schema != nil && p.nativeSchema {
		name := req.SchemaName
		if name == "" {
			name = "response"
		}
		request.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   name,
				Schema: req.Schema.Strict(),
				Strict: true,
			},
		}
	}

	response, err := p.chat.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", classifyError(fmt.Errorf("openai chat completion: %w", err))
	}
	if len(response.Choices) == 0 {
		return "", errors.New("openai chat completion: no choices returned")
	}
	return response.Choices[0].Message.Content, nil
}

func chatRole(role domain.Role) string {
	switch role {
	case domain.RoleSystem:
		return openai.ChatMessageRoleSystem
	case domain.RoleAssistant:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}

// classifyError marks client-side HTTP failures as permanent. Rate limits and
// server errors stay retryable.
func classifyError(err error) error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch status {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden,
		http.StatusNotFound, http.StatusUnprocessableEntity:
		return capability.Permanent(err)
	}
	return err
}
