package prompts

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/aretw0/tutorgraph/pkg/capability"
	"github.com/aretw0/tutorgraph/pkg/domain"
)

// TutorInput is everything the tutor instruction may reference.
type TutorInput struct {
	Code    string
	Persona string
	Topics  []string
	// History is appended after the system instruction, in order.
	History []domain.Message
}

// Builder produces the prompt segments of each stage.
type Builder interface {
	Validation(userMessage string) ([]capability.Segment, error)
	SearchQueries(userMessage, intent string, maxQueries int) ([]capability.Segment, error)
	Tutor(in TutorInput) ([]capability.Segment, error)
	Greeting(topics []string) (string, error)
}

// Templates is the default Builder, rendering text/template sources.
type Templates struct {
	compiled map[string]*template.Template
}

// Option configures Templates.
type Option func(map[string]string)

// WithTemplates overrides templates by name. Unknown names are ignored and
// empty sources keep the built-in template.
func WithTemplates(overrides map[string]string) Option {
	return func(sources map[string]string) {
		for name, src := range overrides {
			if _, ok := sources[name]; !ok || strings.TrimSpace(src) == "" {
				continue
			}
			sources[name] = src
		}
	}
}

// New compiles the built-in templates with any overrides applied.
func New(opts ...Option) (*Templates, error) {
	sources := DefaultTemplates()
	for _, opt := range opts {
		opt(sources)
	}

	funcs := template.FuncMap{
		"join": strings.Join,
	}

	compiled := make(map[string]*template.Template, len(sources))
	for name, src := range sources {
		tmpl, err := template.New(name).Funcs(funcs).Option("missingkey=zero").Parse(src)
		if err != nil {
			return nil, fmt.Errorf("failed to parse prompt template %s: %w", name, err)
		}
		compiled[name] = tmpl
	}
	return &Templates{compiled: compiled}, nil
}

// MustNew is like New but panics on error. Intended for the built-in set.
func MustNew(opts ...Option) *Templates {
	t, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Templates) render(name string, data any) (string, error) {
	tmpl, ok := t.compiled[name]
	if !ok {
		return "", fmt.Errorf("prompt template %s not found", name)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render prompt %s: %w", name, err)
	}
	return sb.String(), nil
}

// Validation renders the request classification prompt.
func (t *Templates) Validation(userMessage string) ([]capability.Segment, error) {
	return t.pair(NameValidationSystem, NameValidationUser, map[string]any{
		"Message": userMessage,
	})
}

// SearchQueries renders the query planning prompt.
func (t *Templates) SearchQueries(userMessage, intent string, maxQueries int) ([]capability.Segment, error) {
	return t.pair(NameSearchSystem, NameSearchUser, map[string]any{
		"Message":    userMessage,
		"Intent":     intent,
		"MaxQueries": maxQueries,
	})
}

// Tutor renders the tutor instruction followed by the conversation.
func (t *Templates) Tutor(in TutorInput) ([]capability.Segment, error) {
	system, err := t.render(NameTutorSystem, map[string]any{
		"Code":    in.Code,
		"HasCode": strings.TrimSpace(in.Code) != "",
		"Persona": in.Persona,
		"Topics":  in.Topics,
	})
	if err != nil {
		return nil, err
	}

	segments := make([]capability.Segment, 0, len(in.History)+1)
	segments = append(segments, capability.System(system))
	segments = append(segments, capability.FromMessages(in.History)...)
	return segments, nil
}

// Greeting renders the opening message used before the learner has said anything.
func (t *Templates) Greeting(topics []string) (string, error) {
	out, err := t.render(NameGreeting, map[string]any{"Topics": topics})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (t *Templates) pair(systemName, userName string, data map[string]any) ([]capability.Segment, error) {
	system, err := t.render(systemName, data)
	if err != nil {
		return nil, err
	}
	user, err := t.render(userName, data)
	if err != nil {
		return nil, err
	}
	return []capability.Segment{capability.System(system), capability.User(user)}, nil
}

// NormalizeUserMessage trims message and reports whether anything is left.
// Blank messages must not be sent to the pipeline as a user turn.
func NormalizeUserMessage(message string) (string, bool) {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return "", false
	}
	return message, true
}
