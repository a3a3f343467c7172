package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings is the application configuration read from a YAML file.
type Settings struct {
	Server   ServerSettings   `yaml:"server"`
	Provider ProviderSettings `yaml:"provider"`
	Session  SessionSettings  `yaml:"session"`
	Prompts  PromptSettings   `yaml:"prompts"`
	Log      LogSettings      `yaml:"log"`
	Chat     ChatSettings     `yaml:"chat"`

	// Pipeline is the run configuration map, decoded with FromMap.
	Pipeline map[string]any `yaml:"pipeline"`
}

type ServerSettings struct {
	Addr string `yaml:"addr" validate:"required"`
}

// ProviderSettings configures the OpenAI-compatible reasoning endpoint.
type ProviderSettings struct {
	BaseURL   string `yaml:"base_url" validate:"omitempty,url"`
	APIKeyEnv string `yaml:"api_key_env" validate:"required"`
	// RequestsPerSecond limits outbound calls. Zero disables limiting.
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"gte=0"`
	Burst             int     `yaml:"burst" validate:"gte=0"`
}

// SessionSettings selects and configures the session store.
type SessionSettings struct {
	Backend       string        `yaml:"backend" validate:"oneof=memory redis"`
	RedisAddr     string        `yaml:"redis_addr" validate:"required_if=Backend redis"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db" validate:"gte=0"`
	TTL           time.Duration `yaml:"ttl" validate:"gte=0"`
	Prefix        string        `yaml:"prefix"`

	// EncryptionKeyEnv names the variable holding a 32-byte hex or base64 key.
	// When set, sessions are sealed with AES-GCM before they reach the store.
	EncryptionKeyEnv string `yaml:"encryption_key_env"`
	// RedactPII masks e-mail addresses and phone numbers in stored history.
	RedactPII bool `yaml:"redact_pii"`
	// RedactPatterns are extra regular expressions masked in stored history.
	RedactPatterns []string `yaml:"redact_patterns"`
}

type PromptSettings struct {
	// Dir is an optional Markdown prompt pack overriding the built-in templates.
	Dir string `yaml:"dir"`
}

type LogSettings struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

type ChatSettings struct {
	// Graph is the topology used by the chat endpoint.
	Graph string `yaml:"graph" validate:"required"`
	// MaxInputSize caps the learner message in bytes. Zero keeps the default.
	MaxInputSize int `yaml:"max_input_size" validate:"gte=0"`
}

// DefaultSettings returns settings suitable for local development.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{Addr: ":8080"},
		Provider: ProviderSettings{
			BaseURL:   "https://generativelanguage.googleapis.com/v1beta/openai/",
			APIKeyEnv: "GEMINI_API_KEY",
		},
		Session: SessionSettings{
			Backend: "memory",
			TTL:     24 * time.Hour,
			Prefix:  "tutorgraph:session:",
		},
		Log:  LogSettings{Level: "info", Format: "text"},
		Chat: ChatSettings{Graph: "tutoring", MaxInputSize: 4096},
	}
}

// LoadSettings reads a YAML settings file over the defaults.
// An empty path returns the defaults.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return settings, fmt.Errorf("failed to read settings: %w", err)
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}

	if err := settings.Validate(); err != nil {
		return settings, err
	}
	return settings, nil
}

// Validate checks the settings and the embedded run configuration.
func (s Settings) Validate() error {
	var errs []error
	if err := validate.Struct(s); err != nil {
		errs = append(errs, fmt.Errorf("invalid settings: %w", err))
	}
	if _, err := FromMap(s.Pipeline); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// RunConfig decodes the pipeline section.
func (s Settings) RunConfig() (Config, error) {
	return FromMap(s.Pipeline)
}

// APIKey resolves the provider key from the environment.
func (s Settings) APIKey() string {
	return os.Getenv(s.Provider.APIKeyEnv)
}
