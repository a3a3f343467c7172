package config

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// DefaultModel is the reasoning model used by every stage unless overridden.
const DefaultModel = "gemini-2.5-flash"

// Recognized run configuration keys.
const (
	KeyValidationModel       = "validation_model"
	KeySearchModel           = "search_model"
	KeyContentModel          = "content_model"
	KeyMaxSearchQueries      = "max_search_queries"
	KeyValidationTemperature = "temperature.validation"
	KeySearchTemperature     = "temperature.search"
	KeyContentTemperature    = "temperature.content"
	KeyMaxRetries            = "max_retries"
	KeyTimeout               = "timeout"
)

var knownKeys = map[string]bool{
	KeyValidationModel:       true,
	KeySearchModel:           true,
	KeyContentModel:          true,
	KeyMaxSearchQueries:      true,
	KeyValidationTemperature: true,
	KeySearchTemperature:     true,
	KeyContentTemperature:    true,
	KeyMaxRetries:            true,
	KeyTimeout:               true,
}

// aliases maps accepted spellings to their canonical key.
var aliases = map[string]string{
	"maxRetries": KeyMaxRetries,
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Temperature holds the sampling temperature of each stage.
type Temperature struct {
	Validation float32 `yaml:"validation" mapstructure:"validation" json:"validation" validate:"gte=0,lte=2"`
	Search     float32 `yaml:"search" mapstructure:"search" json:"search" validate:"gte=0,lte=2"`
	Content    float32 `yaml:"content" mapstructure:"content" json:"content" validate:"gte=0,lte=2"`
}

// Config is the read-only run configuration handed to every node.
type Config struct {
	ValidationModel  string        `yaml:"validation_model" mapstructure:"validation_model" json:"validation_model" validate:"required"`
	SearchModel      string        `yaml:"search_model" mapstructure:"search_model" json:"search_model" validate:"required"`
	ContentModel     string        `yaml:"content_model" mapstructure:"content_model" json:"content_model" validate:"required"`
	MaxSearchQueries int           `yaml:"max_search_queries" mapstructure:"max_search_queries" json:"max_search_queries" validate:"gte=1,lte=10"`
	Temperature      Temperature   `yaml:"temperature" mapstructure:"temperature" json:"temperature"`
	MaxRetries       int           `yaml:"max_retries" mapstructure:"max_retries" json:"max_retries" validate:"gte=0,lte=10"`
	Timeout          time.Duration `yaml:"timeout" mapstructure:"timeout" json:"timeout" validate:"gt=0"`
}

// Default returns the configuration used when a key is not supplied.
func Default() Config {
	return Config{
		ValidationModel:  DefaultModel,
		SearchModel:      DefaultModel,
		ContentModel:     DefaultModel,
		MaxSearchQueries: 3,
		Temperature: Temperature{
			Validation: 0.1,
			Search:     0.3,
			Content:    0.7,
		},
		MaxRetries: 2,
		Timeout:    30 * time.Second,
	}
}

// Known reports whether key is a recognized configuration key.
func Known(key string) bool {
	return knownKeys[key] || aliases[key] != ""
}

// Keys lists the recognized configuration keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(knownKeys))
	for k := range knownKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FromMap decodes raw over the defaults. Unrecognized keys are ignored and
// missing keys keep their default value. Both nested maps
// ({"temperature": {"search": 0.5}}) and dotted keys ("temperature.search")
// are accepted.
func FromMap(raw map[string]any) (Config, error) {
	cfg := Default()
	if len(raw) == 0 {
		return cfg, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			numberToDurationHook,
		),
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return cfg, fmt.Errorf("failed to create config decoder: %w", err)
	}

	if err := decoder.Decode(expandDotted(canonical(raw))); err != nil {
		return cfg, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration ranges.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// canonical renames aliased keys. The canonical spelling wins when both are set.
func canonical(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		if to, ok := aliases[k]; ok {
			if _, set := raw[to]; set {
				continue
			}
			k = to
		}
		out[k] = v
	}
	return out
}

// expandDotted turns {"a.b": 1} into {"a": {"b": 1}} so mapstructure can
// decode nested structs from flat keys.
func expandDotted(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		parent, child, found := strings.Cut(k, ".")
		if !found {
			if nested, ok := v.(map[string]any); ok {
				if existing, ok := out[k].(map[string]any); ok {
					for nk, nv := range nested {
						existing[nk] = nv
					}
					continue
				}
				copied := make(map[string]any, len(nested))
				for nk, nv := range nested {
					copied[nk] = nv
				}
				out[k] = copied
				continue
			}
			out[k] = v
			continue
		}
		nested, ok := out[parent].(map[string]any)
		if !ok {
			nested = make(map[string]any)
			out[parent] = nested
		}
		nested[child] = v
	}
	return out
}

// numberToDurationHook reads bare numbers as seconds.
func numberToDurationHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(time.Duration(0)) {
		return data, nil
	}
	switch v := data.(type) {
	case int:
		return time.Duration(v) * time.Second, nil
	case int64:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	}
	return data, nil
}
