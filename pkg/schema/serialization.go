package schema

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// JSONSchema renders the schema as a JSON Schema object definition.
// Every non-optional field is listed as required and no extra properties are allowed.
func (s Schema) JSONSchema() map[string]any {
	properties := make(map[string]any, len(s))
	required := make([]string, 0, len(s))
	for _, key := range s.Fields() {
		typ := s[key]
		if typ == nil {
			continue
		}
		properties[key] = typ.JSONSchema()
		if !IsOptional(typ) {
			required = append(required, key)
		}
	}

	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

// MarshalJSON serializes the schema as a JSON Schema document, so a Schema can
// be handed directly to providers that accept structured-output definitions.
func (s Schema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	for key, typ := range s {
		if typ == nil {
			return nil, fmt.Errorf("field %s: type is nil", key)
		}
	}
	return json.Marshal(s.JSONSchema())
}

// StrictJSONSchema renders the schema for strict structured-output endpoints,
// which demand that every property be listed as required. Optional fields are
// therefore required but nullable, which Validate already accepts.
func (s Schema) StrictJSONSchema() map[string]any {
	properties := make(map[string]any, len(s))
	required := make([]string, 0, len(s))
	for _, key := range s.Fields() {
		typ := s[key]
		if typ == nil {
			continue
		}
		properties[key] = strictFragment(typ)
		required = append(required, key)
	}

	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

// Strict wraps the schema so it marshals in its strict form.
func (s Schema) Strict() json.Marshaler {
	return strictSchema(s)
}

type strictSchema Schema

func (s strictSchema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	for key, typ := range s {
		if typ == nil {
			return nil, fmt.Errorf("field %s: type is nil", key)
		}
	}
	return json.Marshal(Schema(s).StrictJSONSchema())
}

func strictFragment(t Type) map[string]any {
	switch v := t.(type) {
	case *OptionalType:
		return nullable(strictFragment(v.elemType))
	case *ObjectType:
		return v.fields.StrictJSONSchema()
	case *SliceType:
		return map[string]any{"type": "array", "items": strictFragment(v.elemType)}
	default:
		return t.JSONSchema()
	}
}

func nullable(frag map[string]any) map[string]any {
	if typ, ok := frag["type"].(string); ok {
		out := make(map[string]any, len(frag))
		for k, v := range frag {
			out[k] = v
		}
		out["type"] = []any{typ, "null"}
		return out
	}
	return map[string]any{"anyOf": []any{frag, map[string]any{"type": "null"}}}
}

// Decode copies validated data into out, a pointer to a struct whose fields
// carry `json` tags matching the schema keys.
func Decode(data map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  out,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(data); err != nil {
		return fmt.Errorf("failed to decode structured output: %w", err)
	}
	return nil
}
