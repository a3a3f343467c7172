package schema

import (
	"fmt"
	"reflect"
)

// Type defines the contract for field validation.
// Implementations determine how values are validated against a type.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "string", "int").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
	// JSONSchema describes the type as a JSON Schema fragment.
	JSONSchema() map[string]any
}

// --- Built-in Type Implementations ---

// StringType validates string values.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value any) error {
	_, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

func (t *StringType) JSONSchema() map[string]any { return map[string]any{"type": "string"} }

// IntType validates integer values.
type IntType struct{}

func (t *IntType) Name() string { return "int" }

func (t *IntType) Validate(value any) error {
	switch v := value.(type) {
	case int, int8, int16, int32, int64:
		return nil
	case float64:
		// Accept floats that are whole numbers (from JSON unmarshaling)
		if v == float64(int64(v)) {
			return nil
		}
		return fmt.Errorf("expected int, got float (not a whole number)")
	default:
		return fmt.Errorf("expected int, got %T", value)
	}
}

func (t *IntType) JSONSchema() map[string]any { return map[string]any{"type": "integer"} }

// FloatType validates floating-point values.
type FloatType struct{}

func (t *FloatType) Name() string { return "float" }

func (t *FloatType) Validate(value any) error {
	switch value.(type) {
	case float32, float64, int, int8, int16, int32, int64:
		return nil
	default:
		return fmt.Errorf("expected float, got %T", value)
	}
}

func (t *FloatType) JSONSchema() map[string]any { return map[string]any{"type": "number"} }

// BoolType validates boolean values.
type BoolType struct{}

func (t *BoolType) Name() string { return "bool" }

func (t *BoolType) Validate(value any) error {
	_, ok := value.(bool)
	if !ok {
		return fmt.Errorf("expected bool, got %T", value)
	}
	return nil
}

func (t *BoolType) JSONSchema() map[string]any { return map[string]any{"type": "boolean"} }

// SliceType validates slices of a specific element type.
type SliceType struct {
	elemType Type
}

func (t *SliceType) Name() string {
	return fmt.Sprintf("[%s]", t.elemType.Name())
}

func (t *SliceType) Validate(value any) error {
	if value == nil {
		return fmt.Errorf("expected slice, got nil")
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected slice, got %T", value)
	}

	// Validate each element
	for i := 0; i < rv.Len(); i++ {
		elem := rv.Index(i).Interface()
		if err := t.elemType.Validate(elem); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

func (t *SliceType) JSONSchema() map[string]any {
	return map[string]any{"type": "array", "items": t.elemType.JSONSchema()}
}

// ObjectType validates nested objects against their own schema.
type ObjectType struct {
	fields Schema
}

func (t *ObjectType) Name() string { return "object" }

func (t *ObjectType) Validate(value any) error {
	m, ok := value.(map[string]any)
	if !ok {
		return fmt.Errorf("expected object, got %T", value)
	}
	return Validate(t.fields, m)
}

func (t *ObjectType) JSONSchema() map[string]any { return t.fields.JSONSchema() }

// OptionalType marks a field that may be absent or null.
type OptionalType struct {
	elemType Type
}

func (t *OptionalType) Name() string { return t.elemType.Name() + "?" }

func (t *OptionalType) Validate(value any) error {
	if value == nil {
		return nil
	}
	return t.elemType.Validate(value)
}

func (t *OptionalType) JSONSchema() map[string]any { return t.elemType.JSONSchema() }

// CustomType applies a user-defined validation function.
type CustomType struct {
	name     string
	validate func(any) error
}

func (t *CustomType) Name() string { return t.name }

func (t *CustomType) Validate(value any) error {
	return t.validate(value)
}

func (t *CustomType) JSONSchema() map[string]any { return map[string]any{"description": t.name} }

// --- Factory Functions ---

// String creates a string type validator.
func String() Type { return &StringType{} }

// Int creates an integer type validator.
func Int() Type { return &IntType{} }

// Float creates a float type validator.
func Float() Type { return &FloatType{} }

// Bool creates a boolean type validator.
func Bool() Type { return &BoolType{} }

// Slice creates a slice type validator for elements of the given type.
func Slice(elemType Type) Type {
	return &SliceType{elemType: elemType}
}

// Object creates a validator for a nested object.
func Object(fields Schema) Type {
	return &ObjectType{fields: fields}
}

// Optional wraps a type so the field may be omitted or null.
func Optional(elemType Type) Type {
	return &OptionalType{elemType: elemType}
}

// Custom creates a custom type validator with a user-defined function.
func Custom(name string, validate func(any) error) Type {
	return &CustomType{name: name, validate: validate}
}

// IsOptional reports whether t accepts a missing value.
func IsOptional(t Type) bool {
	_, ok := t.(*OptionalType)
	return ok
}
