package schema

import (
	"errors"
	"sort"
)

// Schema is a map of field names to their expected types.
// Example: {"is_specific": Bool(), "queries": Slice(String())}
type Schema map[string]Type

// Fields returns the field names in sorted order.
func (s Schema) Fields() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks if data conforms to the schema.
// Returns an error with all validation failures found. Failures inside nested
// objects are reported with dotted keys (e.g. "extracted_requirements.intent").
func Validate(schema Schema, data map[string]any) error {
	if len(schema) == 0 {
		// No schema = no validation
		return nil
	}

	var errs []error

	for _, fieldName := range schema.Fields() {
		fieldType := schema[fieldName]
		value, exists := data[fieldName]
		if !exists {
			if IsOptional(fieldType) {
				continue
			}
			errs = append(errs, &ValidationError{
				Key:    fieldName,
				Reason: "required",
				Value:  nil,
			})
			continue
		}

		if err := fieldType.Validate(value); err != nil {
			var nested *AggregateError
			if errors.As(err, &nested) {
				errs = append(errs, prefixed(fieldName, nested)...)
				continue
			}
			errs = append(errs, &ValidationError{
				Key:    fieldName,
				Reason: err.Error(),
				Value:  value,
			})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}

	return nil
}

func prefixed(parent string, aggr *AggregateError) []error {
	out := make([]error, 0, len(aggr.Errors))
	for _, err := range aggr.Errors {
		var ve *ValidationError
		if errors.As(err, &ve) {
			out = append(out, &ValidationError{
				Key:    parent + "." + ve.Key,
				Reason: ve.Reason,
				Value:  ve.Value,
			})
			continue
		}
		out = append(out, err)
	}
	return out
}
