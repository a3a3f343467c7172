package schema

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestValidate_Success(t *testing.T) {
	schema := Schema{
		"rationale": String(),
		"attempts": Int(),
		"confidence": Float(),
		"is_specific": Bool(),
		"queries":    Slice(String()),
	}

	data := map[string]any{
		"rationale": "dynamic programming",
		"attempts": 3,
		"confidence": 0.85,
		"is_specific": true,
		"queries":    []string{"two sum", "hash map"},
	}

	err := Validate(schema, data)
	if err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_MissingField(t *testing.T) {
	schema := Schema{
		"rationale": String(),
		"attempts": Int(),
	}

	data := map[string]any{
		"rationale": "dynamic programming",
		// missing attempts
	}

	err := Validate(schema, data)
	if err == nil {
		t.Fatal("Validate() should return error for missing field")
	}

	aggr, ok := err.(*AggregateError)
	if !ok {
		t.Fatalf("error should be *AggregateError, got %T", err)
	}

	if len(aggr.Errors) != 1 {
		t.Errorf("Validate() = %d errors, want 1", len(aggr.Errors))
	}

	validErr, ok := aggr.Errors[0].(*ValidationError)
	if !ok {
		t.Fatalf("error should be *ValidationError, got %T", aggr.Errors[0])
	}

	if validErr.Key != "attempts" {
		t.Errorf("error Key = %q, want attempts", validErr.Key)
	}
}

func TestValidate_TypeMismatch(t *testing.T) {
	schema := Schema{
		"rationale": String(),
		"attempts": Int(),
	}

	data := map[string]any{
		"rationale": "dynamic programming",
		"attempts": "not an int",
	}

	err := Validate(schema, data)
	if err == nil {
		t.Fatal("Validate() should return error for type mismatch")
	}

	aggr, ok := err.(*AggregateError)
	if !ok {
		t.Fatalf("error should be *AggregateError, got %T", err)
	}

	if len(aggr.Errors) != 1 {
		t.Errorf("Validate() = %d errors, want 1", len(aggr.Errors))
	}

	validErr, ok := aggr.Errors[0].(*ValidationError)
	if !ok {
		t.Fatalf("error should be *ValidationError, got %T", aggr.Errors[0])
	}

	if validErr.Key != "attempts" {
		t.Errorf("error Key = %q, want attempts", validErr.Key)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	schema := Schema{
		"rationale": String(),
		"attempts": Int(),
		"confidence": Float(),
	}

	data := map[string]any{
		// missing rationale
		"attempts": "not an int",
		"confidence": "not a float",
	}

	err := Validate(schema, data)
	if err == nil {
		t.Fatal("Validate() should return error")
	}

	aggr, ok := err.(*AggregateError)
	if !ok {
		t.Fatalf("error should be *AggregateError, got %T", err)
	}

	if len(aggr.Errors) != 3 {
		t.Errorf("Validate() = %d errors, want 3", len(aggr.Errors))
	}
}

func TestValidate_EmptySchema(t *testing.T) {
	schema := Schema{}
	data := map[string]any{
		"rationale": "dynamic programming",
	}

	err := Validate(schema, data)
	if err != nil {
		t.Errorf("Validate() with empty schema should return nil, got %v", err)
	}
}

func TestValidate_NilSchema(t *testing.T) {
	var schema Schema
	data := map[string]any{
		"rationale": "dynamic programming",
	}

	err := Validate(schema, data)
	if err != nil {
		t.Errorf("Validate() with nil schema should return nil, got %v", err)
	}
}

func TestValidate_NestedErrors(t *testing.T) {
	verdict := Schema{
		"is_specific":            Bool(),
		"clarification_question": String(),
		"extracted_requirements": Object(Schema{
			"intent": Optional(String()),
		}),
	}

	ok := map[string]any{
		"is_specific":            true,
		"clarification_question": "",
		"extracted_requirements": map[string]any{},
	}
	if err := Validate(verdict, ok); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}

	bad := map[string]any{
		"is_specific":            true,
		"clarification_question": "",
		"extracted_requirements": map[string]any{"intent": 42},
	}
	errs := ValidationErrors(Validate(verdict, bad))
	if len(errs) != 1 {
		t.Fatalf("Validate() = %d errors, want 1", len(errs))
	}
	validErr, ok2 := errs[0].(*ValidationError)
	if !ok2 {
		t.Fatalf("error should be *ValidationError, got %T", errs[0])
	}
	if validErr.Key != "extracted_requirements.intent" {
		t.Errorf("error Key = %q, want extracted_requirements.intent", validErr.Key)
	}
}

func TestFailedKeys(t *testing.T) {
	s := Schema{"queries": Slice(String()), "rationale": String()}

	err := fmt.Errorf("decode: %w", Validate(s, map[string]any{"queries": "not a list"}))
	keys := FailedKeys(err)
	if strings.Join(keys, ",") != "queries,rationale" {
		t.Errorf("FailedKeys() = %v, want [queries rationale]", keys)
	}

	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Key != "queries" {
		t.Errorf("errors.As should reach the first *ValidationError, got %v", ve)
	}

	if FailedKeys(errors.New("boom")) != nil {
		t.Error("FailedKeys() of a plain error should be nil")
	}
}

func TestValidate_DeterministicOrder(t *testing.T) {
	s := Schema{"c": String(), "a": String(), "b": String()}

	errs := ValidationErrors(Validate(s, map[string]any{}))
	if len(errs) != 3 {
		t.Fatalf("Validate() = %d errors, want 3", len(errs))
	}
	for i, want := range []string{"a", "b", "c"} {
		if errs[i].(*ValidationError).Key != want {
			t.Errorf("errs[%d].Key = %q, want %q", i, errs[i].(*ValidationError).Key, want)
		}
	}
}

func TestValidationError_String(t *testing.T) {
	tests := []struct {
		err  *ValidationError
		want string
	}{
		{
			&ValidationError{Key: "rationale", Reason: "required", Value: nil},
			`field "rationale": required`,
		},
		{
			&ValidationError{Key: "attempts", Reason: "expected int, got string", Value: "invalid"},
			`field "attempts": expected int, got string (got string)`,
		},
	}

	for _, tt := range tests {
		got := tt.err.Error()
		if got != tt.want {
			t.Errorf("ValidationError.Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestAggregateError_String(t *testing.T) {
	aggr := &AggregateError{
		Errors: []error{
			&ValidationError{Key: "rationale", Reason: "required", Value: nil},
			&ValidationError{Key: "attempts", Reason: "expected int", Value: "invalid"},
		},
	}

	result := aggr.Error()
	if result == "" {
		t.Error("AggregateError.Error() should not be empty")
	}

	// Should contain count
	if !strings.Contains(result, "2 validation errors") {
		t.Errorf("AggregateError.Error() should mention 2 errors, got: %s", result)
	}
}

func TestValidationErrors(t *testing.T) {
	aggr := &AggregateError{
		Errors: []error{
			&ValidationError{Key: "rationale", Reason: "required", Value: nil},
		},
	}

	errs := ValidationErrors(aggr)
	if len(errs) != 1 {
		t.Errorf("ValidationErrors() = %d errors, want 1", len(errs))
	}

	// Non-aggregate error returns nil
	err := &ValidationError{Key: "rationale", Reason: "required", Value: nil}
	errs = ValidationErrors(err)
	if errs != nil {
		t.Errorf("ValidationErrors() on non-aggregate = %v, want nil", errs)
	}
}
