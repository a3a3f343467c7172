package domain

import (
	"fmt"
	"slices"
	"sort"
)

// MergePolicy describes how a field combines an incoming value with the current one.
type MergePolicy string

const (
	PolicyAppend    MergePolicy = "append"
	PolicyOverwrite MergePolicy = "overwrite"
)

// Partial is the set of field updates produced by a single node.
type Partial map[string]any

// Keys returns the partial's field names in sorted order.
func (p Partial) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FieldSpec binds a state field to its merge policy.
type FieldSpec struct {
	Key    string
	Policy MergePolicy
	// Apply writes value into s according to Policy. It returns an error when
	// value has the wrong type for the field.
	Apply func(s *State, value any) error
}

// ReducerTable is the static per-field merge configuration of a State.
type ReducerTable map[string]FieldSpec

// Has reports whether key is a mergeable field.
func (t ReducerTable) Has(key string) bool {
	_, ok := t[key]
	return ok
}

// Keys returns the mergeable field names in sorted order.
func (t ReducerTable) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DefaultReducers returns the reducer table for State: messages append,
// every other result field overwrites.
func DefaultReducers() ReducerTable {
	specs := []FieldSpec{
		{Key: KeyMessages, Policy: PolicyAppend, Apply: appendMessages},
		{Key: KeyIsRequestValid, Policy: PolicyOverwrite, Apply: overwrite(func(s *State) *bool { return &s.IsRequestValid })},
		{Key: KeyUserResponse, Policy: PolicyOverwrite, Apply: overwrite(func(s *State) *string { return &s.UserResponse })},
		{Key: KeyUserIntent, Policy: PolicyOverwrite, Apply: overwrite(func(s *State) *string { return &s.UserIntent })},
		{Key: KeySearchQueries, Policy: PolicyOverwrite, Apply: overwriteStrings(func(s *State) *[]string { return &s.SearchQueries })},
		{Key: KeySearchRationale, Policy: PolicyOverwrite, Apply: overwrite(func(s *State) *string { return &s.SearchRationale })},
	}

	table := make(ReducerTable, len(specs))
	for _, spec := range specs {
		table[spec.Key] = spec
	}
	return table
}

// Merge applies partial to current according to table and returns the new state.
// current is never modified. Fields absent from partial keep their values.
func Merge(current *State, partial Partial, table ReducerTable) (*State, error) {
	next := current.Clone()
	for _, key := range partial.Keys() {
		spec, ok := table[key]
		if !ok {
			return nil, &SchemaMismatchError{Key: key, Reason: "field is not mergeable"}
		}
		if err := spec.Apply(next, partial[key]); err != nil {
			return nil, &SchemaMismatchError{Key: key, Reason: err.Error()}
		}
	}
	return next, nil
}

func appendMessages(s *State, value any) error {
	switch v := value.(type) {
	case Message:
		s.Messages = append(s.Messages, v)
	case []Message:
		s.Messages = append(s.Messages, v...)
	default:
		return fmt.Errorf("expected Message or []Message, got %T", value)
	}
	return nil
}

func overwrite[T any](field func(*State) *T) func(*State, any) error {
	return func(s *State, value any) error {
		typed, ok := value.(T)
		if !ok {
			var zero T
			return fmt.Errorf("expected %T, got %T", zero, value)
		}
		*field(s) = typed
		return nil
	}
}

func overwriteStrings(field func(*State) *[]string) func(*State, any) error {
	return func(s *State, value any) error {
		typed, ok := value.([]string)
		if !ok {
			return fmt.Errorf("expected []string, got %T", value)
		}
		*field(s) = slices.Clone(typed)
		return nil
	}
}
