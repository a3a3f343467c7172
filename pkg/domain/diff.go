package domain

import (
	"reflect"
	"sort"
)

// StateDiff represents the changes between two states.
// It is designed to be serialized to JSON for event payloads and debug logs.
type StateDiff struct {
	// Fields contains only changed or added fields, keyed by field name.
	Fields map[string]any `json:"fields,omitempty"`

	// Messages contains the turns appended to the conversation.
	Messages []Message `json:"messages,omitempty"`

	// HistoryParams contains the node names appended to the run history.
	HistoryParams *HistoryDelta `json:"history,omitempty"`
}

// HistoryDelta represents changes to the history stack.
type HistoryDelta struct {
	Appended []string `json:"appended"`
}

// Snapshot flattens the scalar and list fields of a state into a map keyed by
// field name. Messages and History are excluded; Diff treats them as append-only.
func Snapshot(s *State) map[string]any {
	if s == nil {
		return map[string]any{}
	}
	m := map[string]any{
		KeyIsRequestValid:  s.IsRequestValid,
		KeyUserResponse:    s.UserResponse,
		KeyUserIntent:      s.UserIntent,
		KeySearchQueries:   s.SearchQueries,
		KeySearchRationale: s.SearchRationale,
		KeyPersona:         s.Persona,
		KeyTopics:          s.Topics,
		KeyCurrentCode:     s.Code(),
	}
	if s.Error != nil {
		m[KeyError] = *s.Error
	}
	return m
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState.
// It returns nil when nothing changed.
func Diff(oldState, newState *State) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{
		Fields:        diffFields(oldState, newState),
		HistoryParams: diffHistory(oldState, newState),
	}

	oldLen := 0
	if oldState != nil {
		oldLen = len(oldState.Messages)
	}
	if len(newState.Messages) > oldLen {
		diff.Messages = newState.Messages[oldLen:]
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffFields(old *State, new *State) map[string]any {
	newFields := Snapshot(new)
	delta := make(map[string]any)

	if old == nil {
		for k, v := range newFields {
			if !reflect.ValueOf(v).IsZero() {
				delta[k] = v
			}
		}
	} else {
		oldFields := Snapshot(old)
		for k, newVal := range newFields {
			if !reflect.DeepEqual(oldFields[k], newVal) {
				delta[k] = newVal
			}
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

// diffHistory assumes append-only behavior for History.
func diffHistory(old *State, new *State) *HistoryDelta {
	if len(new.History) == 0 {
		return nil
	}
	if old == nil {
		return &HistoryDelta{Appended: new.History}
	}
	if len(new.History) > len(old.History) {
		return &HistoryDelta{Appended: new.History[len(old.History):]}
	}
	return nil
}

// IsEmpty checks if the diff contains any changes.
func (d *StateDiff) IsEmpty() bool {
	return len(d.Fields) == 0 &&
		len(d.Messages) == 0 &&
		d.HistoryParams == nil
}

// ChangedKeys lists every field touched by the diff in sorted order.
func (d *StateDiff) ChangedKeys() []string {
	if d == nil {
		return nil
	}
	keys := make([]string, 0, len(d.Fields)+1)
	for k := range d.Fields {
		keys = append(keys, k)
	}
	if len(d.Messages) > 0 {
		keys = append(keys, KeyMessages)
	}
	sort.Strings(keys)
	return keys
}
