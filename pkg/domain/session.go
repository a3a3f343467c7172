package domain

import (
	"slices"
	"time"
)

// Session is a learning session opened by a user on one or more topics.
type Session struct {
	ID        string     `json:"id"`
	Owner     string     `json:"user_id"`
	Topics    []string   `json:"topics"`
	Persona   string     `json:"persona"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`

	// History is the conversation exchanged within the session.
	History []Message `json:"history,omitempty"`

	// Sealed holds the encrypted session body when a storage middleware
	// encrypts at rest. It is empty on every session handed to callers.
	Sealed string `json:"sealed,omitempty"`
}

// Active reports whether the session has not been ended yet.
func (s *Session) Active() bool {
	return s.EndedAt == nil
}

// Clone returns a copy that shares no mutable memory with s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Topics = slices.Clone(s.Topics)
	c.History = slices.Clone(s.History)
	if s.EndedAt != nil {
		ended := *s.EndedAt
		c.EndedAt = &ended
	}
	return &c
}
