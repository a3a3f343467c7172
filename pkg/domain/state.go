package domain

import (
	"slices"
	"strings"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is a single conversation turn.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// UserMessage is a shorthand for a learner-authored turn.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Text: text}
}

// AssistantMessage is a shorthand for a tutor-authored turn.
func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Text: text}
}

// State represents the working memory of a single pipeline run.
//
// A State is treated as an immutable snapshot: Merge always produces a new value
// and never writes through the pointer it was given.
type State struct {
	// Messages is the ordered conversation history. It only ever grows.
	Messages []Message `json:"messages"`

	// IsRequestValid is set by the validation stage.
	IsRequestValid bool `json:"is_request_valid"`

	// UserResponse is the text shown to the user: a clarification question or the tutor reply.
	UserResponse string `json:"user_response"`

	UserIntent      string   `json:"user_intent"`
	SearchQueries   []string `json:"search_queries,omitempty"`
	SearchRationale string   `json:"search_rationale,omitempty"`

	// CurrentCode, Persona and Topics are supplied at run start and only read by nodes.
	CurrentCode *string  `json:"current_code,omitempty"`
	Persona     string   `json:"persona,omitempty"`
	Topics      []string `json:"topics,omitempty"`

	// Error is owned by the runner and set on the first unrecovered failure.
	Error *RunError `json:"error,omitempty"`

	// History tracks the nodes executed during the run, in order.
	History []string `json:"history,omitempty"`
}

// NewState creates a clean state seeded with the given conversation.
func NewState(messages ...Message) *State {
	return &State{
		Messages: slices.Clone(messages),
	}
}

// Clone returns a copy that shares no mutable memory with s.
func (s *State) Clone() *State {
	if s == nil {
		return &State{}
	}
	c := *s
	c.Messages = slices.Clone(s.Messages)
	c.SearchQueries = slices.Clone(s.SearchQueries)
	c.Topics = slices.Clone(s.Topics)
	c.History = slices.Clone(s.History)
	if s.CurrentCode != nil {
		code := *s.CurrentCode
		c.CurrentCode = &code
	}
	if s.Error != nil {
		e := *s.Error
		c.Error = &e
	}
	return &c
}

// Code returns the learner code or "" when none was supplied.
func (s *State) Code() string {
	if s == nil || s.CurrentCode == nil {
		return ""
	}
	return *s.CurrentCode
}

// Failed reports whether the run recorded an error.
func (s *State) Failed() bool {
	return s != nil && s.Error != nil
}

// LatestUserMessage scans the history backwards and returns the text of the most
// recent user turn, or "" when the learner has not said anything yet.
func LatestUserMessage(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i].Text
		}
	}
	return ""
}

// HasUserMessage reports whether any turn in the history was authored by the user.
func HasUserMessage(messages []Message) bool {
	return slices.ContainsFunc(messages, func(m Message) bool {
		return m.Role == RoleUser
	})
}

// Transcript renders messages as "role: text" lines. Used for logs and the CLI.
func Transcript(messages []Message) string {
	var sb strings.Builder
	for _, m := range messages {
		sb.WriteString(string(m.Role))
		sb.WriteString(": ")
		sb.WriteString(m.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}
