package internal

import "time"

// Session is a point-in-time view of a chat session, used for export
type Session struct {
	ID        string           `json:"id" yaml:"id"`
	StartedAt time.Time        `json:"started_at" yaml:"started_at"`
	Backend   string           `json:"backend,omitempty" yaml:"backend,omitempty"`
	Context   *BuildingContext `json:"context" yaml:"context"`
	Messages  []ChatMessage    `json:"messages" yaml:"messages"`
	Metadata  Metadata         `json:"metadata" yaml:"metadata"`
}

// Metadata contains summary counts for a session
type Metadata struct {
	MessageCount   int `json:"message_count" yaml:"message_count"`
	UserTurns      int `json:"user_turns" yaml:"user_turns"`
	AssistantTurns int `json:"assistant_turns" yaml:"assistant_turns"`
}

// NewSession builds a snapshot from a list of messages
func NewSession(id string, startedAt time.Time, ctx *BuildingContext, messages []ChatMessage) *Session {
	meta := Metadata{MessageCount: len(messages)}
	for _, m := range messages {
		if m.IsUser() {
			meta.UserTurns++
		} else {
			meta.AssistantTurns++
		}
	}
	return &Session{
		ID:        id,
		StartedAt: startedAt,
		Context:   ctx,
		Messages:  messages,
		Metadata:  meta,
	}
}
