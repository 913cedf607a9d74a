package internal

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a chat message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Applies is the coarse applicability verdict returned by the advisor
type Applies string

const (
	AppliesYes     Applies = "yes"
	AppliesNo      Applies = "no"
	AppliesPartial Applies = "partial"
	AppliesUnknown Applies = "unknown"
)

// ParseApplies maps a backend value onto a known verdict. Anything
// unrecognized, including the empty string, becomes AppliesUnknown.
func ParseApplies(s string) Applies {
	switch Applies(strings.ToLower(strings.TrimSpace(s))) {
	case AppliesYes:
		return AppliesYes
	case AppliesNo:
		return AppliesNo
	case AppliesPartial:
		return AppliesPartial
	default:
		return AppliesUnknown
	}
}

// Label returns the verdict as shown to the user ("YES", "NO", ...)
func (a Applies) Label() string {
	if a == "" {
		return strings.ToUpper(string(AppliesUnknown))
	}
	return strings.ToUpper(string(a))
}

// Applicability is the metadata attached to assistant replies
type Applicability struct {
	Applies Applies `json:"applies" yaml:"applies"`
	Reason  string  `json:"reason" yaml:"reason"`
}

// SourceCitation is a retrieved excerpt supporting an answer
type SourceCitation struct {
	ChunkID string   `json:"chunk_id" yaml:"chunk_id"`
	Page    int      `json:"page" yaml:"page"`
	Score   *float64 `json:"score,omitempty" yaml:"score,omitempty"`
	Excerpt string   `json:"excerpt" yaml:"excerpt"`
}

// ChatMessage is one entry in the transcript. Messages are never mutated
// after they are appended.
type ChatMessage struct {
	ID        string           `json:"id" yaml:"id"`
	Role      Role             `json:"role" yaml:"role"`
	Content   string           `json:"content" yaml:"content"`
	CreatedAt time.Time        `json:"created_at" yaml:"created_at"`
	Meta      *Applicability   `json:"meta,omitempty" yaml:"meta,omitempty"`
	Sources   []SourceCitation `json:"sources,omitempty" yaml:"sources,omitempty"`
}

// IsUser reports whether the message was written by the user
func (m ChatMessage) IsUser() bool {
	return m.Role == RoleUser
}

// NewUserMessage builds a user turn. User turns never carry
// applicability metadata or citations.
func NewUserMessage(content string, at time.Time) ChatMessage {
	return ChatMessage{
		ID:        NewMessageID(),
		Role:      RoleUser,
		Content:   content,
		CreatedAt: at,
	}
}

// NewAssistantMessage builds an assistant turn from a decoded advisor reply
func NewAssistantMessage(resp *ChatResponse, at time.Time) ChatMessage {
	sources := make([]SourceCitation, len(resp.Sources))
	copy(sources, resp.Sources)
	return ChatMessage{
		ID:        NewMessageID(),
		Role:      RoleAssistant,
		Content:   resp.Answer,
		CreatedAt: at,
		Meta: &Applicability{
			Applies: ParseApplies(string(resp.Applies)),
			Reason:  resp.Reason,
		},
		Sources: sources,
	}
}

// NewMessageID returns a UUIDv7, which combines a millisecond timestamp
// with random bits.
func NewMessageID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// ChatRequest is the body sent to the advisory backend
type ChatRequest struct {
	Message string           `json:"message"`
	Context *BuildingContext `json:"context"`
}

// ChatResponse is a decoded success body. Every field has already been
// defaulted by the decoder.
type ChatResponse struct {
	Answer  string           `json:"answer" yaml:"answer"`
	Applies Applies          `json:"applies" yaml:"applies"`
	Reason  string           `json:"reason" yaml:"reason"`
	Sources []SourceCitation `json:"sources" yaml:"sources"`
}
