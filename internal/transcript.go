package internal

import "sync"

// Transcript is the append-only, in-memory log of chat turns
type Transcript struct {
	mu       sync.RWMutex
	messages []ChatMessage
}

// NewTranscript creates an empty transcript
func NewTranscript() *Transcript {
	return &Transcript{}
}

// Append adds a message at the end. It is the only mutator.
func (t *Transcript) Append(msg ChatMessage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, msg)
}

// Messages returns a copy of the transcript, oldest first
func (t *Transcript) Messages() []ChatMessage {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]ChatMessage, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of messages
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}

// Last returns the most recent message, if any
func (t *Transcript) Last() (ChatMessage, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.messages) == 0 {
		return ChatMessage{}, false
	}
	return t.messages[len(t.messages)-1], true
}
