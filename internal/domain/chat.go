package domain

import "time"

// Chat roles used by prompt assembly and the LLM message contract.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is the provider-agnostic chat message shape used by prompt
// assembly and the LLM integration.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Turn is a single recorded conversation entry owned by session memory.
// Immutable once appended; ordering is semantically meaningful and must be
// replayed as-is to the generator.
type Turn struct {
	Role      string
	Content   string
	Timestamp time.Time
}

// Message converts a stored turn into the prompt message shape.
func (t Turn) Message() ChatMessage {
	return ChatMessage{Role: t.Role, Content: t.Content}
}
