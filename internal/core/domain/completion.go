package domain

// ChatRole identifies the author of a chat message
type ChatRole string

const (
	ChatRoleSystem    ChatRole = "system"
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one message of a completion prompt
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// TokenStream is a lazy, one-shot, forward-only sequence of generated text chunks.
// Next returns io.EOF once the upstream response is exhausted.
// Close aborts the upstream request if it is still in flight and must always be called.
type TokenStream interface {
	Next() (string, error)
	Close() error
}
