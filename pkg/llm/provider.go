package llm

import "context"

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Metadata carries per-request observability fields. Providers fill in what
// they have; zero values mean the backend did not report the field.
type Metadata struct {
	Model            string
	RequestID        string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

type Completion struct {
	Text string
	Meta Metadata
}

// Provider defines the contract for any completion backend
type Provider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message) (*Completion, error)
}
