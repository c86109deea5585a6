package llm

import (
	"context"

	"github.com/forgehq/forge-go/internal/chat"
	"github.com/forgehq/forge-go/internal/config"
)

// Client is the minimal transport surface the session manager depends on; it
// is easy to mock in tests. Implementations send exactly one request per
// call and do not retry.
type Client interface {
	// Chat sends the message list and returns the assistant's reply.
	Chat(ctx context.Context, msgs []chat.Message) (chat.Message, error)
	// ChatStream does the same but emits fragments as they arrive. The
	// returned message is the fully assembled reply.
	ChatStream(ctx context.Context, msgs []chat.Message, emit func(fragment string)) (chat.Message, error)
}

// New creates the transport client for the configured provider.
func New(cfg config.LLMConfig) Client {
	if cfg.Provider == "openai" {
		return NewOpenAI(cfg)
	}
	return NewOllama(cfg)
}
