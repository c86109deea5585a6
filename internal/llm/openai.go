package llm

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/forgehq/forge-go/internal/chat"
	"github.com/forgehq/forge-go/internal/config"
)

// OpenAI adapts any OpenAI-compatible chat completion endpoint to the Client
// interface. Selected with provider "openai".
type OpenAI struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

func NewOpenAI(cfg config.LLMConfig) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.Endpoint, "/")
	}
	return &OpenAI{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		maxTokens:   cfg.MaxTokens,
	}
}

func (c *OpenAI) request(msgs []chat.Message, stream bool) openai.ChatCompletionRequest {
	wire := make([]openai.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		wire = append(wire, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	return openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    wire,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Stream:      stream,
	}
}

func (c *OpenAI) Chat(ctx context.Context, msgs []chat.Message) (chat.Message, error) {
	resp, err := c.client.CreateChatCompletion(ctx, c.request(msgs, false))
	if err != nil {
		return chat.Message{}, &ConnectionError{Err: err}
	}
	if len(resp.Choices) == 0 {
		return chat.Message{}, &ParseError{Err: errors.New("response has no choices")}
	}
	return chat.Message{Role: chat.RoleAssistant, Content: resp.Choices[0].Message.Content}, nil
}

func (c *OpenAI) ChatStream(ctx context.Context, msgs []chat.Message, emit func(fragment string)) (chat.Message, error) {
	stream, err := c.client.CreateChatCompletionStream(ctx, c.request(msgs, true))
	if err != nil {
		return chat.Message{}, &ConnectionError{Err: err}
	}
	defer stream.Close()

	var full strings.Builder
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return chat.Message{}, &ConnectionError{Err: err}
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if delta := resp.Choices[0].Delta.Content; delta != "" {
			full.WriteString(delta)
			emit(delta)
		}
	}
	return chat.Message{Role: chat.RoleAssistant, Content: full.String()}, nil
}
