// Package llm talks to the inference server. The native transport is
// Ollama's HTTP API; an OpenAI-compatible transport is available for remote
// endpoints.
package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/forgehq/forge-go/internal/chat"
	"github.com/forgehq/forge-go/internal/config"
)

const (
	chatPath = "/api/chat"
	tagsPath = "/api/tags"

	requestTimeout = 120 * time.Second
	pingTimeout    = 5 * time.Second
)

// Ollama sends chat requests to an Ollama server. Each request gets its own
// connection lifecycle; there is no pooling contract beyond what net/http
// provides, and no retries.
type Ollama struct {
	endpoint    string
	model       string
	temperature float64
	maxTokens   int
	httpc       *http.Client
}

func NewOllama(cfg config.LLMConfig) *Ollama {
	return &Ollama{
		endpoint:    strings.TrimRight(cfg.Endpoint, "/"),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		httpc:       &http.Client{Timeout: requestTimeout},
	}
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type chatRequest struct {
	Model    string         `json:"model"`
	Messages []chat.Message `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  chatOptions    `json:"options"`
}

type chatResponse struct {
	Message *chat.Message `json:"message"`
	Done    bool          `json:"done"`
}

// Chat posts the message list to /api/chat and returns the assistant reply
// from the response's message field.
func (o *Ollama) Chat(ctx context.Context, msgs []chat.Message) (chat.Message, error) {
	resp, err := o.post(ctx, msgs, false)
	if err != nil {
		return chat.Message{}, err
	}
	defer resp.Body.Close()

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return chat.Message{}, &ParseError{Err: err}
	}
	if parsed.Message == nil {
		return chat.Message{}, &ParseError{Err: errors.New("response has no message field")}
	}
	return chat.Message{Role: chat.RoleAssistant, Content: parsed.Message.Content}, nil
}

// ChatStream posts with stream enabled and reads the NDJSON reply line by
// line, emitting each content fragment until the server reports done.
func (o *Ollama) ChatStream(ctx context.Context, msgs []chat.Message, emit func(fragment string)) (chat.Message, error) {
	resp, err := o.post(ctx, msgs, true)
	if err != nil {
		return chat.Message{}, err
	}
	defer resp.Body.Close()

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var parsed chatResponse
		if err := json.Unmarshal(line, &parsed); err != nil {
			return chat.Message{}, &ParseError{Err: err}
		}
		if parsed.Message != nil && parsed.Message.Content != "" {
			full.WriteString(parsed.Message.Content)
			emit(parsed.Message.Content)
		}
		if parsed.Done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return chat.Message{}, &ConnectionError{Err: err}
	}
	return chat.Message{Role: chat.RoleAssistant, Content: full.String()}, nil
}

func (o *Ollama) post(ctx context.Context, msgs []chat.Message, stream bool) (*http.Response, error) {
	payload := chatRequest{
		Model:    o.model,
		Messages: msgs,
		Stream:   stream,
		Options:  chatOptions{Temperature: o.temperature, NumPredict: o.maxTokens},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint+chatPath, bytes.NewReader(body))
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpc.Do(req)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &ConnectionError{Err: fmt.Errorf("server returned %s", resp.Status)}
	}
	return resp, nil
}

// Ping checks that the server answers /api/tags within a short budget.
func (o *Ollama) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.endpoint+tagsPath, nil)
	if err != nil {
		return &ConnectionError{Err: err}
	}
	resp, err := o.httpc.Do(req)
	if err != nil {
		return &ConnectionError{Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &ConnectionError{Err: fmt.Errorf("server returned %s", resp.Status)}
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

// ListModels returns the model names the server has available.
func (o *Ollama) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.endpoint+tagsPath, nil)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	resp, err := o.httpc.Do(req)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &ConnectionError{Err: fmt.Errorf("server returned %s", resp.Status)}
	}

	var parsed struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &ParseError{Err: err}
	}
	names := make([]string, 0, len(parsed.Models))
	for _, m := range parsed.Models {
		names = append(names, m.Name)
	}
	return names, nil
}
