package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forgehq/forge-go/internal/chat"
	"github.com/forgehq/forge-go/internal/config"
)

func ollamaFor(url string) *Ollama {
	return NewOllama(config.LLMConfig{
		Endpoint:    url,
		Model:       "m",
		Temperature: 0.2,
		MaxTokens:   128,
	})
}

func TestChatSendsWireFormat(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/chat", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": "hi"},
			"done":    true,
		})
	}))
	defer srv.Close()

	reply, err := ollamaFor(srv.URL).Chat(context.Background(), []chat.Message{
		{Role: chat.RoleUser, Content: "hello"},
	})
	require.NoError(t, err)
	require.Equal(t, chat.RoleAssistant, reply.Role)
	require.Equal(t, "hi", reply.Content)

	require.Equal(t, "m", got["model"])
	require.Equal(t, false, got["stream"])
	msgs := got["messages"].([]any)
	require.Len(t, msgs, 1)
	require.Equal(t, map[string]any{"role": "user", "content": "hello"}, msgs[0])
	opts := got["options"].(map[string]any)
	require.InDelta(t, 0.2, opts["temperature"], 1e-9)
	require.EqualValues(t, 128, opts["num_predict"])
}

func TestChatMissingMessageFieldIsParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"done": true})
	}))
	defer srv.Close()

	_, err := ollamaFor(srv.URL).Chat(context.Background(), []chat.Message{{Role: chat.RoleUser, Content: "x"}})
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestChatMalformedBodyIsParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	_, err := ollamaFor(srv.URL).Chat(context.Background(), []chat.Message{{Role: chat.RoleUser, Content: "x"}})
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestChatUnreachableServerIsConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := ollamaFor(srv.URL).Chat(context.Background(), []chat.Message{{Role: chat.RoleUser, Content: "x"}})
	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
}

func TestChatNon200IsConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := ollamaFor(srv.URL).Chat(context.Background(), []chat.Message{{Role: chat.RoleUser, Content: "x"}})
	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
}

func TestChatStreamAssemblesFragments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var got map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		require.Equal(t, true, got["stream"])

		enc := json.NewEncoder(w)
		enc.Encode(map[string]any{"message": map[string]string{"role": "assistant", "content": "hel"}})
		enc.Encode(map[string]any{"message": map[string]string{"role": "assistant", "content": "lo"}})
		enc.Encode(map[string]any{"message": map[string]string{"role": "assistant", "content": ""}, "done": true})
	}))
	defer srv.Close()

	var fragments []string
	reply, err := ollamaFor(srv.URL).ChatStream(context.Background(),
		[]chat.Message{{Role: chat.RoleUser, Content: "say hello"}},
		func(f string) { fragments = append(fragments, f) },
	)
	require.NoError(t, err)
	require.Equal(t, "hello", reply.Content)
	require.Equal(t, []string{"hel", "lo"}, fragments)
}

func TestChatStreamMalformedLineIsParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("garbage\n"))
	}))
	defer srv.Close()

	_, err := ollamaFor(srv.URL).ChatStream(context.Background(),
		[]chat.Message{{Role: chat.RoleUser, Content: "x"}}, func(string) {})
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestPingAndListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]any{{"name": "qwen2.5-coder:7b"}, {"name": "llama3:8b"}},
		})
	}))
	defer srv.Close()

	o := ollamaFor(srv.URL)
	require.NoError(t, o.Ping(context.Background()))

	models, err := o.ListModels(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"qwen2.5-coder:7b", "llama3:8b"}, models)
}

func TestPingUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	err := ollamaFor(srv.URL).Ping(context.Background())
	var connErr *ConnectionError
	require.ErrorAs(t, err, &connErr)
}

func TestNewPicksProvider(t *testing.T) {
	require.IsType(t, &Ollama{}, New(config.LLMConfig{Provider: "ollama"}))
	require.IsType(t, &Ollama{}, New(config.LLMConfig{}))
	require.IsType(t, &OpenAI{}, New(config.LLMConfig{Provider: "openai"}))
}
