// Package mcpserver exposes the session's command boundary as MCP tools over
// stdio, so protocol-speaking editors can drive the session without linking
// the library. The MCP client is the UI host here: selections and language
// tags arrive as tool arguments, replies go back as tool results.
package mcpserver

import (
	"context"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/forgehq/forge-go/internal/chat"
	"github.com/forgehq/forge-go/internal/config"
	"github.com/forgehq/forge-go/internal/llm"
	"github.com/forgehq/forge-go/internal/prompt"
	"github.com/forgehq/forge-go/internal/session"
	"github.com/forgehq/forge-go/internal/transcript"
)

// Server wires one session manager to an MCP stdio server.
type Server struct {
	mgr  *session.Manager
	host *captureHost
	mcp  *server.MCPServer
}

func New(client llm.Client, store *transcript.Store, cfg config.LLMConfig) *Server {
	h := &captureHost{}
	s := &Server{
		mgr:  session.New(client, h, store, cfg),
		host: h,
		mcp:  server.NewMCPServer("forge", "0.1.0", server.WithToolCapabilities(false)),
	}

	s.mcp.AddTool(
		mcp.NewTool("chat",
			mcp.WithDescription("Send a free-form chat message and get the assistant's reply"),
			mcp.WithString("message", mcp.Required(), mcp.Description("The message to send")),
		),
		s.handleChat,
	)
	s.addCodeTool("explain_code", "Explain a code excerpt", prompt.ActionExplain)
	s.addCodeTool("generate_tests", "Write unit tests for a code excerpt", prompt.ActionTests)
	s.addCodeTool("refactor_code", "Refactor a code excerpt and suggest improvements", prompt.ActionRefactor)
	s.addCodeTool("fix_bug", "Find and fix the bug in a code excerpt", prompt.ActionFixBug)
	s.mcp.AddTool(
		mcp.NewTool("clear_chat",
			mcp.WithDescription("Reset the conversation history"),
		),
		s.handleClear,
	)

	return s
}

// ServeStdio blocks serving the MCP protocol on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) handleChat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := req.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.submit(ctx, prompt.ActionChat, message, "")
}

func (s *Server) addCodeTool(name, description string, action prompt.Action) {
	s.mcp.AddTool(
		mcp.NewTool(name,
			mcp.WithDescription(description),
			mcp.WithString("code", mcp.Required(), mcp.Description("The code excerpt")),
			mcp.WithString("language", mcp.Description("Language tag of the excerpt")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			code, err := req.RequireString("code")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return s.submit(ctx, action, code, req.GetString("language", ""))
		},
	)
}

func (s *Server) handleClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mgr.ClearChat()
	return mcp.NewToolResultText("history cleared"), nil
}

func (s *Server) submit(ctx context.Context, action prompt.Action, input, lang string) (*mcp.CallToolResult, error) {
	if err := s.mgr.Submit(ctx, action, input, lang); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(s.host.takeReply()), nil
}

// captureHost implements session.Host for a front end that has no screen:
// it keeps the last rendered assistant turn so the tool handler can return
// it. Selection and language never come from here, they arrive as tool
// arguments.
type captureHost struct {
	mu    sync.Mutex
	reply string
}

func (h *captureHost) SelectedText() string             { return "" }
func (h *captureHost) LanguageTag() string              { return "" }
func (h *captureHost) PromptUser(string) (string, bool) { return "", false }
func (h *captureHost) NotifyWarning(string)             {}

func (h *captureHost) RenderMessage(role, content string) {
	if role != chat.RoleAssistant {
		return
	}
	h.mu.Lock()
	h.reply = content
	h.mu.Unlock()
}

func (h *captureHost) takeReply() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := h.reply
	h.reply = ""
	return out
}
