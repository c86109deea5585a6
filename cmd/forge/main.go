package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/forgehq/forge-go/internal/config"
	"github.com/forgehq/forge-go/internal/host"
	"github.com/forgehq/forge-go/internal/llm"
	"github.com/forgehq/forge-go/internal/logger"
	"github.com/forgehq/forge-go/internal/mcpserver"
	"github.com/forgehq/forge-go/internal/prompt"
	"github.com/forgehq/forge-go/internal/session"
	"github.com/forgehq/forge-go/internal/transcript"
)

const usage = `usage: forge [command]

commands:
  chat     interactive chat (default)
  mcp      serve the session over MCP stdio
  models   list models available on the server
`

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.L.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.Log.Level)

	client := llm.New(cfg.LLM)
	store := transcript.Open("")
	defer store.Close()

	mode := "chat"
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	ctx := context.Background()
	switch mode {
	case "chat":
		runChat(ctx, client, store, cfg.LLM)
	case "mcp":
		if err := mcpserver.New(client, store, cfg.LLM).ServeStdio(); err != nil {
			logger.L.Error("mcp server stopped", "error", err)
			os.Exit(1)
		}
	case "models":
		ollama, ok := client.(*llm.Ollama)
		if !ok {
			fmt.Fprintln(os.Stderr, "model listing is only available for the ollama provider")
			os.Exit(1)
		}
		models, err := ollama.ListModels(ctx)
		if err != nil {
			logger.L.Error("failed to list models", "error", err)
			os.Exit(1)
		}
		for _, m := range models {
			fmt.Println(m)
		}
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func runChat(ctx context.Context, client llm.Client, store *transcript.Store, cfg config.LLMConfig) {
	term := host.NewTerminal(os.Stdin, os.Stdout, os.Stderr)
	mgr := session.New(client, term, store, cfg)

	fmt.Printf("forge — %s via %s\n", cfg.Model, cfg.Endpoint)
	fmt.Println("Type 'exit' to quit, 'clear' to reset history,")
	fmt.Println("or 'explain', 'tests', 'refactor', 'fix' to paste code.")
	fmt.Println()

	if ollama, ok := client.(*llm.Ollama); ok {
		if err := ollama.Ping(ctx); err != nil {
			term.NotifyWarning("inference server not reachable: " + err.Error())
		}
	}

	for {
		line, ok := term.PromptUser("You")
		if !ok {
			return
		}
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit":
			return
		case "clear":
			mgr.ClearChat()
			fmt.Println("History cleared.")
			continue
		case "explain":
			mgr.Explain(ctx)
			continue
		case "tests":
			mgr.GenerateTests(ctx)
			continue
		case "refactor":
			mgr.Refactor(ctx)
			continue
		case "fix":
			mgr.FixBug(ctx)
			continue
		}
		// Errors were already surfaced through the host.
		_ = mgr.Submit(ctx, prompt.ActionChat, line, "")
	}
}
