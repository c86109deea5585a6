package host

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forgehq/forge-go/internal/chat"
)

func TestPromptUserReadsLine(t *testing.T) {
	var out strings.Builder
	term := NewTerminal(strings.NewReader("  hello there \n"), &out, &out)

	text, ok := term.PromptUser("You")
	require.True(t, ok)
	require.Equal(t, "hello there", text)
	require.Contains(t, out.String(), "You: ")
}

func TestPromptUserEOFIsCancelled(t *testing.T) {
	var out strings.Builder
	term := NewTerminal(strings.NewReader(""), &out, &out)

	_, ok := term.PromptUser("You")
	require.False(t, ok)
}

func TestSelectedTextReadsUntilDot(t *testing.T) {
	var out strings.Builder
	term := NewTerminal(strings.NewReader("line1\nline2\n.\nignored\n"), &out, &out)

	require.Equal(t, "line1\nline2\n", term.SelectedText())
}

func TestRenderAssistantAndWarning(t *testing.T) {
	var out, errw strings.Builder
	term := NewTerminal(strings.NewReader(""), &out, &errw)

	term.RenderMessage(chat.RoleAssistant, "answer")
	term.NotifyWarning("no selection")

	require.Contains(t, out.String(), "Forge: answer\n")
	require.Contains(t, errw.String(), "warning: no selection\n")
}

func TestStreamedFragmentsEndWithSingleNewline(t *testing.T) {
	var out strings.Builder
	term := NewTerminal(strings.NewReader(""), &out, &out)

	term.RenderFragment("par")
	term.RenderFragment("tial")
	term.RenderMessage(chat.RoleAssistant, "partial")

	require.Equal(t, "Forge: partial\n", out.String())
}
