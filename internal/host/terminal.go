// Package host provides a stdin/stdout implementation of the session host
// for the interactive chat mode.
package host

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/forgehq/forge-go/internal/chat"
)

// Terminal reads input line by line and prints turns with role prefixes.
// Not safe for concurrent submissions; the chat loop is strictly turn-based.
type Terminal struct {
	in       *bufio.Scanner
	out      io.Writer
	errw     io.Writer
	streamed bool
}

func NewTerminal(in io.Reader, out, errw io.Writer) *Terminal {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	return &Terminal{in: sc, out: out, errw: errw}
}

// SelectedText has no visual selection to read, so it asks for a paste,
// terminated by a line holding only a dot.
func (t *Terminal) SelectedText() string {
	fmt.Fprintln(t.out, "Paste code, end with a single '.' line:")
	var b strings.Builder
	for t.in.Scan() {
		line := t.in.Text()
		if line == "." {
			break
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func (t *Terminal) LanguageTag() string {
	lang, _ := t.PromptUser("Language")
	return lang
}

// PromptUser reads one line; EOF counts as cancelled.
func (t *Terminal) PromptUser(label string) (string, bool) {
	fmt.Fprintf(t.out, "%s: ", label)
	if !t.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(t.in.Text()), true
}

func (t *Terminal) RenderMessage(role, content string) {
	switch role {
	case chat.RoleUser:
		// The terminal already shows the input as it was typed.
	case chat.RoleAssistant:
		if t.streamed {
			// The fragments were already printed; just end the line.
			t.streamed = false
			fmt.Fprintln(t.out)
			return
		}
		fmt.Fprintf(t.out, "Forge: %s\n", content)
	default:
		fmt.Fprintf(t.out, "%s: %s\n", role, content)
	}
}

// RenderFragment prints streamed output as it arrives.
func (t *Terminal) RenderFragment(fragment string) {
	if !t.streamed {
		t.streamed = true
		fmt.Fprint(t.out, "Forge: ")
	}
	fmt.Fprint(t.out, fragment)
}

func (t *Terminal) NotifyWarning(text string) {
	fmt.Fprintf(t.errw, "warning: %s\n", text)
}
