// Package prompt turns user actions into the text sent to the model.
// Building is pure: same inputs, same output, no I/O.
package prompt

import (
	"errors"
	"fmt"
	"strings"
)

// Action identifies which prompt template a submission uses.
type Action string

const (
	ActionChat     Action = "chat"
	ActionExplain  Action = "explain"
	ActionTests    Action = "tests"
	ActionRefactor Action = "refactor"
	ActionFixBug   Action = "fixbug"
)

// ErrEmptyInput is returned when there is nothing to send: an empty visual
// selection for a code action, or a blank free-form prompt.
var ErrEmptyInput = errors.New("empty input")

// DefaultSystemPrompt is prepended to every request unless the configuration
// overrides it.
const DefaultSystemPrompt = "You are a helpful coding assistant. Answer accurately and concisely, and put code in fenced blocks."

// Instruction lines for the code actions. The excerpt follows in a fenced
// block tagged with the buffer's language.
var codeInstructions = map[Action]string{
	ActionExplain:  "Explain this %s code:",
	ActionTests:    "Write unit tests for this %s code:",
	ActionRefactor: "Refactor this %s code and suggest improvements:",
	ActionFixBug:   "Find and fix the bug in this %s code:",
}

// Build produces the outbound user prompt for an action. For ActionChat the
// input passes through untouched; code actions wrap it in a fenced block.
func Build(action Action, input, lang string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", ErrEmptyInput
	}
	if action == ActionChat {
		return input, nil
	}
	instruction, ok := codeInstructions[action]
	if !ok {
		return "", fmt.Errorf("unknown action %q", action)
	}
	return fmt.Sprintf(instruction, lang) + "\n\n```" + lang + "\n" + strings.TrimRight(input, "\n") + "\n```", nil
}
