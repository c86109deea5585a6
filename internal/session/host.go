package session

// Host is the narrow surface the manager needs from whatever front end is
// driving it: an editor, a terminal, an MCP client, or a test harness. The
// manager never touches concrete UI objects.
type Host interface {
	// SelectedText returns the current code selection, empty if none.
	SelectedText() string
	// LanguageTag returns the language identifier of the active buffer.
	LanguageTag() string
	// PromptUser requests free-form input; ok is false when cancelled.
	PromptUser(label string) (text string, ok bool)
	// RenderMessage appends a turn to the visible transcript.
	RenderMessage(role, content string)
	// NotifyWarning surfaces a non-fatal warning.
	NotifyWarning(text string)
}

// FragmentRenderer is optionally implemented by hosts that can display
// partial output while a streamed response is still arriving.
type FragmentRenderer interface {
	RenderFragment(fragment string)
}
