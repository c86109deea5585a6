package chat

// Message roles as they appear on the wire.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single conversation turn. Immutable once created.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
