package domain

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Turn is one role-tagged message of a conversation. The assistant may emit a
// second turn per exchange whose Content is base64-encoded audio when
// text-to-speech is enabled.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
