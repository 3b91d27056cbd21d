package domain

// ChatMessage is one turn of prior conversation supplied with a question.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)
