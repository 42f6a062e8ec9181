package models

// ChatRole is the author of a chat message.
type ChatRole string

const (
	RoleUser  ChatRole = "user"
	RoleModel ChatRole = "model"
)

// ChatMessage is one turn of the assistant conversation.
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`

	// CreatedAt is the Unix timestamp of the message.
	CreatedAt int64 `json:"createdAt"`
}
