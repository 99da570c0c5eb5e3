package domain

// ChatRole identifies the author of a tutor message.
type ChatRole string

const (
	ChatRoleUser  ChatRole = "user"
	ChatRoleModel ChatRole = "model"
)

// ChatMessage is one turn of a tutor conversation. Model messages grow as
// fragments arrive.
type ChatMessage struct {
	Role ChatRole `json:"role"`
	Text string   `json:"text"`
}
