package llm

// Role identifies who produced a Message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	// RoleAI is the assistant role as reported by in-process responders.
	RoleAI Role = "ai"
)

// IsAssistant reports whether r denotes a model-produced turn.
func (r Role) IsAssistant() bool {
	return r == RoleAssistant || r == RoleAI
}

// Message represents a single message in a chat conversation.
// Every producer (handlers, the model client, in-process responders) builds this same type.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UserMessage is shorthand for a Message with RoleUser.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// ChatParams holds parameters for chat completion requests.
type ChatParams struct {
	// Model specifies the model to use. If empty, the client's default model is used.
	Model string

	// MaxTokens specifies the maximum number of tokens to generate.
	// If 0, the field is omitted and the backend default applies.
	MaxTokens int

	// Temperature controls the randomness of the output.
	// Nil leaves the backend default in place; a pointer keeps 0.0 expressible.
	Temperature *float64
}

// Float64 returns a pointer to v, for ChatParams.Temperature.
func Float64(v float64) *float64 {
	return &v
}
