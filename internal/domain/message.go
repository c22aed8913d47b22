package domain

// Role identifies the author of a conversation message.
type Role string

// Conversation roles. JSON uses the lowercase wire names.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single role-tagged entry in an ordered conversation.
// Content may be empty. Images carries optional base64-encoded payloads
// for vision-capable models and is omitted from JSON when unset.
type Message struct {
	Role    Role     `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

// SystemMessage builds a system-role message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage builds a user-role message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds an assistant-role message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// UserMessageWithImages builds a user-role message carrying image payloads.
func UserMessageWithImages(content string, images []string) Message {
	return Message{Role: RoleUser, Content: content, Images: images}
}

// StreamResponse is one incremental chunk of a streaming completion.
// A stream yields zero or more content deltas followed by exactly one
// item with Done set; after that no further items are delivered.
// Err is set on the final item when the stream failed mid-flight.
type StreamResponse struct {
	Content string `json:"content"`
	Done    bool   `json:"done"`
	Err     error  `json:"-"`
}
