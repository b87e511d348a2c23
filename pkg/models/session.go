package models

import "time"

// MessageRole identifies who produced a chat message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// FileAttachment describes a file sent alongside a message. The binary
// payload is not retained after the upload has been processed.
type FileAttachment struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

// ChatMessage is one entry in a session's conversation history.
type ChatMessage struct {
	ID           string           `json:"id"`
	Role         MessageRole      `json:"role"`
	Content      string           `json:"content"`
	Timestamp    time.Time        `json:"timestamp"`
	Attachments  []FileAttachment `json:"attachments,omitempty"`
	IsGenerating bool             `json:"isGenerating,omitempty"`
	PreviewURL   string           `json:"previewUrl,omitempty"`
	ProjectID    string           `json:"projectId,omitempty"`
}

// MessagePatch is a partial update applied to an existing message by id.
// Nil fields are left untouched; the message id itself is immutable.
type MessagePatch struct {
	Content      *string `json:"content,omitempty"`
	IsGenerating *bool   `json:"isGenerating,omitempty"`
	PreviewURL   *string `json:"previewUrl,omitempty"`
	ProjectID    *string `json:"projectId,omitempty"`
}

// ChatSession is the root aggregate: one conversation with its extracted
// document contexts and the sandbox currently backing its preview.
type ChatSession struct {
	SessionID    string            `json:"sessionId"`
	SandboxID    string            `json:"sandboxId,omitempty"`
	Messages     []ChatMessage     `json:"messages"`
	Documents    []DocumentContext `json:"documents"`
	CreatedAt    time.Time         `json:"createdAt"`
	LastActivity time.Time         `json:"lastActivity"`
	IsActive     bool              `json:"isActive"`
}
