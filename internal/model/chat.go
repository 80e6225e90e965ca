// Package model 定义了会话、消息和上传状态等核心数据结构。
package model

import "github.com/google/uuid"

// Role 表示消息的发送方。
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Label 返回界面上展示的角色名称。
func (r Role) Label() string {
	switch r {
	case RoleAssistant:
		return "Assistant"
	case RoleUser:
		return "You"
	default:
		return "System"
	}
}

// ChatMessage 是对话记录中的一条消息，创建后不可修改。
type ChatMessage struct {
	ID      string `json:"id"`
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewChatMessage 创建一条带唯一 ID 的消息。
func NewChatMessage(role Role, content string) ChatMessage {
	return ChatMessage{ID: uuid.NewString(), Role: role, Content: content}
}

// IntroMessageID 是初始系统提示消息的固定 ID。
const IntroMessageID = "intro"

// SeedMessages 返回新会话的初始对话记录。
func SeedMessages() []ChatMessage {
	return []ChatMessage{{
		ID:      IntroMessageID,
		Role:    RoleSystem,
		Content: "Upload a PDF to ground the assistant. Answers will stick to the indexed document.",
	}}
}
