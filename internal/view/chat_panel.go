package view

import (
	"strings"
	"sync"

	"pdfchat-go/internal/model"
)

// PendingText 是等待回答时显示的临时提示。
const PendingText = "Thinking…"

// ChatPanel 是对话面板，持有输入草稿。
type ChatPanel struct {
	mu    sync.Mutex
	draft string

	onSend func(text string)
}

// MessageView 是一条渲染后的消息。
type MessageView struct {
	ID      string     `json:"id"`
	Role    model.Role `json:"role"`
	Label   string     `json:"label"`
	Content string     `json:"content"`
}

// ChatPanelView 是对话面板的渲染结果。
type ChatPanelView struct {
	Messages    []MessageView `json:"messages"`
	Disabled    bool          `json:"disabled"`
	Badge       string        `json:"badge,omitempty"`
	Pending     string        `json:"pending,omitempty"`
	Draft       string        `json:"draft"`
	Placeholder string        `json:"placeholder"`
	ButtonLabel string        `json:"buttonLabel"`
	CanSend     bool          `json:"canSend"`
	// ScrollTo 是最新一条消息的 ID，消息列表变化时页面滚动到这里。
	ScrollTo string `json:"scrollTo"`
}

// NewChatPanel 创建对话面板。onSend 不应阻塞，面板不等待发送完成。
func NewChatPanel(onSend func(text string)) *ChatPanel {
	return &ChatPanel{onSend: onSend}
}

// SetDraft 更新输入草稿。
func (p *ChatPanel) SetDraft(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.draft = text
}

// Draft 返回当前草稿。
func (p *ChatPanel) Draft() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.draft
}

// Submit 提交草稿。空白、禁用或正在发送时忽略并返回 false。
func (p *ChatPanel) Submit(v model.SessionView) bool {
	p.mu.Lock()
	text := strings.TrimSpace(p.draft)
	if text == "" || v.ChatDisabled() || v.IsSending {
		p.mu.Unlock()
		return false
	}
	p.draft = ""
	p.mu.Unlock()

	p.onSend(text)
	return true
}

// Render 根据编排器快照生成面板视图。
func (p *ChatPanel) Render(v model.SessionView) ChatPanelView {
	draft := p.Draft()
	disabled := v.ChatDisabled()

	out := ChatPanelView{
		Messages:    make([]MessageView, 0, len(v.Messages)),
		Disabled:    disabled,
		Draft:       draft,
		Placeholder: "Ask something specific from your PDF…",
		ButtonLabel: "Send",
		CanSend:     !disabled && !v.IsSending && strings.TrimSpace(draft) != "",
	}
	for _, m := range v.Messages {
		out.Messages = append(out.Messages, MessageView{ID: m.ID, Role: m.Role, Label: m.Role.Label(), Content: m.Content})
	}
	if n := len(v.Messages); n > 0 {
		out.ScrollTo = v.Messages[n-1].ID
	}
	if disabled {
		out.Badge = "Waiting for upload"
		out.Placeholder = "Upload a PDF to start asking questions"
	}
	if v.IsSending {
		out.Pending = PendingText
		out.ButtonLabel = "Sending…"
	}
	return out
}
