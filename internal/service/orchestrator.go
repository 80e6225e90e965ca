// Package service 包含了会话编排逻辑：持有全部状态，串联上传与提问两次后端调用。
package service

import (
	"context"
	"sync"
	"time"

	"pdfchat-go/internal/model"
	"pdfchat-go/pkg/ragclient"
)

// Orchestrator 定义了单个用户会话的编排操作。
type Orchestrator interface {
	// SelectFile 替换当前文件（nil 表示清除），并把上传状态重置为 idle。
	SelectFile(file *model.SelectedFile)
	// Upload 上传当前文件并等待后端返回。
	Upload(ctx context.Context) error
	// Send 追加用户消息、向后端提问并追加回答。
	Send(ctx context.Context, text string) error
	// CheckHealth 探测后端是否可达，只记录日志，从不返回错误。
	CheckHealth(ctx context.Context)
	// View 返回当前状态的快照。
	View() model.SessionView
	// Subscribe 注册状态变化回调。回调在持锁状态下同步调用，不能阻塞，也不能回调编排器。
	Subscribe(fn func(model.SessionView)) (unsubscribe func())
	// Close 取消所有进行中的请求并移除订阅者。
	Close()
}

type orchestrator struct {
	client ragclient.Client

	mu            sync.Mutex
	file          *model.SelectedFile
	documentID    string
	status        model.UploadStatus
	statusMessage string
	messages      []model.ChatMessage
	isSending     bool
	updatedAt     time.Time

	// generation 在每次选择文件时递增，返回时代数不一致的结果视为过期。
	generation   uint64
	uploadCancel context.CancelFunc
	askCancel    context.CancelFunc
	closed       bool

	subscribers map[int]func(model.SessionView)
	nextSubID   int
}

// NewOrchestrator 创建一个新的会话编排器。
func NewOrchestrator(client ragclient.Client) Orchestrator {
	return &orchestrator{
		client:      client,
		status:      model.UploadIdle,
		messages:    model.SeedMessages(),
		updatedAt:   time.Now(),
		subscribers: make(map[int]func(model.SessionView)),
	}
}

func (o *orchestrator) SelectFile(file *model.SelectedFile) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.file = file
	o.documentID = ""
	o.status = model.UploadIdle
	o.statusMessage = ""
	o.generation++
	// 旧请求返回后因代数不一致被丢弃，这里只是尽早释放连接
	if o.uploadCancel != nil {
		o.uploadCancel()
	}
	if o.askCancel != nil {
		o.askCancel()
	}
	o.notifyLocked()
}

func (o *orchestrator) View() model.SessionView {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.viewLocked()
}

func (o *orchestrator) Subscribe(fn func(model.SessionView)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	id := o.nextSubID
	o.nextSubID++
	o.subscribers[id] = fn
	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.subscribers, id)
	}
}

func (o *orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.closed = true
	o.generation++
	if o.uploadCancel != nil {
		o.uploadCancel()
	}
	if o.askCancel != nil {
		o.askCancel()
	}
	o.subscribers = make(map[int]func(model.SessionView))
}

func (o *orchestrator) appendLocked(role model.Role, content string) {
	o.messages = append(o.messages, model.NewChatMessage(role, content))
}

func (o *orchestrator) viewLocked() model.SessionView {
	v := model.SessionView{
		DocumentID:    o.documentID,
		Status:        o.status,
		StatusMessage: o.statusMessage,
		Messages:      append([]model.ChatMessage(nil), o.messages...),
		IsSending:     o.isSending,
		UpdatedAt:     model.LocalTime(o.updatedAt),
	}
	if o.file != nil {
		v.File = &model.FileInfo{Name: o.file.Name, Size: o.file.Size, ContentType: o.file.ContentType}
	}
	return v
}

// notifyLocked 更新时间戳并把新快照推送给所有订阅者。
func (o *orchestrator) notifyLocked() {
	o.updatedAt = time.Now()
	if len(o.subscribers) == 0 {
		return
	}
	v := o.viewLocked()
	for _, fn := range o.subscribers {
		fn(v)
	}
}
