// Package ragclient 提供了与 RAG 后端交互的客户端。
//
// 前端只关心三件事：探活、上传 PDF 换取文档 ID、携带文档 ID 提问。
// Client 有两个可互换的实现：真实 HTTP 客户端和固定延迟的占位实现。
package ragclient

import (
	"context"
	"fmt"
	"time"

	"pdfchat-go/internal/config"
	"pdfchat-go/internal/model"
)

// Client 定义了 RAG 后端客户端的接口。
type Client interface {
	// Health 调用后端的存活探针，返回其响应体。
	Health(ctx context.Context) (map[string]any, error)
	// Upload 上传文件并返回后端分配的文档 ID。
	Upload(ctx context.Context, file *model.SelectedFile) (*UploadResult, error)
	// Ask 针对已索引的文档提问。documentID 为空时以 null 发送。
	Ask(ctx context.Context, question, documentID string) (*Answer, error)
}

// UploadResult 是 POST /upload 的成功响应。
type UploadResult struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
}

// Answer 是 POST /chat 的成功响应。
type Answer struct {
	Text   string  `json:"answer"`
	Source *string `json:"source,omitempty"`
}

// StatusError 表示后端返回了非 2xx 状态码。
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed: %d", e.Op, e.StatusCode)
}

// New 根据配置选择实现：client.mode=stub 时使用占位实现。
func New(cfg config.Config) Client {
	if cfg.Client.Mode == config.ClientModeStub {
		return NewStubClient(cfg.Client.StubDelay())
	}
	return NewHTTPClient(cfg.APIBaseURL(), cfg.API.Timeout())
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
