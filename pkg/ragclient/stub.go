package ragclient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"pdfchat-go/internal/model"
)

// stubClient 不访问网络：上传立即成功，提问在固定延迟后返回占位回答。
type stubClient struct {
	delay time.Duration

	mu        sync.Mutex
	filenames map[string]string // documentID -> filename
}

// NewStubClient 创建一个固定延迟的占位客户端。
func NewStubClient(delay time.Duration) Client {
	return &stubClient{delay: delay, filenames: make(map[string]string)}
}

func (s *stubClient) Health(ctx context.Context) (map[string]any, error) {
	return map[string]any{"status": "ok", "mode": "stub"}, nil
}

func (s *stubClient) Upload(ctx context.Context, file *model.SelectedFile) (*UploadResult, error) {
	if file == nil {
		return nil, fmt.Errorf("no file to upload")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := uuid.NewString()
	s.mu.Lock()
	s.filenames[id] = file.Name
	s.mu.Unlock()
	return &UploadResult{DocumentID: id, Filename: file.Name}, nil
}

func (s *stubClient) Ask(ctx context.Context, question, documentID string) (*Answer, error) {
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	s.mu.Lock()
	name, ok := s.filenames[documentID]
	s.mu.Unlock()
	if !ok {
		name = "your document"
	}
	return &Answer{
		Text: fmt.Sprintf("Placeholder answer for %q. Connect the backend to get answers grounded in %s.", question, name),
	}, nil
}
