package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"pdfchat-go/internal/model"
	"pdfchat-go/internal/repository"
	"pdfchat-go/internal/view"
	"pdfchat-go/pkg/log"
	"pdfchat-go/pkg/metrics"
	"pdfchat-go/pkg/ragclient"
	"pdfchat-go/pkg/token"
)

// ErrSessionNotFound 表示令牌有效但会话已过期或不存在。
var ErrSessionNotFound = errors.New("session not found")

// Session 是一个浏览器会话：一个编排器加上两个面板。
type Session struct {
	ID           string
	Orchestrator Orchestrator
	Upload       *view.UploadPanel
	Chat         *view.ChatPanel

	ctx    context.Context
	cancel context.CancelFunc
}

// State 是页面渲染所需的完整状态。
type State struct {
	SessionID string               `json:"sessionId"`
	Upload    view.UploadPanelView `json:"upload"`
	Chat      view.ChatPanelView   `json:"chat"`
	UpdatedAt model.LocalTime      `json:"updatedAt"`
}

// newSession 组装会话。面板回调都是异步的，与浏览器中的 fire-and-forget 语义一致。
func newSession(id string, client ragclient.Client) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	orch := NewOrchestrator(client)
	s := &Session{ID: id, Orchestrator: orch, ctx: ctx, cancel: cancel}
	s.Upload = view.NewUploadPanel(orch.SelectFile, func() { go s.runUpload() })
	s.Chat = view.NewChatPanel(func(text string) { go s.runSend(text) })
	return s
}

func (s *Session) runUpload() {
	if err := s.Orchestrator.Upload(s.ctx); err != nil && !errors.Is(err, ErrStale) {
		log.Warnw("[upload] failed", "session", s.ID, "error", err)
	}
}

func (s *Session) runSend(text string) {
	if err := s.Orchestrator.Send(s.ctx, text); err != nil && !errors.Is(err, ErrStale) {
		log.Warnw("[chat] failed", "session", s.ID, "error", err)
	}
}

// State 渲染当前快照。
func (s *Session) State() State {
	return s.render(s.Orchestrator.View())
}

func (s *Session) render(v model.SessionView) State {
	return State{
		SessionID: s.ID,
		Upload:    s.Upload.Render(v),
		Chat:      s.Chat.Render(v),
		UpdatedAt: v.UpdatedAt,
	}
}

// Watch 在状态变化时调用 fn，fn 不能阻塞。
func (s *Session) Watch(fn func(State)) (unwatch func()) {
	return s.Orchestrator.Subscribe(func(v model.SessionView) {
		fn(s.render(v))
	})
}

// Done 在会话关闭（过期）后被关闭。
func (s *Session) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Close 取消进行中的请求。
func (s *Session) Close() {
	s.cancel()
	s.Orchestrator.Close()
}

// SessionService 定义了浏览器会话的生命周期操作。
type SessionService interface {
	Create() (*Session, string, error)
	Get(tokenString string) (*Session, error)
	// Sweep 关闭空闲超过 TTL 的会话，返回关闭的数量。
	Sweep() int
	// Run 周期性执行 Sweep，直到 ctx 结束。
	Run(ctx context.Context)
	Count() int
}

type sessionService struct {
	client     ragclient.Client
	jwtManager *token.JWTManager
	repo       repository.SessionRepository[*Session]
	ttl        time.Duration
}

// NewSessionService 创建一个新的 SessionService 实例。
func NewSessionService(client ragclient.Client, jwtManager *token.JWTManager, repo repository.SessionRepository[*Session], ttl time.Duration) SessionService {
	return &sessionService{client: client, jwtManager: jwtManager, repo: repo, ttl: ttl}
}

// Create 新建会话并在后台探测一次后端。
func (s *sessionService) Create() (*Session, string, error) {
	id := uuid.NewString()
	tok, err := s.jwtManager.GenerateToken(id)
	if err != nil {
		return nil, "", err
	}
	sess := newSession(id, s.client)
	s.repo.Save(id, sess)
	metrics.ActiveSessions.Set(float64(s.repo.Count()))
	go sess.Orchestrator.CheckHealth(sess.ctx)
	log.Infow("session created", "session", id)
	return sess, tok, nil
}

func (s *sessionService) Get(tokenString string) (*Session, error) {
	claims, err := s.jwtManager.VerifyToken(tokenString)
	if err != nil {
		return nil, err
	}
	sess, ok := s.repo.Find(claims.SessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *sessionService) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	expired := s.repo.DeleteIdleSince(time.Now().Add(-s.ttl))
	for _, sess := range expired {
		sess.Close()
		log.Infow("session expired", "session", sess.ID)
	}
	metrics.ActiveSessions.Set(float64(s.repo.Count()))
	return len(expired)
}

func (s *sessionService) Run(ctx context.Context) {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *sessionService) Count() int {
	return s.repo.Count()
}
