package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"pdfchat-go/internal/middleware"
	"pdfchat-go/internal/service"
	"pdfchat-go/pkg/log"
)

const writeWait = 10 * time.Second

// SessionExpiredReason 是会话过期时关闭帧携带的原因。
const SessionExpiredReason = "session expired"

var (
	upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true // 允许所有来源
		},
	}
)

// ChatHandler 负责提问和状态推送。
type ChatHandler struct{}

// NewChatHandler 创建一个新的 ChatHandler。
func NewChatHandler() *ChatHandler {
	return &ChatHandler{}
}

// DraftRequest 定义了更新草稿的请求体结构。
type DraftRequest struct {
	Draft string `json:"draft"`
}

// SetDraft 更新聊天输入框的草稿。
func (h *ChatHandler) SetDraft(c *gin.Context) {
	var req DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "无效的请求负载", nil)
		return
	}
	sess := middleware.CurrentSession(c)
	sess.Chat.SetDraft(req.Draft)
	ok(c, sess.State())
}

// SendRequest 定义了提问的请求体结构。Text 为空时提交当前草稿。
type SendRequest struct {
	Text *string `json:"text"`
}

// Send 提交问题并立即返回 202，回答通过 websocket 推送。
func (h *ChatHandler) Send(c *gin.Context) {
	var req SendRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respond(c, http.StatusBadRequest, "无效的请求负载", nil)
			return
		}
	}
	sess := middleware.CurrentSession(c)
	if req.Text != nil {
		sess.Chat.SetDraft(*req.Text)
	}
	if !sess.Chat.Submit(sess.Orchestrator.View()) {
		respond(c, http.StatusConflict, "问题为空、对话未就绪或上一个回答仍在生成", sess.State())
		return
	}
	respond(c, http.StatusAccepted, "accepted", sess.State())
}

// Watch 升级为 WebSocket，先推送当前状态，之后每次状态变化推送一次。
func (h *ChatHandler) Watch(c *gin.Context) {
	sess := middleware.CurrentSession(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()
	log.Infof("WebSocket 连接已建立，会话: %s", sess.ID)

	// 容量为 1，只保留最新状态
	updates := make(chan service.State, 1)
	unwatch := sess.Watch(func(st service.State) {
		for {
			select {
			case updates <- st:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	})
	defer unwatch()

	// 读循环只用于感知连接关闭
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := writeState(conn, sess.State()); err != nil {
		return
	}
	for {
		select {
		case <-closed:
			log.Infof("WebSocket 连接已关闭，会话: %s", sess.ID)
			return
		case <-c.Request.Context().Done():
			return
		case <-sess.Done():
			// 会话已过期，通知页面重新建立会话
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, SessionExpiredReason)
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			log.Infof("会话已过期，关闭 WebSocket: %s", sess.ID)
			return
		case st := <-updates:
			if err := writeState(conn, st); err != nil {
				log.Warnf("向 WebSocket 写入状态失败: %v", err)
				return
			}
		}
	}
}

func writeState(conn *websocket.Conn, st service.State) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(st)
}
