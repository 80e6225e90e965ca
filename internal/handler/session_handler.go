package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pdfchat-go/internal/middleware"
	"pdfchat-go/internal/service"
	"pdfchat-go/pkg/log"
)

// SessionHandler 负责创建会话和返回会话状态。
type SessionHandler struct {
	sessions service.SessionService
}

// NewSessionHandler 创建一个新的 SessionHandler 实例。
func NewSessionHandler(sessions service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Create 新建一个浏览器会话并返回令牌和初始状态。
func (h *SessionHandler) Create(c *gin.Context) {
	sess, tok, err := h.sessions.Create()
	if err != nil {
		log.Error("Create: failed to create session", err)
		respond(c, http.StatusInternalServerError, "无法创建会话", nil)
		return
	}
	respond(c, http.StatusCreated, "success", gin.H{"token": tok, "state": sess.State()})
}

// State 返回当前会话的完整状态。
func (h *SessionHandler) State(c *gin.Context) {
	ok(c, middleware.CurrentSession(c).State())
}
