package handler

import (
	"github.com/gin-gonic/gin"

	"pdfchat-go/internal/service"
)

// HealthHandler 提供前端服务自身的存活探针。
type HealthHandler struct {
	sessions   service.SessionService
	apiBaseURL string
	clientMode string
}

// NewHealthHandler 创建一个新的 HealthHandler 实例。
func NewHealthHandler(sessions service.SessionService, apiBaseURL, clientMode string) *HealthHandler {
	return &HealthHandler{sessions: sessions, apiBaseURL: apiBaseURL, clientMode: clientMode}
}

// Health 返回服务状态、会话数和解析出的后端地址。
func (h *HealthHandler) Health(c *gin.Context) {
	ok(c, gin.H{
		"status":     "ok",
		"sessions":   h.sessions.Count(),
		"apiBaseUrl": h.apiBaseURL,
		"clientMode": h.clientMode,
	})
}
