package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pdfchat-go/internal/config"
	"pdfchat-go/internal/middleware"
	"pdfchat-go/internal/service"
)

// NewRouter 创建路由引擎并注册所有路由。
func NewRouter(cfg config.Config, sessions service.SessionService) *gin.Engine {
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	r.Use(middleware.RequestLogger(), gin.Recovery())

	r.GET("/", Index)
	r.GET("/health", NewHealthHandler(sessions, cfg.APIBaseURL(), cfg.Client.Mode).Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/session", middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst), NewSessionHandler(sessions).Create)

	api := r.Group("/api")
	api.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst), middleware.SessionAuth(sessions))
	{
		sessionHandler := NewSessionHandler(sessions)
		uploadHandler := NewUploadHandler(cfg.Upload.MaxBytes())
		chatHandler := NewChatHandler()

		api.GET("/state", sessionHandler.State)
		api.POST("/file", uploadHandler.SelectFile)
		api.DELETE("/file", uploadHandler.RemoveFile)
		api.POST("/upload", uploadHandler.Upload)
		api.PUT("/draft", chatHandler.SetDraft)
		api.POST("/chat", chatHandler.Send)
		api.GET("/ws", chatHandler.Watch)
	}
	return r
}
