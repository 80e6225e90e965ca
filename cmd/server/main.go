// Package main 是前端服务器的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"pdfchat-go/internal/config"
	"pdfchat-go/internal/handler"
	"pdfchat-go/internal/repository"
	"pdfchat-go/internal/service"
	"pdfchat-go/pkg/log"
	"pdfchat-go/pkg/ragclient"
	"pdfchat-go/pkg/token"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化后端客户端
	client := ragclient.New(cfg)
	log.Infow("后端客户端已就绪", "mode", cfg.Client.Mode, "apiBaseUrl", cfg.APIBaseURL())
	probeBackend(client)

	// 4. 初始化会话 (依赖注入)
	jwtManager := token.NewJWTManager(cfg.Session.Secret, cfg.Session.TokenExpire())
	sessions := service.NewSessionService(
		client,
		jwtManager,
		repository.NewSessionRepository[*service.Session](),
		cfg.Session.TTL(),
	)
	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	defer cancelSweep()
	go sessions.Run(sweepCtx)

	// 5. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := handler.NewRouter(cfg, sessions)

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	// 设置一个5秒的超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}
	log.Info("服务已优雅关闭")
}

// probeBackend 启动时探测一次后端，失败只记录日志。
func probeBackend(client ragclient.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := client.Health(ctx); err != nil {
		log.Warnf("后端暂不可达，服务继续启动: %v", err)
		return
	}
	log.Info("后端健康检查通过")
}
