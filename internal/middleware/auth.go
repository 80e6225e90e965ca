// Package middleware 提供了处理 HTTP 请求的中间件。
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pdfchat-go/internal/service"
)

// SessionKey 是会话在 gin.Context 中的键。
const SessionKey = "session"

// SessionAuth 从 Authorization 头或 token 查询参数中解析会话令牌，
// 并把 *service.Session 存入上下文。websocket 无法自定义请求头，所以也接受查询参数。
func SessionAuth(sessions service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.Query("token")
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(authHeader, bearerPrefix) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "无效的授权头格式", "data": nil})
				return
			}
			tokenString = strings.TrimPrefix(authHeader, bearerPrefix)
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "缺少会话令牌", "data": nil})
			return
		}

		sess, err := sessions.Get(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "会话无效或已过期", "data": nil})
			return
		}

		c.Set(SessionKey, sess)
		c.Next()
	}
}

// CurrentSession 取出 SessionAuth 存入的会话。
func CurrentSession(c *gin.Context) *service.Session {
	v, _ := c.Get(SessionKey)
	sess, _ := v.(*service.Session)
	return sess
}
