package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pdfchat-go/internal/web"
	"pdfchat-go/pkg/log"
)

// Index 返回内嵌的单页前端。
func Index(c *gin.Context) {
	page, err := web.IndexHTML()
	if err != nil {
		log.Error("Index: failed to read embedded page", err)
		c.String(http.StatusInternalServerError, "page not available")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}
