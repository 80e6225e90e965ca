package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"pdfchat-go/internal/middleware"
	"pdfchat-go/internal/model"
	"pdfchat-go/pkg/log"
)

// UploadHandler 负责文件选择与上传相关的请求。
type UploadHandler struct {
	maxBytes int64
}

// NewUploadHandler 创建一个新的 UploadHandler 实例。maxBytes<=0 表示不限制大小。
func NewUploadHandler(maxBytes int64) *UploadHandler {
	return &UploadHandler{maxBytes: maxBytes}
}

// SelectFile 接收表单字段 file，按其声明的 Content-Type 交给上传面板校验。
// 非 PDF 文件不会报错，而是以本地错误的形式出现在返回的状态里。
func (h *UploadHandler) SelectFile(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	if h.maxBytes > 0 {
		// 预留 multipart 头部的开销
		limit := h.maxBytes + 64<<10
		if c.Request.ContentLength > limit {
			respond(c, http.StatusRequestEntityTooLarge, h.tooLargeMessage(), sess.State())
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond(c, http.StatusRequestEntityTooLarge, h.tooLargeMessage(), sess.State())
			return
		}
		respond(c, http.StatusBadRequest, "未能获取上传的文件", sess.State())
		return
	}
	defer file.Close()

	if h.maxBytes > 0 && header.Size > h.maxBytes {
		respond(c, http.StatusRequestEntityTooLarge, h.tooLargeMessage(), sess.State())
		return
	}
	content, err := io.ReadAll(file)
	if err != nil {
		log.Error("SelectFile: failed to read file", err)
		respond(c, http.StatusBadRequest, "读取文件失败", sess.State())
		return
	}

	accepted := sess.Upload.Choose(&model.SelectedFile{
		Name:        header.Filename,
		Size:        int64(len(content)),
		ContentType: header.Header.Get("Content-Type"),
		Content:     content,
	})
	log.Infow("file selected", "session", sess.ID, "name", header.Filename, "accepted", accepted)
	ok(c, sess.State())
}

func (h *UploadHandler) tooLargeMessage() string {
	return fmt.Sprintf("File is larger than %d MB.", h.maxBytes>>20)
}

// RemoveFile 清除当前选择的文件。
func (h *UploadHandler) RemoveFile(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	sess.Upload.Remove()
	ok(c, sess.State())
}

// Upload 触发上传并立即返回 202，结果通过 websocket 推送。
func (h *UploadHandler) Upload(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	if !sess.Upload.Upload(sess.Orchestrator.View()) {
		respond(c, http.StatusConflict, "没有可上传的文件或上传正在进行", sess.State())
		return
	}
	respond(c, http.StatusAccepted, "accepted", sess.State())
}
