// Package view 包含上传面板和聊天面板的视图模型。
//
// 面板只持有自己的局部状态（本地校验错误、输入草稿），其余状态都来自编排器快照；
// 面板通过回调把动作交给编排器，自身不做任何网络请求。
package view

import (
	"fmt"
	"sync"

	"pdfchat-go/internal/model"
)

// NotPDFError 是选择非 PDF 文件时的本地提示。
const NotPDFError = "Only PDF files are supported right now."

// UploadPanel 是文件选择与上传面板。
type UploadPanel struct {
	mu         sync.Mutex
	localError string

	onFileSelect func(*model.SelectedFile)
	onUpload     func()
}

// UploadPanelView 是上传面板的渲染结果。
type UploadPanelView struct {
	File        *model.FileInfo    `json:"file"`
	SizeText    string             `json:"sizeText,omitempty"`
	Status      model.UploadStatus `json:"status"`
	Badge       string             `json:"badge"`
	StatusText  string             `json:"statusText"`
	LocalError  string             `json:"localError,omitempty"`
	ButtonLabel string             `json:"buttonLabel"`
	CanUpload   bool               `json:"canUpload"`
}

// NewUploadPanel 创建上传面板。onUpload 由调用方决定是否异步执行。
func NewUploadPanel(onFileSelect func(*model.SelectedFile), onUpload func()) *UploadPanel {
	return &UploadPanel{onFileSelect: onFileSelect, onUpload: onUpload}
}

// Choose 处理文件选择。非 PDF 文件在本地被拒绝并清除选择，返回 false。
func (p *UploadPanel) Choose(file *model.SelectedFile) bool {
	if file == nil {
		p.onFileSelect(nil)
		return false
	}

	p.mu.Lock()
	if !file.IsPDF() {
		p.localError = NotPDFError
		p.mu.Unlock()
		p.onFileSelect(nil)
		return false
	}
	p.localError = ""
	p.mu.Unlock()

	p.onFileSelect(file)
	return true
}

// Remove 清除当前选择。
func (p *UploadPanel) Remove() {
	p.onFileSelect(nil)
}

// LocalError 返回本地校验错误，没有时为空。
func (p *UploadPanel) LocalError() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.localError
}

// Upload 在有文件且不在上传中时触发上传回调。
func (p *UploadPanel) Upload(v model.SessionView) bool {
	if !canUpload(v) {
		return false
	}
	p.onUpload()
	return true
}

func canUpload(v model.SessionView) bool {
	return v.File != nil && v.Status != model.UploadUploading
}

// Render 根据编排器快照生成面板视图。
func (p *UploadPanel) Render(v model.SessionView) UploadPanelView {
	localError := p.LocalError()
	out := UploadPanelView{
		File:        v.File,
		Status:      v.Status,
		Badge:       BadgeText(v.Status),
		StatusText:  statusText(localError, v),
		LocalError:  localError,
		ButtonLabel: uploadButtonLabel(v.Status),
		CanUpload:   canUpload(v),
	}
	if v.File != nil {
		out.SizeText = FormatSize(v.File.Size)
	}
	return out
}

// FormatSize 以 1024 为进位把字节数格式化为 B、KB 或 MB。
func FormatSize(bytes int64) string {
	switch {
	case bytes < 1024:
		return fmt.Sprintf("%d B", bytes)
	case bytes < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(1024*1024))
	}
}

// BadgeText 返回状态徽标文字，只取决于上传状态。
func BadgeText(status model.UploadStatus) string {
	switch status {
	case model.UploadUploading:
		return "Processing"
	case model.UploadReady:
		return "Ready"
	case model.UploadError:
		return "Needs retry"
	default:
		return "Idle"
	}
}

func statusText(localError string, v model.SessionView) string {
	if localError != "" {
		return localError
	}
	if v.StatusMessage != "" {
		return v.StatusMessage
	}
	switch v.Status {
	case model.UploadReady:
		return "Indexed and ready for grounded Q&A."
	case model.UploadUploading:
		return "Uploading and indexing your PDF…"
	case model.UploadError:
		return "Upload failed. Please try again."
	default:
		return "Drop a PDF or choose a file to start."
	}
}

func uploadButtonLabel(status model.UploadStatus) string {
	switch status {
	case model.UploadUploading:
		return "Uploading…"
	case model.UploadReady:
		return "Re-upload"
	default:
		return "Upload & Index"
	}
}
