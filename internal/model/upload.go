package model

// UploadStatus 表示当前文件索引请求所处的阶段。
type UploadStatus string

const (
	UploadIdle      UploadStatus = "idle"
	UploadUploading UploadStatus = "uploading"
	UploadReady     UploadStatus = "ready"
	UploadError     UploadStatus = "error"
)

// PDFContentType 是唯一接受的文件类型。
const PDFContentType = "application/pdf"

// SelectedFile 是用户选中的待上传文件。
type SelectedFile struct {
	Name        string
	Size        int64
	ContentType string // 浏览器或客户端声明的类型
	Content     []byte
}

// IsPDF 判断声明的类型是否为 PDF。
func (f *SelectedFile) IsPDF() bool {
	return f != nil && f.ContentType == PDFContentType
}
