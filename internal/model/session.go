package model

// FileInfo 是已选文件对外展示的元数据，不包含文件内容。
type FileInfo struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}

// SessionView 是编排器状态的只读快照，每次状态变化都会生成新的快照。
type SessionView struct {
	File          *FileInfo     `json:"file"`
	DocumentID    string        `json:"documentId,omitempty"`
	Status        UploadStatus  `json:"status"`
	StatusMessage string        `json:"statusMessage,omitempty"`
	Messages      []ChatMessage `json:"messages"`
	IsSending     bool          `json:"isSending"`
	UpdatedAt     LocalTime     `json:"updatedAt"`
}

// ChatDisabled 只有在文件索引就绪后聊天才可用。
func (v SessionView) ChatDisabled() bool {
	return v.Status != UploadReady
}
