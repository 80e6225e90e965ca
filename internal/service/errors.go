package service

import "errors"

var (
	// ErrNoFile 表示尚未选择文件。
	ErrNoFile = errors.New("no file selected")
	// ErrUploadInProgress 表示已有上传正在进行。
	ErrUploadInProgress = errors.New("upload already in progress")
	// ErrEmptyMessage 表示去除空白后的问题为空。
	ErrEmptyMessage = errors.New("message is empty")
	// ErrChatDisabled 表示文件尚未索引就绪。
	ErrChatDisabled = errors.New("chat is disabled until the document is ready")
	// ErrBusy 表示上一个问题仍在等待回答。
	ErrBusy = errors.New("still waiting for the previous answer")
	// ErrStale 表示请求返回时用户已经选择了新文件，结果被丢弃。
	ErrStale = errors.New("result discarded: a new file was selected")
	// ErrClosed 表示会话已经关闭。
	ErrClosed = errors.New("session closed")
)
