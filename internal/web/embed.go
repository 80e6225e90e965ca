// Package web 内嵌了单页前端。
package web

import (
	"embed"
	"io/fs"
)

//go:embed static/*
var staticFiles embed.FS

// IndexHTML 返回首页内容。
func IndexHTML() ([]byte, error) {
	return fs.ReadFile(staticFiles, "static/index.html")
}
