package config

import "strings"

const (
	// LocalAPIBaseURL 是页面从 localhost 访问时使用的后端地址。
	LocalAPIBaseURL = "http://localhost:8000/api"
	// ServiceAPIBaseURL 是容器部署时通过服务名访问后端的地址。
	ServiceAPIBaseURL = "http://backend:8000/api"
)

// ResolveAPIBaseURL 按顺序决定后端基础地址：显式覆盖、localhost、容器服务名。
// 总是返回一个地址。
func ResolveAPIBaseURL(override, hostname string) string {
	if o := strings.TrimSpace(override); o != "" {
		return strings.TrimRight(o, "/")
	}
	if hostname == "localhost" {
		return LocalAPIBaseURL
	}
	return ServiceAPIBaseURL
}

// APIBaseURL 根据当前配置解析后端基础地址。
func (c Config) APIBaseURL() string {
	return ResolveAPIBaseURL(c.API.BaseURL, c.Server.PublicHost)
}
