// Package config 负责加载和管理应用程序的配置。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 环境变量前缀，例如 PDFCHAT_API_BASE_URL 覆盖 api.base_url。
const envPrefix = "PDFCHAT"

// 全局配置变量，由 Init 填充。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	API       APIConfig       `mapstructure:"api"`
	Client    ClientConfig    `mapstructure:"client"`
	Session   SessionConfig   `mapstructure:"session"`
	Upload    UploadConfig    `mapstructure:"upload"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// ServerConfig 存储前端服务器相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
	// PublicHost 是页面对外提供服务时使用的主机名，用于推断后端地址。
	PublicHost string `mapstructure:"public_host"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// APIConfig 存储 RAG 后端相关的配置。
type APIConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// ClientConfig 决定使用真实后端还是固定延迟的占位实现。
type ClientConfig struct {
	Mode        string `mapstructure:"mode"`
	StubDelayMS int    `mapstructure:"stub_delay_ms"`
}

// SessionConfig 存储浏览器会话相关的配置。
type SessionConfig struct {
	Secret           string `mapstructure:"secret"`
	TTLMinutes       int    `mapstructure:"ttl_minutes"`
	TokenExpireHours int    `mapstructure:"token_expire_hours"`
}

// UploadConfig 存储上传限制。
type UploadConfig struct {
	MaxSizeMB int `mapstructure:"max_size_mb"`
}

// RateLimitConfig 存储 /api 路由的限流参数。
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

const (
	ClientModeLive = "live"
	ClientModeStub = "stub"
)

// Timeout 返回单次后端请求的超时时间，0 表示不额外限制。
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// StubDelay 返回占位实现的固定延迟。
func (c ClientConfig) StubDelay() time.Duration {
	return time.Duration(c.StubDelayMS) * time.Millisecond
}

// TTL 返回会话的空闲过期时间。
func (c SessionConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// TokenExpire 返回会话令牌的有效期。
func (c SessionConfig) TokenExpire() time.Duration {
	return time.Duration(c.TokenExpireHours) * time.Hour
}

// MaxBytes 返回允许上传的最大字节数。
func (c UploadConfig) MaxBytes() int64 {
	return int64(c.MaxSizeMB) << 20
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "5173")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.public_host", "localhost")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_path", "")
	v.SetDefault("api.base_url", "")
	v.SetDefault("api.timeout_seconds", 0)
	v.SetDefault("client.mode", ClientModeLive)
	v.SetDefault("client.stub_delay_ms", 900)
	v.SetDefault("session.secret", "change-me")
	v.SetDefault("session.ttl_minutes", 60)
	v.SetDefault("session.token_expire_hours", 24)
	v.SetDefault("upload.max_size_mb", 20)
	v.SetDefault("rate_limit.rps", 5)
	v.SetDefault("rate_limit.burst", 10)
}

// Load 读取 .env、YAML 配置文件和环境变量并返回配置。
// 配置文件不存在时使用默认值。
func Load(configPath string) (Config, error) {
	return LoadWith(viper.New(), configPath)
}

// LoadWith 与 Load 相同，但使用调用方提供的 viper 实例，
// 命令行可以先用 BindPFlag 绑定参数，参数优先于环境变量和配置文件。
func LoadWith(v *viper.Viper, configPath string) (Config, error) {
	// .env 仅用于本地开发，不存在时忽略
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("读取 .env 失败: %w", err)
	}

	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("读取配置文件失败: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("无法将配置解析到结构体中: %w", err)
	}
	return cfg, nil
}

// Init 加载配置到全局变量 Conf，失败时 panic。
func Init(configPath string) {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	Conf = cfg
}
