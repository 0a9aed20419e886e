package config

import (
	"errors"
	"fmt"
	"time"
)

// Config 应用配置根结构
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	AI     AIConfig     `mapstructure:"ai"`
	Chat   ChatConfig   `mapstructure:"chat"`
	Log    LogConfig    `mapstructure:"log"`
	Mongo  MongoConfig  `mapstructure:"mongo"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Auth   AuthConfig   `mapstructure:"auth"`
	CORS   CORSConfig   `mapstructure:"cors"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// AIConfig AI 服务配置
// provider=openai 时使用 Assistants API（需要 api_key + assistant_id），
// provider=openai-chat/azure/ark 时使用 ChatModel 模拟 thread（需要 api_key）。
// 缺少必要凭证时进程整个生命周期都运行在 mock 模式。
type AIConfig struct {
	Provider     string          `mapstructure:"provider"`
	APIKey       string          `mapstructure:"api_key"`
	AssistantID  string          `mapstructure:"assistant_id"`
	Model        string          `mapstructure:"model"`
	BaseURL      string          `mapstructure:"base_url"`
	SystemPrompt string          `mapstructure:"system_prompt"`
	Options      AIOptionsConfig `mapstructure:"options"`
}

// AIOptionsConfig AI 模型参数
type AIOptionsConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	TopP        float64 `mapstructure:"top_p"`
}

// ChatConfig 对话编排配置
type ChatConfig struct {
	PollInterval    time.Duration `mapstructure:"poll_interval"`     // 两次查询 run 状态之间的间隔
	MaxPollAttempts int           `mapstructure:"max_poll_attempts"` // 最多查询次数，超过即视为超时
	SendTimeout     time.Duration `mapstructure:"send_timeout"`      // 单次发送消息的截止时间，0 表示不限制
}

// LogConfig 日志配置 (Zerolog)
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	TimeFormat string `mapstructure:"time_format"`
}

// MongoConfig MongoDB 配置
type MongoConfig struct {
	URI         string `mapstructure:"uri"`
	Database    string `mapstructure:"database"`
	MaxPoolSize uint64 `mapstructure:"max_pool_size"`
	MinPoolSize uint64 `mapstructure:"min_pool_size"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig 认证配置
// 会话只有一种形式：HttpOnly Cookie 中的无状态 JWT
type AuthConfig struct {
	JWTSecret    string        `mapstructure:"jwt_secret"`    // JWT密钥
	TokenExpiry  time.Duration `mapstructure:"token_expiry"`  // Token过期时间
	CookieName   string        `mapstructure:"cookie_name"`   // Cookie名称
	CookieSecure bool          `mapstructure:"cookie_secure"` // 仅HTTPS传输
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// Validate 验证配置有效性
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("invalid server port")
	}

	validModes := map[string]bool{"debug": true, "release": true, "test": true}
	if !validModes[c.Server.Mode] {
		return errors.New("invalid server mode, must be debug/release/test")
	}

	if c.Chat.PollInterval <= 0 {
		return errors.New("chat.poll_interval must be positive")
	}
	if c.Chat.MaxPollAttempts <= 0 {
		return errors.New("chat.max_poll_attempts must be positive")
	}
	if c.Chat.SendTimeout < 0 {
		return errors.New("chat.send_timeout must not be negative")
	}

	// 等待助手的时间必须短于写超时，否则 504 还没写出连接就被关闭
	if budget := c.Chat.WaitBudget(); c.Server.WriteTimeout > 0 && budget >= c.Server.WriteTimeout {
		return fmt.Errorf("chat wait budget %s must be shorter than server.write_timeout %s", budget, c.Server.WriteTimeout)
	}

	return nil
}

// WaitBudget 单次发送最长等待时间：轮询次数 × 间隔，send_timeout 更短时取 send_timeout
func (c *ChatConfig) WaitBudget() time.Duration {
	budget := time.Duration(c.MaxPollAttempts) * c.PollInterval
	if c.SendTimeout > 0 && c.SendTimeout < budget {
		budget = c.SendTimeout
	}
	return budget
}

// LiveAssistant 是否具备调用 Assistants API 的条件
func (c *AIConfig) LiveAssistant() bool {
	return c.APIKey != "" && c.AssistantID != ""
}
