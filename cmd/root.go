package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"chatbot/internal/config"
	"chatbot/internal/pkg/logger"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "chatbot",
	Short: "Chatbot - conversation backend for a hosted AI assistant",
	Long: `Chatbot keeps per-user conversations, relays each message to a hosted
assistant run, waits for it with a bounded poller and stores both turns.
Without AI credentials it answers with a deterministic mock reply.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./configs/config.yaml)")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.chatbot")
	}

	// 环境变量设置
	viper.SetEnvPrefix("CHATBOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 设置默认值
	setDefaults()

	// 读取配置文件
	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			fmt.Fprintln(os.Stderr, "No config file found, using defaults and environment variables")
		} else {
			fmt.Fprintf(os.Stderr, "Failed to read config: %v\n", err)
			os.Exit(1)
		}
	}

	// 反序列化到结构体
	cfg = &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to unmarshal config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}

	log.Debug().Str("config_file", viper.ConfigFileUsed()).Msg("configuration loaded")
}

func setDefaults() {
	// Server
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 5000)
	viper.SetDefault("server.mode", "release")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "60s")

	// AI
	viper.SetDefault("ai.provider", "openai")
	viper.SetDefault("ai.api_key", "")
	viper.SetDefault("ai.assistant_id", "")
	viper.SetDefault("ai.model", "")
	viper.SetDefault("ai.base_url", "")
	viper.SetDefault("ai.system_prompt", "")
	viper.SetDefault("ai.options.temperature", 0.7)
	viper.SetDefault("ai.options.max_tokens", 1024)
	viper.SetDefault("ai.options.top_p", 1.0)

	// Chat
	viper.SetDefault("chat.poll_interval", "1200ms")
	viper.SetDefault("chat.max_poll_attempts", 15)
	viper.SetDefault("chat.send_timeout", "0s")

	// Log
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.time_format", "RFC3339")

	// MongoDB，留空时使用内存存储
	viper.SetDefault("mongo.uri", "")
	viper.SetDefault("mongo.database", "chatbot")
	viper.SetDefault("mongo.max_pool_size", 100)
	viper.SetDefault("mongo.min_pool_size", 10)

	// Redis，留空时不启用缓存
	viper.SetDefault("redis.addr", "")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Auth
	viper.SetDefault("auth.jwt_secret", "")
	viper.SetDefault("auth.token_expiry", "24h")
	viper.SetDefault("auth.cookie_name", "token")
	viper.SetDefault("auth.cookie_secure", false)

	// CORS
	viper.SetDefault("cors.allow_origins", []string{"http://localhost:3000"})
}

// GetConfig returns the global configuration
func GetConfig() *config.Config {
	return cfg
}
