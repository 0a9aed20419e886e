package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"chatbot/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the chatbot API server with the specified configuration.`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	flags := serveCmd.Flags()

	// Server flags
	flags.StringP("host", "H", "0.0.0.0", "server host")
	flags.IntP("port", "p", 5000, "server port")
	flags.String("mode", "release", "server mode (debug/release/test)")

	// AI flags
	flags.String("ai-provider", "openai", "AI provider (openai/openai-chat/azure/ark)")
	flags.String("ai-model", "", "chat model name, used by openai-chat/azure/ark")
	flags.String("ai-api-key", "", "AI API key (recommend using env: CHATBOT_AI_API_KEY)")
	flags.String("ai-assistant-id", "", "assistant id for the openai provider (env: CHATBOT_AI_ASSISTANT_ID)")

	// Chat flags
	flags.Duration("poll-interval", 0, "wait between two run status checks (default from config: 1200ms)")
	flags.Int("max-poll-attempts", 0, "status checks before giving up on a run (default from config: 15)")

	// Log flags
	flags.String("log-level", "info", "log level (trace/debug/info/warn/error/fatal)")
	flags.String("log-format", "console", "log format (json/console)")

	// Bind flags to viper
	_ = viper.BindPFlag("server.host", flags.Lookup("host"))
	_ = viper.BindPFlag("server.port", flags.Lookup("port"))
	_ = viper.BindPFlag("server.mode", flags.Lookup("mode"))
	_ = viper.BindPFlag("ai.provider", flags.Lookup("ai-provider"))
	_ = viper.BindPFlag("ai.model", flags.Lookup("ai-model"))
	_ = viper.BindPFlag("ai.api_key", flags.Lookup("ai-api-key"))
	_ = viper.BindPFlag("ai.assistant_id", flags.Lookup("ai-assistant-id"))
	_ = viper.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("log.format", flags.Lookup("log-format"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	// 轮询参数只在显式传入时覆盖配置
	if f := cmd.Flags().Lookup("poll-interval"); f.Changed {
		cfg.Chat.PollInterval, _ = cmd.Flags().GetDuration("poll-interval")
	}
	if f := cmd.Flags().Lookup("max-poll-attempts"); f.Changed {
		cfg.Chat.MaxPollAttempts, _ = cmd.Flags().GetInt("max-poll-attempts")
	}

	// Validate config
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// Create server
	srv, err := server.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	// Graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()
		log.Info().Msg("received shutdown signal")
	}()

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info().
		Str("addr", addr).
		Str("mode", cfg.Server.Mode).
		Msg("starting server")

	return srv.Run(ctx, addr)
}
