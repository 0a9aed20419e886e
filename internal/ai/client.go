package ai

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"chatbot/internal/ai/component"
	"chatbot/internal/config"
)

// NewAdapter 根据配置选择适配器，进程生命周期内不再切换
//   - provider=openai（默认）且配置了 api_key + assistant_id: Assistants API
//   - provider=openai-chat/azure/ark 且配置了 api_key: ChatModel + ThreadStore
//   - 其余情况: mock
func NewAdapter(ctx context.Context, cfg *config.AIConfig, threads ThreadStore) (Adapter, error) {
	if cfg.APIKey == "" {
		log.Warn().Msg("AI API key not configured, using mock mode")
		return NewMockAdapter(), nil
	}

	switch cfg.Provider {
	case "", component.ProviderOpenAI:
		if !cfg.LiveAssistant() {
			log.Warn().Msg("AI assistant id not configured, using mock mode")
			return NewMockAdapter(), nil
		}
		log.Info().Str("assistant_id", cfg.AssistantID).Msg("using OpenAI Assistants API")
		return NewLiveAdapter(cfg.APIKey, cfg.AssistantID, cfg.BaseURL), nil

	case component.ProviderOpenAIChat, component.ProviderAzure, component.ProviderArk:
		chatModel, err := component.NewChatModel(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create chat model: %w", err)
		}
		if threads == nil {
			threads = NewMemoryThreadStore()
		}
		log.Info().Str("provider", cfg.Provider).Str("model", cfg.Model).Msg("using chat completion model")
		return NewCompletionAdapter(chatModel, threads, cfg.SystemPrompt), nil

	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.Provider)
	}
}
