package component

import (
	"context"
	"fmt"

	arkext "github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"chatbot/internal/config"
)

// 支持的 Provider
const (
	ProviderOpenAI     = "openai"      // Assistants API，不经过 ChatModel
	ProviderOpenAIChat = "openai-chat" // Chat Completions
	ProviderAzure      = "azure"
	ProviderArk        = "ark"
)

const (
	defaultOpenAIModel = "gpt-4o-mini"
	defaultArkBaseURL  = "https://ark.cn-beijing.volces.com/api/v3"
	defaultArkModel    = "doubao-seed-1-6-flash-250615"
)

// NewChatModel 创建 ChatModel
func NewChatModel(ctx context.Context, cfg *config.AIConfig) (model.BaseChatModel, error) {
	switch cfg.Provider {
	case ProviderOpenAIChat:
		return newOpenAIChatModel(ctx, cfg, false)
	case ProviderAzure:
		return newOpenAIChatModel(ctx, cfg, true)
	case ProviderArk:
		return newArkChatModel(ctx, cfg)
	default:
		return nil, fmt.Errorf("provider %q has no chat model", cfg.Provider)
	}
}

// newOpenAIChatModel OpenAI 或 Azure OpenAI
func newOpenAIChatModel(ctx context.Context, cfg *config.AIConfig, byAzure bool) (model.BaseChatModel, error) {
	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultOpenAIModel
	}

	modelCfg := &openai.ChatModelConfig{
		Model:   modelName,
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		ByAzure: byAzure,
	}
	if byAzure && cfg.BaseURL == "" {
		return nil, fmt.Errorf("azure provider requires base_url")
	}

	if cfg.Options.Temperature > 0 {
		temp := float32(cfg.Options.Temperature)
		modelCfg.Temperature = &temp
	}
	if cfg.Options.MaxTokens > 0 {
		modelCfg.MaxTokens = &cfg.Options.MaxTokens
	}
	if cfg.Options.TopP > 0 {
		topP := float32(cfg.Options.TopP)
		modelCfg.TopP = &topP
	}

	return openai.NewChatModel(ctx, modelCfg)
}

// newArkChatModel 火山方舟
func newArkChatModel(ctx context.Context, cfg *config.AIConfig) (model.BaseChatModel, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultArkBaseURL
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultArkModel
	}

	modelCfg := &arkext.ChatModelConfig{
		Model:   modelName,
		APIKey:  cfg.APIKey,
		BaseURL: baseURL,
	}

	if cfg.Options.Temperature > 0 {
		temp := float32(cfg.Options.Temperature)
		modelCfg.Temperature = &temp
	}
	if cfg.Options.MaxTokens > 0 {
		modelCfg.MaxTokens = &cfg.Options.MaxTokens
	}
	if cfg.Options.TopP > 0 {
		topP := float32(cfg.Options.TopP)
		modelCfg.TopP = &topP
	}

	return arkext.NewChatModel(ctx, modelCfg)
}
