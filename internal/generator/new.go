package generator

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"

	"github.com/nguyentantai21042004/soap-flow/internal/config"
	"github.com/nguyentantai21042004/soap-flow/internal/logger"
)

// New creates the Generator for cfg.Model.Provider.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (Generator, error) {
	switch cfg.Model.Provider {
	case config.ProviderOpenAI:
		clientCfg := openai.DefaultConfig(cfg.APIKey())
		if cfg.Model.BaseURL != "" {
			clientCfg.BaseURL = cfg.Model.BaseURL
		}
		return &openaiGenerator{
			client: openai.NewClientWithConfig(clientCfg),
			logger: log,
		}, nil

	case config.ProviderGemini, "":
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.APIKey(),
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		return &geminiGenerator{
			models: client.Models,
			logger: log,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Model.Provider)
	}
}
