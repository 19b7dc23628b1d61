// internal/llmclient/factory.go
package llmclient

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/sujikathir/test-gen/internal/config"
)

// NewClient creates the backend client selected by cfg.Type.
func NewClient(ctx context.Context, cfg config.AIProviderConfig, logger *zap.Logger) (Client, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout()}

	switch cfg.Type {
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg, httpClient, logger), nil
	case config.ProviderBedrock:
		return NewBedrockClient(cfg, httpClient, logger)
	case config.ProviderGemini:
		return NewGeminiClient(ctx, cfg, httpClient, logger)
	default:
		return nil, fmt.Errorf("unknown or unsupported AI provider configured: '%s'. Supported: %v", cfg.Type, config.Providers)
	}
}
