// internal/llmclient/openai_client.go
package llmclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/sujikathir/test-gen/internal/config"
)

// DefaultOpenAIEndpoint is the chat completions URL used when no override is configured.
const DefaultOpenAIEndpoint = "https://api.openai.com/v1/chat/completions"

// OpenAIClient talks to an OpenAI-compatible chat completions API with a bearer token.
type OpenAIClient struct {
	apiKey     string
	hasKey     bool
	model      string
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// -- OpenAI API Request/Response Structures --

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
	Messages    []openAIMessage `json:"messages"`
}

type openAIResponse struct {
	Choices []struct {
		Message      openAIMessage `json:"message"`
		FinishReason string        `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// NewOpenAIClient initializes the client. A missing key is reported by Generate.
func NewOpenAIClient(cfg config.AIProviderConfig, httpClient *http.Client, logger *zap.Logger) *OpenAIClient {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultOpenAIEndpoint
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4"
	}
	return &OpenAIClient{
		apiKey:     cfg.APIKey,
		hasKey:     cfg.HasAPIKey(),
		model:      model,
		endpoint:   endpoint,
		httpClient: httpClient,
		logger:     logger.Named("llm_client.openai"),
	}
}

func (c *OpenAIClient) Name() string { return "openai:" + c.model }

// Generate sends the prompt as a single user message.
func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.hasKey {
		return "", fmt.Errorf("openai: %w (set aiProvider.apiKey or OPENAI_API_KEY)", ErrAuthMissing)
	}

	body, err := json.Marshal(openAIRequest{
		Model:       c.model,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Messages:    []openAIMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.logger.Debug("Sending request to OpenAI API.", zap.String("model", c.model), zap.Int("prompt_bytes", len(prompt)))
	startTime := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to execute HTTP request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{Provider: "openai", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var payload openAIResponse
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return "", fmt.Errorf("failed to decode response payload: %w", err)
	}
	if len(payload.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices in response: %w", ErrEmptyResponse)
	}

	c.logger.Info("LLM generation complete (OpenAI)",
		zap.Duration("duration", time.Since(startTime)),
		zap.Int("prompt_tokens", payload.Usage.PromptTokens),
		zap.Int("completion_tokens", payload.Usage.CompletionTokens),
		zap.String("finish_reason", payload.Choices[0].FinishReason),
	)
	return extractTest(payload.Choices[0].Message.Content)
}
