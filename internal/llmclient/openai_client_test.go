package llmclient

import (
	"context"
	"net/http"
	"testing"

	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sujikathir/test-gen/internal/config"
)

func newTestOpenAIClient(t *testing.T, endpoint string, mutate func(*config.AIProviderConfig)) *OpenAIClient {
	t.Helper()
	logger, _ := setupTestLogger(t)
	cfg := validProviderConfig(config.ProviderOpenAI)
	cfg.Endpoint = endpoint
	if mutate != nil {
		mutate(&cfg)
	}
	return NewOpenAIClient(cfg, &http.Client{Timeout: cfg.Timeout()}, logger)
}

func TestOpenAIClient_Generate_Success(t *testing.T) {
	reply := `{"choices":[{"message":{"role":"assistant","content":` +
		jsonString(t, fencedReply("package com.acme.generated;\n\nclass FooTest {}")) +
		`},"finish_reason":"stop"}],"usage":{"prompt_tokens":10,"completion_tokens":20,"total_tokens":30}}`
	server := newRecordingServer(t, http.StatusOK, reply)
	client := newTestOpenAIClient(t, server.URL, nil)

	code, err := client.Generate(context.Background(), "write a test")
	require.NoError(t, err)
	assert.Equal(t, "package com.acme.generated;\n\nclass FooTest {}", code)
	assert.EqualValues(t, 1, server.calls.Load())

	req := server.lastReq.Load()
	require.NotNil(t, req)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "Bearer test-api-key", req.Header.Get("Authorization"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

	var sent openAIRequest
	require.NoError(t, json.Unmarshal(server.body(), &sent))
	assert.Equal(t, "gpt-4", sent.Model)
	assert.InDelta(t, 0.7, sent.Temperature, 1e-9)
	assert.Equal(t, 4000, sent.MaxTokens)
	require.Len(t, sent.Messages, 1)
	assert.Equal(t, openAIMessage{Role: "user", Content: "write a test"}, sent.Messages[0])
}

func TestOpenAIClient_Generate_UnfencedReplyReturnedAsIs(t *testing.T) {
	server := newRecordingServer(t, http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"class BareTest {}"}}]}`)
	client := newTestOpenAIClient(t, server.URL, nil)

	code, err := client.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "class BareTest {}", code)
}

func TestOpenAIClient_Generate_ServerError(t *testing.T) {
	server := newRecordingServer(t, http.StatusInternalServerError, `{"error":"overloaded"}`)
	client := newTestOpenAIClient(t, server.URL, nil)

	_, err := client.Generate(context.Background(), "p")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "openai", apiErr.Provider)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "overloaded")
}

func TestOpenAIClient_Generate_MissingKeySendsNothing(t *testing.T) {
	for name, key := range map[string]string{
		"blank":       "",
		"whitespace":  "   ",
		"placeholder": config.PlaceholderAPIKey,
	} {
		t.Run(name, func(t *testing.T) {
			server := newRecordingServer(t, http.StatusOK, `{}`)
			client := newTestOpenAIClient(t, server.URL, func(c *config.AIProviderConfig) { c.APIKey = key })

			_, err := client.Generate(context.Background(), "p")
			assert.ErrorIs(t, err, ErrAuthMissing)
			assert.Zero(t, server.calls.Load(), "no request may be sent without a key")
		})
	}
}

func TestOpenAIClient_Generate_NoChoices(t *testing.T) {
	server := newRecordingServer(t, http.StatusOK, `{"choices":[]}`)
	client := newTestOpenAIClient(t, server.URL, nil)

	_, err := client.Generate(context.Background(), "p")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestOpenAIClient_Generate_MalformedBody(t *testing.T) {
	server := newRecordingServer(t, http.StatusOK, `{"choices":`)
	client := newTestOpenAIClient(t, server.URL, nil)

	_, err := client.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode response payload")
}

func TestOpenAIClient_Generate_ContextCancelled(t *testing.T) {
	server := newRecordingServer(t, http.StatusOK, `{}`)
	client := newTestOpenAIClient(t, server.URL, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Generate(ctx, "p")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOpenAIClient_CustomModel(t *testing.T) {
	client := newTestOpenAIClient(t, "", func(c *config.AIProviderConfig) { c.Model = "gpt-4o" })
	assert.Equal(t, "openai:gpt-4o", client.Name())
	assert.Equal(t, DefaultOpenAIEndpoint, client.endpoint)
}

func jsonString(t *testing.T, s string) string {
	t.Helper()
	data, err := json.Marshal(s)
	require.NoError(t, err)
	return string(data)
}
