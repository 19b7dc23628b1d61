// internal/llmclient/bedrock_client.go
package llmclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/sujikathir/test-gen/internal/config"
	"github.com/sujikathir/test-gen/internal/sigv4"
)

const (
	// The runtime host and the signing service name differ.
	bedrockRuntimeService = "bedrock-runtime"
	bedrockSigningService = "bedrock"
	bedrockAPIVersion     = "bedrock-2023-05-31"
	defaultBedrockModel   = "anthropic.claude-3-sonnet-20240229-v1:0"
)

// BedrockClient invokes an Anthropic model on AWS Bedrock with SigV4-signed requests.
type BedrockClient struct {
	creds      AWSCredentials
	region     string
	model      string
	baseURL    *url.URL
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time
}

type bedrockRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int             `json:"max_tokens"`
	Messages         []openAIMessage `json:"messages"`
}

// Bedrock answers either in the legacy completion shape or the messages shape.
type bedrockResponse struct {
	Completion *string `json:"completion"`
	Content    []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// NewBedrockClient initializes the client. Blank configured credentials are
// resolved from the AWS environment and shared credentials file.
func NewBedrockClient(cfg config.AIProviderConfig, httpClient *http.Client, logger *zap.Logger) (*BedrockClient, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	model := cfg.Model
	if model == "" {
		model = defaultBedrockModel
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.%s.amazonaws.com", bedrockRuntimeService, region)
	}
	baseURL, err := url.Parse(endpoint)
	if err != nil || baseURL.Host == "" {
		return nil, fmt.Errorf("invalid bedrock endpoint %q", endpoint)
	}

	logger = logger.Named("llm_client.bedrock")
	creds := ResolveAWSCredentials(cfg.AWSAccessKeyID, cfg.AWSSecretKey)
	if !creds.Valid() {
		logger.Warn("AWS credentials are not configured; every request will be skipped.")
	}

	return &BedrockClient{
		creds:      creds,
		region:     region,
		model:      model,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
		now:        time.Now,
	}, nil
}

func (c *BedrockClient) Name() string { return "bedrock:" + c.model }

// invokeURI is the canonical URI of the invoke call, used verbatim for signing.
// Model ids such as "...-v1:0" keep their ':' unescaped here. AWS itself
// canonicalises that character as %3A, so live Bedrock rejects signatures over
// ids containing ':' until the path is escaped before signing.
func (c *BedrockClient) invokeURI() string {
	return strings.TrimRight(c.baseURL.Path, "/") + "/model/" + c.model + "/invoke"
}

// Generate signs and sends the prompt as a single user message.
func (c *BedrockClient) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.creds.Valid() {
		return "", fmt.Errorf("bedrock: %w (set aiProvider.awsAccessKeyId/awsSecretKey or AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY)", ErrAuthMissing)
	}

	body, err := json.Marshal(bedrockRequest{
		AnthropicVersion: bedrockAPIVersion,
		MaxTokens:        maxTokens,
		Messages:         []openAIMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	uri := c.invokeURI()
	sig := sigv4.Sign(sigv4.Request{
		Method:      http.MethodPost,
		URI:         uri,
		Host:        c.baseURL.Host,
		Region:      c.region,
		Service:     bedrockSigningService,
		ContentType: "application/json",
		AccessKeyID: c.creds.AccessKeyID,
		SecretKey:   c.creds.SecretAccessKey,
		Payload:     body,
		Time:        c.now(),
	})

	target := c.baseURL.Scheme + "://" + c.baseURL.Host + uri
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Amz-Date", sig.AmzDate)
	httpReq.Header.Set("Authorization", sig.Authorization)

	c.logger.Debug("Sending request to Bedrock API.", zap.String("model", c.model), zap.String("uri", uri))
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
		return "", &APIError{Provider: "bedrock", StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var payload bedrockResponse
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return "", fmt.Errorf("failed to decode response payload: %w", err)
	}

	var content string
	switch {
	case payload.Completion != nil:
		content = *payload.Completion
	case len(payload.Content) > 0:
		content = payload.Content[0].Text
	default:
		return "", fmt.Errorf("bedrock: neither completion nor content in response: %w", ErrEmptyResponse)
	}

	c.logger.Info("LLM generation complete (Bedrock)",
		zap.Duration("duration", time.Since(startTime)),
		zap.String("stop_reason", payload.StopReason),
	)
	return extractTest(content)
}
