// internal/llmclient/client.go
package llmclient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sujikathir/test-gen/internal/llmutil"
)

// Client turns a prompt into generated test source.
// Any error means the caller should skip the gap; clients never retry.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

const (
	// Shared generation parameters.
	temperature = 0.7
	maxTokens   = 4000

	maxLoggedBody = 2048
)

var (
	// ErrAuthMissing is returned without any network call when the credentials are blank.
	ErrAuthMissing = errors.New("backend credentials are not configured")
	// ErrEmptyResponse is returned when a successful response carries no usable text.
	ErrEmptyResponse = errors.New("backend returned no usable content")
)

// APIError is a non-200 answer from a backend.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error: status %d, body: %s", e.Provider, e.StatusCode, llmutil.Truncate(e.Body, maxLoggedBody))
}

// extractTest pulls the code block out of a model reply.
func extractTest(content string) (string, error) {
	code := llmutil.ExtractCode(content)
	if strings.TrimSpace(code) == "" {
		return "", ErrEmptyResponse
	}
	return code, nil
}
