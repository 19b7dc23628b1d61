package llmclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sujikathir/test-gen/internal/config"
)

// setupTestLogger is a helper to create a zap logger for testing with an observer.
func setupTestLogger(t *testing.T) (*zap.Logger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}

// recordingServer counts requests and keeps the last body it received.
type recordingServer struct {
	*httptest.Server
	calls    atomic.Int32
	lastBody atomic.Value
	lastReq  atomic.Pointer[http.Request]
}

func newRecordingServer(t *testing.T, status int, body string) *recordingServer {
	t.Helper()
	rs := &recordingServer{}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.calls.Add(1)
		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		rs.lastBody.Store(data)
		rs.lastReq.Store(r.Clone(context.Background()))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(rs.Close)
	return rs
}

func (rs *recordingServer) body() []byte {
	data, _ := rs.lastBody.Load().([]byte)
	return data
}

// validProviderConfig returns a usable configuration for the given backend.
func validProviderConfig(provider config.Provider) config.AIProviderConfig {
	return config.AIProviderConfig{
		Type:           provider,
		APIKey:         "test-api-key",
		AWSAccessKeyID: "AKIDEXAMPLE",
		AWSSecretKey:   "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY",
		Region:         "us-east-1",
		TimeoutSeconds: 5,
	}
}

// fencedReply wraps Java source the way chat models usually answer.
func fencedReply(code string) string {
	return "Here is the test:\n```java\n" + code + "\n```\nGood luck."
}
