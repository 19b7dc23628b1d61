// File: cmd/helpers_test.go
package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sujikathir/test-gen/internal/config"
	"github.com/sujikathir/test-gen/internal/llmclient"
)

const shopReport = `<?xml version="1.0" encoding="UTF-8"?>
<report name="shop">
  <package name="com/acme">
    <class name="com/acme/Shop" sourcefilename="Shop.java">
      <method name="checkout" desc="(I)Z" line="4">
        <counter type="INSTRUCTION" missed="4" covered="6"/>
      </method>
      <method name="cancel" desc="()V" line="10">
        <counter type="INSTRUCTION" missed="4" covered="0"/>
      </method>
    </class>
  </package>
</report>`

const shopSource = `package com.acme;

public class Shop {
    public boolean checkout(int items) {
        if (items > 0) {
            return true;
        }
        return false;
    }
    public void cancel() {
        items.clear();
    }
}
`

// setupProject lays out a Maven project with a coverage report at the default
// location and points the working directory lookup at it.
func setupProject(t *testing.T, withReport bool) string {
	t.Helper()
	root := t.TempDir()
	write := func(rel, content string) {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write("pom.xml", "<project/>")
	write("src/main/java/com/acme/Shop.java", shopSource)
	if withReport {
		write("build/reports/jacoco/test/jacocoTestReport.xml", shopReport)
	}

	getwd = func() (string, error) { return root, nil }
	t.Cleanup(func() { getwd = os.Getwd })
	return root
}

// stubClient answers every prompt with a fixed test class.
type stubClient struct {
	mu      sync.Mutex
	prompts []string
}

func (s *stubClient) Generate(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	return "class GeneratedTest {}", nil
}

func (s *stubClient) Name() string { return "stub" }

func useClient(t *testing.T, client llmclient.Client) {
	t.Helper()
	newLLMClient = func(context.Context, config.AIProviderConfig, *zap.Logger) (llmclient.Client, error) {
		return client, nil
	}
	t.Cleanup(func() { newLLMClient = llmclient.NewClient })
}

// executeRoot runs a fresh root command and returns its combined output.
func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	rootCmd := NewRootCommand()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}
