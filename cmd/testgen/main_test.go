// File: cmd/testgen/main_test.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sujikathir/test-gen/cmd"
)

// resetMocks restores the original function implementations.
func resetMocks() {
	osWriteFile = os.WriteFile
	osExit = os.Exit
	execute = cmd.Execute
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 0, exitCode(context.Canceled))
	assert.Equal(t, 0, exitCode(fmt.Errorf("generation run interrupted: %w", context.Canceled)))
	assert.Equal(t, 1, exitCode(errors.New("config invalid")))
}

func TestHandlePanic(t *testing.T) {
	defer resetMocks()

	t.Run("writes panic log and exits 1", func(t *testing.T) {
		var (
			exitCode    = -1
			writtenPath string
			written     string
		)
		osExit = func(code int) { exitCode = code }
		osWriteFile = func(name string, data []byte, _ os.FileMode) error {
			writtenPath, written = name, string(data)
			return nil
		}

		func() {
			defer handlePanic()
			panic("nil map write")
		}()

		assert.Equal(t, 1, exitCode)
		assert.Equal(t, panicLogFile, writtenPath)
		assert.Contains(t, written, "panic: nil map write")
		assert.Contains(t, written, "goroutine", "the stack trace is recorded")
	})

	t.Run("write failure still exits 1", func(t *testing.T) {
		exitCode := -1
		osExit = func(code int) { exitCode = code }
		osWriteFile = func(string, []byte, os.FileMode) error { return errors.New("read-only") }

		func() {
			defer handlePanic()
			panic("boom")
		}()
		assert.Equal(t, 1, exitCode)
	})

	t.Run("no panic does nothing", func(t *testing.T) {
		called := false
		osExit = func(int) { called = true }

		func() {
			defer handlePanic()
		}()
		assert.False(t, called)
	})
}

func TestMain_UsesExitCodeOfCommand(t *testing.T) {
	defer resetMocks()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"cancelled", context.Canceled, 0},
		{"failure", errors.New("bad config"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := -1
			osExit = func(code int) { got = code }
			execute = func(context.Context) error { return tt.err }

			main()
			require.Equal(t, tt.want, got)
		})
	}
}
