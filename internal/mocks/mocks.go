// File: internal/mocks/mocks.go
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sujikathir/test-gen/internal/coverage"
)

// -- LLM Client Mock --

// MockClient mocks the llmclient.Client interface.
type MockClient struct {
	mock.Mock
}

// Generate provides a mock function for backend calls.
func (m *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockClient) Name() string {
	args := m.Called()
	return args.String(0)
}

// -- Pipeline Mocks --

// MockAnalyzer mocks the coverage analysis stage.
type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) Analyze(ctx context.Context, opts coverage.Options) (coverage.GapsByClass, error) {
	args := m.Called(ctx, opts)
	var gaps coverage.GapsByClass
	if g := args.Get(0); g != nil {
		gaps = g.(coverage.GapsByClass)
	}
	return gaps, args.Error(1)
}

// MockSourceFinder mocks source lookup.
type MockSourceFinder struct {
	mock.Mock
}

func (m *MockSourceFinder) FindSource(className string) string {
	return m.Called(className).String(0)
}

// MockTestWriter mocks artifact persistence.
type MockTestWriter struct {
	mock.Mock
}

func (m *MockTestWriter) Save(className, methodName, testSource string) (string, error) {
	args := m.Called(className, methodName, testSource)
	return args.String(0), args.Error(1)
}

// MockPacer mocks the rate limiter between backend calls.
type MockPacer struct {
	mock.Mock
}

func (m *MockPacer) Wait(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
