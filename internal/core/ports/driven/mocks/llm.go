package mocks

import (
	"context"
	"sync"
	"time"
)

// MockLLMProvider is a mock implementation of LLMProvider for testing
type MockLLMProvider struct {
	mu       sync.Mutex
	model    string
	response string
	failNext bool
	delay    time.Duration
	calls    int
	prompts  []string
}

// NewMockLLMProvider creates a new MockLLMProvider
func NewMockLLMProvider() *MockLLMProvider {
	return &MockLLMProvider{
		model:    "mock-llm-model",
		response: "This is a mock answer grounded in the provided context.",
	}
}

func (m *MockLLMProvider) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.calls++
	m.prompts = append(m.prompts, prompt)
	fail := m.failNext
	m.failNext = false
	delay := m.delay
	response := m.response
	m.mu.Unlock()

	if fail {
		return "", ErrSimulated
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return response, nil
}

func (m *MockLLMProvider) Model() string {
	return m.model
}

func (m *MockLLMProvider) HealthCheck(ctx context.Context) error {
	return nil
}

func (m *MockLLMProvider) Close() error {
	return nil
}

// Helper methods for testing

func (m *MockLLMProvider) SetResponse(response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.response = response
}

func (m *MockLLMProvider) SetFailNext(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = fail
}

func (m *MockLLMProvider) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

func (m *MockLLMProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Prompts returns a copy of every prompt seen so far.
func (m *MockLLMProvider) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}
