package providers

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const MockClientName = "mock"

// MockClient is an LLMClient for tests and offline development.
type MockClient struct {
	// Responses are returned in order; the last one repeats once exhausted.
	// ResponseText is used when Responses is empty.
	Responses    []string
	ResponseText string

	Latency    time.Duration
	ShouldFail bool
	FailAfter  int   // Fail after N requests (0 = never)
	Err        error // Returned instead of a generic failure when set

	mu       sync.Mutex
	requests []*ChatRequest
}

// NewMockClient creates a mock client with sensible defaults.
func NewMockClient(responses ...string) *MockClient {
	return &MockClient{
		Responses:    responses,
		ResponseText: "mock response",
	}
}

// Name returns the client identifier.
func (c *MockClient) Name() string {
	return MockClientName
}

// Chat records req and returns the next configured response.
func (c *MockClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()

	c.mu.Lock()
	c.requests = append(c.requests, req)
	count := len(c.requests)
	content := c.ResponseText
	if len(c.Responses) > 0 {
		idx := count - 1
		if idx >= len(c.Responses) {
			idx = len(c.Responses) - 1
		}
		content = c.Responses[idx]
	}
	c.mu.Unlock()

	result := &ChatResult{
		RequestID: fmt.Sprintf("mock-%d", count),
		Provider:  MockClientName,
		ModelUsed: req.Model,
		Attempts:  1,
	}
	if result.ModelUsed == "" {
		result.ModelUsed = "mock-model"
	}

	switch {
	case c.Err != nil:
		result.fail("mock_failure", c.Err, start)
		return result, c.Err
	case c.ShouldFail:
		err := fmt.Errorf("mock client configured to fail")
		result.fail("mock_failure", err, start)
		return result, err
	case c.FailAfter > 0 && count > c.FailAfter:
		err := fmt.Errorf("mock client failed after %d requests", c.FailAfter)
		result.fail("mock_failure", err, start)
		return result, err
	}

	if c.Latency > 0 {
		select {
		case <-time.After(c.Latency):
		case <-ctx.Done():
			result.fail("context_cancelled", ctx.Err(), start)
			return result, ctx.Err()
		}
	}

	promptTokens := 0
	for _, m := range req.Messages {
		promptTokens += len(m.Content) / 4
	}

	result.Success = true
	result.Content = content
	result.PromptTokens = promptTokens
	result.CompletionTokens = len(content) / 4
	result.TotalTokens = result.PromptTokens + result.CompletionTokens
	result.ExecutionTime = time.Since(start)
	return result, nil
}

// Requests returns the requests received so far.
func (c *MockClient) Requests() []*ChatRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*ChatRequest, len(c.requests))
	copy(out, c.requests)
	return out
}

// RequestCount returns the number of requests made.
func (c *MockClient) RequestCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

// Reset clears recorded requests.
func (c *MockClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = nil
}

var _ LLMClient = (*MockClient)(nil)
