package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func openRouterOK(w http.ResponseWriter, content string) {
	resp := map[string]any{
		"id":    "test-id",
		"model": "google/gemini-2.5-flash",
		"choices": []map[string]any{
			{
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 8, "total_tokens": 18},
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func TestOpenRouterClient_Chat(t *testing.T) {
	t.Run("successful chat", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/chat/completions" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			if r.Method != http.MethodPost {
				t.Errorf("unexpected method: %s", r.Method)
			}
			if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
				t.Errorf("unexpected authorization: %s", auth)
			}
			openRouterOK(w, `{"conditions": []}`)
		}))
		defer server.Close()

		client := NewOpenRouterClient(OpenRouterConfig{APIKey: "test-key", BaseURL: server.URL})

		result, err := client.Chat(context.Background(), &ChatRequest{
			Messages: []Message{User("Hello")},
		})
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if !result.Success {
			t.Error("expected Success = true")
		}
		if result.Content != `{"conditions": []}` {
			t.Errorf("Content = %q", result.Content)
		}
		if result.TotalTokens != 18 {
			t.Errorf("TotalTokens = %d, want 18", result.TotalTokens)
		}
		if result.Attempts != 1 {
			t.Errorf("Attempts = %d, want 1", result.Attempts)
		}
	})

	t.Run("vision message with images", func(t *testing.T) {
		var received openRouterRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var raw struct {
				Messages []struct {
					Role    string              `json:"role"`
					Content []openRouterContent `json:"content"`
				} `json:"messages"`
				Temperature float64 `json:"temperature"`
			}
			json.NewDecoder(r.Body).Decode(&raw)
			received.Temperature = raw.Temperature
			for _, m := range raw.Messages {
				received.Messages = append(received.Messages, openRouterMessage{Role: m.Role, Content: m.Content})
			}
			openRouterOK(w, "I see tomatoes")
		}))
		defer server.Close()

		client := NewOpenRouterClient(OpenRouterConfig{APIKey: "test-key", BaseURL: server.URL})
		_, err := client.Chat(context.Background(), &ChatRequest{
			Messages:    []Message{User("What's in this image?", Image{MIMEType: "image/png", Data: []byte("img")})},
			Temperature: 0.7,
		})
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}

		if len(received.Messages) != 1 {
			t.Fatalf("received %d messages", len(received.Messages))
		}
		parts := received.Messages[0].Content.([]openRouterContent)
		if len(parts) != 2 || parts[0].Type != "text" || parts[1].Type != "image_url" {
			t.Fatalf("parts = %+v", parts)
		}
		if !strings.HasPrefix(parts[1].ImageURL.URL, "data:image/png;base64,") {
			t.Errorf("image url = %q", parts[1].ImageURL.URL)
		}
		if received.Temperature != 0.7 {
			t.Errorf("temperature = %v", received.Temperature)
		}
	})

	t.Run("retries server errors with nonce on 422", func(t *testing.T) {
		var calls atomic.Int32
		var lastBody string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req openRouterRequest
			json.NewDecoder(r.Body).Decode(&req)
			lastBody, _ = req.Messages[0].Content.(string)
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusUnprocessableEntity)
				return
			}
			openRouterOK(w, "ok")
		}))
		defer server.Close()

		client := NewOpenRouterClient(OpenRouterConfig{APIKey: "k", BaseURL: server.URL, RetryDelay: time.Millisecond})
		result, err := client.Chat(context.Background(), &ChatRequest{Messages: []Message{User("report")}})
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if result.Attempts != 2 {
			t.Errorf("Attempts = %d, want 2", result.Attempts)
		}
		if !strings.Contains(lastBody, "retry_1_id") {
			t.Errorf("retry body missing nonce: %q", lastBody)
		}
	})

	t.Run("persistent 429 is quota exceeded", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":{"message":"rate limited"}}`))
		}))
		defer server.Close()

		client := NewOpenRouterClient(OpenRouterConfig{APIKey: "k", BaseURL: server.URL, MaxRetries: 2, RetryDelay: time.Millisecond})
		result, err := client.Chat(context.Background(), &ChatRequest{Messages: []Message{User("x")}})
		if !errors.Is(err, ErrQuotaExceeded) {
			t.Fatalf("error = %v, want quota exceeded", err)
		}
		if result.ErrorType != "quota_exceeded" {
			t.Errorf("ErrorType = %q", result.ErrorType)
		}
		if calls.Load() != 2 {
			t.Errorf("calls = %d, want 2", calls.Load())
		}
	})

	t.Run("rate limiter consumes a token and records 429", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := NewOpenRouterClient(OpenRouterConfig{APIKey: "k", BaseURL: server.URL, MaxRetries: 1, RetryDelay: time.Millisecond, RateLimit: 60})
		if client.Limiter() == nil {
			t.Fatal("expected rate limiter for RateLimit > 0")
		}
		if _, err := client.Chat(context.Background(), &ChatRequest{Messages: []Message{User("x")}}); !errors.Is(err, ErrQuotaExceeded) {
			t.Fatalf("error = %v, want quota exceeded", err)
		}
		status := client.Limiter().Status()
		if status.TotalConsumed != 1 {
			t.Errorf("TotalConsumed = %d, want 1", status.TotalConsumed)
		}
		if status.Last429.IsZero() {
			t.Error("Last429 not recorded")
		}
	})

	t.Run("non-retryable error", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		client := NewOpenRouterClient(OpenRouterConfig{APIKey: "bad", BaseURL: server.URL})
		if _, err := client.Chat(context.Background(), &ChatRequest{Messages: []Message{User("x")}}); err == nil {
			t.Fatal("expected error")
		}
		if calls.Load() != 1 {
			t.Errorf("calls = %d, want 1", calls.Load())
		}
	})

	t.Run("empty choices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"x","choices":[]}`))
		}))
		defer server.Close()

		client := NewOpenRouterClient(OpenRouterConfig{APIKey: "k", BaseURL: server.URL})
		result, err := client.Chat(context.Background(), &ChatRequest{Messages: []Message{User("x")}})
		if err == nil || result.ErrorType != "empty_response" {
			t.Errorf("err = %v, ErrorType = %q", err, result.ErrorType)
		}
	})
}
