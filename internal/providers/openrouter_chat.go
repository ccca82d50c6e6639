package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Chat sends a chat completion request.
func (c *OpenRouterClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	start := time.Now()

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	orReq := openRouterRequest{
		Model:       model,
		Messages:    make([]openRouterMessage, 0, len(req.Messages)),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	for _, m := range req.Messages {
		orMsg := openRouterMessage{Role: m.Role, Content: m.Content}
		if len(m.Images) > 0 {
			content := []openRouterContent{{Type: "text", Text: m.Content}}
			for _, img := range m.Images {
				content = append(content, openRouterContent{
					Type:     "image_url",
					ImageURL: &openRouterImageURL{URL: img.DataURL()},
				})
			}
			orMsg.Content = content
		}
		orReq.Messages = append(orReq.Messages, orMsg)
	}

	result := &ChatResult{
		RequestID: requestID,
		Provider:  OpenRouterName,
		ModelUsed: model,
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			result.fail("context_cancelled", err, start)
			return result, err
		}
	}

	orResp, attempts, err := c.doRequest(ctx, "/chat/completions", &orReq)
	result.Attempts = attempts
	if err != nil {
		errType := "http_error"
		if errors.Is(err, ErrQuotaExceeded) {
			errType = "quota_exceeded"
		}
		result.fail(errType, err, start)
		return result, err
	}

	if orResp.Error != nil {
		err := fmt.Errorf("OpenRouter API error: %s", orResp.Error.Message)
		result.fail("api_error", err, start)
		return result, err
	}
	if len(orResp.Choices) == 0 {
		err := fmt.Errorf("no choices in response")
		result.fail("empty_response", err, start)
		return result, err
	}

	content := ""
	switch v := orResp.Choices[0].Message.Content.(type) {
	case nil:
	case string:
		content = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			err = fmt.Errorf("failed to marshal content: %w", err)
			result.fail("content_marshal_error", err, start)
			return result, err
		}
		content = string(b)
	}

	result.Success = true
	result.Content = content
	if orResp.Model != "" {
		result.ModelUsed = orResp.Model
	}
	result.PromptTokens = orResp.Usage.PromptTokens
	result.CompletionTokens = orResp.Usage.CompletionTokens
	result.TotalTokens = orResp.Usage.TotalTokens
	result.ExecutionTime = time.Since(start)
	return result, nil
}
