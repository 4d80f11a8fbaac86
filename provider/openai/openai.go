package openai_provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Message is a single chat turn sent to the API.
type Message struct {
	Role    string
	Content string
}

// Client talks to any OpenAI-compatible chat completion endpoint.
type Client struct {
	api *openai.Client
}

// NewClient creates a client for baseURL. An empty baseURL keeps the
// library's OpenAI default.
func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: timeout}
	}
	return &Client{api: openai.NewClientWithConfig(cfg)}
}

// Complete sends one chat completion request and returns the first
// choice's message content.
func (c *Client) Complete(ctx context.Context, model string, messages []Message, temperature float32, maxTokens int) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("no messages to send")
	}
	req := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion (%s): %w", model, err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
