package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/mohammad-safakhou/chatfusion/config"
	openai_provider "github.com/mohammad-safakhou/chatfusion/provider/openai"
)

// Client names a completion backend.
type Client string

const (
	// Groq serves an OpenAI-compatible API; both use the same client.
	Groq   Client = "groq"
	OpenAI Client = "openai"
)

// Role values accepted by completion APIs.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

type Message struct {
	Role    string
	Content string
}

type CompletionRequest struct {
	Model       string
	Messages    []Message
	Temperature float32
	MaxTokens   int
}

// Provider is the interface that all LLM implementations must satisfy.
// Complete returns the first choice's content, or "" when the API
// returned no choices.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// NewProvider builds the completion client described by cfg.
func NewProvider(cfg config.LLMConfig) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch c := clientFor(cfg); c {
	case Groq, OpenAI:
		return &openAIAdapter{c: openai_provider.NewClient(cfg.APIKey, cfg.BaseURL, cfg.Timeout)}, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", c)
	}
}

// clientFor honours llm.provider and otherwise guesses from the base URL.
func clientFor(cfg config.LLMConfig) Client {
	if name := strings.ToLower(strings.TrimSpace(cfg.Provider)); name != "" {
		return Client(name)
	}
	if strings.Contains(cfg.BaseURL, "groq.com") {
		return Groq
	}
	return OpenAI
}

type openAIAdapter struct {
	c *openai_provider.Client
}

func (a *openAIAdapter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	msgs := make([]openai_provider.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, openai_provider.Message{Role: m.Role, Content: m.Content})
	}
	return a.c.Complete(ctx, req.Model, msgs, req.Temperature, req.MaxTokens)
}
