package server

import (
	"github.com/mohammad-safakhou/chatfusion/config"
	"github.com/mohammad-safakhou/chatfusion/internal/store"
)

// HTTPError is the generic error envelope returned by the server.
type HTTPError struct {
	Error string `json:"error"`
}

// UpstreamError is returned when scraping, completion or storage fails.
type UpstreamError struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// RateLimitResponse is the 429 body. RemainingTime is always present.
type RateLimitResponse struct {
	Message       string `json:"message"`
	RemainingTime int64  `json:"remainingTime"`
}

// MessageResponse is returned when the limiter itself fails.
type MessageResponse struct {
	Message string `json:"message"`
}

// ChatRequest is the POST /api/chat payload. Format overrides the
// configured formatting pass; ChatID appends the exchange to a stored chat.
type ChatRequest struct {
	Query  string `json:"query"`
	Model  string `json:"model,omitempty"`
	Format *bool  `json:"format,omitempty"`
	ChatID string `json:"chat_id,omitempty"`
}

type ChatResponse struct {
	Data      string `json:"data"`
	Model     string `json:"model,omitempty"`
	SourceURL string `json:"source_url,omitempty"`
	ChatID    string `json:"chat_id,omitempty"`
}

type MessagesResponse struct {
	Messages []store.Message `json:"messages"`
}

type ChatsResponse struct {
	Chats []store.ChatHistory `json:"chats"`
}

type CreateChatRequest struct {
	Title    string          `json:"title"`
	Messages []store.Message `json:"messages"`
}

// IDResponse is a generic id response wrapper.
type IDResponse struct {
	ID string `json:"id"`
}

type ModelsResponse struct {
	Models  []config.Model `json:"models"`
	Default string         `json:"default"`
}
