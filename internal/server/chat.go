package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mohammad-safakhou/chatfusion/internal/chat"
	"github.com/mohammad-safakhou/chatfusion/internal/logger"
	"github.com/mohammad-safakhou/chatfusion/internal/store"
)

const (
	msgMissingQuery    = "Missing required parameter: query"
	msgInternal        = "Internal Server Error"
	msgChatNotFound    = "Chat not found"
	msgUnableFetchChat = "Unable to fetch chat"
)

// Answerer is satisfied by *chat.Service.
type Answerer interface {
	Answer(ctx context.Context, req chat.Request) (chat.Answer, error)
}

// ChatStore is the persistence surface used by the handlers.
type ChatStore interface {
	CreateChat(ctx context.Context, title string, msgs []store.Message) (string, error)
	AppendMessages(ctx context.Context, chatID string, msgs []store.Message) error
	GetChat(ctx context.Context, id string) (store.ChatHistory, error)
	ListChats(ctx context.Context) ([]store.ChatHistory, error)
	DeleteChat(ctx context.Context, id string) error
}

type ChatHandler struct {
	Chat  Answerer
	Store ChatStore
	Log   logger.Logger
}

func (h *ChatHandler) Register(g *echo.Group) {
	g.POST("/chat", h.ask)
}

func (h *ChatHandler) ask(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, HTTPError{Error: "Invalid request body"})
	}
	if strings.TrimSpace(req.Query) == "" {
		return c.JSON(http.StatusBadRequest, HTTPError{Error: msgMissingQuery})
	}
	ctx := c.Request().Context()

	if req.ChatID != "" {
		if h.Store == nil {
			return c.JSON(http.StatusNotFound, HTTPError{Error: msgChatNotFound})
		}
		if _, err := h.Store.GetChat(ctx, req.ChatID); err != nil {
			if errors.Is(err, store.ErrChatNotFound) {
				return c.JSON(http.StatusNotFound, HTTPError{Error: msgChatNotFound})
			}
			h.Log.Error("load chat failed", logger.String("chat_id", req.ChatID), logger.Error(err))
			return c.JSON(http.StatusInternalServerError, UpstreamError{Error: msgInternal, Details: err.Error()})
		}
	}

	ans, err := h.Chat.Answer(ctx, chat.Request{Query: req.Query, Model: req.Model, Format: req.Format})
	if err != nil {
		if errors.Is(err, chat.ErrEmptyQuery) {
			return c.JSON(http.StatusBadRequest, HTTPError{Error: msgMissingQuery})
		}
		h.Log.Error("chat request failed", logger.String("model", req.Model), logger.Error(err))
		return c.JSON(http.StatusInternalServerError, UpstreamError{Error: msgInternal, Details: err.Error()})
	}

	if req.ChatID != "" {
		msgs := []store.Message{
			{Role: store.RoleUser, Content: strings.TrimSpace(req.Query)},
			{Role: store.RoleAI, Content: ans.Text},
		}
		if strings.TrimSpace(ans.Text) == "" {
			msgs = msgs[:1]
		}
		if err := h.Store.AppendMessages(ctx, req.ChatID, msgs); err != nil {
			h.Log.Error("append messages failed", logger.String("chat_id", req.ChatID), logger.Error(err))
			return c.JSON(http.StatusInternalServerError, UpstreamError{Error: msgInternal, Details: err.Error()})
		}
	}

	return c.JSON(http.StatusOK, ChatResponse{
		Data:      ans.Text,
		Model:     ans.Model,
		SourceURL: ans.SourceURL,
		ChatID:    req.ChatID,
	})
}
