package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mohammad-safakhou/chatfusion/internal/logger"
	"github.com/mohammad-safakhou/chatfusion/internal/store"
)

const msgUnableFetchChats = "Unable to fetch chats"

// ChatsHandler serves stored transcripts.
type ChatsHandler struct {
	Store ChatStore
	Log   logger.Logger
}

func (h *ChatsHandler) Register(g *echo.Group) {
	g.GET("/chat/:id", h.get)
	g.DELETE("/chat/:id", h.delete)
	g.GET("/chats", h.list)
	g.POST("/chats", h.create)
}

func (h *ChatsHandler) get(c echo.Context) error {
	id := c.Param("id")
	chat, err := h.Store.GetChat(c.Request().Context(), id)
	if errors.Is(err, store.ErrChatNotFound) {
		return c.JSON(http.StatusNotFound, HTTPError{Error: msgChatNotFound})
	}
	if err != nil {
		h.Log.Error("get chat failed", logger.String("chat_id", id), logger.Error(err))
		return c.JSON(http.StatusInternalServerError, HTTPError{Error: msgUnableFetchChat})
	}
	return c.JSON(http.StatusOK, MessagesResponse{Messages: chat.Messages})
}

func (h *ChatsHandler) list(c echo.Context) error {
	chats, err := h.Store.ListChats(c.Request().Context())
	if err != nil {
		h.Log.Error("list chats failed", logger.Error(err))
		return c.JSON(http.StatusInternalServerError, HTTPError{Error: msgUnableFetchChats})
	}
	return c.JSON(http.StatusOK, ChatsResponse{Chats: chats})
}

func (h *ChatsHandler) create(c echo.Context) error {
	var req CreateChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := store.ValidateMessages(req.Messages); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	id, err := h.Store.CreateChat(c.Request().Context(), req.Title, req.Messages)
	if err != nil {
		h.Log.Error("create chat failed", logger.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Unable to save chat")
	}
	return c.JSON(http.StatusCreated, IDResponse{ID: id})
}

func (h *ChatsHandler) delete(c echo.Context) error {
	id := c.Param("id")
	err := h.Store.DeleteChat(c.Request().Context(), id)
	if errors.Is(err, store.ErrChatNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, msgChatNotFound)
	}
	if err != nil {
		h.Log.Error("delete chat failed", logger.String("chat_id", id), logger.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Unable to delete chat")
	}
	return c.NoContent(http.StatusNoContent)
}
