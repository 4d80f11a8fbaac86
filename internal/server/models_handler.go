package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mohammad-safakhou/chatfusion/config"
)

// ModelsHandler lists the selectable completion models.
type ModelsHandler struct {
	Default string
}

func (h *ModelsHandler) Register(g *echo.Group) {
	g.GET("/models", h.list)
}

func (h *ModelsHandler) list(c echo.Context) error {
	def := h.Default
	if def == "" {
		def = config.DefaultModel
	}
	return c.JSON(http.StatusOK, ModelsResponse{Models: config.ValidModels, Default: def})
}
