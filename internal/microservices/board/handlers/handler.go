package handlers

import (
	"github.com/labstack/echo/v4"

	"kitchen-display/internal/common/logger"
)

type Handler struct {
	BoardHandler *BoardHandler
}

func New(board Board, checks map[string]HealthCheck, lg *logger.Logger) *Handler {
	return &Handler{BoardHandler: NewBoardHandler(board, checks, lg)}
}

// Router registers every endpoint on a fresh echo instance.
func Router(h *Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = sonicSerializer{}

	e.GET("/healthz", h.BoardHandler.Health)
	api := e.Group("/api/v1")
	api.GET("/board", h.BoardHandler.GetBoard)
	api.GET("/board/stream", h.BoardHandler.Stream)
	api.POST("/commands/:command", h.BoardHandler.PostCommand)
	return e
}
