package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"

	"kitchen-display/internal/common/logger"
	"kitchen-display/internal/domain"
	"kitchen-display/internal/microservices/board/service"
)

const (
	commandTimeout = 2 * time.Second
	keepAlive      = 15 * time.Second
)

type Board interface {
	Latest() *domain.Board
	Subscribe() (<-chan *domain.Board, func())
	Command(ctx context.Context, cmd domain.Command) error
}

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

type BoardHandler struct {
	board  Board
	checks map[string]HealthCheck
	lg     *logger.Logger
}

func NewBoardHandler(board Board, checks map[string]HealthCheck, lg *logger.Logger) *BoardHandler {
	return &BoardHandler{board: board, checks: checks, lg: lg}
}

func (h *BoardHandler) Health(c echo.Context) error {
	deps := make(map[string]string, len(h.checks))
	code := http.StatusOK
	for name, check := range h.checks {
		if err := check(c.Request().Context()); err != nil {
			deps[name] = err.Error()
			code = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}
	status := "ok"
	if code != http.StatusOK {
		status = "degraded"
	}
	return c.JSON(code, map[string]any{"status": status, "dependencies": deps})
}

func (h *BoardHandler) GetBoard(c echo.Context) error {
	return c.JSON(http.StatusOK, h.board.Latest())
}

// PostCommand is the entry point for hardware button boxes.
func (h *BoardHandler) PostCommand(c echo.Context) error {
	cmd, ok := domain.ParseCommand(c.Param("command"))
	if !ok {
		return writeProblem(c, http.StatusNotFound, "unknown_command", "no such command: "+c.Param("command"))
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), commandTimeout)
	defer cancel()

	err := h.board.Command(ctx, cmd)
	switch {
	case err == nil:
		h.lg.Debug("command_accepted", map[string]any{"command": cmd, "remote": c.RealIP()})
		return c.JSON(http.StatusAccepted, map[string]any{"command": cmd})
	case errors.Is(err, service.ErrClosed):
		return writeProblem(c, http.StatusServiceUnavailable, "board_stopped", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return writeProblem(c, http.StatusGatewayTimeout, "board_busy", "command was not handled in time")
	default:
		h.lg.Error("command_failed", err, map[string]any{"command": cmd})
		return writeProblem(c, http.StatusInternalServerError, "command_failed", err.Error())
	}
}

// Stream sends the board as a server-sent event on every change.
func (h *BoardHandler) Stream(c echo.Context) error {
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.Header().Set("X-Accel-Buffering", "no")
	flusher, ok := res.Writer.(http.Flusher)
	if !ok {
		return writeProblem(c, http.StatusInternalServerError, "stream_unsupported", "response writer cannot flush")
	}
	res.WriteHeader(http.StatusOK)
	flusher.Flush()

	boards, cancel := h.board.Subscribe()
	defer cancel()
	ping := time.NewTicker(keepAlive)
	defer ping.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ping.C:
			if _, err := res.Write([]byte(": ping\n\n")); err != nil {
				return nil
			}
			flusher.Flush()
		case b, ok := <-boards:
			if !ok {
				return nil
			}
			data, err := sonic.Marshal(b)
			if err != nil {
				h.lg.Error("stream_encode_failed", err, nil)
				return err
			}
			if _, err := res.Write(append(append([]byte("data: "), data...), '\n', '\n')); err != nil {
				return nil
			}
			flusher.Flush()
		}
	}
}

// writeProblem writes a simplified RFC 7807 problem document.
func writeProblem(c echo.Context, code int, typ, detail string) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/problem+json")
	c.Response().WriteHeader(code)
	return sonic.ConfigDefault.NewEncoder(c.Response()).Encode(map[string]any{
		"type":   typ,
		"title":  http.StatusText(code),
		"status": code,
		"detail": detail,
	})
}
