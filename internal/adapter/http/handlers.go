package http

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Check pings one dependency; a nil error means ready.
type Check func(ctx context.Context) error

type Handler struct{ checks map[string]Check }

func NewHandler() *Handler { return &Handler{checks: map[string]Check{}} }

// WithCheck registers a dependency check reported by Health.
func (h *Handler) WithCheck(name string, c Check) *Handler {
	h.checks[name] = c
	return h
}

func (h *Handler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status, code := "ok", http.StatusOK
	deps := make(map[string]string, len(names))
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			zap.L().Warn("health check failed", zap.String("dependency", name), zap.Error(err))
			deps[name] = "down"
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	body := map[string]any{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	}
	if len(deps) > 0 {
		body["dependencies"] = deps
	}
	return c.JSON(code, body)
}
