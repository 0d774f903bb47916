package http

import (
	"strings"

	"github.com/labstack/echo/v4"

	"p2p-lending-engine/internal/adapter/middleware"
)

// ---- helpers ----

// referenceOr falls back to the request's Idempotency-Key so a retried call
// lands on the same ledger reference.
func referenceOr(c echo.Context, ref string) string {
	if ref = strings.TrimSpace(ref); ref != "" {
		return ref
	}
	return strings.ToLower(strings.TrimSpace(c.Request().Header.Get(middleware.HeaderIdempotencyKey)))
}

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
