package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

type healthBody struct {
	Status       string            `json:"status"`
	Time         string            `json:"time"`
	Dependencies map[string]string `json:"dependencies"`
}

func callHealth(t *testing.T, h *Handler) (*httptest.ResponseRecorder, healthBody) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	if err := h.Health(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var body healthBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v; raw=%s", err, rec.Body.String())
	}
	return rec, body
}

func TestHealth_NoChecks(t *testing.T) {
	start := time.Now().UTC()
	rec, body := callHealth(t, NewHandler())

	if rec.Code != http.StatusOK || body.Status != "ok" {
		t.Fatalf("want 200/ok, got %d/%q", rec.Code, body.Status)
	}
	if body.Dependencies != nil {
		t.Fatalf("no dependencies registered, got %v", body.Dependencies)
	}
	parsed, err := time.Parse(time.RFC3339Nano, body.Time)
	if err != nil {
		t.Fatalf("time not RFC3339Nano: %v (value=%q)", err, body.Time)
	}
	if parsed.Location() != time.UTC || parsed.Before(start.Add(-2*time.Second)) {
		t.Fatalf("unexpected time %v", parsed)
	}
}

func TestHealth_AllDependenciesUp(t *testing.T) {
	up := func(context.Context) error { return nil }
	rec, body := callHealth(t, NewHandler().WithCheck("mysql", up).WithCheck("redis", up))

	if rec.Code != http.StatusOK || body.Status != "ok" {
		t.Fatalf("want 200/ok, got %d/%q", rec.Code, body.Status)
	}
	if body.Dependencies["mysql"] != "ok" || body.Dependencies["redis"] != "ok" {
		t.Fatalf("unexpected dependencies: %v", body.Dependencies)
	}
}

func TestHealth_ReportsFailingDependency(t *testing.T) {
	h := NewHandler().
		WithCheck("mysql", func(context.Context) error { return nil }).
		WithCheck("redis", func(context.Context) error { return errors.New("connection refused") })
	rec, body := callHealth(t, h)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if body.Status != "degraded" || body.Dependencies["redis"] != "down" || body.Dependencies["mysql"] != "ok" {
		t.Fatalf("unexpected body: %+v", body)
	}
}
