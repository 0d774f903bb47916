package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"p2p-lending-engine/pkg/id"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderUserID         = "X-User-Id"
	HeaderRequestAt      = "X-Request-At"

	// How long we hold the "in-progress" lock before it must be refreshed by finishing the handler.
	provisionalLockTTL = 60 * time.Second
	// Allowed client/server clock skew for X-Request-At (in UTC).
	maxClockSkew = 10 * time.Minute
)

// ---- Data types ----
type idempEntry struct {
	InProgress  bool      `json:"in_progress"`
	Code        int       `json:"code"`
	Body        []byte    `json:"body"`
	BodySHA256  string    `json:"body_sha256"`
	Key         string    `json:"key"`
	RequestAtMS int64     `json:"request_at_ms,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type respRecorder struct {
	w    http.ResponseWriter
	buf  *bytes.Buffer
	code int
}

func (r *respRecorder) Header() http.Header { return r.w.Header() }
func (r *respRecorder) Write(b []byte) (int, error) {
	if r.buf != nil {
		r.buf.Write(b)
	}
	return r.w.Write(b)
}
func (r *respRecorder) WriteHeader(statusCode int) { r.code = statusCode; r.w.WriteHeader(statusCode) }

func reject(c echo.Context, code int, msg string) error {
	return c.JSON(code, map[string]string{"error": msg})
}

// IdempotencyMiddleware: key = method + route + user id + Idempotency-Key.
// A finished response is replayed for the TTL; server errors release the key
// so the client may retry. X-Request-At is optional and, when present, must be
// within the allowed skew.
func IdempotencyMiddleware(rdb redis.Cmdable, ttl time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			method := req.Method

			// Only enforce on mutating methods
			switch method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			idemKey := strings.ToLower(strings.TrimSpace(req.Header.Get(HeaderIdempotencyKey)))
			if idemKey == "" {
				return reject(c, http.StatusBadRequest, "missing Idempotency-Key")
			}
			if !validIdemKey(idemKey) {
				return reject(c, http.StatusBadRequest, "invalid Idempotency-Key format")
			}

			var reqAt time.Time
			if raw := req.Header.Get(HeaderRequestAt); raw != "" {
				at, err := parseRequestAt(raw)
				if err != nil {
					return reject(c, http.StatusBadRequest, err.Error())
				}
				now := nowUTC()
				if at.Before(now.Add(-maxClockSkew)) || at.After(now.Add(maxClockSkew)) {
					return reject(c, http.StatusBadRequest, "X-Request-At too skewed")
				}
				reqAt = at
			}

			userID := strings.TrimSpace(req.Header.Get(HeaderUserID))
			if userID == "" {
				return reject(c, http.StatusBadRequest, "missing X-User-Id")
			}
			if !id.Valid(userID) {
				return reject(c, http.StatusBadRequest, "invalid X-User-Id")
			}

			var body []byte
			if req.Body != nil {
				body, _ = io.ReadAll(req.Body)
			}
			req.Body = io.NopCloser(bytes.NewBuffer(body))
			bhash := bodyHash(body)

			key := buildKey(method, c.Path(), userID, idemKey)
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()

			entry := idempEntry{
				InProgress: true,
				BodySHA256: bhash,
				Key:        idemKey,
				CreatedAt:  nowUTC(),
			}
			if !reqAt.IsZero() {
				entry.RequestAtMS = reqAt.UnixMilli()
			}
			ok, err := provisionalSet(ctx, rdb, key, entry)
			if err != nil {
				zap.L().Error("idempotency store unavailable", zap.String("key", key), zap.Error(err))
				return reject(c, http.StatusServiceUnavailable, "idempotency store unavailable")
			}
			if !ok {
				cur, errLoad := loadEntry(ctx, rdb, key)
				if errLoad != nil {
					zap.L().Warn("idempotency entry unreadable", zap.String("key", key), zap.Error(errLoad))
				}
				if cur.BodySHA256 != "" && cur.BodySHA256 != bhash {
					return reject(c, http.StatusUnprocessableEntity, "Idempotency-Key reused with different body")
				}
				if !cur.InProgress && cur.Code != 0 && len(cur.Body) > 0 {
					c.Response().Header().Set("Idempotent-Replayed", "true")
					return c.Blob(cur.Code, echo.MIMEApplicationJSON, cur.Body)
				}
				return reject(c, http.StatusConflict, "request is already in progress")
			}

			rec := &respRecorder{w: c.Response().Writer, buf: &bytes.Buffer{}, code: http.StatusOK}
			c.Response().Writer = rec
			if err := next(c); err != nil {
				c.Error(err)
			}

			if rec.code >= http.StatusInternalServerError {
				if err := release(context.Background(), rdb, key); err != nil {
					zap.L().Warn("idempotency release failed", zap.String("key", key), zap.Error(err))
				}
				return nil
			}
			entry.InProgress = false
			entry.Code = rec.code
			entry.Body = rec.buf.Bytes()
			entry.CreatedAt = nowUTC()
			if err := saveFinal(context.Background(), rdb, key, entry, ttl); err != nil {
				zap.L().Warn("idempotency save failed", zap.String("key", key), zap.Error(err))
			}
			return nil
		}
	}
}
