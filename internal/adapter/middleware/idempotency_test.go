package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const (
	testIdemKey = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	testUserID  = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

// helper: new Echo with the middleware and a simple route
func setupEcho(rdb *redis.Client, ttl time.Duration, handler echo.HandlerFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(IdempotencyMiddleware(rdb, ttl))
	e.POST("/loans/:id/investments", handler)
	e.GET("/loans/:id", handler) // for non-mutating bypass test
	return e
}

func mkJSONBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bytes.NewReader(b)
}

func doReq(t *testing.T, e *echo.Echo, method, path string, body io.Reader, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, rdb
}

func validHeaders() map[string]string {
	return map[string]string{
		HeaderIdempotencyKey: testIdemKey,
		HeaderUserID:         testUserID,
	}
}

// simple handler to exercise respRecorder capture & saveFinal
func okCreatedHandler(c echo.Context) error {
	return c.JSON(http.StatusCreated, map[string]any{"ok": true})
}

func Test_BypassOnGET_NoHeadersRequired(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 30*time.Second, func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "get ok"})
	})
	rec := doReq(t, e, http.MethodGet, "/loans/x", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func Test_ValidationFailures(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 30*time.Second, okCreatedHandler)

	cases := []struct {
		name string
		hdr  map[string]string
	}{
		{"missing Idempotency-Key", map[string]string{HeaderUserID: testUserID}},
		{"invalid Idempotency-Key", map[string]string{HeaderIdempotencyKey: "NOT-VALID", HeaderUserID: testUserID}},
		{"missing X-User-Id", map[string]string{HeaderIdempotencyKey: testIdemKey}},
		{"invalid X-User-Id", map[string]string{HeaderIdempotencyKey: testIdemKey, HeaderUserID: "not32hex"}},
		{"invalid X-Request-At", map[string]string{
			HeaderIdempotencyKey: testIdemKey, HeaderUserID: testUserID, HeaderRequestAt: "not-a-time",
		}},
		{"X-Request-At too skewed", map[string]string{
			HeaderIdempotencyKey: testIdemKey, HeaderUserID: testUserID,
			HeaderRequestAt: time.Now().UTC().Add(-maxClockSkew - time.Minute).Format(time.RFC3339),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doReq(t, e, http.MethodPost, "/loans/x/investments", mkJSONBody(t, map[string]int{"x": 1}), tc.hdr)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("%s => want 400, got %d", tc.name, rec.Code)
			}
		})
	}
	if keys := mr.Keys(); len(keys) != 0 {
		t.Fatalf("rejected requests must not touch redis, found %v", keys)
	}
}

func Test_HappyPath_Then_Replay(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	calls := 0
	e := setupEcho(rdb, 2*time.Minute, func(c echo.Context) error {
		calls++
		return okCreatedHandler(c)
	})

	h := validHeaders()
	h[HeaderRequestAt] = time.Now().UTC().Format(time.RFC3339)

	// First request -> goes through handler (201, {"ok":true})
	rec1 := doReq(t, e, http.MethodPost, "/loans/x/investments", mkJSONBody(t, map[string]any{"amount": "4000"}), h)
	if rec1.Code != http.StatusCreated {
		t.Fatalf("first request => want 201, got %d, body: %s", rec1.Code, rec1.Body.String())
	}

	// Second request with SAME headers & body -> replay stored response (also 201)
	rec2 := doReq(t, e, http.MethodPost, "/loans/x/investments", mkJSONBody(t, map[string]any{"amount": "4000"}), h)
	if rec2.Code != http.StatusCreated {
		t.Fatalf("replay => want 201, got %d, body: %s", rec2.Code, rec2.Body.String())
	}
	if rec1.Body.String() != rec2.Body.String() {
		t.Fatalf("replay body mismatch: %q vs %q", rec1.Body.String(), rec2.Body.String())
	}
	if rec2.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatalf("replay must be flagged")
	}
	if calls != 1 {
		t.Fatalf("handler must run once, ran %d times", calls)
	}
}

func Test_KeyScopedPerUser(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	calls := 0
	e := setupEcho(rdb, time.Minute, func(c echo.Context) error {
		calls++
		return okCreatedHandler(c)
	})

	h := validHeaders()
	doReq(t, e, http.MethodPost, "/loans/x/investments", bytes.NewReader([]byte(`{}`)), h)
	h[HeaderUserID] = "cccccccccccccccccccccccccccccccc"
	doReq(t, e, http.MethodPost, "/loans/x/investments", bytes.NewReader([]byte(`{}`)), h)
	if calls != 2 {
		t.Fatalf("same key from two users must run twice, ran %d", calls)
	}
}

func Test_ServerError_ReleasesKey(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	fail := true
	e := setupEcho(rdb, time.Minute, func(c echo.Context) error {
		if fail {
			return errors.New("boom")
		}
		return okCreatedHandler(c)
	})

	rec := doReq(t, e, http.MethodPost, "/loans/x/investments", bytes.NewReader([]byte(`{}`)), validHeaders())
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("want 500, got %d", rec.Code)
	}
	if keys := mr.Keys(); len(keys) != 0 {
		t.Fatalf("5xx must release the key, found %v", keys)
	}

	fail = false
	rec = doReq(t, e, http.MethodPost, "/loans/x/investments", bytes.NewReader([]byte(`{}`)), validHeaders())
	if rec.Code != http.StatusCreated {
		t.Fatalf("retry after 5xx => want 201, got %d", rec.Code)
	}
}

func Test_ClientError_IsReplayed(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	calls := 0
	e := setupEcho(rdb, time.Minute, func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "insufficient funds"})
	})

	for i := 0; i < 2; i++ {
		rec := doReq(t, e, http.MethodPost, "/loans/x/investments", bytes.NewReader([]byte(`{}`)), validHeaders())
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("attempt %d => want 422, got %d", i, rec.Code)
		}
	}
	if calls != 1 {
		t.Fatalf("4xx outcome must be replayed, handler ran %d times", calls)
	}
}

func Test_Conflict_When_InProgress(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 2*time.Minute, okCreatedHandler)

	method := http.MethodPost
	body := []byte(`{"x":1}`)

	// Seed provisional "in-progress" entry (so SetNX will fail and loadEntry sees InProgress=true)
	key := buildKey(method, "/loans/:id/investments", testUserID, testIdemKey)
	entry := idempEntry{
		InProgress: true,
		BodySHA256: bodyHash(body),
		Key:        testIdemKey,
		CreatedAt:  time.Now().UTC(),
	}
	if ok, err := provisionalSet(context.Background(), rdb, key, entry); err != nil || !ok {
		t.Fatalf("seed provisional failed, ok=%v err=%v", ok, err)
	}

	rec := doReq(t, e, method, "/loans/x/investments", bytes.NewReader(body), validHeaders())
	if rec.Code != http.StatusConflict {
		t.Fatalf("in-progress => want 409, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func Test_Rejects_SameKey_DifferentBody(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 2*time.Minute, okCreatedHandler)

	method := http.MethodPost
	body1 := []byte(`{"x":1}`)
	body2 := []byte(`{"x":2}`)

	key := buildKey(method, "/loans/:id/investments", testUserID, testIdemKey)
	final := idempEntry{
		Code:       http.StatusCreated,
		Body:       []byte(`{"ok":true}`),
		BodySHA256: bodyHash(body1),
		Key:        testIdemKey,
		CreatedAt:  time.Now().UTC(),
	}
	if err := saveFinal(context.Background(), rdb, key, final, time.Minute*5); err != nil {
		t.Fatalf("seed final failed: %v", err)
	}

	rec := doReq(t, e, method, "/loans/x/investments", bytes.NewReader(body2), validHeaders())
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("different body same key => want 422, got %d", rec.Code)
	}
}

func Test_StoreUnavailable_Returns503(t *testing.T) {
	// Create a client that points to a closed address → SetNX error
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	e := setupEcho(rdb, time.Minute, okCreatedHandler)

	rec := doReq(t, e, http.MethodPost, "/loans/x/investments", bytes.NewReader([]byte(`{}`)), validHeaders())
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("store unavailable => want 503, got %d", rec.Code)
	}
}
