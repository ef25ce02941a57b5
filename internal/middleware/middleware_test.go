package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outy-app/outy/internal/config"
	"github.com/outy-app/outy/internal/utils"
)

const testSecret = "test-secret"

func bearer(t *testing.T, role string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(testSecret, "user-1", role, "a@outy.ma", "", time.Hour)
	require.NoError(t, err)
	return "Bearer " + tok.Token
}

func protectedServer(mw ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.GET("/private", func(c echo.Context) error {
		cl := ClaimsFrom(c)
		return c.JSON(http.StatusOK, echo.Map{"id": cl.UserID, "role": c.Get(RoleKey)})
	}, mw...)
	return e
}

func do(e *echo.Echo, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth(t *testing.T) {
	e := protectedServer(JWTAuth(testSecret))

	rec := do(e, http.MethodGet, "/private", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"missing bearer token"}`, rec.Body.String())

	rec = do(e, http.MethodGet, "/private", "Bearer not.a.jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other, err := utils.NewAccessToken("other-secret", "user-1", "user", "a@outy.ma", "", time.Hour)
	require.NoError(t, err)
	rec = do(e, http.MethodGet, "/private", "Bearer "+other.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, http.MethodGet, "/private", bearer(t, "user"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"user-1","role":"user"}`, rec.Body.String())
}

func TestRequireRole(t *testing.T) {
	e := protectedServer(JWTAuth(testSecret), RequireRole("business"))

	rec := do(e, http.MethodGet, "/private", bearer(t, "user"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(e, http.MethodGet, "/private", bearer(t, "business"))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Without JWTAuth in front there is no identity at all.
	bare := protectedServer(RequireRole("business"))
	rec = do(bare, http.MethodGet, "/private", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func cacheConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled: true,
		Methods: map[string]bool{"GET": true},
		TTL:     time.Minute,
		Prefix:  "outy:cache",
	}
}

func TestResponseCacheMissThenStore(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	rc := NewResponseCache(cacheConfig(), rdb)

	e := echo.New()
	e.GET("/api/places", func(c echo.Context) error {
		return c.Blob(http.StatusOK, "text/plain", []byte("places"))
	}, rc.Middleware())

	key := cacheKey("outy:cache", "/api/places", http.MethodGet, "city=Rabat")
	hdr := http.Header{}
	hdr.Set("Content-Type", "text/plain")
	payload, err := encodePayload(http.StatusOK, hdr, []byte("places"))
	require.NoError(t, err)

	mock.ExpectGet(key).RedisNil()
	mock.ExpectSetEx(key, payload, time.Minute).SetVal("OK")

	rec := do(e, http.MethodGet, "/api/places?city=Rabat", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, "places", rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResponseCacheHit(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	rc := NewResponseCache(cacheConfig(), rdb)

	called := false
	e := echo.New()
	e.GET("/api/config", func(c echo.Context) error {
		called = true
		return c.String(http.StatusOK, "fresh")
	}, rc.Middleware())

	hdr := http.Header{}
	hdr.Set("Content-Type", "application/json")
	payload, err := encodePayload(http.StatusOK, hdr, []byte(`{"cities":[]}`))
	require.NoError(t, err)
	mock.ExpectGet(cacheKey("outy:cache", "/api/config", http.MethodGet, "")).SetVal(string(payload))

	rec := do(e, http.MethodGet, "/api/config", "")
	assert.False(t, called)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, `{"cities":[]}`, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

// perRequestHeaders stands in for CORS and request-id middleware that run
// before the cache.
func perRequestHeaders(origin, requestID string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set(echo.HeaderAccessControlAllowOrigin, origin)
			h.Set(echo.HeaderAccessControlAllowCredentials, "true")
			h.Add(echo.HeaderVary, echo.HeaderOrigin)
			h.Set(echo.HeaderXRequestID, requestID)
			return next(c)
		}
	}
}

func TestResponseCacheHitKeepsPerRequestHeaders(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	rc := NewResponseCache(cacheConfig(), rdb)

	e := echo.New()
	e.Use(perRequestHeaders("http://localhost:5173", "req-2"))
	e.GET("/api/events", func(c echo.Context) error { return c.String(http.StatusOK, "fresh") }, rc.Middleware())

	// An entry written with headers owned by other middleware.
	stored := http.Header{}
	stored.Set("Content-Type", "application/json")
	stored.Set(echo.HeaderAccessControlAllowOrigin, "http://localhost:5173")
	stored.Set(echo.HeaderAccessControlAllowCredentials, "true")
	stored.Set(echo.HeaderVary, echo.HeaderOrigin)
	stored.Set(echo.HeaderXRequestID, "req-1")
	payload, err := encodePayload(http.StatusOK, stored, []byte("[]"))
	require.NoError(t, err)
	mock.ExpectGet(cacheKey("outy:cache", "/api/events", http.MethodGet, "")).SetVal(string(payload))

	rec := do(e, http.MethodGet, "/api/events", "")
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, []string{"http://localhost:5173"}, rec.Header().Values(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, []string{"true"}, rec.Header().Values(echo.HeaderAccessControlAllowCredentials))
	assert.Equal(t, []string{echo.HeaderOrigin}, rec.Header().Values(echo.HeaderVary))
	assert.Equal(t, []string{"req-2"}, rec.Header().Values(echo.HeaderXRequestID))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "[]", rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResponseCacheStoresOnlyResponseHeaders(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	rc := NewResponseCache(cacheConfig(), rdb)

	e := echo.New()
	e.Use(perRequestHeaders("http://localhost:5173", "req-1"))
	e.GET("/api/places", func(c echo.Context) error {
		return c.Blob(http.StatusOK, "text/plain", []byte("places"))
	}, rc.Middleware())

	key := cacheKey("outy:cache", "/api/places", http.MethodGet, "")
	hdr := http.Header{}
	hdr.Set("Content-Type", "text/plain")
	payload, err := encodePayload(http.StatusOK, hdr, []byte("places"))
	require.NoError(t, err)
	mock.ExpectGet(key).RedisNil()
	mock.ExpectSetEx(key, payload, time.Minute).SetVal("OK")

	rec := do(e, http.MethodGet, "/api/places", "")
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, "req-1", rec.Header().Get(echo.HeaderXRequestID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResponseCacheBypassedWithoutRedis(t *testing.T) {
	rc := NewResponseCache(cacheConfig(), nil)
	e := echo.New()
	e.GET("/api/places", func(c echo.Context) error { return c.String(http.StatusOK, "ok") }, rc.Middleware())

	rec := do(e, http.MethodGet, "/api/places", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))

	// no client, nothing to do
	rc.Invalidate(httptest.NewRequest(http.MethodGet, "/", nil).Context(), "/api/places")
}

func TestResponseCacheInvalidate(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	rc := NewResponseCache(cacheConfig(), rdb)

	mock.ExpectScan(0, "outy:cache:/api/places:*", 100).SetVal([]string{"outy:cache:/api/places:a", "outy:cache:/api/places:b"}, 7)
	mock.ExpectDel("outy:cache:/api/places:a", "outy:cache:/api/places:b").SetVal(2)
	mock.ExpectScan(7, "outy:cache:/api/places:*", 100).SetVal(nil, 0)

	rc.Invalidate(httptest.NewRequest(http.MethodGet, "/", nil).Context(), "/api/places")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayloadRoundTripRejectsGarbage(t *testing.T) {
	_, _, _, ok := decodePayload([]byte{1, 2})
	assert.False(t, ok)
	_, _, _, ok = decodePayload([]byte(`{"header":{}}`))
	assert.False(t, ok)

	payload, err := encodePayload(http.StatusOK, http.Header{"Content-Type": {"application/json"}}, []byte("[]"))
	require.NoError(t, err)
	status, hdr, body, ok := decodePayload(payload)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", hdr.Get("Content-Type"))
	assert.Equal(t, "[]", string(body))
}

func rateConfig() config.RateLimitConfig {
	return config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Second,
		TTL:            10 * time.Minute,
		KeyStrategy:    "ip",
		Prefix:         "outy:rl",
	}
}

func TestTokenBucketBlocksWhenEmpty(t *testing.T) {
	fixed := time.UnixMilli(1_700_000_000_000)
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = time.Now })

	rdb, mock := redismock.NewClientMock()
	cfg := rateConfig()
	e := echo.New()
	e.GET("/api/places", func(c echo.Context) error { return c.String(http.StatusOK, "ok") }, NewTokenBucket(cfg, rdb))

	key := "outy:rl:ip:192.0.2.1"
	args := []interface{}{fixed.UnixMilli(), cfg.Capacity, cfg.RefillTokens, cfg.RefillInterval.Milliseconds(), int64(600)}
	mock.ExpectEvalSha(tokenBucketScript.Hash(), []string{key}, args...).SetVal([]interface{}{int64(1), int64(1), int64(0)})
	mock.ExpectEvalSha(tokenBucketScript.Hash(), []string{key}, args...).SetVal([]interface{}{int64(0), int64(0), int64(1500)})

	rec := do(e, http.MethodGet, "/api/places", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))

	rec = do(e, http.MethodGet, "/api/places", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateKeyStrategies(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/places", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/places")
	c.Set(UserIDKey, "u-9")

	cfg := rateConfig()
	cfg.KeyStrategy = "user"
	assert.Equal(t, "outy:rl:user:u-9", buildRateKey(cfg, c))
	cfg.KeyStrategy = "ip_user_route"
	assert.Equal(t, "outy:rl:ip:192.0.2.1:user:u-9:route:GET /api/places", buildRateKey(cfg, c))
}

func TestIdentifyCallerFeedsRateKey(t *testing.T) {
	cfg := rateConfig()
	cfg.KeyStrategy = "user"

	var keys []string
	e := echo.New()
	e.Use(IdentifyCaller(testSecret))
	e.GET("/api/places", func(c echo.Context) error {
		keys = append(keys, buildRateKey(cfg, c))
		assert.Nil(t, ClaimsFrom(c))
		return c.NoContent(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/api/places", bearer(t, "user")).Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/api/places", "Bearer garbage").Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/api/places", "").Code)
	assert.Equal(t, []string{"outy:rl:user:user-1", "outy:rl:user:anon", "outy:rl:user:anon"}, keys)
}

func TestErrorHandlerShape(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = ErrorHandler
	rec := do(e, http.MethodGet, "/nowhere", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not Found"}`, rec.Body.String())
}
