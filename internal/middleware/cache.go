package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/outy-app/outy/internal/config"
)

// bodyRecorder tees the response body into buf.  Once more than limit
// bytes are written recording stops and the response is marked too large.
type bodyRecorder struct {
	http.ResponseWriter
	status   int
	buf      bytes.Buffer
	limit    int
	overflow bool
}

func (w *bodyRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	if !w.overflow {
		if w.limit > 0 && w.buf.Len()+len(b) > w.limit {
			w.overflow = true
			w.buf.Reset()
		} else {
			w.buf.Write(b)
		}
	}
	return w.ResponseWriter.Write(b)
}

// cacheKey groups entries by route so Invalidate can drop every cached
// variant of one listing endpoint: prefix:route:sha1(method, query).
func cacheKey(prefix, route, method, rawQuery string) string {
	sum := sha1.Sum([]byte(method + "?" + rawQuery))
	return fmt.Sprintf("%s:%s:%x", prefix, route, sum[:])
}

// cachedResponse is the JSON document stored under a cache key.
type cachedResponse struct {
	Status int         `json:"status"`
	Header http.Header `json:"header"`
	Body   []byte      `json:"body"`
}

func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
	return json.Marshal(cachedResponse{Status: status, Header: header, Body: body})
}

// decodePayload reports ok=false for anything that is not a stored response.
func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
	var cr cachedResponse
	if err := json.Unmarshal(bs, &cr); err != nil || cr.Status < 100 {
		return 0, nil, nil, false
	}
	return cr.Status, cr.Header, cr.Body, true
}

// ResponseCache serves repeated GETs of public listing endpoints from Redis.
// A nil client or a disabled config turns both the middleware and
// Invalidate into no-ops.
type ResponseCache struct {
	cfg config.CacheConfig
	rdb *redis.Client
}

// NewResponseCache binds cfg to rdb.
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client) *ResponseCache {
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	return &ResponseCache{cfg: cfg, rdb: rdb}
}

func (rc *ResponseCache) active() bool { return rc != nil && rc.cfg.Enabled && rc.rdb != nil }

// Middleware stores 200 responses with their headers so hits are
// byte-identical to the original.
func (rc *ResponseCache) Middleware() echo.MiddlewareFunc {
	if !rc.active() {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if !rc.cfg.Methods[strings.ToUpper(req.Method)] {
				return next(c)
			}
			key := cacheKey(rc.cfg.Prefix, c.Path(), req.Method, req.URL.RawQuery)

			if bs, err := rc.rdb.Get(req.Context(), key).Bytes(); err == nil && replay(c, bs) {
				return nil
			}

			rec := &bodyRecorder{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: rc.cfg.MaxBodyBytes}
			c.Response().Writer = rec
			c.Response().Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}
			if rec.status == http.StatusOK && !rec.overflow {
				rc.store(key, c.Response().Header().Clone(), rec.buf.Bytes())
			}
			return nil
		}
	}
}

// replay writes a stored response; false means the entry was unusable.
func replay(c echo.Context, bs []byte) bool {
	status, hdr, body, ok := decodePayload(bs)
	if !ok {
		return false
	}
	out := c.Response().Header()
	for k, vals := range hdr {
		if ownedElsewhere(k) {
			continue
		}
		out[k] = vals
	}
	out.Set("X-Cache", "HIT")
	c.Response().WriteHeader(status)
	_, _ = c.Response().Write(body)
	return true
}

// ownedElsewhere reports headers set per request by other middleware.
// They are neither stored nor replayed.
func ownedElsewhere(k string) bool {
	k = http.CanonicalHeaderKey(k)
	switch k {
	case echo.HeaderContentLength, echo.HeaderVary, echo.HeaderXRequestID, "X-Cache":
		return true
	}
	return strings.HasPrefix(k, "Access-Control-") || strings.HasPrefix(k, "X-Ratelimit-") || k == "Retry-After"
}

func (rc *ResponseCache) store(key string, hdr http.Header, body []byte) {
	for k := range hdr {
		if ownedElsewhere(k) {
			delete(hdr, k)
		}
	}
	payload, err := encodePayload(http.StatusOK, hdr, body)
	if err != nil {
		return
	}
	if err := rc.rdb.SetEx(context.Background(), key, payload, rc.cfg.TTL).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache store failed")
	}
}

// Invalidate deletes every cached response of the given routes.  Errors are
// logged and swallowed; a stale entry expires with its TTL anyway.
func (rc *ResponseCache) Invalidate(ctx context.Context, routes ...string) {
	if !rc.active() {
		return
	}
	for _, route := range routes {
		pattern := rc.cfg.Prefix + ":" + route + ":*"
		var cursor uint64
		for {
			keys, next, err := rc.rdb.Scan(ctx, cursor, pattern, 100).Result()
			if err != nil {
				log.Warn().Err(err).Str("pattern", pattern).Msg("cache invalidation failed")
				break
			}
			if len(keys) > 0 {
				if err := rc.rdb.Del(ctx, keys...).Err(); err != nil {
					log.Warn().Err(err).Str("pattern", pattern).Msg("cache invalidation failed")
				}
			}
			if next == 0 {
				break
			}
			cursor = next
		}
	}
}
