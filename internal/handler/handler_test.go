package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/outy-app/outy/internal/config"
	"github.com/outy-app/outy/internal/middleware"
	"github.com/outy-app/outy/internal/queue"
	"github.com/outy-app/outy/internal/utils"
)

const (
	hostID      = "7d4f3c1e-0000-4000-8000-000000000001"
	userID      = "7d4f3c1e-0000-4000-8000-000000000002"
	otherHostID = "7d4f3c1e-0000-4000-8000-000000000003"
	placeID     = "7d4f3c1e-0000-4000-8000-0000000000a1"
	reviewID    = "7d4f3c1e-0000-4000-8000-0000000000c1"
)

var testCfg = config.Config{JWTSecret: "test-secret", TokenTTL: time.Hour, ClientURL: "http://localhost:5173"}

var targetCols = []string{"owner_id", "reservation_mode", "reservation_link"}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// newContext builds a request context.  body is sent as JSON when non-empty.
func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func withClaims(c echo.Context, id, role string) {
	c.Set(middleware.ClaimsKey, &utils.Claims{UserID: id, Role: role, Email: id + "@outy.ma"})
}

func withParams(c echo.Context, kv ...string) {
	var names, values []string
	for i := 0; i+1 < len(kv); i += 2 {
		names = append(names, kv[i])
		values = append(values, kv[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

type recordingCache struct{ routes []string }

func (r *recordingCache) Invalidate(_ context.Context, routes ...string) {
	r.routes = append(r.routes, routes...)
}

type recordingPublisher struct {
	keys   []string
	events []queue.ReservationEvent
}

func (p *recordingPublisher) PublishReservation(_ context.Context, key string, ev queue.ReservationEvent) error {
	p.keys = append(p.keys, key)
	p.events = append(p.events, ev)
	return nil
}
