package router

import (
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outy-app/outy/internal/config"
	"github.com/outy-app/outy/internal/model"
)

var reservationCols = []string{"id", "related_type", "related_id", "user_id", "host_owner_id", "full_name", "email",
	"phone", "date", "time", "people_count", "note", "reservation_code", "status", "created_at"}

func newTestServer(t *testing.T) (*echo.Echo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	e := New(Deps{
		Cfg: config.Config{
			Env:       "test",
			JWTSecret: "test-secret",
			TokenTTL:  time.Hour,
			ClientURL: "http://localhost:5173",
		},
		DB: db,
	})
	return e, mock
}

func do(t *testing.T, e *echo.Echo, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

type authBody struct {
	Token string           `json:"token"`
	User  model.PublicUser `json:"user"`
}

func register(t *testing.T, e *echo.Echo, mock sqlmock.Sqlmock, email, role string) authBody {
	t.Helper()
	mock.ExpectQuery(`SELECT EXISTS`).WithArgs(email).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	rec := do(t, e, http.MethodPost, "/api/auth/register", "", echo.Map{
		"email": email, "password": "outy1234", "role": role, "business_name": "Atlas Hospitality",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out authBody
	decode(t, rec, &out)
	require.NotEmpty(t, out.Token)
	return out
}

func reservationRow(id, placeID, userID, hostID, code, status string) *sqlmock.Rows {
	return sqlmock.NewRows(reservationCols).AddRow(id, "place", placeID, userID, hostID, "Sara", "", "",
		"2026-10-20", "20:00", 2, "", code, status, time.Now())
}

func TestReservationLifecycle(t *testing.T) {
	e, mock := newTestServer(t)

	host := register(t, e, mock, "host@outy.ma", model.RoleBusiness)
	assert.Equal(t, model.RoleBusiness, host.User.Role)

	mock.ExpectQuery(`INSERT INTO "places"`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	rec := do(t, e, http.MethodPost, "/api/places", host.Token, echo.Map{
		"name": "Riad Terrace", "category": "Restaurant", "city": "Rabat", "reservation_mode": "OUTY",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var place model.Place
	decode(t, rec, &place)
	assert.Equal(t, host.User.ID, place.OwnerID)
	assert.Equal(t, model.ModeOuty, place.ReservationMode)

	guest := register(t, e, mock, "user@outy.ma", "")
	assert.Equal(t, model.RoleUser, guest.User.Role)

	mock.ExpectQuery(`FROM places WHERE id = \$1`).WithArgs(place.ID).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id", "reservation_mode", "reservation_link"}).
			AddRow(host.User.ID, "OUTY", ""))
	mock.ExpectQuery(`INSERT INTO reservations`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	rec = do(t, e, http.MethodPost, "/api/reservations", guest.Token, echo.Map{
		"related_type": "place", "related_id": place.ID, "full_name": "Sara",
		"date": "2026-10-20", "time": "20:00", "people_count": 2,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Reservation model.Reservation `json:"reservation"`
		QR          string            `json:"qr"`
	}
	decode(t, rec, &created)
	res := created.Reservation
	assert.Equal(t, model.StatusPending, res.Status)
	assert.Equal(t, host.User.ID, res.HostOwnerID)
	assert.True(t, strings.HasPrefix(res.ReservationCode, "OUTY-"))
	assert.Len(t, res.ReservationCode, len("OUTY-")+6)
	assert.True(t, strings.HasPrefix(created.QR, "data:image/png;base64,"))

	mock.ExpectQuery(`FROM reservations WHERE reservation_code = \$1`).WithArgs(res.ReservationCode).
		WillReturnRows(reservationRow(res.ID, place.ID, guest.User.ID, host.User.ID, res.ReservationCode, model.StatusPending))
	rec = do(t, e, http.MethodGet, "/api/reservations/verify/"+strings.ToLower(res.ReservationCode), "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var verified model.Reservation
	decode(t, rec, &verified)
	assert.Equal(t, model.StatusPending, verified.Status)

	// A plain user cannot check in.
	rec = do(t, e, http.MethodPost, "/api/reservations/"+res.ID+"/checkin", guest.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	mock.ExpectQuery(`UPDATE reservations SET status = \$1`).
		WithArgs(model.StatusCheckedIn, res.ID, host.User.ID).
		WillReturnRows(reservationRow(res.ID, place.ID, guest.User.ID, host.User.ID, res.ReservationCode, model.StatusCheckedIn))
	rec = do(t, e, http.MethodPost, "/api/reservations/"+res.ID+"/checkin", host.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	mock.ExpectQuery(`FROM reservations WHERE reservation_code = \$1`).WithArgs(res.ReservationCode).
		WillReturnRows(reservationRow(res.ID, place.ID, guest.User.ID, host.User.ID, res.ReservationCode, model.StatusCheckedIn))
	rec = do(t, e, http.MethodGet, "/api/reservations/verify/"+res.ReservationCode, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &verified)
	assert.Equal(t, model.StatusCheckedIn, verified.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVerifyUnknownCode(t *testing.T) {
	e, mock := newTestServer(t)
	mock.ExpectQuery(`FROM reservations WHERE reservation_code = \$1`).WithArgs("OUTY-ZZZZZZ").
		WillReturnRows(sqlmock.NewRows(reservationCols))

	rec := do(t, e, http.MethodGet, "/api/reservations/verify/OUTY-ZZZZZZ", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"status":"NOT_FOUND"}`, rec.Body.String())
}

func TestBusinessRoutesRequireToken(t *testing.T) {
	e, _ := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/places"},
		{http.MethodPost, "/api/events"},
		{http.MethodGet, "/api/host/reservations"},
		{http.MethodPost, "/api/media"},
		{http.MethodPost, "/api/reservations"},
		{http.MethodGet, "/api/me"},
	} {
		rec := do(t, e, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestOperationalRoutes(t *testing.T) {
	e, _ := newTestServer(t)

	rec := do(t, e, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(t, e, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "outy_http_requests_total")

	rec = do(t, e, http.MethodGet, "/api/config", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Casablanca")
}

func TestCachedListingKeepsSingleCORSHeaders(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	rdb, rmock := redismock.NewClientMock()

	const origin = "http://localhost:5173"
	e := New(Deps{
		Cfg: config.Config{
			Env:       "test",
			JWTSecret: "test-secret",
			TokenTTL:  time.Hour,
			ClientURL: origin,
		},
		CacheCfg: config.CacheConfig{
			Enabled: true,
			Methods: map[string]bool{http.MethodGet: true},
			TTL:     time.Minute,
			Prefix:  "outy:cache",
		},
		DB:    db,
		Redis: rdb,
	})

	get := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/places", nil)
		req.Header.Set(echo.HeaderOrigin, origin)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	key := fmt.Sprintf("outy:cache:/api/places:%x", sha1.Sum([]byte("GET?")))
	var stored []byte
	mock.ExpectQuery(`FROM "places" AS "p"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))
	rmock.ExpectGet(key).RedisNil()
	rmock.CustomMatch(func(_, actual []interface{}) error {
		b, ok := actual[3].([]byte)
		if !ok {
			return fmt.Errorf("unexpected cache payload %T", actual[3])
		}
		stored = b
		return nil
	}).ExpectSetEx(key, nil, time.Minute).SetVal("OK")

	miss := get()
	require.Equal(t, http.StatusOK, miss.Code, miss.Body.String())
	assert.Equal(t, "MISS", miss.Header().Get("X-Cache"))
	require.NotEmpty(t, stored)
	assert.NotContains(t, string(stored), "Access-Control-")
	assert.NotContains(t, string(stored), echo.HeaderXRequestID)

	rmock.ExpectGet(key).SetVal(string(stored))
	hit := get()
	require.Equal(t, http.StatusOK, hit.Code)
	assert.Equal(t, "HIT", hit.Header().Get("X-Cache"))
	assert.Equal(t, []string{origin}, hit.Header().Values(echo.HeaderAccessControlAllowOrigin))
	assert.Len(t, hit.Header().Values(echo.HeaderAccessControlAllowCredentials), 1)
	assert.Len(t, hit.Header().Values(echo.HeaderXRequestID), 1)
	assert.NotEqual(t, miss.Header().Get(echo.HeaderXRequestID), hit.Header().Get(echo.HeaderXRequestID))
	assert.Equal(t, miss.Body.String(), hit.Body.String())

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, rmock.ExpectationsWereMet())
}
