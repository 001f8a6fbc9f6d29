package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bookbridge/bookbridge/pkg/errcodes"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIdentity exchanges "good-session" for "internal-token" and reports
// everything else as null.
func fakeIdentity(t *testing.T, calls *atomic.Int64) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, ValidatePath, r.URL.Path)

		var payload struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))

		w.Header().Set("Content-Type", "application/json")
		if payload.Token == "good-session" {
			_, _ = w.Write([]byte(`{"token":"internal-token"}`))
		} else {
			_, _ = w.Write([]byte(`{"token":null}`))
		}
	}))
}

func TestExchange(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	srv := fakeIdentity(t, &calls)
	defer srv.Close()

	ex := NewExchanger(srv.URL, time.Second, 16, time.Minute)

	internal, err := ex.Exchange(context.Background(), "good-session")
	require.NoError(t, err)
	assert.Equal(t, "internal-token", internal)

	internal, err = ex.Exchange(context.Background(), "stale-session")
	require.NoError(t, err)
	assert.Empty(t, internal)
}

func TestExchangeCachesSuccess(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	srv := fakeIdentity(t, &calls)
	defer srv.Close()

	ex := NewExchanger(srv.URL, time.Second, 16, time.Minute)

	for i := 0; i < 5; i++ {
		internal, err := ex.Exchange(context.Background(), "good-session")
		require.NoError(t, err)
		assert.Equal(t, "internal-token", internal)
	}
	assert.Equal(t, int64(1), calls.Load(), "repeat exchanges should be served from cache")

	// rejections are not cached
	for i := 0; i < 3; i++ {
		_, err := ex.Exchange(context.Background(), "stale-session")
		require.NoError(t, err)
	}
	assert.Equal(t, int64(4), calls.Load())
}

func TestMiddlewareReplacesAuthorization(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	srv := fakeIdentity(t, &calls)
	defer srv.Close()

	ex := NewExchanger(srv.URL, time.Second, 16, time.Minute)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer good-session")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := ex.Middleware(func(c echo.Context) error {
		assert.Equal(t, "Bearer internal-token", c.Request().Header.Get(echo.HeaderAuthorization))
		return c.NoContent(http.StatusOK)
	})(c)
	require.NoError(t, err)
}

func TestMiddlewareRejectsStaleSession(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	srv := fakeIdentity(t, &calls)
	defer srv.Close()

	ex := NewExchanger(srv.URL, time.Second, 16, time.Minute)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer stale-session")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := ex.Middleware(func(c echo.Context) error {
		t.Fatal("request must not be forwarded")
		return nil
	})(c)

	var appErr *errcodes.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "unauthorized", appErr.Code)
}

func TestMiddlewarePassesThroughWithoutToken(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	srv := fakeIdentity(t, &calls)
	defer srv.Close()

	ex := NewExchanger(srv.URL, time.Second, 16, time.Minute)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	forwarded := false
	err := ex.Middleware(func(c echo.Context) error {
		forwarded = true
		assert.Empty(t, c.Request().Header.Get(echo.HeaderAuthorization))
		return c.NoContent(http.StatusOK)
	})(c)
	require.NoError(t, err)
	assert.True(t, forwarded)
	assert.Equal(t, int64(0), calls.Load())
}
