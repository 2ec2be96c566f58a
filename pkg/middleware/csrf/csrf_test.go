package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEcho(cfg Config) *echo.Echo {
	e := echo.New()
	e.Use(Middleware(cfg))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	e.GET("/form", ok)
	e.POST("/form", ok)
	e.POST("/public", ok)
	return e
}

func TestSafeMethodIssuesToken(t *testing.T) {
	t.Parallel()

	e := newEcho(DefaultConfig())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/form", nil))

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-CSRF-Token"))
	assert.Contains(t, rec.Header().Get(echo.HeaderSetCookie), "XSRF-TOKEN=")
}

func TestUnsafeMethodNeedsMatchingToken(t *testing.T) {
	t.Parallel()

	e := newEcho(DefaultConfig())

	post := func(cookie, header string) int {
		req := httptest.NewRequest(http.MethodPost, "http://example.com/form", nil)
		req.Header.Set("Origin", "http://example.com")
		if cookie != "" {
			req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: cookie})
		}
		if header != "" {
			req.Header.Set("X-CSRF-Token", header)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusForbidden, post("", ""))
	assert.Equal(t, http.StatusForbidden, post("abc", "xyz"))
	assert.Equal(t, http.StatusNoContent, post("abc", "abc"))
}

func TestSkipsConfiguredPathsAndBearer(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.SkipPaths = []string{"/public"}
	e := newEcho(cfg)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/public", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/form", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer token")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
