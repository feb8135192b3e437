package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flashServer(secret string) *echo.Echo {
	e := echo.New()
	e.Use(Flash(secret))
	e.POST("/save", func(c echo.Context) error {
		AddFlash(c, "saved")
		return c.Redirect(http.StatusSeeOther, "/hop")
	})
	// a second redirect without rendering keeps the messages
	e.GET("/hop", func(c echo.Context) error { return c.Redirect(http.StatusSeeOther, "/show") })
	e.GET("/show", func(c echo.Context) error {
		return c.JSON(http.StatusOK, Flashes(c))
	})
	return e
}

func run(e *echo.Echo, method, path string, ck *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if ck != nil {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func flashCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == FlashCookie {
			return c
		}
	}
	return nil
}

func TestFlashSurvivesRedirects(t *testing.T) {
	e := flashServer("secret")

	rec := run(e, http.MethodPost, "/save", nil)
	ck := flashCookie(rec)
	require.NotNil(t, ck)
	assert.True(t, ck.HttpOnly)

	rec = run(e, http.MethodGet, "/hop", ck)
	ck = flashCookie(rec)
	require.NotNil(t, ck)

	rec = run(e, http.MethodGet, "/show", ck)
	assert.JSONEq(t, `["saved"]`, rec.Body.String())
	cleared := flashCookie(rec)
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)
}

func TestFlashRejectsForeignSignature(t *testing.T) {
	rec := run(flashServer("one"), http.MethodPost, "/save", nil)
	ck := flashCookie(rec)
	require.NotNil(t, ck)

	rec = run(flashServer("two"), http.MethodGet, "/show", ck)
	assert.JSONEq(t, `[]`, rec.Body.String())
	cleared := flashCookie(rec)
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)
}

func TestFlashesIncludeCurrentRequest(t *testing.T) {
	e := echo.New()
	e.Use(Flash("secret"))
	e.GET("/", func(c echo.Context) error {
		AddFlash(c, "first")
		AddFlash(c, "second")
		return c.JSON(http.StatusOK, Flashes(c))
	})
	rec := run(e, http.MethodGet, "/", nil)
	assert.JSONEq(t, `["first","second"]`, rec.Body.String())
	assert.Nil(t, flashCookie(rec), "nothing left to carry")
}
