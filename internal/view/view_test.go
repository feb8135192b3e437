package view

import (
	"bytes"
	"html/template"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fyyur-trivia/internal/middleware"
)

func TestFormatDatetime(t *testing.T) {
	ts := time.Date(2019, 5, 21, 21, 30, 0, 0, time.UTC)
	assert.Equal(t, "Tuesday May, 21, 2019 at 9:30PM", FormatDatetime(ts, "full"))
	assert.Equal(t, "Tue 05, 21, 2019 9:30PM", FormatDatetime(ts, "medium"))
	assert.Equal(t, "Tue 05, 21, 2019 9:30PM", FormatDatetime(ts, ""))
	assert.Equal(t, "", FormatDatetime(time.Time{}, "full"))

	// rendered in UTC whatever the input zone
	east := ts.In(time.FixedZone("UTC+2", 2*60*60))
	assert.Equal(t, "Tuesday May, 21, 2019 at 9:30PM", FormatDatetime(east, "full"))
}

func TestHasMarksSelectedGenres(t *testing.T) {
	tpl := template.Must(template.New("t").Funcs(Funcs()).Parse(`{{range genres}}{{if has $.Picked .}}[{{.}}]{{end}}{{end}}`))
	var buf bytes.Buffer
	require.NoError(t, tpl.Execute(&buf, struct{ Picked []string }{[]string{"Jazz", "Blues"}}))
	assert.Equal(t, "[Blues][Jazz]", buf.String())
}

func TestNewRendererRegistersEveryPage(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	for _, name := range []string{
		"pages/home", "pages/venues", "pages/search_venues", "pages/show_venue",
		"pages/artists", "pages/search_artists", "pages/show_artist", "pages/shows",
		"forms/new_venue", "forms/edit_venue", "forms/new_artist", "forms/edit_artist",
		"forms/new_album", "forms/new_show",
		"errors/404", "errors/500",
	} {
		assert.True(t, r.Has(name), name)
	}
	assert.False(t, r.Has("layouts/base"))
}

func TestRenderIncludesFlashes(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	middleware.AddFlash(c, "Venue <b> was successfully listed!")

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, "errors/404", Page{Title: "Missing"}, c))
	out := buf.String()
	assert.Contains(t, out, "<title>Missing | Fyyur</title>")
	assert.Contains(t, out, "Venue &lt;b&gt; was successfully listed!")
	assert.Empty(t, middleware.Flashes(c), "rendering consumes the messages")

	assert.Error(t, r.Render(&buf, "pages/nope", Page{}, c))
}
