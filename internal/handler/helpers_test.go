package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/iliyamo/fyyur-trivia/internal/handler"
	"github.com/iliyamo/fyyur-trivia/internal/migration"
	"github.com/iliyamo/fyyur-trivia/internal/queue"
	"github.com/iliyamo/fyyur-trivia/internal/repository"
	"github.com/iliyamo/fyyur-trivia/internal/router"
	"github.com/iliyamo/fyyur-trivia/internal/testutil"
	"github.com/iliyamo/fyyur-trivia/internal/view"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// recorder is a Publisher that keeps every event.
type recorder struct {
	mu     sync.Mutex
	events []queue.Event
}

func (r *recorder) Publish(_ context.Context, ev queue.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) all() []queue.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]queue.Event(nil), r.events...)
}

type fyyurApp struct {
	e       *echo.Echo
	db      *gorm.DB
	venues  *repository.VenueRepo
	artists *repository.ArtistRepo
	shows   *repository.ShowRepo
	events  *recorder
}

func newFyyurApp(t *testing.T) fyyurApp {
	t.Helper()
	db := testutil.OpenSQLite(t, migration.Fyyur())
	renderer, err := view.NewRenderer()
	require.NoError(t, err)

	a := fyyurApp{
		db:      db,
		venues:  repository.NewVenueRepo(db),
		artists: repository.NewArtistRepo(db),
		shows:   repository.NewShowRepo(db),
		events:  &recorder{},
	}
	h := handler.NewFyyurHandler(a.venues, a.artists, a.shows, a.events)
	h.Now = func() time.Time { return fixedNow }
	a.e = router.NewFyyur(router.Fyyur{DB: db, Handler: h, Renderer: renderer, SecretKey: "test-secret"})
	return a
}

type triviaApp struct {
	e          *echo.Echo
	db         *gorm.DB
	categories *repository.CategoryRepo
	questions  *repository.QuestionRepo
	players    *repository.PlayerRepo
	events     *recorder
}

func newTriviaApp(t *testing.T) triviaApp {
	return newTriviaAppWith(t, router.Trivia{})
}

// newTriviaAppWith fills DB and Handler of rt and builds the API.
func newTriviaAppWith(t *testing.T, rt router.Trivia) triviaApp {
	t.Helper()
	db := testutil.OpenSQLite(t, migration.Trivia())
	a := triviaApp{
		db:         db,
		categories: repository.NewCategoryRepo(db),
		questions:  repository.NewQuestionRepo(db),
		players:    repository.NewPlayerRepo(db),
		events:     &recorder{},
	}
	h := handler.NewTriviaHandler(a.categories, a.questions, a.players, a.events)
	h.Now = func() time.Time { return fixedNow }
	rt.DB = db
	rt.Handler = h
	a.e = router.NewTrivia(rt)
	return a
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func get(e *echo.Echo, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return serve(e, req)
}

func postForm(e *echo.Echo, path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return serve(e, req)
}

func sendJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return serve(e, req)
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func count(t *testing.T, db *gorm.DB, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Table(table).Count(&n).Error)
	return n
}
