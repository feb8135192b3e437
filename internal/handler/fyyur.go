package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/fyyur-trivia/internal/middleware"
	"github.com/iliyamo/fyyur-trivia/internal/queue"
	"github.com/iliyamo/fyyur-trivia/internal/repository"
	"github.com/iliyamo/fyyur-trivia/internal/service"
	"github.com/iliyamo/fyyur-trivia/internal/view"
)

// Flash texts shown by the booking site.
const (
	msgReviewForm = "Please review the form!"
	recentLimit   = 10
)

// FyyurHandler serves the booking site.
type FyyurHandler struct {
	Venues  *repository.VenueRepo
	Artists *repository.ArtistRepo
	Shows   *repository.ShowRepo
	Events  service.Publisher

	// Now decides which shows are upcoming.  Tests pin it.
	Now func() time.Time
}

// NewFyyurHandler constructs a FyyurHandler and panics if any repository is nil.
func NewFyyurHandler(venues *repository.VenueRepo, artists *repository.ArtistRepo, shows *repository.ShowRepo, events service.Publisher) *FyyurHandler {
	if venues == nil || artists == nil || shows == nil {
		panic("nil repository passed to NewFyyurHandler")
	}
	if events == nil {
		events = service.NopPublisher{}
	}
	return &FyyurHandler{Venues: venues, Artists: artists, Shows: shows, Events: events, Now: time.Now}
}

func (h *FyyurHandler) now() time.Time { return h.Now().UTC() }

// Home handles GET / with the most recently listed venues and artists.
func (h *FyyurHandler) Home(c echo.Context) error {
	ctx := c.Request().Context()
	venues, err := h.Venues.Recent(ctx, recentLimit)
	if err != nil {
		return err
	}
	artists, err := h.Artists.Recent(ctx, recentLimit)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "pages/home", pageData("", HomeView{Venues: venues, Artists: artists}))
}

func pageData(title string, data any) view.Page {
	return view.Page{Title: title, Data: data}
}

// renderForm re-renders a form page with the submitted values.
func renderForm(c echo.Context, status int, name, title string, f, data any, problems map[string]string) error {
	return c.Render(status, name, view.Page{Title: title, Form: f, Data: data, Problems: problems})
}

// formID parses the :id path parameter.  A malformed id is reported as 404
// since no such page exists.
func formID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.ErrNotFound
	}
	return id, nil
}

// deleteResult answers the site's DELETE calls with {"success": ...}.
func deleteResult(c echo.Context, err error, notFound error, what string) error {
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, echo.Map{"success": true})
	case notFound != nil && errors.Is(err, notFound):
		return c.JSON(http.StatusNotFound, echo.Map{"success": false})
	default:
		logrus.WithError(err).Errorf("fyyur: delete %s", what)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false})
	}
}

// publish sends ev without tying it to the request's lifetime.  Failures
// are logged; the mutation has already committed.
func publish(p service.Publisher, ev queue.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := p.Publish(ctx, ev); err != nil {
		logrus.WithError(err).WithField("queue", ev.Queue()).Warn("event not published")
	}
}

// flash is a shorthand for middleware.AddFlash.
func flash(c echo.Context, msg string) { middleware.AddFlash(c, msg) }
