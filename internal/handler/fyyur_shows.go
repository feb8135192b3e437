package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/fyyur-trivia/internal/form"
	"github.com/iliyamo/fyyur-trivia/internal/queue"
	"github.com/iliyamo/fyyur-trivia/internal/repository"
)

// Reasons a show cannot be booked, in the order they are reported.
var showProblems = []struct {
	err error
	msg string
}{
	{repository.ErrArtistNotFound, "The provided artist does not exist!"},
	{repository.ErrArtistUnavailable, "The artist is not available at this time!"},
	{repository.ErrVenueNotFound, "The provided venue does not exist!"},
}

// ListShows handles GET /shows.
func (h *FyyurHandler) ListShows(c echo.Context) error {
	shows, err := h.Shows.List(c.Request().Context())
	if err != nil {
		return err
	}
	rows := make([]ShowRow, 0, len(shows))
	for _, s := range shows {
		rows = append(rows, showRow(s))
	}
	return c.Render(http.StatusOK, "pages/shows", pageData("Shows", rows))
}

// NewShowForm handles GET /shows/create.
func (h *FyyurHandler) NewShowForm(c echo.Context) error {
	f := form.ShowForm{StartTime: form.InputTime(h.now().Truncate(time.Minute))}
	return renderForm(c, http.StatusOK, "forms/new_show", "New show", f, nil, nil)
}

// CreateShow handles POST /shows/create.  The artist and the venue must
// exist and the artist must be available at the start time; every failed
// rule is flashed and nothing is stored.
func (h *FyyurHandler) CreateShow(c echo.Context) error {
	var f form.ShowForm
	if problems, ok := bindForm(c, &f); !ok {
		flash(c, msgReviewForm)
		return renderForm(c, http.StatusUnprocessableEntity, "forms/new_show", "New show", f, nil, problems)
	}

	s := f.Show()
	err := h.Shows.Create(c.Request().Context(), s)
	if err != nil {
		rejected := false
		for _, p := range showProblems {
			if errors.Is(err, p.err) {
				flash(c, p.msg)
				rejected = true
			}
		}
		if rejected {
			return renderForm(c, http.StatusUnprocessableEntity, "forms/new_show", "New show", f, nil, nil)
		}
		logrus.WithError(err).Error("fyyur: create show")
		flash(c, "An error occurred. Show could not be listed.")
		return renderForm(c, http.StatusInternalServerError, "forms/new_show", "New show", f, nil, nil)
	}

	flash(c, "Show was successfully listed!")
	publish(h.Events, queue.ShowListedEvent{
		EventID:    queue.NewEventID(),
		ShowID:     s.ID,
		VenueID:    s.VenueID,
		VenueName:  s.Venue.Name,
		ArtistID:   s.ArtistID,
		ArtistName: s.Artist.Name,
		StartTime:  s.StartTime,
		ListedAt:   h.now(),
	})
	return c.Redirect(http.StatusSeeOther, "/")
}
