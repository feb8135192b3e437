package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/fyyur-trivia/internal/form"
	"github.com/iliyamo/fyyur-trivia/internal/model"
	"github.com/iliyamo/fyyur-trivia/internal/repository"
)

// ListVenues handles GET /venues: venues grouped by city and state, each
// with its number of upcoming shows.
func (h *FyyurHandler) ListVenues(c echo.Context) error {
	ctx := c.Request().Context()
	venues, err := h.Venues.List(ctx)
	if err != nil {
		return err
	}
	upcoming, err := h.Venues.UpcomingCounts(ctx, h.now())
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "pages/venues", pageData("Venues", groupByArea(venues, upcoming)))
}

// SearchVenues handles POST /venues/search.  No match is an empty result,
// not an error.
func (h *FyyurHandler) SearchVenues(c echo.Context) error {
	ctx := c.Request().Context()
	term := strings.TrimSpace(c.FormValue("search_term"))
	venues, err := h.Venues.Search(ctx, term)
	if err != nil {
		return err
	}
	upcoming, err := h.Venues.UpcomingCounts(ctx, h.now())
	if err != nil {
		return err
	}
	data := venueSummaries(venues, upcoming)
	return c.Render(http.StatusOK, "pages/search_venues", pageData("Search venues", SearchView{Term: term, Count: len(data), Data: data}))
}

// ShowVenue handles GET /venues/:id.
func (h *FyyurHandler) ShowVenue(c echo.Context) error {
	id, err := formID(c)
	if err != nil {
		return err
	}
	v, err := h.Venues.Get(c.Request().Context(), id)
	if errors.Is(err, repository.ErrVenueNotFound) {
		return echo.ErrNotFound
	}
	if err != nil {
		return err
	}
	past, upcoming := splitShows(v.Shows, h.now())
	return c.Render(http.StatusOK, "pages/show_venue", pageData(v.Name, VenueView{
		Venue:              v,
		PastShows:          past,
		UpcomingShows:      upcoming,
		PastShowsCount:     len(past),
		UpcomingShowsCount: len(upcoming),
	}))
}

// NewVenueForm handles GET /venues/create.
func (h *FyyurHandler) NewVenueForm(c echo.Context) error {
	return renderForm(c, http.StatusOK, "forms/new_venue", "New venue", form.VenueForm{}, nil, nil)
}

// CreateVenue handles POST /venues/create.  On success the client is sent
// home with a confirmation; otherwise the form comes back with the entered
// values.
func (h *FyyurHandler) CreateVenue(c echo.Context) error {
	var f form.VenueForm
	if problems, ok := bindForm(c, &f); !ok {
		flash(c, msgReviewForm)
		return renderForm(c, http.StatusUnprocessableEntity, "forms/new_venue", "New venue", f, nil, problems)
	}
	var v model.Venue
	f.Apply(&v)
	if err := h.Venues.Create(c.Request().Context(), &v); err != nil {
		logrus.WithError(err).WithField("venue", f.Name).Error("fyyur: create venue")
		flash(c, fmt.Sprintf("An error occurred. Venue %s could not be listed.", f.Name))
		return renderForm(c, http.StatusInternalServerError, "forms/new_venue", "New venue", f, nil, nil)
	}
	flash(c, fmt.Sprintf("Venue %s was successfully listed!", v.Name))
	return c.Redirect(http.StatusSeeOther, "/")
}

// EditVenueForm handles GET /venues/:id/edit.
func (h *FyyurHandler) EditVenueForm(c echo.Context) error {
	id, err := formID(c)
	if err != nil {
		return err
	}
	v, err := h.Venues.Get(c.Request().Context(), id)
	if errors.Is(err, repository.ErrVenueNotFound) {
		return echo.ErrNotFound
	}
	if err != nil {
		return err
	}
	return renderForm(c, http.StatusOK, "forms/edit_venue", "Edit venue", form.VenueFormFrom(v), v, nil)
}

// UpdateVenue handles POST /venues/:id/edit.
func (h *FyyurHandler) UpdateVenue(c echo.Context) error {
	id, err := formID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	v, err := h.Venues.Get(ctx, id)
	if errors.Is(err, repository.ErrVenueNotFound) {
		return echo.ErrNotFound
	}
	if err != nil {
		return err
	}

	var f form.VenueForm
	if problems, ok := bindForm(c, &f); !ok {
		flash(c, msgReviewForm)
		return renderForm(c, http.StatusUnprocessableEntity, "forms/edit_venue", "Edit venue", f, v, problems)
	}
	v.Shows = nil
	f.Apply(v)
	err = h.Venues.Update(ctx, v)
	if errors.Is(err, repository.ErrVenueNotFound) {
		return echo.ErrNotFound
	}
	if err != nil {
		logrus.WithError(err).WithField("venue_id", id).Error("fyyur: update venue")
		flash(c, fmt.Sprintf("An error occurred. Venue %s could not be updated.", f.Name))
		return renderForm(c, http.StatusInternalServerError, "forms/edit_venue", "Edit venue", f, v, nil)
	}
	flash(c, fmt.Sprintf("Venue %s was successfully updated!", v.Name))
	return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/venues/%d", id))
}

// DeleteVenue handles DELETE /venues/:id together with the venue's shows.
func (h *FyyurHandler) DeleteVenue(c echo.Context) error {
	id, err := formID(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"success": false})
	}
	err = h.Venues.Delete(c.Request().Context(), id)
	return deleteResult(c, err, repository.ErrVenueNotFound, "venue")
}

// bindForm binds and validates a posted form.  It reports per-field
// problems when the form is not acceptable.
func bindForm(c echo.Context, f any) (map[string]string, bool) {
	if err := c.Bind(f); err != nil {
		return map[string]string{"": "The form could not be read."}, false
	}
	if err := c.Validate(f); err != nil {
		return form.Problems(err), false
	}
	return nil, true
}
