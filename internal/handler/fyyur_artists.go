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

// ListArtists handles GET /artists.
func (h *FyyurHandler) ListArtists(c echo.Context) error {
	artists, err := h.Artists.List(c.Request().Context())
	if err != nil {
		return err
	}
	data := make([]ArtistSummary, 0, len(artists))
	for _, a := range artists {
		data = append(data, ArtistSummary{ID: a.ID, Name: a.Name})
	}
	return c.Render(http.StatusOK, "pages/artists", pageData("Artists", data))
}

// SearchArtists handles POST /artists/search.
func (h *FyyurHandler) SearchArtists(c echo.Context) error {
	ctx := c.Request().Context()
	term := strings.TrimSpace(c.FormValue("search_term"))
	artists, err := h.Artists.Search(ctx, term)
	if err != nil {
		return err
	}
	upcoming, err := h.Artists.UpcomingCounts(ctx, h.now())
	if err != nil {
		return err
	}
	data := artistSummaries(artists, upcoming)
	return c.Render(http.StatusOK, "pages/search_artists", pageData("Search artists", SearchView{Term: term, Count: len(data), Data: data}))
}

// ShowArtist handles GET /artists/:id.
func (h *FyyurHandler) ShowArtist(c echo.Context) error {
	a, err := h.loadArtist(c)
	if err != nil {
		return err
	}
	past, upcoming := splitShows(a.Shows, h.now())
	return c.Render(http.StatusOK, "pages/show_artist", pageData(a.Name, ArtistView{
		Artist:             a,
		Albums:             a.Albums,
		PastShows:          past,
		UpcomingShows:      upcoming,
		PastShowsCount:     len(past),
		UpcomingShowsCount: len(upcoming),
	}))
}

func (h *FyyurHandler) loadArtist(c echo.Context) (*model.Artist, error) {
	id, err := formID(c)
	if err != nil {
		return nil, err
	}
	a, err := h.Artists.Get(c.Request().Context(), id)
	if errors.Is(err, repository.ErrArtistNotFound) {
		return nil, echo.ErrNotFound
	}
	return a, err
}

// NewArtistForm handles GET /artists/create.
func (h *FyyurHandler) NewArtistForm(c echo.Context) error {
	return renderForm(c, http.StatusOK, "forms/new_artist", "New artist", form.ArtistForm{}, nil, nil)
}

// CreateArtist handles POST /artists/create.
func (h *FyyurHandler) CreateArtist(c echo.Context) error {
	var f form.ArtistForm
	if problems, ok := bindForm(c, &f); !ok {
		flash(c, msgReviewForm)
		return renderForm(c, http.StatusUnprocessableEntity, "forms/new_artist", "New artist", f, nil, problems)
	}
	var a model.Artist
	f.Apply(&a)
	if err := h.Artists.Create(c.Request().Context(), &a); err != nil {
		logrus.WithError(err).WithField("artist", f.Name).Error("fyyur: create artist")
		flash(c, fmt.Sprintf("An error occurred. Artist %s could not be listed.", f.Name))
		return renderForm(c, http.StatusInternalServerError, "forms/new_artist", "New artist", f, nil, nil)
	}
	flash(c, fmt.Sprintf("Artist %s was successfully listed!", a.Name))
	return c.Redirect(http.StatusSeeOther, "/")
}

// EditArtistForm handles GET /artists/:id/edit.
func (h *FyyurHandler) EditArtistForm(c echo.Context) error {
	a, err := h.loadArtist(c)
	if err != nil {
		return err
	}
	return renderForm(c, http.StatusOK, "forms/edit_artist", "Edit artist", form.ArtistFormFrom(a), a, nil)
}

// UpdateArtist handles POST /artists/:id/edit.  The availability window is
// validated like on creation.
func (h *FyyurHandler) UpdateArtist(c echo.Context) error {
	a, err := h.loadArtist(c)
	if err != nil {
		return err
	}
	var f form.ArtistForm
	if problems, ok := bindForm(c, &f); !ok {
		flash(c, msgReviewForm)
		return renderForm(c, http.StatusUnprocessableEntity, "forms/edit_artist", "Edit artist", f, a, problems)
	}
	a.Shows, a.Albums = nil, nil
	f.Apply(a)
	err = h.Artists.Update(c.Request().Context(), a)
	if errors.Is(err, repository.ErrArtistNotFound) {
		return echo.ErrNotFound
	}
	if err != nil {
		logrus.WithError(err).WithField("artist_id", a.ID).Error("fyyur: update artist")
		flash(c, fmt.Sprintf("An error occurred. Artist %s could not be updated.", f.Name))
		return renderForm(c, http.StatusInternalServerError, "forms/edit_artist", "Edit artist", f, a, nil)
	}
	flash(c, fmt.Sprintf("Artist %s was successfully updated!", a.Name))
	return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/artists/%d", a.ID))
}

// DeleteArtist handles DELETE /artists/:id together with the artist's shows
// and albums.
func (h *FyyurHandler) DeleteArtist(c echo.Context) error {
	id, err := formID(c)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"success": false})
	}
	err = h.Artists.Delete(c.Request().Context(), id)
	return deleteResult(c, err, repository.ErrArtistNotFound, "artist")
}

// NewAlbumForm handles GET /artists/:id/add_album.
func (h *FyyurHandler) NewAlbumForm(c echo.Context) error {
	a, err := h.loadArtist(c)
	if err != nil {
		return err
	}
	return renderForm(c, http.StatusOK, "forms/new_album", "New album", form.AlbumForm{}, a, nil)
}

// CreateAlbum handles POST /artists/:id/add_album.
func (h *FyyurHandler) CreateAlbum(c echo.Context) error {
	a, err := h.loadArtist(c)
	if err != nil {
		return err
	}
	var f form.AlbumForm
	if problems, ok := bindForm(c, &f); !ok {
		flash(c, msgReviewForm)
		return renderForm(c, http.StatusUnprocessableEntity, "forms/new_album", "New album", f, a, problems)
	}
	album := f.Album(a.ID)
	err = h.Artists.AddAlbum(c.Request().Context(), album)
	if errors.Is(err, repository.ErrArtistNotFound) {
		return echo.ErrNotFound
	}
	if err != nil {
		logrus.WithError(err).WithField("artist_id", a.ID).Error("fyyur: add album")
		flash(c, fmt.Sprintf("An error occurred. Album %s could not be added.", f.Title))
		return renderForm(c, http.StatusInternalServerError, "forms/new_album", "New album", f, a, nil)
	}
	flash(c, fmt.Sprintf("Album %s was successfully added!", album.Title))
	return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/artists/%d", a.ID))
}
