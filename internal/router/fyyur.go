package router

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/iliyamo/fyyur-trivia/internal/handler"
	"github.com/iliyamo/fyyur-trivia/internal/middleware"
	"github.com/iliyamo/fyyur-trivia/internal/view"
)

// Fyyur wires the booking site.
type Fyyur struct {
	DB        *gorm.DB
	Handler   *handler.FyyurHandler
	Renderer  *view.Renderer
	Metrics   *middleware.Metrics
	SecretKey string
}

// NewFyyur returns the booking site's echo instance.
func NewFyyur(f Fyyur) *echo.Echo {
	if f.Metrics == nil {
		f.Metrics = middleware.NewMetrics("fyyur")
	}
	e := newEcho("fyyur", f.DB, f.Metrics, handler.FyyurErrorHandler)
	e.Renderer = f.Renderer
	e.Use(middleware.Flash(f.SecretKey))
	RegisterFyyur(e, f.Handler)
	return e
}

// RegisterFyyur maps the site's pages.  Deletes answer JSON for the
// page script; every other route renders HTML.
func RegisterFyyur(e *echo.Echo, h *handler.FyyurHandler) {
	e.GET("/", h.Home)

	e.GET("/venues", h.ListVenues)
	e.POST("/venues/search", h.SearchVenues)
	e.GET("/venues/create", h.NewVenueForm)
	e.POST("/venues/create", h.CreateVenue)
	e.GET("/venues/:id", h.ShowVenue)
	e.DELETE("/venues/:id", h.DeleteVenue)
	e.GET("/venues/:id/edit", h.EditVenueForm)
	e.POST("/venues/:id/edit", h.UpdateVenue)

	e.GET("/artists", h.ListArtists)
	e.POST("/artists/search", h.SearchArtists)
	e.GET("/artists/create", h.NewArtistForm)
	e.POST("/artists/create", h.CreateArtist)
	e.GET("/artists/:id", h.ShowArtist)
	e.DELETE("/artists/:id", h.DeleteArtist)
	e.GET("/artists/:id/edit", h.EditArtistForm)
	e.POST("/artists/:id/edit", h.UpdateArtist)
	e.GET("/artists/:id/add_album", h.NewAlbumForm)
	e.POST("/artists/:id/add_album", h.CreateAlbum)

	e.GET("/shows", h.ListShows)
	e.GET("/shows/create", h.NewShowForm)
	e.POST("/shows/create", h.CreateShow)
}
