package form

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/fyyur-trivia/internal/model"
)

// VenueForm is posted by the new and edit venue pages.
type VenueForm struct {
	Name               string   `form:"name" validate:"required,max=120"`
	City               string   `form:"city" validate:"required,max=120"`
	State              string   `form:"state" validate:"required,us_state"`
	Address            string   `form:"address" validate:"required,max=120"`
	Phone              string   `form:"phone" validate:"max=120"`
	ImageLink          string   `form:"image_link" validate:"omitempty,url,max=500"`
	Genres             []string `form:"genres" validate:"required,min=1,dive,genre"`
	FacebookLink       string   `form:"facebook_link" validate:"omitempty,url,max=120"`
	Website            string   `form:"website" validate:"omitempty,url,max=120"`
	SeekingTalent      bool     `form:"seeking_talent"`
	SeekingDescription string   `form:"seeking_description" validate:"max=120"`
}

// Apply copies the submitted values onto v, leaving its ID alone.
func (f VenueForm) Apply(v *model.Venue) {
	v.Name = strings.TrimSpace(f.Name)
	v.City = strings.TrimSpace(f.City)
	v.State = f.State
	v.Address = strings.TrimSpace(f.Address)
	v.Phone = strings.TrimSpace(f.Phone)
	v.ImageLink = f.ImageLink
	v.Genres = model.NewGenres(f.Genres...)
	v.FacebookLink = f.FacebookLink
	v.Website = f.Website
	v.SeekingTalent = f.SeekingTalent
	v.SeekingDescription = f.SeekingDescription
}

// VenueFormFrom pre-fills the edit page.
func VenueFormFrom(v *model.Venue) VenueForm {
	return VenueForm{
		Name:               v.Name,
		City:               v.City,
		State:              v.State,
		Address:            v.Address,
		Phone:              v.Phone,
		ImageLink:          v.ImageLink,
		Genres:             []string(v.Genres),
		FacebookLink:       v.FacebookLink,
		Website:            v.Website,
		SeekingTalent:      v.SeekingTalent,
		SeekingDescription: v.SeekingDescription,
	}
}

// ArtistForm is posted by the new and edit artist pages.  The availability
// window is mandatory and AvailableFrom may not come after AvailableTo.
type ArtistForm struct {
	Name               string   `form:"name" validate:"required,max=120"`
	City               string   `form:"city" validate:"required,max=120"`
	State              string   `form:"state" validate:"required,us_state"`
	Phone              string   `form:"phone" validate:"max=120"`
	Genres             []string `form:"genres" validate:"required,min=1,dive,genre"`
	ImageLink          string   `form:"image_link" validate:"omitempty,url,max=500"`
	FacebookLink       string   `form:"facebook_link" validate:"omitempty,url,max=120"`
	Website            string   `form:"website" validate:"omitempty,url,max=120"`
	SeekingVenue       bool     `form:"seeking_venue"`
	SeekingDescription string   `form:"seeking_description" validate:"max=120"`
	AvailableFrom      string   `form:"available_from" validate:"required,flexdatetime"`
	AvailableTo        string   `form:"available_to" validate:"required,flexdatetime"`
}

func artistWindow(sl validator.StructLevel) {
	f := sl.Current().Interface().(ArtistForm)
	from, err1 := ParseTime(f.AvailableFrom)
	to, err2 := ParseTime(f.AvailableTo)
	if err1 != nil || err2 != nil {
		return // reported by flexdatetime
	}
	if to.Before(from) {
		sl.ReportError(f.AvailableTo, "available_to", "AvailableTo", "window", "")
	}
}

// Apply copies the submitted values onto a.  Call it only after validation.
func (f ArtistForm) Apply(a *model.Artist) {
	a.Name = strings.TrimSpace(f.Name)
	a.City = strings.TrimSpace(f.City)
	a.State = f.State
	a.Phone = strings.TrimSpace(f.Phone)
	a.Genres = model.NewGenres(f.Genres...)
	a.ImageLink = f.ImageLink
	a.FacebookLink = f.FacebookLink
	a.Website = f.Website
	a.SeekingVenue = f.SeekingVenue
	a.SeekingDescription = f.SeekingDescription
	a.AvailableFrom, _ = ParseTime(f.AvailableFrom)
	a.AvailableTo, _ = ParseTime(f.AvailableTo)
}

// ArtistFormFrom pre-fills the edit page.
func ArtistFormFrom(a *model.Artist) ArtistForm {
	return ArtistForm{
		Name:               a.Name,
		City:               a.City,
		State:              a.State,
		Phone:              a.Phone,
		Genres:             []string(a.Genres),
		ImageLink:          a.ImageLink,
		FacebookLink:       a.FacebookLink,
		Website:            a.Website,
		SeekingVenue:       a.SeekingVenue,
		SeekingDescription: a.SeekingDescription,
		AvailableFrom:      InputTime(a.AvailableFrom),
		AvailableTo:        InputTime(a.AvailableTo),
	}
}

// AlbumForm adds an album to an artist.
type AlbumForm struct {
	Title string `form:"title" validate:"required,max=120"`
	Songs string `form:"songs" validate:"required,max=500"`
}

// Album builds the album for artistID.
func (f AlbumForm) Album(artistID uint64) *model.Album {
	return &model.Album{ArtistID: artistID, Title: strings.TrimSpace(f.Title), Songs: f.Songs}
}

// ShowForm books an artist at a venue.  IDs stay strings so that a bad value
// re-renders the form instead of failing the bind.
type ShowForm struct {
	ArtistID  string `form:"artist_id" validate:"required,number"`
	VenueID   string `form:"venue_id" validate:"required,number"`
	StartTime string `form:"start_time" validate:"required,flexdatetime"`
}

// Show builds the show.  Call it only after validation.
func (f ShowForm) Show() *model.Show {
	artistID, _ := strconv.ParseUint(f.ArtistID, 10, 64)
	venueID, _ := strconv.ParseUint(f.VenueID, 10, 64)
	start, _ := ParseTime(f.StartTime)
	return &model.Show{ArtistID: artistID, VenueID: venueID, StartTime: start}
}
