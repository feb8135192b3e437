package handler

import (
	"cmp"
	"slices"
	"time"

	"github.com/iliyamo/fyyur-trivia/internal/model"
)

// showTimeLayout is how show start times are exchanged with the pages.
const showTimeLayout = "2006-01-02T15:04:05.000Z"

// HomeView lists recently listed venues and artists.
type HomeView struct {
	Venues  []model.Venue
	Artists []model.Artist
}

// VenueSummary is one venue in a listing or search result.
type VenueSummary struct {
	ID               uint64
	Name             string
	NumUpcomingShows int
}

// AreaView groups the venues of one city.
type AreaView struct {
	City   string
	State  string
	Venues []VenueSummary
}

// SearchView is the result page of a name search.
type SearchView struct {
	Term  string
	Count int
	Data  []VenueSummary
}

// ArtistSummary is one row of the artist listing.
type ArtistSummary struct {
	ID   uint64
	Name string
}

// ShowRow is a show denormalised with both sides of the booking.
type ShowRow struct {
	ID              uint64
	VenueID         uint64
	VenueName       string
	VenueImageLink  string
	ArtistID        uint64
	ArtistName      string
	ArtistImageLink string
	StartTime       string
	Start           time.Time
}

// VenueView is the venue detail page.
type VenueView struct {
	Venue              *model.Venue
	PastShows          []ShowRow
	UpcomingShows      []ShowRow
	PastShowsCount     int
	UpcomingShowsCount int
}

// ArtistView is the artist detail page.
type ArtistView struct {
	Artist             *model.Artist
	Albums             []model.Album
	PastShows          []ShowRow
	UpcomingShows      []ShowRow
	PastShowsCount     int
	UpcomingShowsCount int
}

func showRow(s model.Show) ShowRow {
	row := ShowRow{
		ID:        s.ID,
		VenueID:   s.VenueID,
		ArtistID:  s.ArtistID,
		StartTime: s.StartTime.UTC().Format(showTimeLayout),
		Start:     s.StartTime.UTC(),
	}
	if s.Venue != nil {
		row.VenueName = s.Venue.Name
		row.VenueImageLink = s.Venue.ImageLink
	}
	if s.Artist != nil {
		row.ArtistName = s.Artist.Name
		row.ArtistImageLink = s.Artist.ImageLink
	}
	return row
}

// splitShows partitions shows into past and upcoming relative to now.  A
// show is upcoming only if it starts strictly after now.  Input order is
// kept.
func splitShows(shows []model.Show, now time.Time) (past, upcoming []ShowRow) {
	past, upcoming = []ShowRow{}, []ShowRow{}
	for _, s := range shows {
		if s.Upcoming(now) {
			upcoming = append(upcoming, showRow(s))
		} else {
			past = append(past, showRow(s))
		}
	}
	return past, upcoming
}

// groupByArea groups venues by (city, state).  Areas are sorted by city
// then state and venues within an area by name.
func groupByArea(venues []model.Venue, upcoming map[uint64]int) []AreaView {
	type area struct{ city, state string }
	index := map[area]int{}
	out := []AreaView{}
	for _, v := range venues {
		k := area{v.City, v.State}
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, AreaView{City: v.City, State: v.State})
		}
		out[i].Venues = append(out[i].Venues, VenueSummary{ID: v.ID, Name: v.Name, NumUpcomingShows: upcoming[v.ID]})
	}
	slices.SortFunc(out, func(a, b AreaView) int {
		return cmp.Or(cmp.Compare(a.City, b.City), cmp.Compare(a.State, b.State))
	})
	for _, a := range out {
		slices.SortStableFunc(a.Venues, func(x, y VenueSummary) int { return cmp.Compare(x.Name, y.Name) })
	}
	return out
}

func venueSummaries(venues []model.Venue, upcoming map[uint64]int) []VenueSummary {
	out := make([]VenueSummary, 0, len(venues))
	for _, v := range venues {
		out = append(out, VenueSummary{ID: v.ID, Name: v.Name, NumUpcomingShows: upcoming[v.ID]})
	}
	return out
}

func artistSummaries(artists []model.Artist, upcoming map[uint64]int) []VenueSummary {
	out := make([]VenueSummary, 0, len(artists))
	for _, a := range artists {
		out = append(out, VenueSummary{ID: a.ID, Name: a.Name, NumUpcomingShows: upcoming[a.ID]})
	}
	return out
}
