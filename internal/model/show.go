package model

import "time"

// Show books one artist at one venue at a start time.  Both references are
// required; start times are stored in UTC.
type Show struct {
    ID        uint64    `gorm:"primaryKey" json:"id"`
    VenueID   uint64    `gorm:"not null;index" json:"venue_id"`
    ArtistID  uint64    `gorm:"not null;index" json:"artist_id"`
    StartTime time.Time `gorm:"not null;index" json:"start_time"`
    Venue     *Venue    `gorm:"foreignKey:VenueID" json:"-"`
    Artist    *Artist   `gorm:"foreignKey:ArtistID" json:"-"`
}

// Upcoming reports whether the show starts strictly after now.
func (s Show) Upcoming(now time.Time) bool { return s.StartTime.After(now) }
