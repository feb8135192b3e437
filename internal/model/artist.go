package model

import "time"

// Artist performs shows and owns albums.  AvailableFrom/AvailableTo bound the
// start times at which the artist can be booked; both ends are inclusive.
type Artist struct {
    ID                 uint64    `gorm:"primaryKey" json:"id"`
    Name               string    `gorm:"size:120;not null" json:"name"`
    City               string    `gorm:"size:120" json:"city"`
    State              string    `gorm:"size:120" json:"state"`
    Phone              string    `gorm:"size:120" json:"phone"`
    Genres             Genres    `gorm:"type:varchar(120)" json:"genres"`
    ImageLink          string    `gorm:"size:500" json:"image_link"`
    FacebookLink       string    `gorm:"size:120" json:"facebook_link"`
    Website            string    `gorm:"size:120" json:"website"`
    SeekingVenue       bool      `gorm:"not null;default:false" json:"seeking_venue"`
    SeekingDescription string    `gorm:"size:120" json:"seeking_description"`
    AvailableFrom      time.Time `gorm:"not null" json:"available_from"`
    AvailableTo        time.Time `gorm:"not null" json:"available_to"`
    Shows              []Show    `gorm:"foreignKey:ArtistID;constraint:OnDelete:CASCADE" json:"-"`
    Albums             []Album   `gorm:"foreignKey:ArtistID;constraint:OnDelete:CASCADE" json:"-"`
}

// AvailableAt reports whether t falls inside the availability window.
func (a Artist) AvailableAt(t time.Time) bool {
    return !t.Before(a.AvailableFrom) && !t.After(a.AvailableTo)
}
