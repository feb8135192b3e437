package model

// Venue is a place that hosts shows.  Genres are stored as comma-joined
// text.  Deleting a venue removes its shows.
type Venue struct {
    ID                 uint64 `gorm:"primaryKey" json:"id"`
    Name               string `gorm:"size:120;not null" json:"name"`
    City               string `gorm:"size:120" json:"city"`
    State              string `gorm:"size:120" json:"state"`
    Address            string `gorm:"size:120" json:"address"`
    Phone              string `gorm:"size:120" json:"phone"`
    ImageLink          string `gorm:"size:500" json:"image_link"`
    FacebookLink       string `gorm:"size:120" json:"facebook_link"`
    Website            string `gorm:"size:120" json:"website"`
    SeekingTalent      bool   `gorm:"not null;default:false" json:"seeking_talent"`
    SeekingDescription string `gorm:"size:120" json:"seeking_description"`
    Genres             Genres `gorm:"type:varchar(120)" json:"genres"`
    Shows              []Show `gorm:"foreignKey:VenueID;constraint:OnDelete:CASCADE" json:"-"`
}
