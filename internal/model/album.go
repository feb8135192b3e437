package model

// Album belongs to exactly one artist.
type Album struct {
    ID       uint64 `gorm:"primaryKey" json:"id"`
    ArtistID uint64 `gorm:"not null;index" json:"artist_id"`
    Title    string `gorm:"size:120;not null" json:"title"`
    Songs    string `gorm:"size:500;not null" json:"songs"`
}
