package model

// Player accumulates finished quiz games.  Names are unique.
type Player struct {
    ID          uint64 `gorm:"primaryKey" json:"id"`
    Name        string `gorm:"size:25;not null;uniqueIndex:idx_players_name" json:"name"`
    GamesPlayed int    `gorm:"not null;default:0" json:"games_played"`
    TotalScore  int    `gorm:"not null;default:0" json:"total_score"`
}
