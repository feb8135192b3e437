package model

// Question is a trivia question.  Category holds the id of a Category row.
// Rating is the running mean TotalRatings/NoOfRatings and stays 0 until the
// first rating arrives.
type Question struct {
    ID           uint64  `gorm:"primaryKey" json:"id"`
    Question     string  `gorm:"type:text;not null" json:"question"`
    Answer       string  `gorm:"type:text;not null" json:"answer"`
    Category     uint64  `gorm:"not null;index" json:"category"`
    Difficulty   int     `gorm:"not null" json:"difficulty"`
    NoOfRatings  int     `gorm:"not null;default:0" json:"no_of_ratings"`
    TotalRatings int     `gorm:"not null;default:0" json:"total_ratings"`
    Rating       float64 `gorm:"not null;default:0" json:"rating"`
}
