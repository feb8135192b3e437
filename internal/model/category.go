package model

// Category groups trivia questions.
type Category struct {
    ID   uint64 `gorm:"primaryKey" json:"id"`
    Type string `gorm:"size:120;not null" json:"type"`
}
