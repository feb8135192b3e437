package migration

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// Trivia returns the quiz API schema history.
func Trivia() Set {
	return Set{
		Name:  "trivia",
		Table: "trivia_migrations",
		Steps: []*gormigrate.Migration{
			createCategoriesQuestions(),
			addQuestionRatings(),
			createPlayers(),
		},
	}
}

type categoryV1 struct {
	ID   uint64 `gorm:"primaryKey"`
	Type string `gorm:"size:120;not null"`
}

func (categoryV1) TableName() string { return "categories" }

type questionV1 struct {
	ID         uint64 `gorm:"primaryKey"`
	Question   string `gorm:"type:text;not null"`
	Answer     string `gorm:"type:text;not null"`
	Category   uint64 `gorm:"not null;index"`
	Difficulty int    `gorm:"not null"`
}

func (questionV1) TableName() string { return "questions" }

func createCategoriesQuestions() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "202004010000_create_categories_questions",
		Migrate: func(tx *gorm.DB) error {
			return tx.Migrator().CreateTable(&categoryV1{}, &questionV1{})
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable("questions", "categories")
		},
	}
}

// questionV2 adds the running rating aggregate.  Existing rows start at
// zero through the column defaults.
type questionV2 struct {
	ID           uint64  `gorm:"primaryKey"`
	NoOfRatings  int     `gorm:"not null;default:0"`
	TotalRatings int     `gorm:"not null;default:0"`
	Rating       float64 `gorm:"not null;default:0"`
}

func (questionV2) TableName() string { return "questions" }

var ratingColumns = []string{"NoOfRatings", "TotalRatings", "Rating"}

func addQuestionRatings() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "202004050000_add_question_ratings",
		Migrate: func(tx *gorm.DB) error {
			for _, col := range ratingColumns {
				if err := tx.Migrator().AddColumn(&questionV2{}, col); err != nil {
					return err
				}
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return withoutForeignKeys(tx, func(tx *gorm.DB) error {
				for i := len(ratingColumns) - 1; i >= 0; i-- {
					if err := tx.Migrator().DropColumn(&questionV2{}, ratingColumns[i]); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

type playerV1 struct {
	ID          uint64 `gorm:"primaryKey"`
	Name        string `gorm:"size:25;not null;uniqueIndex:idx_players_name"`
	GamesPlayed int    `gorm:"not null;default:0"`
	TotalScore  int    `gorm:"not null;default:0"`
}

func (playerV1) TableName() string { return "players" }

func createPlayers() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "202004060000_create_players",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.Migrator().CreateTable(&playerV1{}); err != nil {
				return err
			}
			// names match exactly; MySQL's default collation would fold case
			if tx.Dialector.Name() == "mysql" {
				return tx.Exec("ALTER TABLE players MODIFY name VARCHAR(25) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL").Error
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable("players")
		},
	}
}
