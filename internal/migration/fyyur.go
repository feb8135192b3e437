package migration

import (
	"time"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// legacyAvailability is written into artist windows that predate the
// availability columns.
var legacyAvailability = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// Fyyur returns the booking site schema history.
func Fyyur() Set {
	return Set{
		Name:  "fyyur",
		Table: "fyyur_migrations",
		Steps: []*gormigrate.Migration{
			createVenuesArtistsShows(),
			addArtistAvailability(),
			requireArtistAvailability(),
			createAlbums(),
		},
	}
}

// The structs below freeze the schema as it was at each step; the live
// models in internal/model may keep evolving.

type venueV1 struct {
	ID                 uint64 `gorm:"primaryKey"`
	Name               string `gorm:"size:120;not null"`
	City               string `gorm:"size:120"`
	State              string `gorm:"size:120"`
	Address            string `gorm:"size:120"`
	Phone              string `gorm:"size:120"`
	ImageLink          string `gorm:"size:500"`
	FacebookLink       string `gorm:"size:120"`
	Website            string `gorm:"size:120"`
	SeekingTalent      bool   `gorm:"not null;default:false"`
	SeekingDescription string `gorm:"size:120"`
	Genres             string `gorm:"type:varchar(120)"`
}

func (venueV1) TableName() string { return "venues" }

type artistV1 struct {
	ID                 uint64 `gorm:"primaryKey"`
	Name               string `gorm:"size:120;not null"`
	City               string `gorm:"size:120"`
	State              string `gorm:"size:120"`
	Phone              string `gorm:"size:120"`
	Genres             string `gorm:"type:varchar(120)"`
	ImageLink          string `gorm:"size:500"`
	FacebookLink       string `gorm:"size:120"`
	Website            string `gorm:"size:120"`
	SeekingVenue       bool   `gorm:"not null;default:false"`
	SeekingDescription string `gorm:"size:120"`
}

func (artistV1) TableName() string { return "artists" }

type showV1 struct {
	ID        uint64    `gorm:"primaryKey"`
	VenueID   uint64    `gorm:"not null;index"`
	ArtistID  uint64    `gorm:"not null;index"`
	StartTime time.Time `gorm:"not null;index"`
	Venue     *venueV1  `gorm:"foreignKey:VenueID;constraint:OnDelete:CASCADE"`
	Artist    *artistV1 `gorm:"foreignKey:ArtistID;constraint:OnDelete:CASCADE"`
}

func (showV1) TableName() string { return "shows" }

func createVenuesArtistsShows() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "202003280000_create_venues_artists_shows",
		Migrate: func(tx *gorm.DB) error {
			return tx.Migrator().CreateTable(&venueV1{}, &artistV1{}, &showV1{})
		},
		Rollback: func(tx *gorm.DB) error {
			for _, table := range []string{"shows", "artists", "venues"} {
				if err := tx.Migrator().DropTable(table); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// artistV2 has an optional availability window.
type artistV2 struct {
	ID            uint64     `gorm:"primaryKey"`
	AvailableFrom *time.Time `gorm:"null"`
	AvailableTo   *time.Time `gorm:"null"`
}

func (artistV2) TableName() string { return "artists" }

func addArtistAvailability() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "202003291638_add_artist_availability",
		Migrate: func(tx *gorm.DB) error {
			for _, col := range []string{"AvailableFrom", "AvailableTo"} {
				if err := tx.Migrator().AddColumn(&artistV2{}, col); err != nil {
					return err
				}
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return withoutForeignKeys(tx, func(tx *gorm.DB) error {
				for _, col := range []string{"AvailableTo", "AvailableFrom"} {
					if err := tx.Migrator().DropColumn(&artistV2{}, col); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

// artistV3 makes the window mandatory.
type artistV3 struct {
	ID            uint64    `gorm:"primaryKey"`
	AvailableFrom time.Time `gorm:"not null"`
	AvailableTo   time.Time `gorm:"not null"`
}

func (artistV3) TableName() string { return "artists" }

func requireArtistAvailability() *gormigrate.Migration {
	columns := map[string]string{"AvailableFrom": "available_from", "AvailableTo": "available_to"}
	return &gormigrate.Migration{
		ID: "202003291726_require_artist_availability",
		Migrate: func(tx *gorm.DB) error {
			for _, field := range []string{"AvailableFrom", "AvailableTo"} {
				col := columns[field]
				if err := tx.Model(&artistV2{}).Where(col+" IS NULL").Update(col, legacyAvailability).Error; err != nil {
					return err
				}
			}
			return withoutForeignKeys(tx, func(tx *gorm.DB) error {
				for _, field := range []string{"AvailableFrom", "AvailableTo"} {
					if err := tx.Migrator().AlterColumn(&artistV3{}, field); err != nil {
						return err
					}
				}
				return nil
			})
		},
		Rollback: func(tx *gorm.DB) error {
			return withoutForeignKeys(tx, func(tx *gorm.DB) error {
				for _, field := range []string{"AvailableTo", "AvailableFrom"} {
					if err := tx.Migrator().AlterColumn(&artistV2{}, field); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

type albumV1 struct {
	ID       uint64    `gorm:"primaryKey"`
	ArtistID uint64    `gorm:"not null;index"`
	Title    string    `gorm:"size:120;not null"`
	Songs    string    `gorm:"size:500;not null"`
	Artist   *artistV3 `gorm:"foreignKey:ArtistID;constraint:OnDelete:CASCADE"`
}

func (albumV1) TableName() string { return "albums" }

func createAlbums() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "202003292144_create_albums",
		Migrate: func(tx *gorm.DB) error {
			return tx.Migrator().CreateTable(&albumV1{})
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable("albums")
		},
	}
}
