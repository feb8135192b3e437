package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/iliyamo/fyyur-trivia/internal/model"
)

// ShowRepo manages persistence for shows.
type ShowRepo struct {
	db *gorm.DB
}

// NewShowRepo constructs a ShowRepo with the given DB handle.
func NewShowRepo(db *gorm.DB) *ShowRepo {
	return &ShowRepo{db: db}
}

// List returns every show with its venue and artist, earliest first.
func (r *ShowRepo) List(ctx context.Context) ([]model.Show, error) {
	var out []model.Show
	err := r.db.WithContext(ctx).
		Preload("Venue").
		Preload("Artist").
		Order("start_time").Order("id").
		Find(&out).Error
	return out, err
}

// Get loads one show with its venue and artist.
func (r *ShowRepo) Get(ctx context.Context, id uint64) (*model.Show, error) {
	var s model.Show
	err := r.db.WithContext(ctx).Preload("Venue").Preload("Artist").First(&s, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrShowNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create books a show.  The artist and the venue must exist and the start
// time must fall inside the artist's availability window.  Every violated
// rule is reported: the returned error joins ErrArtistNotFound,
// ErrVenueNotFound and ErrArtistUnavailable as applicable.  On success s.Venue
// and s.Artist are populated.
func (r *ShowRepo) Create(ctx context.Context, s *model.Show) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var problems []error

		var artist model.Artist
		err := tx.First(&artist, s.ArtistID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			problems = append(problems, ErrArtistNotFound)
		case err != nil:
			return err
		case !artist.AvailableAt(s.StartTime):
			problems = append(problems, ErrArtistUnavailable)
		}

		var venue model.Venue
		err = tx.First(&venue, s.VenueID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			problems = append(problems, ErrVenueNotFound)
		case err != nil:
			return err
		}

		if len(problems) > 0 {
			return errors.Join(problems...)
		}

		s.StartTime = s.StartTime.UTC()
		if err := tx.Omit(clause.Associations).Create(s).Error; err != nil {
			return err
		}
		s.Artist, s.Venue = &artist, &venue
		return nil
	})
}
