package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/iliyamo/fyyur-trivia/internal/model"
)

// VenueRepo manages persistence for venues.
type VenueRepo struct {
	db *gorm.DB
}

// NewVenueRepo constructs a VenueRepo with the given DB handle.
func NewVenueRepo(db *gorm.DB) *VenueRepo {
	return &VenueRepo{db: db}
}

// Create inserts v and assigns the generated ID.
func (r *VenueRepo) Create(ctx context.Context, v *model.Venue) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(v).Error
	})
}

// Update overwrites every column of the venue identified by v.ID.
func (r *VenueRepo) Update(ctx context.Context, v *model.Venue) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &model.Venue{}, v.ID, ErrVenueNotFound); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Save(v).Error
	})
}

// Get loads a venue with its shows (and each show's artist) ordered by
// start time.
func (r *VenueRepo) Get(ctx context.Context, id uint64) (*model.Venue, error) {
	var v model.Venue
	err := r.db.WithContext(ctx).
		Preload("Shows", func(db *gorm.DB) *gorm.DB { return db.Order("start_time") }).
		Preload("Shows.Artist").
		First(&v, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrVenueNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// List returns all venues ordered by city, state and name.
func (r *VenueRepo) List(ctx context.Context) ([]model.Venue, error) {
	var out []model.Venue
	err := r.db.WithContext(ctx).Order("city").Order("state").Order("name").Find(&out).Error
	return out, err
}

// Recent returns up to n venues, newest first.
func (r *VenueRepo) Recent(ctx context.Context, n int) ([]model.Venue, error) {
	var out []model.Venue
	err := r.db.WithContext(ctx).Order("id DESC").Limit(n).Find(&out).Error
	return out, err
}

// Search matches term against venue names, case-insensitively.
func (r *VenueRepo) Search(ctx context.Context, term string) ([]model.Venue, error) {
	var out []model.Venue
	err := r.db.WithContext(ctx).
		Where(containsClause("name"), containsPattern(term)).
		Order("name").
		Find(&out).Error
	return out, err
}

// UpcomingCounts maps venue IDs to the number of shows starting after now.
// Venues without upcoming shows are absent from the map.
func (r *VenueRepo) UpcomingCounts(ctx context.Context, now time.Time) (map[uint64]int, error) {
	return upcomingCounts(r.db.WithContext(ctx), "venue_id", now)
}

// Delete removes the venue and its shows in one transaction.
func (r *VenueRepo) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("venue_id = ?", id).Delete(&model.Show{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Venue{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrVenueNotFound
		}
		return nil
	})
}

// exists returns notFound unless a row of dest's table has the given id.
func exists(tx *gorm.DB, dest any, id uint64, notFound error) error {
	var n int64
	if err := tx.Model(dest).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func upcomingCounts(db *gorm.DB, col string, now time.Time) (map[uint64]int, error) {
	var rows []struct {
		OwnerID uint64
		N       int
	}
	err := db.Model(&model.Show{}).
		Select(col+" AS owner_id, COUNT(*) AS n").
		Where("start_time > ?", now.UTC()).
		Group(col).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uint64]int, len(rows))
	for _, row := range rows {
		out[row.OwnerID] = row.N
	}
	return out, nil
}
