package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/iliyamo/fyyur-trivia/internal/model"
)

// ArtistRepo manages persistence for artists and their albums.
type ArtistRepo struct {
	db *gorm.DB
}

// NewArtistRepo constructs an ArtistRepo with the given DB handle.
func NewArtistRepo(db *gorm.DB) *ArtistRepo {
	return &ArtistRepo{db: db}
}

// Create inserts a and assigns the generated ID.
func (r *ArtistRepo) Create(ctx context.Context, a *model.Artist) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(a).Error
	})
}

// Update overwrites every column of the artist identified by a.ID.
func (r *ArtistRepo) Update(ctx context.Context, a *model.Artist) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &model.Artist{}, a.ID, ErrArtistNotFound); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Save(a).Error
	})
}

// Get loads an artist with albums and shows (each with its venue).
func (r *ArtistRepo) Get(ctx context.Context, id uint64) (*model.Artist, error) {
	var a model.Artist
	err := r.db.WithContext(ctx).
		Preload("Shows", func(db *gorm.DB) *gorm.DB { return db.Order("start_time") }).
		Preload("Shows.Venue").
		Preload("Albums", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&a, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrArtistNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns all artists ordered by name.
func (r *ArtistRepo) List(ctx context.Context) ([]model.Artist, error) {
	var out []model.Artist
	err := r.db.WithContext(ctx).Order("name").Find(&out).Error
	return out, err
}

// Recent returns up to n artists, newest first.
func (r *ArtistRepo) Recent(ctx context.Context, n int) ([]model.Artist, error) {
	var out []model.Artist
	err := r.db.WithContext(ctx).Order("id DESC").Limit(n).Find(&out).Error
	return out, err
}

// Search matches term against artist names, case-insensitively.
func (r *ArtistRepo) Search(ctx context.Context, term string) ([]model.Artist, error) {
	var out []model.Artist
	err := r.db.WithContext(ctx).
		Where(containsClause("name"), containsPattern(term)).
		Order("name").
		Find(&out).Error
	return out, err
}

// UpcomingCounts maps artist IDs to the number of shows starting after now.
func (r *ArtistRepo) UpcomingCounts(ctx context.Context, now time.Time) (map[uint64]int, error) {
	return upcomingCounts(r.db.WithContext(ctx), "artist_id", now)
}

// Delete removes the artist together with its shows and albums.
func (r *ArtistRepo) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("artist_id = ?", id).Delete(&model.Show{}).Error; err != nil {
			return err
		}
		if err := tx.Where("artist_id = ?", id).Delete(&model.Album{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Artist{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrArtistNotFound
		}
		return nil
	})
}

// AddAlbum attaches an album to an existing artist.
func (r *ArtistRepo) AddAlbum(ctx context.Context, al *model.Album) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &model.Artist{}, al.ArtistID, ErrArtistNotFound); err != nil {
			return err
		}
		return tx.Create(al).Error
	})
}
