package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/iliyamo/fyyur-trivia/internal/model"
)

// PlayerRepo manages quiz players.
type PlayerRepo struct {
	db *gorm.DB
}

// NewPlayerRepo constructs a PlayerRepo with the given DB handle.
func NewPlayerRepo(db *gorm.DB) *PlayerRepo {
	return &PlayerRepo{db: db}
}

// GetOrCreate returns the player with exactly this name, creating it when
// absent.  Concurrent callers with the same name end up with the same row:
// the loser of the insert race hits the unique index and re-reads.
func (r *PlayerRepo) GetOrCreate(ctx context.Context, name string) (*model.Player, error) {
	db := r.db.WithContext(ctx)
	var p model.Player
	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("name = ?", name).First(&p).Error
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		p = model.Player{Name: name}
		return tx.Create(&p).Error
	})
	if err == nil {
		return &p, nil
	}
	var existing model.Player
	if db.Where("name = ?", name).First(&existing).Error == nil {
		return &existing, nil
	}
	return nil, err
}

// Get returns one player or ErrPlayerNotFound.
func (r *PlayerRepo) Get(ctx context.Context, id uint64) (*model.Player, error) {
	var p model.Player
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPlayerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// RecordGame adds one finished game worth score points and returns the
// updated player.
func (r *PlayerRepo) RecordGame(ctx context.Context, id uint64, score int) (*model.Player, error) {
	var p model.Player
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Player{}).Where("id = ?", id).Updates(map[string]any{
			"games_played": gorm.Expr("games_played + 1"),
			"total_score":  gorm.Expr("total_score + ?", score),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPlayerNotFound
		}
		return tx.First(&p, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}
