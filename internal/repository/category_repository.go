package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/iliyamo/fyyur-trivia/internal/model"
)

// CategoryRepo manages trivia categories.
type CategoryRepo struct {
	db *gorm.DB
}

// NewCategoryRepo constructs a CategoryRepo with the given DB handle.
func NewCategoryRepo(db *gorm.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

// List returns every category ordered by id.
func (r *CategoryRepo) List(ctx context.Context) ([]model.Category, error) {
	var out []model.Category
	err := r.db.WithContext(ctx).Order("id").Find(&out).Error
	return out, err
}

// Get returns one category or ErrCategoryNotFound.
func (r *CategoryRepo) Get(ctx context.Context, id uint64) (*model.Category, error) {
	var c model.Category
	err := r.db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts c and assigns the generated ID.
func (r *CategoryRepo) Create(ctx context.Context, c *model.Category) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(c).Error
	})
}
