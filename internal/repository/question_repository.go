package repository

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"gorm.io/gorm"

	"github.com/iliyamo/fyyur-trivia/internal/model"
)

// QuestionRepo manages trivia questions.
type QuestionRepo struct {
	db *gorm.DB

	// Pick returns an index in [0, n).  Quizzes use it to choose among the
	// remaining candidates; tests replace it for determinism.
	Pick func(n int) int
}

// NewQuestionRepo constructs a QuestionRepo with the given DB handle.
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db, Pick: rand.IntN}
}

// Page returns the questions of a 1-indexed page ordered by id together with
// the total number of questions.  A page past the last one is empty, however
// large its number.
func (r *QuestionRepo) Page(ctx context.Context, page, size int) ([]model.Question, int64, error) {
	page, size = max(page, 1), max(size, 1)
	db := r.db.WithContext(ctx)
	var total int64
	if err := db.Model(&model.Question{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if page-1 > (math.MaxInt-1)/size || int64(page-1)*int64(size) >= total {
		return []model.Question{}, total, nil
	}
	var out []model.Question
	err := db.Order("id").Offset((page - 1) * size).Limit(size).Find(&out).Error
	return out, total, err
}

// Search matches term against question text, case-insensitively.
func (r *QuestionRepo) Search(ctx context.Context, term string) ([]model.Question, error) {
	var out []model.Question
	err := r.db.WithContext(ctx).
		Where(containsClause("question"), containsPattern(term)).
		Order("id").
		Find(&out).Error
	return out, err
}

// ByCategory lists the questions of one category.  It does not check that
// the category exists.
func (r *QuestionRepo) ByCategory(ctx context.Context, categoryID uint64) ([]model.Question, error) {
	var out []model.Question
	err := r.db.WithContext(ctx).Where("category = ?", categoryID).Order("id").Find(&out).Error
	return out, err
}

// Create inserts q.  Its category must exist.
func (r *QuestionRepo) Create(ctx context.Context, q *model.Question) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &model.Category{}, q.Category, ErrCategoryNotFound); err != nil {
			return err
		}
		q.NoOfRatings, q.TotalRatings, q.Rating = 0, 0, 0
		return tx.Create(q).Error
	})
}

// Delete removes one question.
func (r *QuestionRepo) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&model.Question{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrQuestionNotFound
		}
		return nil
	})
}

// rateSQL folds one rating into the running mean in a single statement.
// rating is assigned first: MySQL evaluates SET left to right against the
// values already assigned, the other dialects against the old row.  The sum
// is cast to a floating type so MySQL does not round a DECIMAL quotient.
const rateSQL = `UPDATE questions
SET rating = CAST((total_ratings + ?) AS %s) / (no_of_ratings + 1),
    total_ratings = total_ratings + ?,
    no_of_ratings = no_of_ratings + 1
WHERE id = ?`

// floatType names a double precision type in db's dialect.
func floatType(db *gorm.DB) string {
	switch db.Dialector.Name() {
	case "mysql":
		return "DOUBLE"
	case "postgres":
		return "DOUBLE PRECISION"
	}
	return "REAL"
}

// Rate records one rating and returns the updated question.
func (r *QuestionRepo) Rate(ctx context.Context, id uint64, rating int) (*model.Question, error) {
	var q model.Question
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(fmt.Sprintf(rateSQL, floatType(tx)), rating, rating, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrQuestionNotFound
		}
		return tx.First(&q, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// Next picks a random question that is not in exclude.  A zero categoryID
// draws from every category.  ErrNoQuestionsLeft is returned when nothing
// remains.
func (r *QuestionRepo) Next(ctx context.Context, categoryID uint64, exclude []uint64) (*model.Question, error) {
	db := r.db.WithContext(ctx)
	query := db.Model(&model.Question{})
	if categoryID != 0 {
		query = query.Where("category = ?", categoryID)
	}
	if len(exclude) > 0 {
		query = query.Where("id NOT IN ?", exclude)
	}
	var ids []uint64
	if err := query.Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, ErrNoQuestionsLeft
	}
	var q model.Question
	if err := db.First(&q, ids[r.Pick(len(ids))]).Error; err != nil {
		return nil, err
	}
	return &q, nil
}
