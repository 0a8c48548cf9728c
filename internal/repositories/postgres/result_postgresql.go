package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/logic-quiz-service/internal/models"
	"github.com/SAP-F-2025/logic-quiz-service/internal/repositories"
)

type ResultPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewResultPostgreSQL(db *gorm.DB) repositories.ResultRepository {
	return &ResultPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

// Create inserts a result. The unique index idx_results_user_level turns a
// concurrent second submission into ErrDuplicate.
func (r *ResultPostgreSQL) Create(ctx context.Context, tx *gorm.DB, result *models.Result) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(result).Error; err != nil {
		return translateError(err, "failed to create result")
	}
	return nil
}

func (r *ResultPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Result, error) {
	db := r.getDB(tx)
	var result models.Result
	if err := db.WithContext(ctx).First(&result, id).Error; err != nil {
		return nil, translateError(err, fmt.Sprintf("failed to get result %d", id))
	}
	return &result, nil
}

func (r *ResultPostgreSQL) ExistsByUserAndLevel(ctx context.Context, tx *gorm.DB, userID string, level models.Level) (bool, error) {
	db := r.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.Result{}).
		Where("user_id = ? AND level = ?", userID, level).
		Count(&count).Error; err != nil {
		return false, translateError(err, "failed to check existing result")
	}
	return count > 0, nil
}

// ListByUser returns a user's results, most recent first
func (r *ResultPostgreSQL) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Result, error) {
	db := r.getDB(tx)
	var results []*models.Result
	if err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("completed_at DESC").
		Order("id DESC").
		Find(&results).Error; err != nil {
		return nil, translateError(err, "failed to list user results")
	}
	return results, nil
}

// List returns all results for administrators, most recent first
func (r *ResultPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ResultFilters) ([]*models.Result, int64, error) {
	db := r.getDB(tx)

	query := r.helpers.ApplyResultFilters(db.WithContext(ctx).Model(&models.Result{}), filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "failed to count results")
	}

	var results []*models.Result
	query = r.helpers.ApplyPagination(query.Order("completed_at DESC").Order("id DESC"), filters.Limit, filters.Offset)
	if err := query.Find(&results).Error; err != nil {
		return nil, 0, translateError(err, "failed to list results")
	}

	return results, total, nil
}

func (r *ResultPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}
