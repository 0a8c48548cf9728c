package postgres

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/logic-quiz-service/internal/cache"
	"github.com/SAP-F-2025/logic-quiz-service/internal/models"
	"github.com/SAP-F-2025/logic-quiz-service/internal/repositories"
	"gorm.io/gorm"
)

type QuestionPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
	hooks        *commitHooks
}

func NewQuestionPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.QuestionRepository {
	return newQuestionPostgreSQL(db, cacheManager, nil)
}

func newQuestionPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager, hooks *commitHooks) *QuestionPostgreSQL {
	return &QuestionPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cacheManager,
		hooks:        hooks,
	}
}

// ===== BASIC CRUD OPERATIONS =====

// Create creates a new question and invalidates the level's active set
func (q *QuestionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	db := q.getDB(tx)
	if err := db.WithContext(ctx).Create(question).Error; err != nil {
		return translateError(err, "failed to create question")
	}

	q.invalidateLevels(ctx, question.Level)

	return nil
}

// GetByID retrieves a question by ID, active or not
func (q *QuestionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	db := q.getDB(tx)
	var question models.Question
	if err := db.WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, translateError(err, fmt.Sprintf("failed to get question %d", id))
	}
	return &question, nil
}

// Update saves every column of the question. Both the old and new level caches are dropped.
func (q *QuestionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	db := q.getDB(tx)

	var previous models.Question
	if err := db.WithContext(ctx).Select("id, level").First(&previous, question.ID).Error; err != nil {
		return translateError(err, fmt.Sprintf("failed to get question %d before update", question.ID))
	}

	if err := db.WithContext(ctx).Save(question).Error; err != nil {
		return translateError(err, "failed to update question")
	}

	q.invalidateLevels(ctx, previous.Level, question.Level)

	return nil
}

// Delete removes a question. Results keep their own frozen copy of its text.
func (q *QuestionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := q.getDB(tx)

	var question models.Question
	if err := db.WithContext(ctx).Select("id, level").First(&question, id).Error; err != nil {
		return translateError(err, fmt.Sprintf("failed to get question %d before delete", id))
	}

	if err := db.WithContext(ctx).Delete(&models.Question{}, id).Error; err != nil {
		return translateError(err, "failed to delete question")
	}

	q.invalidateLevels(ctx, question.Level)

	return nil
}

// ===== QUERY OPERATIONS =====

// List returns questions for the admin panel, newest first by default
func (q *QuestionPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	db := q.getDB(tx)

	query := q.helpers.ApplyQuestionFilters(db.WithContext(ctx).Model(&models.Question{}), filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "failed to count questions")
	}

	var questions []*models.Question
	query = q.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Find(&questions).Error; err != nil {
		return nil, 0, translateError(err, "failed to list questions")
	}

	return questions, total, nil
}

// ListActiveByLevel returns the full active set of a level in id order.
// Callers shuffle; the cached copy is never reordered.
func (q *QuestionPostgreSQL) ListActiveByLevel(ctx context.Context, tx *gorm.DB, level models.Level) ([]*models.Question, error) {
	db := q.getDB(tx)
	fetch := func() (interface{}, error) {
		var questions []*models.Question
		if err := db.WithContext(ctx).
			Where("level = ? AND is_active = ?", level, true).
			Order("id ASC").
			Find(&questions).Error; err != nil {
			return nil, translateError(err, "failed to list active questions")
		}
		return questions, nil
	}

	// reads inside a transaction bypass the cache
	if q.inTransaction(tx) {
		value, err := fetch()
		if err != nil {
			return nil, err
		}
		return value.([]*models.Question), nil
	}

	var questions []*models.Question
	err := q.cacheManager.Question.CacheOrExecute(ctx, cache.ActiveQuestionsKey(level), &questions, cache.QuestionCacheConfig.TTL, fetch)
	if err != nil {
		return nil, err
	}
	return questions, nil
}

func (q *QuestionPostgreSQL) CountActiveByLevel(ctx context.Context, tx *gorm.DB, level models.Level) (int64, error) {
	db := q.getDB(tx)
	var count int64
	if err := db.WithContext(ctx).
		Model(&models.Question{}).
		Where("level = ? AND is_active = ?", level, true).
		Count(&count).Error; err != nil {
		return 0, translateError(err, "failed to count active questions")
	}
	return count, nil
}

// GetGradingSet reads straight from the database so grading never sees a stale answer key
func (q *QuestionPostgreSQL) GetGradingSet(ctx context.Context, tx *gorm.DB, level models.Level) ([]models.GradingItem, error) {
	db := q.getDB(tx)
	var items []models.GradingItem
	if err := db.WithContext(ctx).
		Model(&models.Question{}).
		Select("id, type, correct_answer, question_ru, question_kg").
		Where("level = ? AND is_active = ?", level, true).
		Order("id ASC").
		Scan(&items).Error; err != nil {
		return nil, translateError(err, "failed to load grading set")
	}
	return items, nil
}

func (q *QuestionPostgreSQL) invalidateLevels(ctx context.Context, levels ...models.Level) {
	afterCommit(ctx, q.hooks, func(ctx context.Context) {
		cache.InvalidateQuestionCache(ctx, q.cacheManager, levels...)
	})
}

func (q *QuestionPostgreSQL) inTransaction(tx *gorm.DB) bool {
	return tx != nil || q.hooks != nil
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (q *QuestionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return q.db
}
