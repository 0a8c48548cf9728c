package repositories

import (
	"context"

	"github.com/SAP-F-2025/logic-quiz-service/internal/models"
	"gorm.io/gorm"
)

// QuestionRepository stores the bilingual question bank
type QuestionRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, question *models.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)
	Update(ctx context.Context, tx *gorm.DB, question *models.Question) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters QuestionFilters) ([]*models.Question, int64, error)
	ListActiveByLevel(ctx context.Context, tx *gorm.DB, level models.Level) ([]*models.Question, error)
	CountActiveByLevel(ctx context.Context, tx *gorm.DB, level models.Level) (int64, error)

	// GetGradingSet returns every active question of a level with its correct answer
	GetGradingSet(ctx context.Context, tx *gorm.DB, level models.Level) ([]models.GradingItem, error)
}

// TestSettingsRepository stores per-level time limits and question counts
type TestSettingsRepository interface {
	GetByLevel(ctx context.Context, tx *gorm.DB, level models.Level) (*models.TestSettings, error)
	Upsert(ctx context.Context, tx *gorm.DB, settings *models.TestSettings) error
	List(ctx context.Context, tx *gorm.DB) ([]*models.TestSettings, error)
}

// ResultRepository is append-only: results are never updated or deleted
type ResultRepository interface {
	// Create returns ErrDuplicate when the user already has a result for the level
	Create(ctx context.Context, tx *gorm.DB, result *models.Result) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Result, error)
	ExistsByUserAndLevel(ctx context.Context, tx *gorm.DB, userID string, level models.Level) (bool, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Result, error)
	List(ctx context.Context, tx *gorm.DB, filters ResultFilters) ([]*models.Result, int64, error)
}
