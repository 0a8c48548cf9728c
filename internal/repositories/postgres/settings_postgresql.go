package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SAP-F-2025/logic-quiz-service/internal/cache"
	"github.com/SAP-F-2025/logic-quiz-service/internal/models"
	"github.com/SAP-F-2025/logic-quiz-service/internal/repositories"
)

type TestSettingsPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
	hooks        *commitHooks
}

func NewTestSettingsPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.TestSettingsRepository {
	return newTestSettingsPostgreSQL(db, cacheManager, nil)
}

func newTestSettingsPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager, hooks *commitHooks) *TestSettingsPostgreSQL {
	return &TestSettingsPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
		hooks:        hooks,
	}
}

// GetByLevel returns the stored settings or ErrNotFound
func (s *TestSettingsPostgreSQL) GetByLevel(ctx context.Context, tx *gorm.DB, level models.Level) (*models.TestSettings, error) {
	db := s.getDB(tx)
	fetch := func() (interface{}, error) {
		var dbSettings models.TestSettings
		if err := db.WithContext(ctx).Where("level = ?", level).First(&dbSettings).Error; err != nil {
			return nil, translateError(err, fmt.Sprintf("failed to get settings for level %s", level))
		}
		return &dbSettings, nil
	}

	// reads inside a transaction may see uncommitted rows and bypass the cache
	if s.inTransaction(tx) {
		value, err := fetch()
		if err != nil {
			return nil, err
		}
		return value.(*models.TestSettings), nil
	}

	var settings models.TestSettings
	if err := s.cacheManager.Settings.CacheOrExecute(ctx, cache.SettingsKey(level), &settings, cache.SettingsCacheConfig.TTL, fetch); err != nil {
		return nil, err
	}

	return &settings, nil
}

// Upsert inserts or replaces the settings row of a level
func (s *TestSettingsPostgreSQL) Upsert(ctx context.Context, tx *gorm.DB, settings *models.TestSettings) error {
	db := s.getDB(tx)
	if err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "level"}},
		DoUpdates: clause.AssignmentColumns([]string{"question_count", "time_minutes", "updated_at"}),
	}).Create(settings).Error; err != nil {
		return translateError(err, "failed to save test settings")
	}

	level := settings.Level
	afterCommit(ctx, s.hooks, func(ctx context.Context) {
		cache.InvalidateSettingsCache(ctx, s.cacheManager, level)
	})

	return nil
}

func (s *TestSettingsPostgreSQL) List(ctx context.Context, tx *gorm.DB) ([]*models.TestSettings, error) {
	db := s.getDB(tx)
	var settings []*models.TestSettings
	if err := db.WithContext(ctx).Order("level ASC").Find(&settings).Error; err != nil {
		return nil, translateError(err, "failed to list test settings")
	}
	return settings, nil
}

func (s *TestSettingsPostgreSQL) inTransaction(tx *gorm.DB) bool {
	return tx != nil || s.hooks != nil
}

func (s *TestSettingsPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}
