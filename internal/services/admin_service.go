package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/logic-quiz-service/internal/events"
	"github.com/SAP-F-2025/logic-quiz-service/internal/models"
	"github.com/SAP-F-2025/logic-quiz-service/internal/repositories"
	"github.com/SAP-F-2025/logic-quiz-service/internal/validator"
)

type adminService struct {
	repo             repositories.Repository
	questionBank     QuestionBankService
	results          ResultService
	publisher        events.EventPublisher
	logger           *slog.Logger
	validator        *validator.Validator
	defaultTimeLimit int
}

func NewAdminService(
	repo repositories.Repository,
	questionBank QuestionBankService,
	results ResultService,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *validator.Validator,
	defaultTimeLimit int,
) AdminService {
	if publisher == nil {
		publisher = events.NoopEventPublisher{}
	}
	if defaultTimeLimit <= 0 {
		defaultTimeLimit = models.DefaultTimeLimitMinutes
	}
	return &adminService{
		repo:             repo,
		questionBank:     questionBank,
		results:          results,
		publisher:        publisher,
		logger:           logger,
		validator:        validator,
		defaultTimeLimit: defaultTimeLimit,
	}
}

// ===== QUESTIONS =====

func (s *adminService) CreateQuestion(ctx context.Context, draft models.QuestionDraft) (*models.Question, error) {
	return s.questionBank.Create(ctx, draft)
}

func (s *adminService) UpdateQuestion(ctx context.Context, id uint, draft models.QuestionDraft) (*models.Question, error) {
	return s.questionBank.Update(ctx, id, draft)
}

func (s *adminService) DeleteQuestion(ctx context.Context, id uint) (uint, error) {
	return s.questionBank.Delete(ctx, id)
}

func (s *adminService) SetQuestionActive(ctx context.Context, id uint, active bool) (*models.Question, error) {
	return s.questionBank.SetActive(ctx, id, active)
}

func (s *adminService) GetQuestion(ctx context.Context, id uint) (*models.Question, error) {
	return s.questionBank.GetByID(ctx, id)
}

func (s *adminService) ListQuestions(ctx context.Context, filters repositories.QuestionFilters) (*QuestionListResponse, error) {
	return s.questionBank.ListAll(ctx, filters)
}

// ===== SETTINGS =====

func (s *adminService) UpdateSettings(ctx context.Context, level models.Level, timeMinutes, questionCount int) (*models.TestSettings, error) {
	updated, err := s.UpdateSettingsBatch(ctx, []*models.TestSettings{{
		Level:         level,
		TimeMinutes:   timeMinutes,
		QuestionCount: questionCount,
	}})
	if err != nil {
		return nil, err
	}
	return updated[0], nil
}

// UpdateSettingsBatch validates every entry first and then writes them in one transaction
func (s *adminService) UpdateSettingsBatch(ctx context.Context, settings []*models.TestSettings) ([]*models.TestSettings, error) {
	if len(settings) == 0 {
		return nil, ValidationErrors{{Field: "settings", Message: "at least one level is required", Rule: "required"}}
	}

	var errs ValidationErrors
	seen := make(map[models.Level]bool, len(settings))
	for _, setting := range settings {
		if !setting.Level.IsValid() {
			return nil, ErrInvalidLevel
		}
		if seen[setting.Level] {
			return nil, NewBusinessRuleError("duplicate_level", "each level may appear once per batch",
				map[string]interface{}{"level": setting.Level}, nil)
		}
		seen[setting.Level] = true
		errs = append(errs, s.validator.GetBusinessValidator().ValidateSettings(setting.TimeMinutes, setting.QuestionCount)...)
	}
	if len(errs) > 0 {
		return nil, errs
	}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		for _, setting := range settings {
			if err := txRepo.TestSettings().Upsert(ctx, nil, setting); err != nil {
				return fmt.Errorf("failed to save settings for %s: %w", setting.Level, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, setting := range settings {
		s.logger.Info("Test settings updated", "level", setting.Level, "time_minutes", setting.TimeMinutes, "question_count", setting.QuestionCount)
		if err := s.publisher.Publish(ctx, events.NewSettingsUpdatedEvent(setting)); err != nil {
			s.logger.Warn("Failed to publish event", "event_type", events.EventSettingsUpdated, "error", err)
		}
	}

	return settings, nil
}

// ListSettings returns one entry per level; levels never configured report the default time limit
func (s *adminService) ListSettings(ctx context.Context) ([]*models.TestSettings, error) {
	stored, err := s.repo.TestSettings().List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}

	byLevel := make(map[models.Level]*models.TestSettings, len(stored))
	for _, setting := range stored {
		byLevel[setting.Level] = setting
	}

	out := make([]*models.TestSettings, 0, len(models.AllLevels()))
	for _, level := range models.AllLevels() {
		if setting, ok := byLevel[level]; ok {
			out = append(out, setting)
			continue
		}
		out = append(out, &models.TestSettings{Level: level, TimeMinutes: s.defaultTimeLimit})
	}
	return out, nil
}

// ===== USERS =====

func (s *adminService) ListUsers(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error) {
	filters.Limit, filters.Offset = normalizePage(filters.Limit, filters.Offset)

	users, total, err := s.repo.User().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return &UserListResponse{
		Users: users,
		Total: total,
		Page:  filters.Offset/filters.Limit + 1,
		Size:  filters.Limit,
	}, nil
}

func (s *adminService) ListUserResults(ctx context.Context, userID string) ([]*models.Result, error) {
	return s.results.ListByUser(ctx, userID)
}
