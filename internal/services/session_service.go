package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/logic-quiz-service/internal/models"
	"github.com/SAP-F-2025/logic-quiz-service/internal/repositories"
)

type sessionService struct {
	repo             repositories.Repository
	questionBank     QuestionBankService
	logger           *slog.Logger
	defaultTimeLimit int
	now              func() time.Time
}

func NewSessionService(repo repositories.Repository, questionBank QuestionBankService, logger *slog.Logger, defaultTimeLimit int) SessionService {
	if defaultTimeLimit <= 0 {
		defaultTimeLimit = models.DefaultTimeLimitMinutes
	}
	return &sessionService{
		repo:             repo,
		questionBank:     questionBank,
		logger:           logger,
		defaultTimeLimit: defaultTimeLimit,
		now:              time.Now,
	}
}

// StartSession hands out the full active set of a level unless the user already completed it.
// No state is kept between start and submit.
func (s *sessionService) StartSession(ctx context.Context, userID string, level models.Level, lang models.Language) (*models.Session, error) {
	if !level.IsValid() {
		return nil, ErrInvalidLevel
	}

	s.logger.Info("Starting session", "user_id", userID, "level", level, "lang", lang)

	completed, err := s.repo.Result().ExistsByUserAndLevel(ctx, nil, userID, level)
	if err != nil {
		return nil, fmt.Errorf("failed to check previous results: %w", err)
	}
	if completed {
		return nil, ErrAlreadyCompleted
	}

	settings, err := s.GetSettings(ctx, level)
	if err != nil {
		return nil, err
	}

	questions, err := s.questionBank.ListActive(ctx, level, lang)
	if err != nil {
		return nil, err
	}

	return &models.Session{
		Level:            level,
		Language:         lang,
		TimeLimitMinutes: settings.TimeMinutes,
		QuestionCount:    len(questions),
		StartedAt:        s.now().UTC(),
		Questions:        questions,
	}, nil
}

// GetSettings returns the stored settings, or the default time limit when the level has none
func (s *sessionService) GetSettings(ctx context.Context, level models.Level) (*models.TestSettings, error) {
	if !level.IsValid() {
		return nil, ErrInvalidLevel
	}

	settings, err := s.repo.TestSettings().GetByLevel(ctx, nil, level)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return &models.TestSettings{Level: level, TimeMinutes: s.defaultTimeLimit}, nil
		}
		return nil, fmt.Errorf("failed to get test settings: %w", err)
	}
	return settings, nil
}

func (s *sessionService) Status(ctx context.Context, userID string) ([]models.LevelStatus, error) {
	results, err := s.repo.Result().ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	byLevel := make(map[models.Level]*models.Result, len(results))
	for _, r := range results {
		byLevel[r.Level] = r
	}

	statuses := make([]models.LevelStatus, 0, len(models.AllLevels()))
	for _, level := range models.AllLevels() {
		status := models.LevelStatus{Level: level}
		if r, ok := byLevel[level]; ok {
			percentage := r.Percentage
			status.Completed = true
			status.Percentage = &percentage
			status.ColorLevel = r.ColorLevel
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
