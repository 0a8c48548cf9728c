package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/logic-quiz-service/internal/events"
	"github.com/SAP-F-2025/logic-quiz-service/internal/models"
	"github.com/SAP-F-2025/logic-quiz-service/internal/repositories"
)

type scoringService struct {
	repo         repositories.Repository
	questionBank QuestionBankService
	sessions     SessionService
	results      ResultService
	publisher    events.EventPublisher
	metrics      MetricsRecorder
	logger       *slog.Logger
	now          func() time.Time
}

func NewScoringService(
	repo repositories.Repository,
	questionBank QuestionBankService,
	sessions SessionService,
	results ResultService,
	publisher events.EventPublisher,
	metrics MetricsRecorder,
	logger *slog.Logger,
) ScoringService {
	if publisher == nil {
		publisher = events.NoopEventPublisher{}
	}
	if metrics == nil {
		metrics = noopRecorder{}
	}
	return &scoringService{
		repo:         repo,
		questionBank: questionBank,
		sessions:     sessions,
		results:      results,
		publisher:    publisher,
		metrics:      metrics,
		logger:       logger,
		now:          time.Now,
	}
}

// Grade compares answers with the grading set. Only logic questions count, by exact string equality.
// Answers to unknown questions are dropped and a repeated question id counts once.
func (s *scoringService) Grade(answers []models.AnswerSubmission, gradingSet []models.GradingItem) *Grading {
	index := make(map[uint]models.GradingItem, len(gradingSet))
	total := 0
	for _, item := range gradingSet {
		index[item.ID] = item
		if item.Type == models.QuestionTypeLogic {
			total++
		}
	}

	correct := 0
	seen := make(map[uint]bool, len(answers))
	trail := make([]models.AnswerTrailEntry, 0, len(answers))
	for _, answer := range answers {
		item, ok := index[answer.QuestionID]
		if !ok || seen[answer.QuestionID] {
			continue
		}
		seen[answer.QuestionID] = true

		isCorrect := item.Type == models.QuestionTypeLogic && answer.Answer == item.CorrectAnswer
		if isCorrect {
			correct++
		}

		trail = append(trail, models.AnswerTrailEntry{
			QuestionID:     item.ID,
			QuestionType:   item.Type,
			QuestionTextRu: item.QuestionRu,
			QuestionTextKg: item.QuestionKg,
			GivenAnswer:    answer.Answer,
			CorrectAnswer:  item.CorrectAnswer,
			IsCorrect:      isCorrect,
		})
	}

	percentage := models.Percentage(correct, total)
	return &Grading{
		CorrectAnswers: correct,
		TotalQuestions: total,
		Percentage:     percentage,
		ColorLevel:     models.ClassifyPercentage(percentage),
		Trail:          trail,
	}
}

// Submit grades a finished session and stores its result.
// A late submission is rejected before anything is read or written.
func (s *scoringService) Submit(ctx context.Context, userID string, level models.Level, answers []models.AnswerSubmission, sessionStart *time.Time) (*models.ScoreResult, error) {
	if !level.IsValid() {
		return nil, ErrInvalidLevel
	}

	s.logger.Info("Submitting answers", "user_id", userID, "level", level, "answers", len(answers))

	settings, err := s.sessions.GetSettings(ctx, level)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if sessionStart != nil {
		elapsed := now.Sub(*sessionStart)
		if elapsed < 0 {
			elapsed = 0
		}
		limit := time.Duration(settings.TimeMinutes) * time.Minute
		if elapsed > limit {
			s.logger.Warn("Submission after time limit", "user_id", userID, "level", level, "elapsed", elapsed.String(), "limit_minutes", settings.TimeMinutes)
			s.metrics.ObserveRejection(string(level), "time_expired")
			return nil, ErrTimeExpired
		}
	}

	var result *models.Result
	var grading *Grading
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		completed, err := txRepo.Result().ExistsByUserAndLevel(ctx, nil, userID, level)
		if err != nil {
			return fmt.Errorf("failed to check previous results: %w", err)
		}
		if completed {
			return ErrAlreadyCompleted
		}

		gradingSet, err := s.questionBank.GetGradingSet(ctx, txRepo, level)
		if err != nil {
			return err
		}

		grading = s.Grade(answers, gradingSet)
		result = &models.Result{
			UserID:         userID,
			Level:          level,
			Score:          grading.CorrectAnswers,
			TotalQuestions: grading.TotalQuestions,
			Percentage:     grading.Percentage,
			ColorLevel:     grading.ColorLevel,
			Answers:        grading.Trail,
			CompletedAt:    now,
		}

		return s.results.Save(ctx, txRepo, result)
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyCompleted):
			s.metrics.ObserveRejection(string(level), "already_completed")
		case errors.Is(err, ErrResultConflict):
			s.metrics.ObserveRejection(string(level), "conflict")
		}
		return nil, err
	}

	s.logger.Info("Submission graded",
		"user_id", userID,
		"level", level,
		"result_id", result.ID,
		"score", result.Score,
		"percentage", result.Percentage,
		"color_level", result.ColorLevel,
	)
	s.metrics.ObserveSubmission(string(level), string(result.ColorLevel))

	if err := s.publisher.Publish(ctx, events.NewResultCompletedEvent(result)); err != nil {
		s.logger.Warn("Failed to publish event", "event_type", events.EventResultCompleted, "result_id", result.ID, "error", err)
	}

	return &models.ScoreResult{
		ResultID:         result.ID,
		Score:            result.Score,
		Percentage:       result.Percentage,
		ColorLevel:       result.ColorLevel,
		TotalQuestions:   result.TotalQuestions,
		CorrectAnswers:   grading.CorrectAnswers,
		TimeLimitMinutes: settings.TimeMinutes,
		CompletedAt:      result.CompletedAt,
	}, nil
}
