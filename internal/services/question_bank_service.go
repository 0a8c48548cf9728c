package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/SAP-F-2025/logic-quiz-service/internal/events"
	"github.com/SAP-F-2025/logic-quiz-service/internal/models"
	"github.com/SAP-F-2025/logic-quiz-service/internal/repositories"
	"github.com/SAP-F-2025/logic-quiz-service/internal/storage"
	"github.com/SAP-F-2025/logic-quiz-service/internal/validator"
)

type questionBankService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	images    storage.ImageResolver

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewQuestionBankService(
	repo repositories.Repository,
	logger *slog.Logger,
	validator *validator.Validator,
	publisher events.EventPublisher,
	images storage.ImageResolver,
) QuestionBankService {
	if publisher == nil {
		publisher = events.NoopEventPublisher{}
	}
	if images == nil {
		images = storage.PassthroughResolver{}
	}

	return &questionBankService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		images:    images,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ===== TEST TAKER READS =====

// ListActive returns every active question of the level projected to lang, in a fresh random order.
// The projection has no correct answer field.
func (s *questionBankService) ListActive(ctx context.Context, level models.Level, lang models.Language) ([]models.QuestionView, error) {
	if !level.IsValid() {
		return nil, ErrInvalidLevel
	}

	questions, err := s.repo.Question().ListActiveByLevel(ctx, nil, level)
	if err != nil {
		return nil, fmt.Errorf("failed to list active questions: %w", err)
	}

	views := make([]models.QuestionView, 0, len(questions))
	for _, q := range questions {
		views = append(views, s.project(ctx, q, lang))
	}
	s.shuffle(views)

	return views, nil
}

// GetGradingSet is the only accessor that exposes correct answers
func (s *questionBankService) GetGradingSet(ctx context.Context, repo repositories.Repository, level models.Level) ([]models.GradingItem, error) {
	if !level.IsValid() {
		return nil, ErrInvalidLevel
	}
	if repo == nil {
		repo = s.repo
	}

	items, err := repo.Question().GetGradingSet(ctx, nil, level)
	if err != nil {
		return nil, fmt.Errorf("failed to load grading set: %w", err)
	}
	return items, nil
}

// ===== CURATION =====

func (s *questionBankService) Create(ctx context.Context, draft models.QuestionDraft) (*models.Question, error) {
	s.logger.Info("Creating question", "level", draft.Level, "type", draft.Type)

	draft = validator.NormalizeQuestionDraft(draft)
	if errs := s.validator.GetBusinessValidator().ValidateQuestionDraft(draft); len(errs) > 0 {
		return nil, errs
	}

	question := &models.Question{}
	applyDraft(question, draft)

	if err := s.repo.Question().Create(ctx, nil, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.logger.Info("Question created successfully", "question_id", question.ID)
	s.publish(ctx, events.NewQuestionEvent(events.EventQuestionCreated, question))

	return question, nil
}

// Update replaces the content of a question. Existing results are unaffected.
func (s *questionBankService) Update(ctx context.Context, id uint, draft models.QuestionDraft) (*models.Question, error) {
	s.logger.Info("Updating question", "question_id", id)

	draft = validator.NormalizeQuestionDraft(draft)
	if errs := s.validator.GetBusinessValidator().ValidateQuestionDraft(draft); len(errs) > 0 {
		return nil, errs
	}

	question, err := s.getQuestion(ctx, id)
	if err != nil {
		return nil, err
	}

	applyDraft(question, draft)

	if err := s.repo.Question().Update(ctx, nil, question); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to update question: %w", err)
	}

	s.logger.Info("Question updated successfully", "question_id", id)
	s.publish(ctx, events.NewQuestionEvent(events.EventQuestionUpdated, question))

	return question, nil
}

func (s *questionBankService) Delete(ctx context.Context, id uint) (uint, error) {
	s.logger.Info("Deleting question", "question_id", id)

	question, err := s.getQuestion(ctx, id)
	if err != nil {
		return 0, err
	}

	if err := s.repo.Question().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return 0, ErrQuestionNotFound
		}
		return 0, fmt.Errorf("failed to delete question: %w", err)
	}

	s.logger.Info("Question deleted successfully", "question_id", id)
	s.publish(ctx, events.NewQuestionEvent(events.EventQuestionDeleted, question))

	return id, nil
}

func (s *questionBankService) SetActive(ctx context.Context, id uint, active bool) (*models.Question, error) {
	question, err := s.getQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	if question.IsActive == active {
		return question, nil
	}

	question.IsActive = active
	if err := s.repo.Question().Update(ctx, nil, question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}

	s.logger.Info("Question visibility changed", "question_id", id, "is_active", active)
	s.publish(ctx, events.NewQuestionEvent(events.EventQuestionUpdated, question))

	return question, nil
}

func (s *questionBankService) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	return s.getQuestion(ctx, id)
}

func (s *questionBankService) ListAll(ctx context.Context, filters repositories.QuestionFilters) (*QuestionListResponse, error) {
	filters.Limit, filters.Offset = normalizePage(filters.Limit, filters.Offset)
	if filters.SortBy == "" {
		filters.SortBy = "created_at"
		filters.SortOrder = "desc"
	}

	questions, total, err := s.repo.Question().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	return &QuestionListResponse{
		Questions: questions,
		Total:     total,
		Page:      filters.Offset/filters.Limit + 1,
		Size:      filters.Limit,
	}, nil
}

// ===== HELPERS =====

func (s *questionBankService) getQuestion(ctx context.Context, id uint) (*models.Question, error) {
	question, err := s.repo.Question().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return question, nil
}

func (s *questionBankService) project(ctx context.Context, q *models.Question, lang models.Language) models.QuestionView {
	options := q.OptionsFor(lang)
	if options == nil {
		options = []string{}
	} else {
		options = append([]string(nil), options...)
	}

	return models.QuestionView{
		ID:       q.ID,
		Level:    q.Level,
		Type:     q.Type,
		Question: q.TextFor(lang),
		Options:  options,
		ImageURL: s.images.Resolve(ctx, q.Image),
	}
}

func (s *questionBankService) shuffle(views []models.QuestionView) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	s.rng.Shuffle(len(views), func(i, j int) {
		views[i], views[j] = views[j], views[i]
	})
}

func (s *questionBankService) publish(ctx context.Context, event *events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event", "event_type", event.Type, "error", err)
	}
}

func applyDraft(question *models.Question, draft models.QuestionDraft) {
	question.Level = draft.Level
	question.Type = draft.Type
	question.QuestionRu = draft.QuestionRu
	question.QuestionKg = draft.QuestionKg
	question.OptionsRu = draft.OptionsRu
	question.OptionsKg = draft.OptionsKg
	question.CorrectAnswer = draft.CorrectAnswer
	question.Image = draft.Image
	question.IsActive = draft.IsActive
}

// normalizePage clamps list paging to 1..100 items
func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
