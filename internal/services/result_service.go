package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/logic-quiz-service/internal/models"
	"github.com/SAP-F-2025/logic-quiz-service/internal/repositories"
)

type resultService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewResultService(repo repositories.Repository, logger *slog.Logger) ResultService {
	return &resultService{
		repo:   repo,
		logger: logger,
	}
}

// Save inserts the result. The unique index on (user_id, level) turns a second insert into ErrResultConflict.
func (s *resultService) Save(ctx context.Context, repo repositories.Repository, result *models.Result) error {
	if repo == nil {
		repo = s.repo
	}

	if err := repo.Result().Create(ctx, nil, result); err != nil {
		if repositories.IsDuplicateError(err) {
			s.logger.Warn("Duplicate result rejected", "user_id", result.UserID, "level", result.Level)
			return ErrResultConflict
		}
		return fmt.Errorf("failed to save result: %w", err)
	}
	return nil
}

// GetByID returns a result to its owner or to an admin
func (s *resultService) GetByID(ctx context.Context, id uint, requesterID string, isAdmin bool) (*models.Result, error) {
	result, err := s.repo.Result().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	if !isAdmin && result.UserID != requesterID {
		return nil, NewPermissionError(requesterID, id, "result", "read", "not owner")
	}

	if isAdmin {
		s.attachUsers(ctx, []*models.Result{result})
	}
	return result, nil
}

// ListByUser returns the user's results, most recent first
func (s *resultService) ListByUser(ctx context.Context, userID string) ([]*models.Result, error) {
	results, err := s.repo.Result().ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	if results == nil {
		results = []*models.Result{}
	}
	return results, nil
}

// ListAll returns every result, most recent first, with name and email from the user directory
func (s *resultService) ListAll(ctx context.Context, filters repositories.ResultFilters) (*ResultListResponse, error) {
	filters.Limit, filters.Offset = normalizePage(filters.Limit, filters.Offset)

	results, total, err := s.repo.Result().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	if results == nil {
		results = []*models.Result{}
	}

	s.attachUsers(ctx, results)

	return &ResultListResponse{
		Results: results,
		Total:   total,
		Page:    filters.Offset/filters.Limit + 1,
		Size:    filters.Limit,
	}, nil
}

// attachUsers fills Result.User; directory failures leave the bare user ids
func (s *resultService) attachUsers(ctx context.Context, results []*models.Result) {
	if len(results) == 0 || s.repo.User() == nil {
		return
	}

	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.UserID)
	}

	users, err := s.repo.User().GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("Failed to resolve result users", "error", err)
		return
	}

	byID := make(map[string]*models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	for _, r := range results {
		r.User = byID[r.UserID]
	}
}
