package repositories

import (
	"context"

	"github.com/SAP-F-2025/logic-quiz-service/internal/models"
)

// UserFilters defines filters for user queries
type UserFilters struct {
	Query  string // Search query for email
	Limit  int    // Page size
	Offset int    // Offset for pagination
}

// UserRepository reads users from the identity provider (read-only)
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)
	List(ctx context.Context, filters UserFilters) ([]*models.User, int64, error)
}
