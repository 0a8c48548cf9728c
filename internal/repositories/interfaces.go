package repositories

import (
	"time"

	"github.com/SAP-F-2025/logic-quiz-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type QuestionFilters struct {
	Level     *models.Level        `json:"level"`
	Type      *models.QuestionType `json:"type"`
	IsActive  *bool                `json:"is_active"`
	Query     string               `json:"query"`
	Limit     int                  `json:"limit"`
	Offset    int                  `json:"offset"`
	SortBy    string               `json:"sort_by"`    // "created_at", "updated_at", "id", "level"
	SortOrder string               `json:"sort_order"` // "asc", "desc"
}

type ResultFilters struct {
	UserID     *string            `json:"user_id"`
	Level      *models.Level      `json:"level"`
	ColorLevel *models.ColorLevel `json:"color_level"`
	DateFrom   *time.Time         `json:"date_from"`
	DateTo     *time.Time         `json:"date_to"`
	Limit      int                `json:"limit"`
	Offset     int                `json:"offset"`
}
