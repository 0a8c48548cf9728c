package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/logic-quiz-service/internal/models"
)

const (
	EventResultCompleted = "result.completed"
	EventQuestionCreated = "question.created"
	EventQuestionUpdated = "question.updated"
	EventQuestionDeleted = "question.deleted"
	EventSettingsUpdated = "settings.updated"
)

const (
	eventSource  = "logic-quiz-service"
	eventVersion = "1.0"
)

// Event is the envelope every domain event is published in
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

type ResultCompletedData struct {
	ResultID       uint              `json:"result_id"`
	UserID         string            `json:"user_id"`
	Level          models.Level      `json:"level"`
	Score          int               `json:"score"`
	TotalQuestions int               `json:"total_questions"`
	Percentage     int               `json:"percentage"`
	ColorLevel     models.ColorLevel `json:"color_level"`
	CompletedAt    time.Time         `json:"completed_at"`
}

type QuestionChangedData struct {
	QuestionID uint                `json:"question_id"`
	Level      models.Level        `json:"level"`
	Type       models.QuestionType `json:"type"`
	IsActive   bool                `json:"is_active"`
}

type SettingsUpdatedData struct {
	Level         models.Level `json:"level"`
	TimeMinutes   int          `json:"time_minutes"`
	QuestionCount int          `json:"question_count"`
}

func NewResultCompletedEvent(result *models.Result) *Event {
	return newEvent(EventResultCompleted, ResultCompletedData{
		ResultID:       result.ID,
		UserID:         result.UserID,
		Level:          result.Level,
		Score:          result.Score,
		TotalQuestions: result.TotalQuestions,
		Percentage:     result.Percentage,
		ColorLevel:     result.ColorLevel,
		CompletedAt:    result.CompletedAt,
	})
}

// NewQuestionEvent builds a question.created, question.updated or question.deleted event
func NewQuestionEvent(eventType string, question *models.Question) *Event {
	return newEvent(eventType, QuestionChangedData{
		QuestionID: question.ID,
		Level:      question.Level,
		Type:       question.Type,
		IsActive:   question.IsActive,
	})
}

func NewSettingsUpdatedEvent(settings *models.TestSettings) *Event {
	return newEvent(EventSettingsUpdated, SettingsUpdatedData{
		Level:         settings.Level,
		TimeMinutes:   settings.TimeMinutes,
		QuestionCount: settings.QuestionCount,
	})
}

func newEvent(eventType string, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Source:    eventSource,
		Version:   eventVersion,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}
