package services

import (
	"context"
	"time"

	"github.com/SAP-F-2025/logic-quiz-service/internal/models"
	"github.com/SAP-F-2025/logic-quiz-service/internal/repositories"
)

// ===== RESPONSE DTOs =====

type QuestionListResponse struct {
	Questions []*models.Question `json:"questions"`
	Total     int64              `json:"total"`
	Page      int                `json:"page"`
	Size      int                `json:"size"`
}

type ResultListResponse struct {
	Results []*models.Result `json:"results"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	Size    int              `json:"size"`
}

type UserListResponse struct {
	Users []*models.User `json:"users"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
}

// Grading is the outcome of grading one submission against a grading set
type Grading struct {
	CorrectAnswers int                       `json:"correct_answers"`
	TotalQuestions int                       `json:"total_questions"`
	Percentage     int                       `json:"percentage"`
	ColorLevel     models.ColorLevel         `json:"color_level"`
	Trail          []models.AnswerTrailEntry `json:"trail"`
}

// ===== SERVICE INTERFACES =====

// QuestionBankService owns the question bank and the invariants of its records
type QuestionBankService interface {
	// Test taker reads
	ListActive(ctx context.Context, level models.Level, lang models.Language) ([]models.QuestionView, error)
	GetGradingSet(ctx context.Context, repo repositories.Repository, level models.Level) ([]models.GradingItem, error)

	// Curation
	Create(ctx context.Context, draft models.QuestionDraft) (*models.Question, error)
	Update(ctx context.Context, id uint, draft models.QuestionDraft) (*models.Question, error)
	Delete(ctx context.Context, id uint) (uint, error)
	SetActive(ctx context.Context, id uint, active bool) (*models.Question, error)
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	ListAll(ctx context.Context, filters repositories.QuestionFilters) (*QuestionListResponse, error)
}

// SessionService opens sessions and blocks retakes of completed levels
type SessionService interface {
	StartSession(ctx context.Context, userID string, level models.Level, lang models.Language) (*models.Session, error)
	GetSettings(ctx context.Context, level models.Level) (*models.TestSettings, error)
	Status(ctx context.Context, userID string) ([]models.LevelStatus, error)
}

// ScoringService grades submissions and records the single result per user and level
type ScoringService interface {
	Grade(answers []models.AnswerSubmission, gradingSet []models.GradingItem) *Grading
	Submit(ctx context.Context, userID string, level models.Level, answers []models.AnswerSubmission, sessionStart *time.Time) (*models.ScoreResult, error)
}

// ResultService is the append-only store of graded results
type ResultService interface {
	// Save persists result through repo, or the service's own repository when repo is nil
	Save(ctx context.Context, repo repositories.Repository, result *models.Result) error
	GetByID(ctx context.Context, id uint, requesterID string, isAdmin bool) (*models.Result, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Result, error)
	ListAll(ctx context.Context, filters repositories.ResultFilters) (*ResultListResponse, error)
}

// AdminService is the curation surface for questions, settings and users
type AdminService interface {
	CreateQuestion(ctx context.Context, draft models.QuestionDraft) (*models.Question, error)
	UpdateQuestion(ctx context.Context, id uint, draft models.QuestionDraft) (*models.Question, error)
	DeleteQuestion(ctx context.Context, id uint) (uint, error)
	SetQuestionActive(ctx context.Context, id uint, active bool) (*models.Question, error)
	GetQuestion(ctx context.Context, id uint) (*models.Question, error)
	ListQuestions(ctx context.Context, filters repositories.QuestionFilters) (*QuestionListResponse, error)

	UpdateSettings(ctx context.Context, level models.Level, timeMinutes, questionCount int) (*models.TestSettings, error)
	UpdateSettingsBatch(ctx context.Context, settings []*models.TestSettings) ([]*models.TestSettings, error)
	ListSettings(ctx context.Context) ([]*models.TestSettings, error)

	ListUsers(ctx context.Context, filters repositories.UserFilters) (*UserListResponse, error)
	ListUserResults(ctx context.Context, userID string) ([]*models.Result, error)
}

// ExportService renders results for offline review
type ExportService interface {
	ExportResults(ctx context.Context, filters repositories.ResultFilters) ([]byte, error)
}

// MetricsRecorder receives grading outcomes; implemented by the prometheus collectors
type MetricsRecorder interface {
	ObserveSubmission(level, colorLevel string)
	ObserveRejection(level, reason string)
}

type noopRecorder struct{}

func (noopRecorder) ObserveSubmission(level, colorLevel string) {}
func (noopRecorder) ObserveRejection(level, reason string)      {}

// ServiceManager wires and owns every service
type ServiceManager interface {
	QuestionBank() QuestionBankService
	Session() SessionService
	Scoring() ScoringService
	Result() ResultService
	Admin() AdminService
	Export() ExportService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
