package validator

import (
	"time"

	"github.com/SAP-F-2025/logic-quiz-service/internal/models"
)

// QuestionRequest is the admin payload for creating or replacing a question.
// Level and type accept legacy aliases; ToDraft normalizes them.
type QuestionRequest struct {
	Level         string   `json:"level" validate:"required,quiz_level"`
	Type          string   `json:"type" validate:"required,question_type"`
	QuestionRu    string   `json:"question_ru" validate:"required,not_blank,max=2000"`
	QuestionKg    string   `json:"question_kg" validate:"required,not_blank,max=2000"`
	OptionsRu     []string `json:"options_ru" validate:"omitempty,max=20,dive,max=500"`
	OptionsKg     []string `json:"options_kg" validate:"omitempty,max=20,dive,max=500"`
	CorrectAnswer string   `json:"correct_answer" validate:"max=500"`
	Image         *string  `json:"image" validate:"omitempty,max=500"`
	IsActive      *bool    `json:"is_active"`
}

// ToDraft converts the request into a normalized draft. New questions are active unless stated otherwise.
func (r QuestionRequest) ToDraft() models.QuestionDraft {
	level, _ := models.ParseLevel(r.Level)
	questionType, _ := models.ParseQuestionType(r.Type)

	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}

	return NormalizeQuestionDraft(models.QuestionDraft{
		Level:         level,
		Type:          questionType,
		QuestionRu:    r.QuestionRu,
		QuestionKg:    r.QuestionKg,
		OptionsRu:     r.OptionsRu,
		OptionsKg:     r.OptionsKg,
		CorrectAnswer: r.CorrectAnswer,
		Image:         r.Image,
		IsActive:      active,
	})
}

// SetActiveRequest toggles question visibility
type SetActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// SettingsRequest updates the timing of one level
type SettingsRequest struct {
	TimeMinutes   int `json:"time_minutes" validate:"gt=0,max=600"`
	QuestionCount int `json:"question_count" validate:"gt=0,max=1000"`
}

// LevelSettingsRequest is one entry of a batch settings update
type LevelSettingsRequest struct {
	Level         string `json:"level" validate:"required,quiz_level"`
	TimeMinutes   int    `json:"time_minutes" validate:"gt=0,max=600"`
	QuestionCount int    `json:"question_count" validate:"gt=0,max=1000"`
}

// BatchSettingsRequest saves the settings of several levels at once
type BatchSettingsRequest struct {
	Settings []LevelSettingsRequest `json:"settings" validate:"required,min=1,dive"`
}

// ToModels converts the batch into settings rows with canonical levels
func (r BatchSettingsRequest) ToModels() []*models.TestSettings {
	out := make([]*models.TestSettings, 0, len(r.Settings))
	for _, s := range r.Settings {
		level, _ := models.ParseLevel(s.Level)
		out = append(out, &models.TestSettings{
			Level:         level,
			TimeMinutes:   s.TimeMinutes,
			QuestionCount: s.QuestionCount,
		})
	}
	return out
}

// StartSessionRequest opens a session on a level
type StartSessionRequest struct {
	Level string `json:"level" validate:"required,quiz_level"`
	Lang  string `json:"lang"`
}

// AnswerRequest is one submitted answer
type AnswerRequest struct {
	QuestionID uint   `json:"question_id" validate:"required"`
	Answer     string `json:"answer"`
}

// SubmitRequest carries the answers of a finished session
type SubmitRequest struct {
	Level            string          `json:"level" validate:"required,quiz_level"`
	Answers          []AnswerRequest `json:"answers" validate:"max=500,dive"`
	SessionStartTime *time.Time      `json:"session_start_time"`
}

// ToSubmissions converts the request answers into domain submissions
func (r SubmitRequest) ToSubmissions() []models.AnswerSubmission {
	out := make([]models.AnswerSubmission, 0, len(r.Answers))
	for _, a := range r.Answers {
		out = append(out, models.AnswerSubmission{QuestionID: a.QuestionID, Answer: a.Answer})
	}
	return out
}
