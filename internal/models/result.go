package models

import (
	"time"

	"gorm.io/datatypes"
)

// Result is the single graded attempt of a user on a level. Rows are never updated.
type Result struct {
	ID             uint                                  `json:"id" gorm:"primaryKey"`
	UserID         string                                `json:"user_id" gorm:"size:255;not null;uniqueIndex:idx_results_user_level,priority:1"`
	Level          Level                                 `json:"level" gorm:"size:20;not null;uniqueIndex:idx_results_user_level,priority:2"`
	Score          int                                   `json:"score" gorm:"not null"`
	TotalQuestions int                                   `json:"total_questions" gorm:"not null"`
	Percentage     int                                   `json:"percentage" gorm:"not null"`
	ColorLevel     ColorLevel                            `json:"color_level" gorm:"size:20;not null"`
	Answers        datatypes.JSONSlice[AnswerTrailEntry] `json:"answers"`
	CompletedAt    time.Time                             `json:"completed_at" gorm:"not null;index"`

	User *User `json:"user,omitempty" gorm:"-"`
}

func (Result) TableName() string {
	return "results"
}

// AnswerTrailEntry freezes one graded answer together with the question text
// as it read at submission time.
type AnswerTrailEntry struct {
	QuestionID     uint         `json:"question_id"`
	QuestionType   QuestionType `json:"question_type"`
	QuestionTextRu string       `json:"question_text_ru"`
	QuestionTextKg string       `json:"question_text_kg"`
	GivenAnswer    string       `json:"given_answer"`
	CorrectAnswer  string       `json:"correct_answer"`
	IsCorrect      bool         `json:"is_correct"`
}

// AnswerSubmission is one answer sent by a test taker.
type AnswerSubmission struct {
	QuestionID uint   `json:"question_id"`
	Answer     string `json:"answer"`
}

// ScoreResult is returned to the test taker after grading.
type ScoreResult struct {
	ResultID         uint       `json:"result_id"`
	Score            int        `json:"score"`
	Percentage       int        `json:"percentage"`
	ColorLevel       ColorLevel `json:"color_level"`
	TotalQuestions   int        `json:"total_questions"`
	CorrectAnswers   int        `json:"correct_answers"`
	TimeLimitMinutes int        `json:"time_limit_minutes"`
	CompletedAt      time.Time  `json:"completed_at"`
}

// Session is the payload a test taker receives when starting a level.
type Session struct {
	Level            Level          `json:"level"`
	Language         Language       `json:"language"`
	TimeLimitMinutes int            `json:"time_limit_minutes"`
	QuestionCount    int            `json:"question_count"`
	StartedAt        time.Time      `json:"started_at"`
	Questions        []QuestionView `json:"questions"`
}

// LevelStatus tells whether a user may still take a level.
type LevelStatus struct {
	Level      Level      `json:"level"`
	Completed  bool       `json:"completed"`
	Percentage *int       `json:"percentage,omitempty"`
	ColorLevel ColorLevel `json:"color_level,omitempty"`
}
