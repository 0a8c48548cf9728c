package models

import (
	"time"

	"gorm.io/datatypes"
)

type Question struct {
	ID    uint         `json:"id" gorm:"primaryKey"`
	Level Level        `json:"level" gorm:"size:20;not null;index:idx_questions_level_active,priority:1"`
	Type  QuestionType `json:"type" gorm:"size:20;not null"`

	// Bilingual content. Options are parallel lists: OptionsKg[i] translates OptionsRu[i].
	QuestionRu string                      `json:"question_ru" gorm:"type:text;not null"`
	QuestionKg string                      `json:"question_kg" gorm:"type:text;not null"`
	OptionsRu  datatypes.JSONSlice[string] `json:"options_ru"`
	OptionsKg  datatypes.JSONSlice[string] `json:"options_kg"`

	// CorrectAnswer is always expressed in the ru option vocabulary.
	CorrectAnswer string `json:"correct_answer" gorm:"type:text"`

	// Image is an object key (or absolute URL) resolved at read time.
	Image    *string `json:"image" gorm:"size:500"`
	IsActive bool    `json:"is_active" gorm:"not null;index:idx_questions_level_active,priority:2"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string {
	return "questions"
}

// TextFor returns the question text in lang.
func (q *Question) TextFor(lang Language) string {
	if lang == LanguageKg {
		return q.QuestionKg
	}
	return q.QuestionRu
}

// OptionsFor returns the option list in lang; motivational questions have none.
func (q *Question) OptionsFor(lang Language) []string {
	if q.Type != QuestionTypeLogic {
		return nil
	}
	if lang == LanguageKg {
		return []string(q.OptionsKg)
	}
	return []string(q.OptionsRu)
}

// QuestionDraft is the admin-authored content of a question before persistence.
type QuestionDraft struct {
	Level         Level
	Type          QuestionType
	QuestionRu    string
	QuestionKg    string
	OptionsRu     []string
	OptionsKg     []string
	CorrectAnswer string
	Image         *string
	IsActive      bool
}

// QuestionView is what a test taker sees. It has no correct answer field.
type QuestionView struct {
	ID       uint         `json:"id"`
	Level    Level        `json:"level"`
	Type     QuestionType `json:"type"`
	Question string       `json:"question"`
	Options  []string     `json:"options"`
	ImageURL *string      `json:"image_url,omitempty"`
}

// GradingItem carries what the scorer needs for one question, including the
// texts frozen into the answer trail.
type GradingItem struct {
	ID            uint         `json:"id"`
	Type          QuestionType `json:"type"`
	CorrectAnswer string       `json:"correct_answer"`
	QuestionRu    string       `json:"question_ru"`
	QuestionKg    string       `json:"question_kg"`
}
