package models

import "time"

// DefaultTimeLimitMinutes applies when a level has no stored settings.
const DefaultTimeLimitMinutes = 20

type TestSettings struct {
	Level         Level     `json:"level" gorm:"primaryKey;size:20"`
	QuestionCount int       `json:"question_count" gorm:"not null;default:0"`
	TimeMinutes   int       `json:"time_minutes" gorm:"not null"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (TestSettings) TableName() string {
	return "test_settings"
}
