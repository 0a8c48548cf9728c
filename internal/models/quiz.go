package models

import "strings"

// Level identifies one of the independent quiz tracks.
type Level string

const (
	LevelEasy   Level = "easy"
	LevelMedium Level = "medium"
)

// AllLevels lists every level the service accepts.
func AllLevels() []Level {
	return []Level{LevelEasy, LevelMedium}
}

func (l Level) IsValid() bool {
	return l == LevelEasy || l == LevelMedium
}

// ParseLevel normalizes external input. Legacy clients send "weak" for the easy track.
func ParseLevel(raw string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "easy", "weak":
		return LevelEasy, true
	case "medium":
		return LevelMedium, true
	default:
		return "", false
	}
}

type QuestionType string

const (
	// QuestionTypeLogic questions have one correct option and count toward the score.
	QuestionTypeLogic QuestionType = "logic"
	// QuestionTypeMotivational questions are free text, shown but never graded.
	QuestionTypeMotivational QuestionType = "motivational"
)

func (t QuestionType) IsValid() bool {
	return t == QuestionTypeLogic || t == QuestionTypeMotivational
}

// ParseQuestionType accepts the canonical names plus the aliases "single" and "text".
func ParseQuestionType(raw string) (QuestionType, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "logic", "single":
		return QuestionTypeLogic, true
	case "motivational", "text":
		return QuestionTypeMotivational, true
	default:
		return "", false
	}
}

type Language string

const (
	LanguageRu Language = "ru"
	LanguageKg Language = "kg"
)

// ParseLanguage returns kg only for an explicit kg request; everything else falls back to ru.
func ParseLanguage(raw string) Language {
	if strings.ToLower(strings.TrimSpace(raw)) == string(LanguageKg) {
		return LanguageKg
	}
	return LanguageRu
}

type ColorLevel string

const (
	ColorWeak   ColorLevel = "weak"
	ColorMedium ColorLevel = "medium"
	ColorHigh   ColorLevel = "high"
)

// ClassifyPercentage maps a score percentage to its band:
// 0-40 weak, 41-70 medium, 71-100 high.
func ClassifyPercentage(percentage int) ColorLevel {
	switch {
	case percentage <= 40:
		return ColorWeak
	case percentage <= 70:
		return ColorMedium
	default:
		return ColorHigh
	}
}

// Percentage returns correct/total*100 rounded half up, or 0 when total is 0.
func Percentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*correct + total) / (2 * total)
}
