package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/logic-quiz-service/internal/models"
)

// Rule names reported for question invariant violations
const (
	RuleQuestionTextRequired   = "question_text_required"
	RuleInvalidLevel           = "invalid_level"
	RuleInvalidType            = "invalid_type"
	RuleMinOptions             = "min_options"
	RuleOptionsParity          = "options_parity"
	RuleOptionNotBlank         = "option_not_blank"
	RuleUniqueOptions          = "unique_options"
	RuleCorrectAnswerRequired  = "correct_answer_required"
	RuleCorrectAnswerInOptions = "correct_answer_in_options"
	RulePositive               = "positive"
)

// MinLogicOptions is the smallest option list a logic question may have
const MinLogicOptions = 2

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates struct tags for any request
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	if err := bv.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// registerBusinessRules registers custom tags used by request DTOs
func (bv *BusinessValidator) registerBusinessRules() {
	// Level accepts canonical names and legacy aliases
	bv.validate.RegisterValidation("quiz_level", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseLevel(fl.Field().String())
		return ok
	})

	bv.validate.RegisterValidation("question_type", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseQuestionType(fl.Field().String())
		return ok
	})

	bv.validate.RegisterValidation("not_blank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// NormalizeQuestionDraft trims texts and clears grading fields of motivational questions.
// It returns a copy; the input is not modified.
func NormalizeQuestionDraft(draft models.QuestionDraft) models.QuestionDraft {
	draft.QuestionRu = strings.TrimSpace(draft.QuestionRu)
	draft.QuestionKg = strings.TrimSpace(draft.QuestionKg)

	if draft.Type == models.QuestionTypeMotivational {
		draft.OptionsRu = nil
		draft.OptionsKg = nil
		draft.CorrectAnswer = ""
	} else {
		draft.OptionsRu = trimAll(draft.OptionsRu)
		draft.OptionsKg = trimAll(draft.OptionsKg)
		draft.CorrectAnswer = strings.TrimSpace(draft.CorrectAnswer)
	}

	if draft.Image != nil {
		image := strings.TrimSpace(*draft.Image)
		if image == "" {
			draft.Image = nil
		} else {
			draft.Image = &image
		}
	}

	return draft
}

// ValidateQuestionDraft checks the bilingual question invariants on a normalized draft.
// Correct answers are compared exactly, the same way grading compares them.
func (bv *BusinessValidator) ValidateQuestionDraft(draft models.QuestionDraft) ValidationErrors {
	var errors ValidationErrors

	if !draft.Level.IsValid() {
		errors = append(errors, ValidationError{Field: "level", Message: "must be one of easy, medium", Value: draft.Level, Rule: RuleInvalidLevel})
	}
	if !draft.Type.IsValid() {
		errors = append(errors, ValidationError{Field: "type", Message: "must be one of logic, motivational", Value: draft.Type, Rule: RuleInvalidType})
	}
	if draft.QuestionRu == "" {
		errors = append(errors, ValidationError{Field: "question_ru", Message: "question text is required in Russian", Rule: RuleQuestionTextRequired})
	}
	if draft.QuestionKg == "" {
		errors = append(errors, ValidationError{Field: "question_kg", Message: "question text is required in Kyrgyz", Rule: RuleQuestionTextRequired})
	}

	if draft.Type == models.QuestionTypeLogic {
		errors = append(errors, bv.validateLogicOptions(draft)...)
	}

	return errors
}

func (bv *BusinessValidator) validateLogicOptions(draft models.QuestionDraft) ValidationErrors {
	var errors ValidationErrors

	if len(draft.OptionsRu) < MinLogicOptions {
		errors = append(errors, ValidationError{Field: "options_ru", Message: "a logic question needs at least 2 options", Value: len(draft.OptionsRu), Rule: RuleMinOptions})
	}
	if len(draft.OptionsRu) != len(draft.OptionsKg) {
		errors = append(errors, ValidationError{
			Field:   "options_kg",
			Message: "Russian and Kyrgyz option lists must have the same length",
			Value:   map[string]int{"ru": len(draft.OptionsRu), "kg": len(draft.OptionsKg)},
			Rule:    RuleOptionsParity,
		})
	}

	errors = append(errors, checkOptionList("options_ru", draft.OptionsRu)...)
	errors = append(errors, checkOptionList("options_kg", draft.OptionsKg)...)

	switch {
	case draft.CorrectAnswer == "":
		errors = append(errors, ValidationError{Field: "correct_answer", Message: "a logic question needs a correct answer", Rule: RuleCorrectAnswerRequired})
	case !contains(draft.OptionsRu, draft.CorrectAnswer):
		errors = append(errors, ValidationError{Field: "correct_answer", Message: "correct answer must be one of the Russian options", Value: draft.CorrectAnswer, Rule: RuleCorrectAnswerInOptions})
	}

	return errors
}

func checkOptionList(field string, options []string) ValidationErrors {
	var errors ValidationErrors
	seen := make(map[string]bool, len(options))
	for _, option := range options {
		if option == "" {
			errors = append(errors, ValidationError{Field: field, Message: "options must not be blank", Rule: RuleOptionNotBlank})
			continue
		}
		if seen[option] {
			errors = append(errors, ValidationError{Field: field, Message: "options must be unique", Value: option, Rule: RuleUniqueOptions})
			continue
		}
		seen[option] = true
	}
	return errors
}

// ValidateSettings checks that both timing values are positive
func (bv *BusinessValidator) ValidateSettings(timeMinutes, questionCount int) ValidationErrors {
	var errors ValidationErrors
	if timeMinutes <= 0 {
		errors = append(errors, ValidationError{Field: "time_minutes", Message: "must be a positive integer", Value: timeMinutes, Rule: RulePositive})
	}
	if questionCount <= 0 {
		errors = append(errors, ValidationError{Field: "question_count", Message: "must be a positive integer", Value: questionCount, Rule: RulePositive})
	}
	return errors
}

func trimAll(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.TrimSpace(v)
	}
	return out
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
