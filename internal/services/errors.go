package services

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/logic-quiz-service/internal/validator"
)

// ===== SENTINEL ERRORS =====

var (
	// Question errors
	ErrQuestionNotFound = errors.New("question not found")

	// Level errors
	ErrInvalidLevel = errors.New("invalid level")

	// Attempt errors
	ErrAlreadyCompleted = errors.New("level already completed")
	ErrTimeExpired      = errors.New("time limit expired")
	ErrResultConflict   = errors.New("result already exists")
	ErrResultNotFound   = errors.New("result not found")

	// Generic errors
	ErrValidationFailed = validator.ErrValidationFailed
	ErrUserNotFound     = errors.New("user not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
)

// ===== TYPED ERRORS =====

type ValidationError = validator.ValidationError
type ValidationErrors = validator.ValidationErrors

// BusinessRuleError reports a domain rule that blocks an otherwise valid request
type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
	Err     error                  `json:"-"`
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule %s violated: %s", e.Rule, e.Message)
}

func (e *BusinessRuleError) Unwrap() error {
	return e.Err
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}, err error) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
		Err:     err,
	}
}

// PermissionError reports an action the caller may not perform on a resource
type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID uint   `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s cannot %s %s %d: %s", e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func (e *PermissionError) Unwrap() error {
	return ErrForbidden
}

func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}
