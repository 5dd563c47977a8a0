package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/text-answer-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("resource conflict")

	// Answer specific errors
	ErrAnswerNotFound     = errors.New("answer not found")
	ErrAnswerAccessDenied = errors.New("access denied to answer")

	// Question and quiz specific errors
	ErrQuestionNotFound         = errors.New("question not found")
	ErrQuestionRevisionExists   = errors.New("question revision already exists")
	ErrRelationshipNotFound     = errors.New("question is not part of this quiz revision")
	ErrUnsupportedQuestionType  = errors.New("unsupported question type")
	ErrContentPermissionDenied  = errors.New("permission denied for managing quiz content")
	ErrResultNotFound           = errors.New("result not found")
	ErrResultArchived           = errors.New("result is archived and can no longer change")
	ErrDeletePermissionDenied   = errors.New("permission denied for deleting responses")
	ErrGradingPermissionDenied  = errors.New("permission denied for grading")
	ErrUnsupportedAnswerVariant = errors.New("unsupported answer variant")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared error types from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors
type ConfigurationError = apperrors.ConfigurationError

type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID uint   `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Err        error  `json:"-"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %d", pe.UserID, pe.Action, pe.Resource, pe.ResourceID)
}

func (pe *PermissionError) Unwrap() error {
	return pe.Err
}

// ===== ERROR HELPERS =====

func NewPermissionError(userID string, resourceID uint, resource, action string, cause error) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Err:        cause,
	}
}

func newConfigurationError(resource, reason string, cause error, context map[string]interface{}) error {
	return apperrors.NewConfigurationError(resource, reason, cause, context)
}

// fieldError wraps a single field failure as ValidationErrors
func fieldError(err *ValidationError) error {
	return ValidationErrors{*err}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	if IsConfiguration(err) {
		return false
	}
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrAnswerNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrResultNotFound)
}

// IsUnauthorized checks if error represents a permission failure
func IsUnauthorized(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrAnswerAccessDenied) ||
		errors.Is(err, ErrGradingPermissionDenied) ||
		errors.Is(err, ErrDeletePermissionDenied) ||
		errors.Is(err, ErrContentPermissionDenied)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *ValidationError
	return errors.As(err, &single)
}

// IsConfiguration checks if error is a data-integrity problem that blocks scoring
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrQuestionRevisionExists) ||
		errors.Is(err, ErrResultArchived)
}
