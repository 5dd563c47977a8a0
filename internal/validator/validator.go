package validator

import (
	"reflect"
	"strings"

	apperrors "github.com/SAP-F-2025/text-answer-service/internal/errors"
	"github.com/SAP-F-2025/text-answer-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator is the main validator instance that combines all validation types
type Validator struct {
	structValidator   *validator.Validate
	questionValidator *QuestionValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	// Register all custom validators once
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:   structValidator,
		questionValidator: NewQuestionValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate validates struct tags and converts failures into field-level errors
func (v *Validator) Validate(s interface{}) error {
	if err := v.ValidateStruct(s); err != nil {
		if errs := apperrors.ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// Question returns the question validator
func (v *Validator) Question() *QuestionValidator {
	return v.questionValidator
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("evaluation_mode", validateEvaluationMode)
	validate.RegisterValidation("match_mode", validateMatchMode)
	validate.RegisterValidation("feedback_format", validateFeedbackFormat)
	validate.RegisterValidation("answer_variant", validateQuestionType)
	validate.RegisterValidation("not_blank", validateNotBlank)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
}

// FeedbackFormats lists the markup formats accepted for grader feedback.
var FeedbackFormats = []string{"plain_text", "filtered_html", "full_html"}

func validateQuestionType(fl validator.FieldLevel) bool {
	validTypes := []models.QuestionType{
		models.QuestionLongAnswer,
		models.QuestionShortAnswer,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}

func validateEvaluationMode(fl validator.FieldLevel) bool {
	switch models.EvaluationMode(fl.Field().String()) {
	case models.EvaluationManual, models.EvaluationAutomatic:
		return true
	}
	return false
}

func validateMatchMode(fl validator.FieldLevel) bool {
	validModes := []models.MatchMode{
		models.MatchManual,
		models.MatchCaseSensitive,
		models.MatchCaseInsensitive,
		models.MatchRegex,
		models.MatchFuzzy,
	}

	value := fl.Field().String()
	for _, validMode := range validModes {
		if string(validMode) == value {
			return true
		}
	}
	return false
}

func validateFeedbackFormat(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, format := range FeedbackFormats {
		if format == value {
			return true
		}
	}
	return false
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return !models.IsBlank(fl.Field().String())
}
