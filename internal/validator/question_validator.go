package validator

import (
	"fmt"
	"regexp"

	"github.com/SAP-F-2025/text-answer-service/internal/models"
)

// QuestionValidator checks that a question revision carries grading data its
// evaluation policy can use.
type QuestionValidator struct{}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateQuestion validates a complete question revision
func (v *QuestionValidator) ValidateQuestion(question *models.Question) error {
	if question.MaxScore != nil && *question.MaxScore < 0 {
		return fmt.Errorf("question max score must not be negative")
	}

	data, err := question.Grading()
	if err != nil {
		return fmt.Errorf("invalid grading data: %w", err)
	}

	switch question.Type {
	case models.QuestionLongAnswer:
		return nil
	case models.QuestionShortAnswer:
		return v.validateShortAnswer(question.EvaluationMode, data)
	default:
		return fmt.Errorf("unsupported question type: %s", question.Type)
	}
}

func (v *QuestionValidator) validateShortAnswer(mode models.EvaluationMode, data models.GradingData) error {
	if mode != models.EvaluationAutomatic {
		return nil
	}
	if data.MatchMode == models.MatchManual {
		return fmt.Errorf("automatic evaluation requires a match mode other than manual")
	}
	if data.CorrectAnswer == "" {
		return fmt.Errorf("automatic evaluation requires a correct answer")
	}
	if data.MatchMode == models.MatchRegex {
		if _, err := regexp.Compile(data.CorrectAnswer); err != nil {
			return fmt.Errorf("correct answer is not a valid regular expression: %w", err)
		}
	}
	return nil
}
