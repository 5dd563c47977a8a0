package scoring

import (
	"fmt"

	"github.com/SAP-F-2025/text-answer-service/internal/models"
)

// EvaluationPolicy decides how answers to a question are scored and produces the
// raw score when scoring can happen without a grader.
type EvaluationPolicy interface {
	Variant() models.QuestionType
	Classify(question *models.Question) models.EvaluationMode
	Evaluate(question *models.Question, rawText string) (models.EvaluationOutcome, error)
	// MaxScore is the question's ceiling on its own scale.
	MaxScore(question *models.Question) float64
}

// PolicyFor selects the policy matching the question's declared type.
func PolicyFor(question *models.Question, longAnswerDefaultMax float64) (EvaluationPolicy, error) {
	switch question.Type {
	case models.QuestionLongAnswer:
		return LongAnswerPolicy{DefaultMaxScore: longAnswerDefaultMax}, nil
	case models.QuestionShortAnswer:
		return ShortAnswerPolicy{}, nil
	default:
		return nil, fmt.Errorf("no evaluation policy for question type %q", question.Type)
	}
}

// LongAnswerPolicy always defers to a human grader.
type LongAnswerPolicy struct {
	DefaultMaxScore float64
}

func (LongAnswerPolicy) Variant() models.QuestionType {
	return models.QuestionLongAnswer
}

func (LongAnswerPolicy) Classify(*models.Question) models.EvaluationMode {
	return models.EvaluationManual
}

func (LongAnswerPolicy) Evaluate(*models.Question, string) (models.EvaluationOutcome, error) {
	return models.EvaluationOutcome{Evaluated: false, RequiresManualReview: true}, nil
}

func (p LongAnswerPolicy) MaxScore(question *models.Question) float64 {
	return question.EffectiveMaxScore(p.DefaultMaxScore)
}

// ShortAnswerPolicy scores automatically when the question asks for it, awarding
// either the full maximum or nothing.
type ShortAnswerPolicy struct{}

func (ShortAnswerPolicy) Variant() models.QuestionType {
	return models.QuestionShortAnswer
}

func (ShortAnswerPolicy) Classify(question *models.Question) models.EvaluationMode {
	if question.EvaluationMode == models.EvaluationAutomatic {
		return models.EvaluationAutomatic
	}
	return models.EvaluationManual
}

func (p ShortAnswerPolicy) Evaluate(question *models.Question, rawText string) (models.EvaluationOutcome, error) {
	if p.Classify(question) == models.EvaluationManual {
		return models.EvaluationOutcome{Evaluated: false, RequiresManualReview: true}, nil
	}

	data, err := question.Grading()
	if err != nil {
		return models.EvaluationOutcome{}, fmt.Errorf("failed to decode grading data: %w", err)
	}

	outcome := models.EvaluationOutcome{Evaluated: true}
	if Matches(rawText, data) {
		outcome.RawScore = p.MaxScore(question)
	}
	return outcome, nil
}

func (ShortAnswerPolicy) MaxScore(question *models.Question) float64 {
	return question.EffectiveMaxScore(0)
}
