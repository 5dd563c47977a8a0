package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	QuestionLongAnswer  QuestionType = "long_answer"
	QuestionShortAnswer QuestionType = "short_answer"
)

type EvaluationMode string

const (
	EvaluationManual    EvaluationMode = "manual"
	EvaluationAutomatic EvaluationMode = "automatic"
)

// MatchMode selects how a short answer is compared with its canonical answer.
type MatchMode string

const (
	MatchManual          MatchMode = "manual"
	MatchCaseSensitive   MatchMode = "case_sensitive"
	MatchCaseInsensitive MatchMode = "case_insensitive"
	MatchRegex           MatchMode = "regex"
	MatchFuzzy           MatchMode = "fuzzy"
)

// Question is one published revision of a text question. A new revision is a new
// row with the same QID.
type Question struct {
	QID            uint           `json:"question_id" gorm:"column:qid;not null;index"`
	VID            uint           `json:"revision_id" gorm:"column:vid;primaryKey;autoIncrement:false"`
	Type           QuestionType   `json:"type" gorm:"not null;size:32" validate:"required,question_type"`
	Title          string         `json:"title" gorm:"size:255"`
	MaxScore       *float64       `json:"max_score" validate:"omitempty,min=0"`
	EvaluationMode EvaluationMode `json:"evaluation_mode" gorm:"not null;size:16;default:manual" validate:"required,evaluation_mode"`
	GradingData    datatypes.JSON `json:"grading_data" gorm:"type:jsonb"`
	OwnerID        string         `json:"owner_id" gorm:"size:255"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string {
	return "text_questions"
}

// GradingData is the type-specific payload stored alongside a question revision.
type GradingData struct {
	Rubric        string    `json:"rubric,omitempty"`
	CorrectAnswer string    `json:"correct_answer,omitempty"`
	MatchMode     MatchMode `json:"match_mode,omitempty"`
}

// Grading decodes GradingData. An empty column decodes to the zero value.
func (q *Question) Grading() (GradingData, error) {
	var data GradingData
	if len(q.GradingData) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(q.GradingData, &data); err != nil {
		return data, err
	}
	return data, nil
}

// SetGrading encodes data into the GradingData column.
func (q *Question) SetGrading(data GradingData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	q.GradingData = datatypes.JSON(raw)
	return nil
}

// EffectiveMaxScore returns the configured maximum, or fallback when none is stored.
func (q *Question) EffectiveMaxScore(fallback float64) float64 {
	if q.MaxScore == nil {
		return fallback
	}
	return *q.MaxScore
}

// QuizRelationship binds a question revision into a quiz revision with the weight
// that question carries inside that quiz.
type QuizRelationship struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	QuizVID     uint    `json:"quiz_revision_id" gorm:"column:quiz_vid;not null;uniqueIndex:idx_quiz_relationship_pair"`
	QuestionVID uint    `json:"question_revision_id" gorm:"column:question_vid;not null;uniqueIndex:idx_quiz_relationship_pair"`
	MaxScore    float64 `json:"max_score" gorm:"not null"`
}

func (QuizRelationship) TableName() string {
	return "quiz_relationships"
}
