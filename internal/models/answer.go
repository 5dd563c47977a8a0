package models

import (
	"strings"
	"time"
)

const (
	LongAnswerTable  = "long_answer_user_answers"
	ShortAnswerTable = "short_answer_user_answers"
)

// AnswerTable returns the storage table for a question type.
func AnswerTable(t QuestionType) (string, bool) {
	switch t {
	case QuestionLongAnswer:
		return LongAnswerTable, true
	case QuestionShortAnswer:
		return ShortAnswerTable, true
	default:
		return "", false
	}
}

// AnswerKey identifies the single answer slot of a question revision within a result.
type AnswerKey struct {
	QuestionQID uint `json:"question_id"`
	QuestionVID uint `json:"revision_id"`
	ResultID    uint `json:"result_id"`
}

// TextAnswer is one learner's response to one question within one result. Both
// answer variants share this row layout; the variant is carried by the table, so
// indexes are created per table by the migration rather than through tags.
type TextAnswer struct {
	ID             uint     `json:"answer_id" gorm:"primaryKey"`
	QuestionQID    uint     `json:"question_id" gorm:"column:question_qid;not null"`
	QuestionVID    uint     `json:"revision_id" gorm:"column:question_vid;not null"`
	ResultID       uint     `json:"result_id" gorm:"not null"`
	RawText        string   `json:"answer" gorm:"type:text"`
	Score          *float64 `json:"score"`
	IsEvaluated    bool     `json:"is_evaluated" gorm:"not null;default:false"`
	IsCorrect      bool     `json:"is_correct" gorm:"not null;default:false"`
	FeedbackText   string   `json:"answer_feedback" gorm:"type:text"`
	FeedbackFormat string   `json:"answer_feedback_format" gorm:"size:64"`

	CreatedAt time.Time `json:"submitted_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewAnswerFromSubmission builds an unevaluated answer for a first submission.
func NewAnswerFromSubmission(key AnswerKey, text string) *TextAnswer {
	return &TextAnswer{
		QuestionQID: key.QuestionQID,
		QuestionVID: key.QuestionVID,
		ResultID:    key.ResultID,
		RawText:     text,
	}
}

func (a *TextAnswer) Key() AnswerKey {
	return AnswerKey{QuestionQID: a.QuestionQID, QuestionVID: a.QuestionVID, ResultID: a.ResultID}
}

// AnswerState is the evaluation state of an answer slot.
type AnswerState string

const (
	StateUnsubmitted AnswerState = "unsubmitted"
	StateSubmitted   AnswerState = "submitted"
	StateEvaluated   AnswerState = "evaluated"
)

func (a *TextAnswer) State() AnswerState {
	switch {
	case a == nil:
		return StateUnsubmitted
	case a.IsEvaluated:
		return StateEvaluated
	default:
		return StateSubmitted
	}
}

// ScoreUpdate is the full set of fields written by a grading action. Score and
// IsEvaluated are always written together.
type ScoreUpdate struct {
	Score          float64
	IsEvaluated    bool
	IsCorrect      bool
	FeedbackText   string
	FeedbackFormat string
}

// AnswerSummary is one entry in a grading queue.
type AnswerSummary struct {
	AnswerID      uint      `json:"answer_id"`
	ResultID      uint      `json:"result_id"`
	QuestionQID   uint      `json:"question_id" gorm:"column:question_qid"`
	QuestionVID   uint      `json:"revision_id" gorm:"column:question_vid"`
	QuestionTitle string    `json:"question_title"`
	UserID        string    `json:"user_id"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// IsBlank reports whether a submission carries no answer text.
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}
