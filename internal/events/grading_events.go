package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the kinds of grading events this service emits
type EventType string

const (
	EventAnswerSubmitted       EventType = "answer.submitted"
	EventAnswerGraded          EventType = "answer.graded"
	EventManualGradingRequired EventType = "grading.manual_required"
	EventResultTotalUpdated    EventType = "result.total_updated"
)

const (
	eventSource  = "text-answer-service"
	eventVersion = "1.0"
)

// GradingEvent is the envelope for every event published by this service
type GradingEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewGradingEvent wraps data in a new envelope with a fresh ID
func NewGradingEvent(eventType EventType, data interface{}) *GradingEvent {
	return &GradingEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

type AnswerSubmittedEvent struct {
	AnswerID             uint   `json:"answer_id"`
	QuestionID           uint   `json:"question_id"`
	RevisionID           uint   `json:"revision_id"`
	ResultID             uint   `json:"result_id"`
	QuestionType         string `json:"question_type"`
	EvaluatedImmediately bool   `json:"evaluated_immediately"`
}

type AnswerGradedEvent struct {
	AnswerID   uint    `json:"answer_id"`
	QuestionID uint    `json:"question_id"`
	RevisionID uint    `json:"revision_id"`
	ResultID   uint    `json:"result_id"`
	FinalScore float64 `json:"final_score"`
	IsCorrect  bool    `json:"is_correct"`
	GradedBy   string  `json:"graded_by,omitempty"` // empty for automatic evaluation
}

type ManualGradingRequiredEvent struct {
	AnswerID   uint   `json:"answer_id"`
	QuestionID uint   `json:"question_id"`
	RevisionID uint   `json:"revision_id"`
	ResultID   uint   `json:"result_id"`
	QuizOwner  string `json:"quiz_owner,omitempty"`
}

type ResultTotalUpdatedEvent struct {
	ResultID uint    `json:"result_id"`
	UserID   string  `json:"user_id"`
	Total    float64 `json:"total"`
}
