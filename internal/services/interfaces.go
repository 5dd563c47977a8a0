package services

import (
	"context"

	"github.com/SAP-F-2025/text-answer-service/internal/models"
	"github.com/SAP-F-2025/text-answer-service/internal/repositories"
	"gorm.io/gorm"
)

// ===== SERVICE INTERFACES =====

// ResponseEvaluator drives an answer through submission, grading and review
type ResponseEvaluator interface {
	Submit(ctx context.Context, user *models.UserContext, req *SubmitAnswerRequest) (*SubmitAnswerResponse, error)
	GradeManually(ctx context.Context, grader *models.UserContext, req *GradeAnswerRequest) (*GradeAnswerResponse, error)
	GetFeedback(ctx context.Context, viewer *models.UserContext, key models.AnswerKey) (*models.FeedbackView, error)
	// LoadExisting returns ErrAnswerNotFound when nothing was submitted for key.
	LoadExisting(ctx context.Context, viewer *models.UserContext, key models.AnswerKey) (*models.TextAnswer, error)

	// Cascade deletion
	DeleteForRevision(ctx context.Context, user *models.UserContext, questionQID, questionVID uint) (int64, error)
	DeleteForAllRevisions(ctx context.Context, user *models.UserContext, questionQID uint) (int64, error)
	DeleteResult(ctx context.Context, user *models.UserContext, resultID uint) (int64, error)
}

// ResultAggregator keeps a result's total in step with its answers
type ResultAggregator interface {
	// UpdateTotal recomputes and stores the total for resultID using tx.
	UpdateTotal(ctx context.Context, tx *gorm.DB, resultID uint) (float64, error)
}

// GradingQueueService lists answers waiting for a grader
type GradingQueueService interface {
	ListUnscored(ctx context.Context, grader *models.UserContext, req *UnscoredRequest) (*UnscoredResponse, error)
	ExportUnscored(ctx context.Context, grader *models.UserContext, req *UnscoredRequest) ([]byte, error)
}

// CatalogService registers the question revisions, quiz weights and results that
// answers refer to
type CatalogService interface {
	RegisterQuestion(ctx context.Context, user *models.UserContext, req *RegisterQuestionRequest) (*models.Question, error)
	SetQuizWeight(ctx context.Context, user *models.UserContext, req *SetQuizWeightRequest) (*models.QuizRelationship, error)
	OpenResult(ctx context.Context, user *models.UserContext, req *OpenResultRequest) (*models.Result, error)
}

// ===== ANSWER STORES =====

// AnswerStores holds the store for each answer variant
type AnswerStores struct {
	Long  repositories.AnswerRepository
	Short repositories.AnswerRepository
}

func (s AnswerStores) For(t models.QuestionType) (repositories.AnswerRepository, error) {
	switch t {
	case models.QuestionLongAnswer:
		return s.Long, nil
	case models.QuestionShortAnswer:
		return s.Short, nil
	default:
		return nil, ErrUnsupportedAnswerVariant
	}
}

func (s AnswerStores) All() []repositories.AnswerRepository {
	return []repositories.AnswerRepository{s.Long, s.Short}
}

// ===== REQUEST/RESPONSE TYPES =====

type SubmitAnswerRequest struct {
	QuestionID uint   `json:"question_id" validate:"required"`
	RevisionID uint   `json:"revision_id" validate:"required"`
	ResultID   uint   `json:"result_id" validate:"required"`
	Text       string `json:"text" validate:"not_blank"`
}

func (r *SubmitAnswerRequest) Key() models.AnswerKey {
	return models.AnswerKey{QuestionQID: r.QuestionID, QuestionVID: r.RevisionID, ResultID: r.ResultID}
}

type SubmitAnswerResponse struct {
	AnswerID             uint     `json:"answer_id"`
	EvaluatedImmediately bool     `json:"evaluated_immediately"`
	Score                *float64 `json:"score,omitempty"`
	IsCorrect            *bool    `json:"is_correct,omitempty"`
}

type GradeAnswerRequest struct {
	QuestionID     uint    `json:"question_id" validate:"required"`
	RevisionID     uint    `json:"revision_id" validate:"required"`
	ResultID       uint    `json:"result_id" validate:"required"`
	Score          float64 `json:"score"`
	Feedback       string  `json:"feedback"`
	FeedbackFormat string  `json:"feedback_format" validate:"omitempty,feedback_format"`
}

func (r *GradeAnswerRequest) Key() models.AnswerKey {
	return models.AnswerKey{QuestionQID: r.QuestionID, QuestionVID: r.RevisionID, ResultID: r.ResultID}
}

type GradeAnswerResponse struct {
	AnswerID    uint     `json:"answer_id"`
	Success     bool     `json:"success"`
	FinalScore  float64  `json:"final_score"`
	IsCorrect   bool     `json:"is_correct"`
	Changed     bool     `json:"changed"`
	ResultTotal *float64 `json:"result_total,omitempty"`
}

type UnscoredRequest struct {
	Variant    models.QuestionType `json:"variant" validate:"required,answer_variant"`
	QuestionID *uint               `json:"question_id" form:"question_id"`
	RevisionID *uint               `json:"revision_id" form:"revision_id"`
	Limit      int                 `json:"limit" form:"limit" validate:"gte=0,lte=500"`
	Offset     int                 `json:"offset" form:"offset" validate:"gte=0"`
}

type UnscoredResponse struct {
	Variant models.QuestionType     `json:"variant"`
	Items   []*models.AnswerSummary `json:"items"`
	Limit   int                     `json:"limit"`
	Offset  int                     `json:"offset"`
}

type RegisterQuestionRequest struct {
	QuestionID     uint                  `json:"question_id" validate:"required"`
	RevisionID     uint                  `json:"revision_id" validate:"required"`
	Type           models.QuestionType   `json:"type" validate:"required,question_type"`
	Title          string                `json:"title" validate:"max=255"`
	MaxScore       *float64              `json:"max_score" validate:"omitempty,gte=0"`
	EvaluationMode models.EvaluationMode `json:"evaluation_mode" validate:"required,evaluation_mode"`
	Rubric         string                `json:"rubric"`
	CorrectAnswer  string                `json:"correct_answer"`
	MatchMode      models.MatchMode      `json:"match_mode" validate:"omitempty,match_mode"`
}

type SetQuizWeightRequest struct {
	QuizRevisionID     uint    `json:"quiz_revision_id" validate:"required"`
	QuestionRevisionID uint    `json:"question_revision_id" validate:"required"`
	MaxScore           float64 `json:"max_score" validate:"gte=0"`
}

type OpenResultRequest struct {
	UserID      string `json:"user_id" validate:"required"`
	QuizID      uint   `json:"quiz_id" validate:"required"`
	RevisionID  uint   `json:"quiz_revision_id" validate:"required"`
	QuizOwnerID string `json:"quiz_owner_id"`
}
