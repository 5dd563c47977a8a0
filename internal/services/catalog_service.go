package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/text-answer-service/internal/models"
	"github.com/SAP-F-2025/text-answer-service/internal/repositories"
	"github.com/SAP-F-2025/text-answer-service/internal/validator"
	"gorm.io/gorm"
)

// catalogService mirrors the question revisions, quiz weights and results owned by
// the quiz platform. Only administrators may write to it.
type catalogService struct {
	questions repositories.QuestionRepository
	weights   repositories.QuizRelationshipRepository
	results   repositories.ResultRepository
	tx        repositories.Transactor
	validator *validator.Validator
	logger    *slog.Logger
}

func NewCatalogService(
	questions repositories.QuestionRepository,
	weights repositories.QuizRelationshipRepository,
	results repositories.ResultRepository,
	tx repositories.Transactor,
	v *validator.Validator,
	logger *slog.Logger,
) CatalogService {
	return &catalogService{
		questions: questions,
		weights:   weights,
		results:   results,
		tx:        tx,
		validator: v,
		logger:    logger,
	}
}

// RegisterQuestion stores a new question revision. Published revisions are
// immutable, so registering an existing revision is a conflict.
func (s *catalogService) RegisterQuestion(ctx context.Context, user *models.UserContext, req *RegisterQuestionRequest) (*models.Question, error) {
	if err := s.requireAdmin(user, req.RevisionID, "question_revision"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	question := &models.Question{
		QID:            req.QuestionID,
		VID:            req.RevisionID,
		Type:           req.Type,
		Title:          req.Title,
		MaxScore:       req.MaxScore,
		EvaluationMode: req.EvaluationMode,
		OwnerID:        user.UserID,
	}
	matchMode := req.MatchMode
	if matchMode == "" && req.Type == models.QuestionShortAnswer {
		matchMode = models.MatchCaseInsensitive
	}
	if err := question.SetGrading(models.GradingData{
		Rubric:        req.Rubric,
		CorrectAnswer: req.CorrectAnswer,
		MatchMode:     matchMode,
	}); err != nil {
		return nil, fmt.Errorf("failed to encode grading data: %w", err)
	}

	if err := s.validator.Question().ValidateQuestion(question); err != nil {
		return nil, fieldError(&ValidationError{Field: "question", Message: err.Error(), Rule: "question"})
	}

	err := s.tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		_, err := s.questions.GetRevision(ctx, tx, req.QuestionID, req.RevisionID)
		if err == nil {
			return ErrQuestionRevisionExists
		}
		if !repositories.IsNotFoundError(err) {
			return err
		}
		return s.questions.Create(ctx, tx, question)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Question revision registered",
		"question_id", question.QID,
		"revision_id", question.VID,
		"type", question.Type)
	return question, nil
}

func (s *catalogService) SetQuizWeight(ctx context.Context, user *models.UserContext, req *SetQuizWeightRequest) (*models.QuizRelationship, error) {
	if err := s.requireAdmin(user, req.QuizRevisionID, "quiz_revision"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	rel := &models.QuizRelationship{
		QuizVID:     req.QuizRevisionID,
		QuestionVID: req.QuestionRevisionID,
		MaxScore:    req.MaxScore,
	}
	if err := s.weights.Upsert(ctx, nil, rel); err != nil {
		return nil, fmt.Errorf("failed to store quiz weight: %w", err)
	}

	s.logger.InfoContext(ctx, "Quiz weight set",
		"quiz_revision_id", rel.QuizVID,
		"question_revision_id", rel.QuestionVID,
		"max_score", rel.MaxScore)
	return rel, nil
}

func (s *catalogService) OpenResult(ctx context.Context, user *models.UserContext, req *OpenResultRequest) (*models.Result, error) {
	if err := s.requireAdmin(user, req.RevisionID, "quiz_revision"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	result := &models.Result{
		UserID:      req.UserID,
		QuizQID:     req.QuizID,
		QuizVID:     req.RevisionID,
		QuizOwnerID: req.QuizOwnerID,
		TimeStart:   time.Now(),
	}
	if err := s.results.Create(ctx, nil, result); err != nil {
		return nil, fmt.Errorf("failed to create result: %w", err)
	}

	s.logger.InfoContext(ctx, "Result opened", "result_id", result.ID, "user_id", result.UserID)
	return result, nil
}

func (s *catalogService) requireAdmin(user *models.UserContext, resourceID uint, resource string) error {
	if user == nil || !user.IsAdmin {
		return NewPermissionError(userIDOf(user), resourceID, resource, "manage", ErrContentPermissionDenied)
	}
	return nil
}
