package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/SAP-F-2025/text-answer-service/internal/models"
	"github.com/SAP-F-2025/text-answer-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCatalogFixture() (CatalogService, *MockQuestionRepository, *MockQuizRelationshipRepository, *MockResultRepository) {
	questions := &MockQuestionRepository{}
	weights := &MockQuizRelationshipRepository{}
	results := &MockResultRepository{}
	svc := NewCatalogService(questions, weights, results, inlineTransactor{}, validator.New(),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	return svc, questions, weights, results
}

func TestRegisterQuestion(t *testing.T) {
	ctx := context.Background()

	t.Run("short answer defaults to case insensitive matching", func(t *testing.T) {
		svc, questions, _, _ := newCatalogFixture()
		questions.On("GetRevision", ctx, mock.Anything, uint(2), uint(22)).Return(nil, gorm.ErrRecordNotFound)
		questions.On("Create", ctx, mock.Anything, mock.AnythingOfType("*models.Question")).Return(nil)

		q, err := svc.RegisterQuestion(ctx, admin, &RegisterQuestionRequest{
			QuestionID: 2, RevisionID: 22, Type: models.QuestionShortAnswer,
			EvaluationMode: models.EvaluationAutomatic, CorrectAnswer: "Paris",
		})
		require.NoError(t, err)
		data, err := q.Grading()
		require.NoError(t, err)
		assert.Equal(t, models.MatchCaseInsensitive, data.MatchMode)
		assert.Equal(t, "admin", q.OwnerID)
		questions.AssertExpectations(t)
	})

	t.Run("existing revision conflicts", func(t *testing.T) {
		svc, questions, _, _ := newCatalogFixture()
		questions.On("GetRevision", ctx, mock.Anything, uint(1), uint(11)).Return(&models.Question{QID: 1, VID: 11}, nil)

		_, err := svc.RegisterQuestion(ctx, admin, &RegisterQuestionRequest{
			QuestionID: 1, RevisionID: 11, Type: models.QuestionLongAnswer, EvaluationMode: models.EvaluationManual,
		})
		assert.ErrorIs(t, err, ErrQuestionRevisionExists)
		assert.True(t, IsConflict(err))
		questions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("automatic short answer needs a correct answer", func(t *testing.T) {
		svc, questions, _, _ := newCatalogFixture()

		_, err := svc.RegisterQuestion(ctx, admin, &RegisterQuestionRequest{
			QuestionID: 2, RevisionID: 22, Type: models.QuestionShortAnswer, EvaluationMode: models.EvaluationAutomatic,
		})
		assert.True(t, IsValidation(err))
		questions.AssertNotCalled(t, "GetRevision", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("non admin denied", func(t *testing.T) {
		svc, _, _, _ := newCatalogFixture()

		_, err := svc.RegisterQuestion(ctx, grader, &RegisterQuestionRequest{
			QuestionID: 1, RevisionID: 11, Type: models.QuestionLongAnswer, EvaluationMode: models.EvaluationManual,
		})
		assert.ErrorIs(t, err, ErrContentPermissionDenied)
	})
}

func TestSetQuizWeight(t *testing.T) {
	ctx := context.Background()
	svc, _, weights, _ := newCatalogFixture()
	weights.On("Upsert", ctx, (*gorm.DB)(nil), &models.QuizRelationship{QuizVID: 100, QuestionVID: 11, MaxScore: 20}).Return(nil)

	rel, err := svc.SetQuizWeight(ctx, admin, &SetQuizWeightRequest{QuizRevisionID: 100, QuestionRevisionID: 11, MaxScore: 20})
	require.NoError(t, err)
	assert.Equal(t, 20.0, rel.MaxScore)
	weights.AssertExpectations(t)

	_, err = svc.SetQuizWeight(ctx, admin, &SetQuizWeightRequest{QuizRevisionID: 100, QuestionRevisionID: 11, MaxScore: -1})
	assert.True(t, IsValidation(err))
}

func TestOpenResult(t *testing.T) {
	ctx := context.Background()
	svc, _, _, results := newCatalogFixture()
	results.On("Create", ctx, (*gorm.DB)(nil), mock.MatchedBy(func(r *models.Result) bool {
		return r.UserID == "learner-1" && r.QuizVID == 100 && r.QuizOwnerID == "teacher-1"
	})).Run(func(args mock.Arguments) {
		args.Get(2).(*models.Result).ID = 5
	}).Return(nil)

	result, err := svc.OpenResult(ctx, admin, &OpenResultRequest{UserID: "learner-1", QuizID: 10, RevisionID: 100, QuizOwnerID: "teacher-1"})
	require.NoError(t, err)
	assert.Equal(t, uint(5), result.ID)
	results.AssertExpectations(t)
}
