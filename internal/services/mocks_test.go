package services

import (
	"context"

	"github.com/SAP-F-2025/text-answer-service/internal/models"
	"github.com/SAP-F-2025/text-answer-service/internal/repositories"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockAnswerRepository is a mock implementation of AnswerRepository
type MockAnswerRepository struct {
	mock.Mock
	table string
}

func (m *MockAnswerRepository) Table() string {
	return m.table
}

func (m *MockAnswerRepository) Save(ctx context.Context, tx *gorm.DB, key models.AnswerKey, text string) (*models.TextAnswer, error) {
	args := m.Called(ctx, tx, key, text)
	answer, _ := args.Get(0).(*models.TextAnswer)
	return answer, args.Error(1)
}

func (m *MockAnswerRepository) Load(ctx context.Context, tx *gorm.DB, key models.AnswerKey) (*models.TextAnswer, error) {
	args := m.Called(ctx, tx, key)
	answer, _ := args.Get(0).(*models.TextAnswer)
	return answer, args.Error(1)
}

func (m *MockAnswerRepository) SetScore(ctx context.Context, tx *gorm.DB, answerID uint, update models.ScoreUpdate) (bool, error) {
	args := m.Called(ctx, tx, answerID, update)
	return args.Bool(0), args.Error(1)
}

func (m *MockAnswerRepository) DeleteForRevision(ctx context.Context, tx *gorm.DB, questionQID, questionVID uint) (int64, error) {
	args := m.Called(ctx, tx, questionQID, questionVID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAnswerRepository) DeleteForAllRevisions(ctx context.Context, tx *gorm.DB, questionQID uint) (int64, error) {
	args := m.Called(ctx, tx, questionQID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAnswerRepository) DeleteForResult(ctx context.Context, tx *gorm.DB, resultID uint) (int64, error) {
	args := m.Called(ctx, tx, resultID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAnswerRepository) ListUnscored(ctx context.Context, tx *gorm.DB, filters repositories.UnscoredFilters) ([]*models.AnswerSummary, error) {
	args := m.Called(ctx, tx, filters)
	items, _ := args.Get(0).([]*models.AnswerSummary)
	return items, args.Error(1)
}

func (m *MockAnswerRepository) SumScoresByResult(ctx context.Context, tx *gorm.DB, resultID uint) (float64, error) {
	args := m.Called(ctx, tx, resultID)
	return args.Get(0).(float64), args.Error(1)
}

// MockQuestionRepository is a mock implementation of QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	args := m.Called(ctx, tx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetRevision(ctx context.Context, tx *gorm.DB, questionQID, questionVID uint) (*models.Question, error) {
	args := m.Called(ctx, tx, questionQID, questionVID)
	question, _ := args.Get(0).(*models.Question)
	return question, args.Error(1)
}

func (m *MockQuestionRepository) DeleteRevision(ctx context.Context, tx *gorm.DB, questionQID, questionVID uint) error {
	args := m.Called(ctx, tx, questionQID, questionVID)
	return args.Error(0)
}

func (m *MockQuestionRepository) DeleteAllRevisions(ctx context.Context, tx *gorm.DB, questionQID uint) error {
	args := m.Called(ctx, tx, questionQID)
	return args.Error(0)
}

func (m *MockQuestionRepository) InvalidateRevision(ctx context.Context, questionQID, questionVID uint) error {
	args := m.Called(ctx, questionQID, questionVID)
	return args.Error(0)
}

func (m *MockQuestionRepository) InvalidateAllRevisions(ctx context.Context, questionQID uint) error {
	args := m.Called(ctx, questionQID)
	return args.Error(0)
}

// MockQuizRelationshipRepository is a mock implementation of QuizRelationshipRepository
type MockQuizRelationshipRepository struct {
	mock.Mock
}

func (m *MockQuizRelationshipRepository) Upsert(ctx context.Context, tx *gorm.DB, rel *models.QuizRelationship) error {
	args := m.Called(ctx, tx, rel)
	return args.Error(0)
}

func (m *MockQuizRelationshipRepository) GetQuizMaxScore(ctx context.Context, tx *gorm.DB, quizVID, questionVID uint) (float64, error) {
	args := m.Called(ctx, tx, quizVID, questionVID)
	return args.Get(0).(float64), args.Error(1)
}

// MockResultRepository is a mock implementation of ResultRepository
type MockResultRepository struct {
	mock.Mock
}

func (m *MockResultRepository) Create(ctx context.Context, tx *gorm.DB, result *models.Result) error {
	args := m.Called(ctx, tx, result)
	return args.Error(0)
}

func (m *MockResultRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Result, error) {
	args := m.Called(ctx, tx, id)
	result, _ := args.Get(0).(*models.Result)
	return result, args.Error(1)
}

func (m *MockResultRepository) UpdateScore(ctx context.Context, tx *gorm.DB, id uint, score float64) error {
	args := m.Called(ctx, tx, id, score)
	return args.Error(0)
}

func (m *MockResultRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

// MockResultAggregator records UpdateTotal calls
type MockResultAggregator struct {
	mock.Mock
}

func (m *MockResultAggregator) UpdateTotal(ctx context.Context, tx *gorm.DB, resultID uint) (float64, error) {
	args := m.Called(ctx, tx, resultID)
	return args.Get(0).(float64), args.Error(1)
}

// inlineTransactor runs fn without a real transaction
type inlineTransactor struct{}

func (inlineTransactor) WithTransaction(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

// recordingTransactor counts committed transactions
type recordingTransactor struct {
	committed int
}

func (r *recordingTransactor) WithTransaction(_ context.Context, fn func(tx *gorm.DB) error) error {
	if err := fn(nil); err != nil {
		return err
	}
	r.committed++
	return nil
}
