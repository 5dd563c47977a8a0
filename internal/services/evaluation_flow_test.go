package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/SAP-F-2025/text-answer-service/internal/auth"
	"github.com/SAP-F-2025/text-answer-service/internal/cache"
	"github.com/SAP-F-2025/text-answer-service/internal/events"
	"github.com/SAP-F-2025/text-answer-service/internal/markup"
	"github.com/SAP-F-2025/text-answer-service/internal/metrics"
	"github.com/SAP-F-2025/text-answer-service/internal/models"
	"github.com/SAP-F-2025/text-answer-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/text-answer-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// countingAggregator counts UpdateTotal calls on top of the real aggregator
type countingAggregator struct {
	ResultAggregator
	calls int
}

func (c *countingAggregator) UpdateTotal(ctx context.Context, tx *gorm.DB, resultID uint) (float64, error) {
	c.calls++
	return c.ResultAggregator.UpdateTotal(ctx, tx, resultID)
}

type storedFlow struct {
	db         *gorm.DB
	evaluator  ResponseEvaluator
	aggregator *countingAggregator
	result     *models.Result
}

func newStoredFlow(t *testing.T) *storedFlow {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, postgres.Migrate(db))

	require.NoError(t, db.Create(longQuestion(t)).Error)
	require.NoError(t, db.Create(autoShortQuestion(t)).Error)
	require.NoError(t, db.Create(&models.QuizRelationship{QuizVID: 100, QuestionVID: 11, MaxScore: 20}).Error)
	require.NoError(t, db.Create(&models.QuizRelationship{QuizVID: 100, QuestionVID: 22, MaxScore: 8}).Error)
	result := &models.Result{UserID: "learner-1", QuizQID: 10, QuizVID: 100, QuizOwnerID: "teacher-1", TimeStart: time.Now()}
	require.NoError(t, db.Create(result).Error)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New()
	noop := cache.NewNoopCache()
	stores := AnswerStores{
		Long:  postgres.NewLongAnswerPostgreSQL(db),
		Short: postgres.NewShortAnswerPostgreSQL(db),
	}
	results := postgres.NewResultPostgreSQL(db)
	aggregator := &countingAggregator{ResultAggregator: NewResultAggregator(stores, results, m, log)}

	return &storedFlow{
		db: db,
		evaluator: NewResponseEvaluator(ResponseEvaluatorDeps{
			Stores:      stores,
			Questions:   postgres.NewQuestionPostgreSQL(db, noop, time.Minute),
			Weights:     postgres.NewQuizRelationshipPostgreSQL(db, noop, time.Minute),
			Results:     results,
			Transactor:  postgres.NewTransactor(db),
			Aggregator:  aggregator,
			Permissions: auth.NewPermissionChecker(),
			Sanitizer:   markup.NewSanitizer(),
			Publisher:   events.NewMockEventPublisher(log),
			Metrics:     m,
			Validator:   validator.New(),
			Logger:      log,
			Config:      EvaluatorConfig{LongAnswerDefaultMaxScore: 10},
		}),
		aggregator: aggregator,
		result:     result,
	}
}

func (f *storedFlow) resultTotal(t *testing.T) float64 {
	t.Helper()
	var stored models.Result
	require.NoError(t, f.db.First(&stored, f.result.ID).Error)
	return stored.Score
}

func TestStoredFlow_ManualGradeRescalesAndAggregatesOnce(t *testing.T) {
	f := newStoredFlow(t)
	ctx := context.Background()
	key := models.AnswerKey{QuestionQID: 1, QuestionVID: 11, ResultID: f.result.ID}

	first, err := f.evaluator.Submit(ctx, learner, &SubmitAnswerRequest{QuestionID: 1, RevisionID: 11, ResultID: f.result.ID, Text: "first draft"})
	require.NoError(t, err)
	assert.False(t, first.EvaluatedImmediately)

	again, err := f.evaluator.Submit(ctx, learner, &SubmitAnswerRequest{QuestionID: 1, RevisionID: 11, ResultID: f.result.ID, Text: "first draft"})
	require.NoError(t, err)
	assert.Equal(t, first.AnswerID, again.AnswerID)

	var rows int64
	require.NoError(t, f.db.Table(models.LongAnswerTable).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	graded, err := f.evaluator.GradeManually(ctx, grader, &GradeAnswerRequest{QuestionID: 1, RevisionID: 11, ResultID: f.result.ID, Score: 8, Feedback: "Good"})
	require.NoError(t, err)
	assert.Equal(t, 16.0, graded.FinalScore)
	assert.True(t, graded.IsCorrect)
	assert.True(t, graded.Changed)
	assert.Equal(t, 1, f.aggregator.calls)
	assert.Equal(t, 16.0, f.resultTotal(t))

	regraded, err := f.evaluator.GradeManually(ctx, grader, &GradeAnswerRequest{QuestionID: 1, RevisionID: 11, ResultID: f.result.ID, Score: 8, Feedback: "Good"})
	require.NoError(t, err)
	assert.False(t, regraded.Changed)
	assert.Equal(t, 1, f.aggregator.calls)

	_, err = f.evaluator.Submit(ctx, learner, &SubmitAnswerRequest{QuestionID: 1, RevisionID: 11, ResultID: f.result.ID, Text: "edited after grading"})
	require.NoError(t, err)

	answer, err := f.evaluator.LoadExisting(ctx, learner, key)
	require.NoError(t, err)
	assert.Equal(t, "edited after grading", answer.RawText)
	assert.True(t, answer.IsEvaluated)
	require.NotNil(t, answer.Score)
	assert.Equal(t, 16.0, *answer.Score)
	assert.Equal(t, 1, f.aggregator.calls)
}

func TestStoredFlow_AutomaticShortAnswerJoinsTotal(t *testing.T) {
	f := newStoredFlow(t)
	ctx := context.Background()

	_, err := f.evaluator.Submit(ctx, learner, &SubmitAnswerRequest{QuestionID: 1, RevisionID: 11, ResultID: f.result.ID, Text: "essay"})
	require.NoError(t, err)
	_, err = f.evaluator.GradeManually(ctx, grader, &GradeAnswerRequest{QuestionID: 1, RevisionID: 11, ResultID: f.result.ID, Score: 5})
	require.NoError(t, err)

	resp, err := f.evaluator.Submit(ctx, learner, &SubmitAnswerRequest{QuestionID: 2, RevisionID: 22, ResultID: f.result.ID, Text: "  paris "})
	require.NoError(t, err)
	assert.True(t, resp.EvaluatedImmediately)
	require.NotNil(t, resp.Score)
	assert.Equal(t, 8.0, *resp.Score)
	assert.Equal(t, 2, f.aggregator.calls)
	assert.Equal(t, 18.0, f.resultTotal(t))

	resp, err = f.evaluator.Submit(ctx, learner, &SubmitAnswerRequest{QuestionID: 2, RevisionID: 22, ResultID: f.result.ID, Text: "Lyon"})
	require.NoError(t, err)
	require.NotNil(t, resp.Score)
	assert.Equal(t, 0.0, *resp.Score)
	assert.Equal(t, 3, f.aggregator.calls)
	assert.Equal(t, 10.0, f.resultTotal(t))
}
