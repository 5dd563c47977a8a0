package postgres

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/SAP-F-2025/text-answer-service/internal/cache"
	"github.com/SAP-F-2025/text-answer-service/internal/models"
	"github.com/SAP-F-2025/text-answer-service/internal/repositories"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return db
}

func floatPtr(v float64) *float64 { return &v }

func seedQuestion(t *testing.T, db *gorm.DB, qid, vid uint, qtype models.QuestionType, title string) *models.Question {
	t.Helper()
	question := &models.Question{
		QID:            qid,
		VID:            vid,
		Type:           qtype,
		Title:          title,
		MaxScore:       floatPtr(10),
		EvaluationMode: models.EvaluationManual,
	}
	require.NoError(t, db.Create(question).Error)
	return question
}

func seedResult(t *testing.T, db *gorm.DB, userID, ownerID string) *models.Result {
	t.Helper()
	result := &models.Result{
		UserID:      userID,
		QuizQID:     1,
		QuizVID:     100,
		QuizOwnerID: ownerID,
		TimeStart:   time.Now(),
	}
	require.NoError(t, db.Create(result).Error)
	return result
}

func TestMigrate_ColumnNames(t *testing.T) {
	db := setupTestDB(t)
	migrator := db.Migrator()

	for _, table := range []string{models.LongAnswerTable, models.ShortAnswerTable} {
		for _, column := range []string{"question_qid", "question_vid", "result_id", "raw_text", "is_evaluated"} {
			assert.True(t, migrator.HasColumn(table, column), "%s.%s", table, column)
		}
		assert.False(t, migrator.HasColumn(table, "question_v_id"), table)
	}
	for _, column := range []string{"qid", "vid"} {
		assert.True(t, migrator.HasColumn(&models.Question{}, column), column)
	}
	for _, column := range []string{"quiz_vid", "question_vid"} {
		assert.True(t, migrator.HasColumn(&models.QuizRelationship{}, column), column)
	}
	for _, column := range []string{"quiz_qid", "quiz_vid"} {
		assert.True(t, migrator.HasColumn(&models.Result{}, column), column)
	}
}

func TestAnswerRepository_SaveUpsertsSingleRow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLongAnswerPostgreSQL(db)
	ctx := context.Background()
	key := models.AnswerKey{QuestionQID: 1, QuestionVID: 11, ResultID: 5}

	first, err := repo.Save(ctx, nil, key, "first draft")
	require.NoError(t, err)
	assert.Equal(t, "first draft", first.RawText)
	assert.False(t, first.IsEvaluated)
	assert.Nil(t, first.Score)

	second, err := repo.Save(ctx, nil, key, "second draft")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "second draft", second.RawText)

	var count int64
	require.NoError(t, db.Table(models.LongAnswerTable).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAnswerRepository_SavePreservesScore(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLongAnswerPostgreSQL(db)
	ctx := context.Background()
	key := models.AnswerKey{QuestionQID: 1, QuestionVID: 11, ResultID: 5}

	saved, err := repo.Save(ctx, nil, key, "answer")
	require.NoError(t, err)

	changed, err := repo.SetScore(ctx, nil, saved.ID, models.ScoreUpdate{Score: 7, IsEvaluated: true, IsCorrect: true, FeedbackText: "good", FeedbackFormat: "plain_text"})
	require.NoError(t, err)
	assert.True(t, changed)

	resubmitted, err := repo.Save(ctx, nil, key, "edited answer")
	require.NoError(t, err)
	require.NotNil(t, resubmitted.Score)
	assert.Equal(t, 7.0, *resubmitted.Score)
	assert.True(t, resubmitted.IsEvaluated)
	assert.Equal(t, "good", resubmitted.FeedbackText)
	assert.Equal(t, "edited answer", resubmitted.RawText)
}

func TestAnswerRepository_LoadMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewShortAnswerPostgreSQL(db)

	answer, err := repo.Load(context.Background(), nil, models.AnswerKey{QuestionQID: 1, QuestionVID: 2, ResultID: 3})
	require.NoError(t, err)
	assert.Nil(t, answer)
	assert.Equal(t, models.StateUnsubmitted, answer.State())
}

func TestAnswerRepository_SetScoreReportsChange(t *testing.T) {
	db := setupTestDB(t)
	repo := NewShortAnswerPostgreSQL(db)
	ctx := context.Background()

	saved, err := repo.Save(ctx, nil, models.AnswerKey{QuestionQID: 1, QuestionVID: 2, ResultID: 3}, "paris")
	require.NoError(t, err)

	update := models.ScoreUpdate{Score: 4, IsEvaluated: true, IsCorrect: false, FeedbackFormat: "plain_text"}
	changed, err := repo.SetScore(ctx, nil, saved.ID, update)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.SetScore(ctx, nil, saved.ID, update)
	require.NoError(t, err)
	assert.False(t, changed, "identical update must not report a change")

	update.FeedbackText = "see notes"
	changed, err = repo.SetScore(ctx, nil, saved.ID, update)
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestAnswerRepository_VariantsAreIsolated(t *testing.T) {
	db := setupTestDB(t)
	long := NewLongAnswerPostgreSQL(db)
	short := NewShortAnswerPostgreSQL(db)
	ctx := context.Background()
	key := models.AnswerKey{QuestionQID: 1, QuestionVID: 2, ResultID: 3}

	_, err := long.Save(ctx, nil, key, "essay")
	require.NoError(t, err)

	answer, err := short.Load(ctx, nil, key)
	require.NoError(t, err)
	assert.Nil(t, answer)
	assert.Equal(t, models.ShortAnswerTable, short.Table())
}

func TestAnswerRepository_CascadeDeletes(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLongAnswerPostgreSQL(db)
	ctx := context.Background()

	for _, key := range []models.AnswerKey{
		{QuestionQID: 1, QuestionVID: 10, ResultID: 1},
		{QuestionQID: 1, QuestionVID: 10, ResultID: 2},
		{QuestionQID: 1, QuestionVID: 11, ResultID: 1},
		{QuestionQID: 2, QuestionVID: 20, ResultID: 1},
		{QuestionQID: 2, QuestionVID: 20, ResultID: 3},
	} {
		_, err := repo.Save(ctx, nil, key, "text")
		require.NoError(t, err)
	}

	removed, err := repo.DeleteForRevision(ctx, nil, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	removed, err = repo.DeleteForResult(ctx, nil, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	removed, err = repo.DeleteForAllRevisions(ctx, nil, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	remaining, err := repo.Load(ctx, nil, models.AnswerKey{QuestionQID: 1, QuestionVID: 11, ResultID: 1})
	require.NoError(t, err)
	assert.NotNil(t, remaining)
}

func TestAnswerRepository_ListUnscored(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLongAnswerPostgreSQL(db)
	ctx := context.Background()

	seedQuestion(t, db, 1, 10, models.QuestionLongAnswer, "Essay one")
	seedQuestion(t, db, 2, 20, models.QuestionLongAnswer, "Essay two")
	alice := seedResult(t, db, "alice", "teacher-1")
	bob := seedResult(t, db, "bob", "teacher-2")

	a1, err := repo.Save(ctx, nil, models.AnswerKey{QuestionQID: 1, QuestionVID: 10, ResultID: alice.ID}, "a")
	require.NoError(t, err)
	_, err = repo.Save(ctx, nil, models.AnswerKey{QuestionQID: 1, QuestionVID: 10, ResultID: bob.ID}, "b")
	require.NoError(t, err)
	_, err = repo.Save(ctx, nil, models.AnswerKey{QuestionQID: 2, QuestionVID: 20, ResultID: alice.ID}, "c")
	require.NoError(t, err)

	all, err := repo.ListUnscored(ctx, nil, repositories.UnscoredFilters{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, a1.ID, all[0].AnswerID)
	assert.Equal(t, "Essay one", all[0].QuestionTitle)
	assert.Equal(t, "alice", all[0].UserID)

	qid := uint(1)
	byQuestion, err := repo.ListUnscored(ctx, nil, repositories.UnscoredFilters{QuestionQID: &qid})
	require.NoError(t, err)
	assert.Len(t, byQuestion, 2)

	owner := "teacher-2"
	scoped, err := repo.ListUnscored(ctx, nil, repositories.UnscoredFilters{Scope: models.GraderScope{QuizOwner: &owner}})
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "bob", scoped[0].UserID)

	taker := "alice"
	either, err := repo.ListUnscored(ctx, nil, repositories.UnscoredFilters{Scope: models.GraderScope{QuizOwner: &owner, TakenByUser: &taker}})
	require.NoError(t, err)
	assert.Len(t, either, 3)

	_, err = repo.SetScore(ctx, nil, a1.ID, models.ScoreUpdate{Score: 5, IsEvaluated: true})
	require.NoError(t, err)
	afterGrade, err := repo.ListUnscored(ctx, nil, repositories.UnscoredFilters{})
	require.NoError(t, err)
	assert.Len(t, afterGrade, 2)

	paged, err := repo.ListUnscored(ctx, nil, repositories.UnscoredFilters{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Len(t, paged, 1)
}

func TestAnswerRepository_SumScoresByResult(t *testing.T) {
	db := setupTestDB(t)
	repo := NewShortAnswerPostgreSQL(db)
	ctx := context.Background()

	total, err := repo.SumScoresByResult(ctx, nil, 9)
	require.NoError(t, err)
	assert.Equal(t, 0.0, total)

	first, err := repo.Save(ctx, nil, models.AnswerKey{QuestionQID: 1, QuestionVID: 1, ResultID: 9}, "x")
	require.NoError(t, err)
	second, err := repo.Save(ctx, nil, models.AnswerKey{QuestionQID: 2, QuestionVID: 2, ResultID: 9}, "y")
	require.NoError(t, err)
	_, err = repo.Save(ctx, nil, models.AnswerKey{QuestionQID: 3, QuestionVID: 3, ResultID: 9}, "unscored")
	require.NoError(t, err)

	_, err = repo.SetScore(ctx, nil, first.ID, models.ScoreUpdate{Score: 2.5, IsEvaluated: true})
	require.NoError(t, err)
	_, err = repo.SetScore(ctx, nil, second.ID, models.ScoreUpdate{Score: 4, IsEvaluated: true})
	require.NoError(t, err)

	total, err = repo.SumScoresByResult(ctx, nil, 9)
	require.NoError(t, err)
	assert.InDelta(t, 6.5, total, 1e-9)
}

func TestQuestionRepository_GetRevision(t *testing.T) {
	db := setupTestDB(t)
	repo := NewQuestionPostgreSQL(db, cache.NewNoopCache(), time.Minute)
	ctx := context.Background()

	question := &models.Question{QID: 4, VID: 40, Type: models.QuestionShortAnswer, EvaluationMode: models.EvaluationAutomatic}
	require.NoError(t, question.SetGrading(models.GradingData{CorrectAnswer: "Paris", MatchMode: models.MatchCaseInsensitive}))
	require.NoError(t, repo.Create(ctx, nil, question))

	loaded, err := repo.GetRevision(ctx, nil, 4, 40)
	require.NoError(t, err)
	data, err := loaded.Grading()
	require.NoError(t, err)
	assert.Equal(t, "Paris", data.CorrectAnswer)
	assert.Nil(t, loaded.MaxScore)

	_, err = repo.GetRevision(ctx, nil, 4, 41)
	assert.True(t, repositories.IsNotFoundError(err))

	require.NoError(t, repo.DeleteAllRevisions(ctx, nil, 4))
	_, err = repo.GetRevision(ctx, nil, 4, 40)
	assert.True(t, repositories.IsNotFoundError(err))
}

func TestQuestionRepository_InvalidateAfterCommit(t *testing.T) {
	db := setupTestDB(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	redisCache := cache.NewRedisCache(client, "test", slog.New(slog.NewTextHandler(io.Discard, nil)))

	repo := NewQuestionPostgreSQL(db, redisCache, time.Minute)
	ctx := context.Background()
	seedQuestion(t, db, 7, 70, models.QuestionLongAnswer, "Essay")
	seedQuestion(t, db, 7, 71, models.QuestionLongAnswer, "Essay v2")

	_, err := repo.GetRevision(ctx, nil, 7, 70)
	require.NoError(t, err)
	_, err = repo.GetRevision(ctx, nil, 7, 71)
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:question:7:70"))

	err = NewTransactor(db).WithTransaction(ctx, func(tx *gorm.DB) error {
		return repo.DeleteRevision(ctx, tx, 7, 70)
	})
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:question:7:70"), "delete must leave eviction to the caller")

	require.NoError(t, repo.InvalidateRevision(ctx, 7, 70))
	_, err = repo.GetRevision(ctx, nil, 7, 70)
	assert.True(t, repositories.IsNotFoundError(err))

	require.NoError(t, repo.DeleteAllRevisions(ctx, nil, 7))
	require.NoError(t, repo.InvalidateAllRevisions(ctx, 7))
	assert.False(t, mr.Exists("test:question:7:71"))
	_, err = repo.GetRevision(ctx, nil, 7, 71)
	assert.True(t, repositories.IsNotFoundError(err))
}

func TestQuizRelationshipRepository_GetQuizMaxScore(t *testing.T) {
	db := setupTestDB(t)
	repo := NewQuizRelationshipPostgreSQL(db, cache.NewNoopCache(), time.Minute)
	ctx := context.Background()

	_, err := repo.GetQuizMaxScore(ctx, nil, 100, 10)
	assert.True(t, repositories.IsNotFoundError(err))

	require.NoError(t, repo.Upsert(ctx, nil, &models.QuizRelationship{QuizVID: 100, QuestionVID: 10, MaxScore: 20}))
	weight, err := repo.GetQuizMaxScore(ctx, nil, 100, 10)
	require.NoError(t, err)
	assert.Equal(t, 20.0, weight)

	require.NoError(t, repo.Upsert(ctx, nil, &models.QuizRelationship{QuizVID: 100, QuestionVID: 10, MaxScore: 5}))
	weight, err = repo.GetQuizMaxScore(ctx, nil, 100, 10)
	require.NoError(t, err)
	assert.Equal(t, 5.0, weight)
}

func TestResultRepository_UpdateScore(t *testing.T) {
	db := setupTestDB(t)
	repo := NewResultPostgreSQL(db)
	ctx := context.Background()

	result := seedResult(t, db, "alice", "teacher-1")
	require.NoError(t, repo.UpdateScore(ctx, nil, result.ID, 17.5))

	loaded, err := repo.GetByID(ctx, nil, result.ID)
	require.NoError(t, err)
	assert.Equal(t, 17.5, loaded.Score)

	err = repo.UpdateScore(ctx, nil, result.ID+100, 1)
	assert.True(t, repositories.IsNotFoundError(err))
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLongAnswerPostgreSQL(db)
	tx := NewTransactor(db)
	ctx := context.Background()
	key := models.AnswerKey{QuestionQID: 1, QuestionVID: 1, ResultID: 1}

	err := tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		if _, err := repo.Save(ctx, tx, key, "rolled back"); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	answer, err := repo.Load(ctx, nil, key)
	require.NoError(t, err)
	assert.Nil(t, answer)
}
