package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/SAP-F-2025/text-answer-service/internal/models"
	"github.com/SAP-F-2025/text-answer-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AnswerPostgreSQL stores one answer variant in its own table
type AnswerPostgreSQL struct {
	db    *gorm.DB
	table string
}

func NewAnswerPostgreSQL(db *gorm.DB, table string) repositories.AnswerRepository {
	return &AnswerPostgreSQL{
		db:    db,
		table: table,
	}
}

func NewLongAnswerPostgreSQL(db *gorm.DB) repositories.AnswerRepository {
	return NewAnswerPostgreSQL(db, models.LongAnswerTable)
}

func NewShortAnswerPostgreSQL(db *gorm.DB) repositories.AnswerRepository {
	return NewAnswerPostgreSQL(db, models.ShortAnswerTable)
}

func (a *AnswerPostgreSQL) Table() string {
	return a.table
}

func (a *AnswerPostgreSQL) Save(ctx context.Context, tx *gorm.DB, key models.AnswerKey, text string) (*models.TextAnswer, error) {
	db := a.getDB(tx)
	answer := models.NewAnswerFromSubmission(key, text)

	// Single statement keyed on (question_vid, result_id) so concurrent submissions
	// for the same slot serialize in the database.
	err := db.WithContext(ctx).Table(a.table).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "question_vid"}, {Name: "result_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"raw_text":   text,
			"updated_at": time.Now(),
		}),
	}).Create(answer).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert answer: %w", err)
	}

	stored, err := a.Load(ctx, tx, key)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("answer for revision %d result %d missing after upsert", key.QuestionVID, key.ResultID)
	}
	return stored, nil
}

func (a *AnswerPostgreSQL) Load(ctx context.Context, tx *gorm.DB, key models.AnswerKey) (*models.TextAnswer, error) {
	db := a.getDB(tx)
	var answer models.TextAnswer
	err := db.WithContext(ctx).Table(a.table).
		Where("question_vid = ? AND result_id = ?", key.QuestionVID, key.ResultID).
		First(&answer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &answer, nil
}

func (a *AnswerPostgreSQL) SetScore(ctx context.Context, tx *gorm.DB, answerID uint, update models.ScoreUpdate) (bool, error) {
	db := a.getDB(tx)

	// The second condition turns an identical re-grade into a zero-row update.
	result := db.WithContext(ctx).Table(a.table).
		Where("id = ?", answerID).
		Where("(score IS NULL OR score <> ? OR is_evaluated <> ? OR is_correct <> ? OR feedback_text <> ? OR feedback_format <> ?)",
			update.Score, update.IsEvaluated, update.IsCorrect, update.FeedbackText, update.FeedbackFormat).
		Updates(map[string]interface{}{
			"score":           update.Score,
			"is_evaluated":    update.IsEvaluated,
			"is_correct":      update.IsCorrect,
			"feedback_text":   update.FeedbackText,
			"feedback_format": update.FeedbackFormat,
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to set answer score: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (a *AnswerPostgreSQL) DeleteForRevision(ctx context.Context, tx *gorm.DB, questionQID, questionVID uint) (int64, error) {
	db := a.getDB(tx)
	result := db.WithContext(ctx).Table(a.table).
		Where("question_qid = ? AND question_vid = ?", questionQID, questionVID).
		Delete(&models.TextAnswer{})
	return result.RowsAffected, result.Error
}

func (a *AnswerPostgreSQL) DeleteForAllRevisions(ctx context.Context, tx *gorm.DB, questionQID uint) (int64, error) {
	db := a.getDB(tx)
	result := db.WithContext(ctx).Table(a.table).
		Where("question_qid = ?", questionQID).
		Delete(&models.TextAnswer{})
	return result.RowsAffected, result.Error
}

func (a *AnswerPostgreSQL) DeleteForResult(ctx context.Context, tx *gorm.DB, resultID uint) (int64, error) {
	db := a.getDB(tx)
	result := db.WithContext(ctx).Table(a.table).
		Where("result_id = ?", resultID).
		Delete(&models.TextAnswer{})
	return result.RowsAffected, result.Error
}

func (a *AnswerPostgreSQL) ListUnscored(ctx context.Context, tx *gorm.DB, filters repositories.UnscoredFilters) ([]*models.AnswerSummary, error) {
	db := a.getDB(tx)
	filters = filters.Normalize()

	query := db.WithContext(ctx).Table(a.table+" AS a").
		Select("a.id AS answer_id, a.result_id, a.question_qid, a.question_vid, q.title AS question_title, r.user_id, a.created_at AS submitted_at").
		Joins("JOIN text_questions q ON q.vid = a.question_vid").
		Joins("JOIN results r ON r.id = a.result_id").
		Where("a.is_evaluated = ?", false)
	query = a.applyUnscoredFilters(query, filters)

	var summaries []*models.AnswerSummary
	if err := query.
		Order("a.created_at ASC").
		Order("a.id ASC").
		Limit(filters.Limit).
		Offset(filters.Offset).
		Scan(&summaries).Error; err != nil {
		return nil, fmt.Errorf("failed to list unscored answers: %w", err)
	}
	return summaries, nil
}

func (a *AnswerPostgreSQL) SumScoresByResult(ctx context.Context, tx *gorm.DB, resultID uint) (float64, error) {
	db := a.getDB(tx)
	var total sql.NullFloat64
	row := db.WithContext(ctx).Table(a.table).
		Select("SUM(score)").
		Where("result_id = ?", resultID).
		Row()
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum answer scores: %w", err)
	}
	return total.Float64, nil
}

func (a *AnswerPostgreSQL) applyUnscoredFilters(query *gorm.DB, filters repositories.UnscoredFilters) *gorm.DB {
	if filters.QuestionQID != nil {
		query = query.Where("a.question_qid = ?", *filters.QuestionQID)
	}
	if filters.QuestionVID != nil {
		query = query.Where("a.question_vid = ?", *filters.QuestionVID)
	}

	scope := filters.Scope
	switch {
	case scope.TakenByUser != nil && scope.QuizOwner != nil:
		query = query.Where("(r.user_id = ? OR r.quiz_owner_id = ?)", *scope.TakenByUser, *scope.QuizOwner)
	case scope.TakenByUser != nil:
		query = query.Where("r.user_id = ?", *scope.TakenByUser)
	case scope.QuizOwner != nil:
		query = query.Where("r.quiz_owner_id = ?", *scope.QuizOwner)
	}
	return query
}

func (a *AnswerPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}
