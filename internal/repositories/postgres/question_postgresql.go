package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/SAP-F-2025/text-answer-service/internal/cache"
	"github.com/SAP-F-2025/text-answer-service/internal/models"
	"github.com/SAP-F-2025/text-answer-service/internal/repositories"
	"gorm.io/gorm"
)

type QuestionPostgreSQL struct {
	db    *gorm.DB
	cache cache.CacheService
	ttl   time.Duration
}

func NewQuestionPostgreSQL(db *gorm.DB, cacheService cache.CacheService, ttl time.Duration) repositories.QuestionRepository {
	return &QuestionPostgreSQL{
		db:    db,
		cache: cacheService,
		ttl:   ttl,
	}
}

func questionCacheKey(qid, vid uint) string {
	return fmt.Sprintf("question:%d:%d", qid, vid)
}

func (q *QuestionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	db := q.getDB(tx)
	return db.WithContext(ctx).Create(question).Error
}

// GetRevision reads through the cache unless called inside a transaction, where
// the caller needs to see its own uncommitted writes.
func (q *QuestionPostgreSQL) GetRevision(ctx context.Context, tx *gorm.DB, questionQID, questionVID uint) (*models.Question, error) {
	load := func() (interface{}, error) {
		var question models.Question
		if err := q.getDB(tx).WithContext(ctx).
			Where("qid = ? AND vid = ?", questionQID, questionVID).
			First(&question).Error; err != nil {
			return nil, err
		}
		return &question, nil
	}

	if tx != nil {
		question, err := load()
		if err != nil {
			return nil, err
		}
		return question.(*models.Question), nil
	}

	var question models.Question
	if err := q.cache.CacheOrExecute(ctx, questionCacheKey(questionQID, questionVID), &question, q.ttl, load); err != nil {
		return nil, err
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) DeleteRevision(ctx context.Context, tx *gorm.DB, questionQID, questionVID uint) error {
	db := q.getDB(tx)
	return db.WithContext(ctx).
		Where("qid = ? AND vid = ?", questionQID, questionVID).
		Delete(&models.Question{}).Error
}

func (q *QuestionPostgreSQL) InvalidateRevision(ctx context.Context, questionQID, questionVID uint) error {
	return q.cache.Delete(ctx, questionCacheKey(questionQID, questionVID))
}

func (q *QuestionPostgreSQL) DeleteAllRevisions(ctx context.Context, tx *gorm.DB, questionQID uint) error {
	db := q.getDB(tx)
	return db.WithContext(ctx).
		Where("qid = ?", questionQID).
		Delete(&models.Question{}).Error
}

func (q *QuestionPostgreSQL) InvalidateAllRevisions(ctx context.Context, questionQID uint) error {
	return q.cache.DeletePattern(ctx, fmt.Sprintf("question:%d:*", questionQID))
}

func (q *QuestionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return q.db
}
