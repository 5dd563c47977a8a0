package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/SAP-F-2025/text-answer-service/internal/cache"
	"github.com/SAP-F-2025/text-answer-service/internal/models"
	"github.com/SAP-F-2025/text-answer-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuizRelationshipPostgreSQL struct {
	db    *gorm.DB
	cache cache.CacheService
	ttl   time.Duration
}

func NewQuizRelationshipPostgreSQL(db *gorm.DB, cacheService cache.CacheService, ttl time.Duration) repositories.QuizRelationshipRepository {
	return &QuizRelationshipPostgreSQL{
		db:    db,
		cache: cacheService,
		ttl:   ttl,
	}
}

func weightCacheKey(quizVID, questionVID uint) string {
	return fmt.Sprintf("weight:%d:%d", quizVID, questionVID)
}

func (r *QuizRelationshipPostgreSQL) Upsert(ctx context.Context, tx *gorm.DB, rel *models.QuizRelationship) error {
	db := r.getDB(tx)
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "quiz_vid"}, {Name: "question_vid"}},
		DoUpdates: clause.AssignmentColumns([]string{"max_score"}),
	}).Create(rel).Error
	if err != nil {
		return err
	}
	return r.cache.Delete(ctx, weightCacheKey(rel.QuizVID, rel.QuestionVID))
}

func (r *QuizRelationshipPostgreSQL) GetQuizMaxScore(ctx context.Context, tx *gorm.DB, quizVID, questionVID uint) (float64, error) {
	var rel models.QuizRelationship
	err := r.cache.CacheOrExecute(ctx, weightCacheKey(quizVID, questionVID), &rel, r.ttl, func() (interface{}, error) {
		var dbRel models.QuizRelationship
		if err := r.getDB(tx).WithContext(ctx).
			Where("quiz_vid = ? AND question_vid = ?", quizVID, questionVID).
			First(&dbRel).Error; err != nil {
			return nil, err
		}
		return &dbRel, nil
	})
	if err != nil {
		return 0, err
	}
	return rel.MaxScore, nil
}

func (r *QuizRelationshipPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}
