package repositories

import (
	"context"

	"github.com/SAP-F-2025/text-answer-service/internal/models"
	"gorm.io/gorm"
)

// QuestionRepository gives read access to published question revisions and owns
// their removal
type QuestionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, question *models.Question) error
	GetRevision(ctx context.Context, tx *gorm.DB, questionQID, questionVID uint) (*models.Question, error)
	DeleteRevision(ctx context.Context, tx *gorm.DB, questionQID, questionVID uint) error
	DeleteAllRevisions(ctx context.Context, tx *gorm.DB, questionQID uint) error
	// Invalidate* drop cached revisions. Call them once the deleting transaction
	// has committed, or a concurrent read can re-cache the old row.
	InvalidateRevision(ctx context.Context, questionQID, questionVID uint) error
	InvalidateAllRevisions(ctx context.Context, questionQID uint) error
}

// QuizRelationshipRepository resolves the weight a question revision carries in a
// quiz revision
type QuizRelationshipRepository interface {
	Upsert(ctx context.Context, tx *gorm.DB, rel *models.QuizRelationship) error
	// GetQuizMaxScore returns gorm.ErrRecordNotFound when the pair is not related.
	GetQuizMaxScore(ctx context.Context, tx *gorm.DB, quizVID, questionVID uint) (float64, error)
}
