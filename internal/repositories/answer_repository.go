package repositories

import (
	"context"

	"github.com/SAP-F-2025/text-answer-service/internal/models"
	"gorm.io/gorm"
)

// AnswerRepository stores the answers of one answer variant. There is at most one
// row per (question revision, result).
type AnswerRepository interface {
	// Table returns the backing table, which also names the variant.
	Table() string

	// Save upserts the answer text for key and returns the stored row. Score and
	// evaluation fields of an existing row are left untouched.
	Save(ctx context.Context, tx *gorm.DB, key models.AnswerKey, text string) (*models.TextAnswer, error)
	// Load returns the answer for key, or nil when none has been submitted.
	Load(ctx context.Context, tx *gorm.DB, key models.AnswerKey) (*models.TextAnswer, error)
	// SetScore writes all grading fields in one statement and reports whether the
	// row actually changed.
	SetScore(ctx context.Context, tx *gorm.DB, answerID uint, update models.ScoreUpdate) (bool, error)

	// Cascade deletion
	DeleteForRevision(ctx context.Context, tx *gorm.DB, questionQID, questionVID uint) (int64, error)
	DeleteForAllRevisions(ctx context.Context, tx *gorm.DB, questionQID uint) (int64, error)
	DeleteForResult(ctx context.Context, tx *gorm.DB, resultID uint) (int64, error)

	// Grading queue and aggregation
	ListUnscored(ctx context.Context, tx *gorm.DB, filters UnscoredFilters) ([]*models.AnswerSummary, error)
	SumScoresByResult(ctx context.Context, tx *gorm.DB, resultID uint) (float64, error)
}
