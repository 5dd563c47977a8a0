package repositories

import (
	"context"
	"errors"

	"github.com/SAP-F-2025/text-answer-service/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

// UnscoredFilters selects entries for a grading queue. Pagination is a plain
// limit/offset scan; rows graded between page fetches shift later pages.
type UnscoredFilters struct {
	QuestionQID *uint              `json:"question_id"`
	QuestionVID *uint              `json:"revision_id"`
	Scope       models.GraderScope `json:"scope"`
	Limit       int                `json:"limit"`
	Offset      int                `json:"offset"`
}

const (
	DefaultUnscoredLimit = 50
	MaxUnscoredLimit     = 500
)

// Normalize clamps pagination to sane bounds
func (f UnscoredFilters) Normalize() UnscoredFilters {
	if f.Limit <= 0 {
		f.Limit = DefaultUnscoredLimit
	}
	if f.Limit > MaxUnscoredLimit {
		f.Limit = MaxUnscoredLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// ===== TRANSACTIONS =====

// Transactor runs fn inside a database transaction. Repository methods accept the
// transaction handle as tx; a nil tx means "use the root connection".
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// IsNotFoundError reports whether err is a record-not-found from the storage layer
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
