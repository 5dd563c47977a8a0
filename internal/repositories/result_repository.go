package repositories

import (
	"context"

	"github.com/SAP-F-2025/text-answer-service/internal/models"
	"gorm.io/gorm"
)

// ResultRepository interface for quiz attempt (result) operations
type ResultRepository interface {
	Create(ctx context.Context, tx *gorm.DB, result *models.Result) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Result, error)
	UpdateScore(ctx context.Context, tx *gorm.DB, id uint, score float64) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}
