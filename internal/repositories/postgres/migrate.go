package postgres

import (
	"fmt"

	"github.com/SAP-F-2025/text-answer-service/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates every table this service owns
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Question{}, &models.QuizRelationship{}, &models.Result{}); err != nil {
		return fmt.Errorf("failed to migrate core tables: %w", err)
	}

	for _, table := range []string{models.LongAnswerTable, models.ShortAnswerTable} {
		if err := db.Table(table).AutoMigrate(&models.TextAnswer{}); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", table, err)
		}

		indexes := []string{
			fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS idx_%s_slot ON %s (question_vid, result_id)", table, table),
			fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_question ON %s (question_qid)", table, table),
			fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_result ON %s (result_id)", table, table),
			fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_unscored ON %s (is_evaluated, created_at)", table, table),
		}
		for _, stmt := range indexes {
			if err := db.Exec(stmt).Error; err != nil {
				return fmt.Errorf("failed to index %s: %w", table, err)
			}
		}
	}
	return nil
}
