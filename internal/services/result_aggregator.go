package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/text-answer-service/internal/metrics"
	"github.com/SAP-F-2025/text-answer-service/internal/repositories"
	"gorm.io/gorm"
)

type resultAggregator struct {
	stores  AnswerStores
	results repositories.ResultRepository
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewResultAggregator(stores AnswerStores, results repositories.ResultRepository, m *metrics.Metrics, logger *slog.Logger) ResultAggregator {
	return &resultAggregator{
		stores:  stores,
		results: results,
		metrics: m,
		logger:  logger,
	}
}

// UpdateTotal sums the scores of every answer in the result across both variant
// tables. Unscored answers count as zero.
func (a *resultAggregator) UpdateTotal(ctx context.Context, tx *gorm.DB, resultID uint) (float64, error) {
	var total float64
	for _, store := range a.stores.All() {
		sum, err := store.SumScoresByResult(ctx, tx, resultID)
		if err != nil {
			return 0, fmt.Errorf("failed to sum %s: %w", store.Table(), err)
		}
		total += sum
	}

	if err := a.results.UpdateScore(ctx, tx, resultID, total); err != nil {
		if repositories.IsNotFoundError(err) {
			return 0, newConfigurationError("result", "result does not exist", ErrResultNotFound,
				map[string]interface{}{"result_id": resultID})
		}
		return 0, fmt.Errorf("failed to update result total: %w", err)
	}

	a.metrics.ObserveTotalUpdated()
	a.logger.InfoContext(ctx, "Result total updated", "result_id", resultID, "total", total)
	return total, nil
}
