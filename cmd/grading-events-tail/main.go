// Command grading-events-tail follows the grading topic and logs every event. It is
// the reference consumer for services that react to grades, such as notifications.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/SAP-F-2025/text-answer-service/internal/config"
	"github.com/SAP-F-2025/text-answer-service/internal/events"
	"github.com/SAP-F-2025/text-answer-service/internal/utils"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.NewLogger(false).Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := utils.NewLogger(cfg.IsProduction())

	subscriber, err := cfg.Events.CreateEventSubscriber(logger.Slog())
	if err != nil {
		logger.LogError(err, "Failed to create event subscriber")
		os.Exit(1)
	}
	defer subscriber.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = subscriber.Run(ctx, func(ctx context.Context, event *events.GradingEvent) error {
		logger.InfoContext(ctx, "Grading event",
			"event_id", event.ID,
			"event_type", event.Type,
			"timestamp", event.Timestamp,
			"data", event.Data)
		return nil
	})
	if err != nil && ctx.Err() == nil {
		logger.LogError(err, "Subscriber stopped")
		os.Exit(1)
	}
}
