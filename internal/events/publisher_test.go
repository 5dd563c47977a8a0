package events

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGradingEvent(t *testing.T) {
	event := NewGradingEvent(EventAnswerGraded, AnswerGradedEvent{AnswerID: 3, FinalScore: 16, IsCorrect: true})

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, EventAnswerGraded, event.Type)
	assert.Equal(t, "text-answer-service", event.Source)
	assert.Equal(t, "1.0", event.Version)
	assert.False(t, event.Timestamp.IsZero())

	other := NewGradingEvent(EventAnswerGraded, nil)
	assert.NotEqual(t, event.ID, other.ID)
}

func TestMockEventPublisher(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	pub := NewMockEventPublisher(logger)
	ctx := context.Background()

	require.NoError(t, pub.Publish(ctx, NewGradingEvent(EventAnswerGraded, AnswerGradedEvent{AnswerID: 1})))
	require.NoError(t, pub.Publish(ctx, NewGradingEvent(EventResultTotalUpdated, ResultTotalUpdatedEvent{ResultID: 9, Total: 12})))

	assert.Len(t, pub.GetPublishedEvents(), 2)

	totals := pub.EventsOfType(EventResultTotalUpdated)
	require.Len(t, totals, 1)
	data, ok := totals[0].Data.(ResultTotalUpdatedEvent)
	require.True(t, ok)
	assert.Equal(t, uint(9), data.ResultID)

	pub.ClearEvents()
	assert.Empty(t, pub.GetPublishedEvents())
	assert.NoError(t, pub.Close())
}
