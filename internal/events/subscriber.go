package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
)

// SubscriberConfig holds configuration for consuming the grading topic
type SubscriberConfig struct {
	KafkaBrokers  []string
	TopicName     string
	ConsumerGroup string
	Logger        *slog.Logger
}

// EventHandler receives each decoded event. Returning an error nacks the message.
type EventHandler func(ctx context.Context, event *GradingEvent) error

// GradingEventSubscriber consumes grading events, e.g. for notification or
// analytics services downstream of grading
type GradingEventSubscriber struct {
	subscriber message.Subscriber
	logger     *slog.Logger
	topicName  string
}

func NewGradingEventSubscriber(config SubscriberConfig) (*GradingEventSubscriber, error) {
	subscriber, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:               config.KafkaBrokers,
		Unmarshaler:           kafka.DefaultMarshaler{},
		OverwriteSaramaConfig: kafka.DefaultSaramaSubscriberConfig(),
		ConsumerGroup:         config.ConsumerGroup,
	}, watermill.NewSlogLogger(config.Logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka subscriber: %w", err)
	}

	return &GradingEventSubscriber{
		subscriber: subscriber,
		logger:     config.Logger,
		topicName:  config.TopicName,
	}, nil
}

// Run dispatches events to handle until ctx is cancelled. Payloads that cannot be
// decoded are logged and acked so they do not block the partition.
func (s *GradingEventSubscriber) Run(ctx context.Context, handle EventHandler) error {
	messages, err := s.subscriber.Subscribe(ctx, s.topicName)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", s.topicName, err)
	}

	for msg := range messages {
		event, err := DecodeGradingEvent(msg.Payload)
		if err != nil {
			s.logger.Warn("Skipping undecodable grading event", "message_uuid", msg.UUID, "error", err)
			msg.Ack()
			continue
		}

		if err := handle(msg.Context(), event); err != nil {
			s.logger.Error("Failed to handle grading event",
				"event_id", event.ID,
				"event_type", event.Type,
				"error", err)
			msg.Nack()
			continue
		}
		msg.Ack()
	}
	return ctx.Err()
}

func (s *GradingEventSubscriber) Close() error {
	return s.subscriber.Close()
}

// DecodeGradingEvent parses an envelope and decodes Data into the struct that
// matches its type. Unknown types keep Data as raw JSON.
func DecodeGradingEvent(payload []byte) (*GradingEvent, error) {
	var envelope struct {
		GradingEvent
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal grading event: %w", err)
	}

	event := envelope.GradingEvent
	var data interface{}
	switch event.Type {
	case EventAnswerSubmitted:
		data = &AnswerSubmittedEvent{}
	case EventAnswerGraded:
		data = &AnswerGradedEvent{}
	case EventManualGradingRequired:
		data = &ManualGradingRequiredEvent{}
	case EventResultTotalUpdated:
		data = &ResultTotalUpdatedEvent{}
	default:
		event.Data = envelope.Data
		return &event, nil
	}

	if err := json.Unmarshal(envelope.Data, data); err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", event.Type, err)
	}
	event.Data = data
	return &event, nil
}
