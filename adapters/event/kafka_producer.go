package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/cpd-tracker/internal/config"
	"github.com/khoahotran/cpd-tracker/internal/domain/activity"
	"github.com/khoahotran/cpd-tracker/pkg/logger"
)

const TopicActivityEvents = "cpd.activity.events"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher sends activity lifecycle events to TopicActivityEvents,
// keyed by activity ID so one activity's events stay ordered.
type KafkaPublisher struct {
	writer messageWriter
	logger logger.Logger
}

func NewKafkaPublisher(cfg config.Config, log logger.Logger) (*KafkaPublisher, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  TopicActivityEvents,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}

	log.Info("Initialize Kafka producer successfully.", zap.Strings("brokers", brokers))
	return &KafkaPublisher{writer: writer, logger: log}, nil
}

func (p *KafkaPublisher) PublishActivityEvent(ctx context.Context, payload activity.EventPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(payload.ActivityID),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(payload.EventType)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", payload.EventType, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	err := p.writer.Close()
	p.logger.Info("Closed Kafka producer")
	return err
}

// LogPublisher records events in the log when no broker is configured.
type LogPublisher struct {
	logger logger.Logger
}

func NewLogPublisher(log logger.Logger) *LogPublisher {
	return &LogPublisher{logger: log}
}

func (p *LogPublisher) PublishActivityEvent(_ context.Context, payload activity.EventPayload) error {
	p.logger.Debug("Activity event",
		zap.String("event_type", string(payload.EventType)),
		zap.String("activity_id", payload.ActivityID),
		zap.Float64("hours", payload.Hours),
	)
	return nil
}
