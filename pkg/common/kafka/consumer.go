package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mouthwatch/platform/pkg/common/logger"
	"github.com/mouthwatch/platform/pkg/common/models"
	"github.com/segmentio/kafka-go"
)

const (
	defaultRetryDelay    = 200 * time.Millisecond
	defaultMaxRetryDelay = 10 * time.Second
)

// messageReader is the part of *kafka.Reader the consume loop needs.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	reader        messageReader
	retryDelay    time.Duration
	maxRetryDelay time.Duration
}

type EventHandler func(ctx context.Context, event models.Event) error

func NewConsumer(brokers []string, topic string, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})

	return newConsumer(reader)
}

func newConsumer(reader messageReader) *Consumer {
	return &Consumer{
		reader:        reader,
		retryDelay:    defaultRetryDelay,
		maxRetryDelay: defaultMaxRetryDelay,
	}
}

// DecodeMessage returns the event carried by a bus message.
func DecodeMessage(message kafka.Message) (models.Event, error) {
	var event models.Event
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return models.Event{}, err
	}
	return event, nil
}

// Consume processes messages strictly in order. A committed offset covers
// every earlier message on the partition, so a failing handler is retried
// on the same message until it succeeds or ctx ends; nothing after it is
// fetched or committed in the meantime. Undecodable messages are committed
// and skipped.
func (c *Consumer) Consume(ctx context.Context, handler EventHandler) error {
	for {
		message, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Log.WithError(err).Error("Failed to fetch message")
			continue
		}

		event, err := DecodeMessage(message)
		if err != nil {
			logger.Log.WithError(err).WithField("offset", message.Offset).Error("Failed to unmarshal event, skipping")
		} else if err := c.handle(ctx, handler, event); err != nil {
			return err
		}

		if err := c.reader.CommitMessages(ctx, message); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Log.WithError(err).WithField("offset", message.Offset).Error("Failed to commit message")
		}
	}
}

// handle returns only when handler succeeds or ctx is done.
func (c *Consumer) handle(ctx context.Context, handler EventHandler, event models.Event) error {
	delay := c.retryDelay
	for attempt := 1; ; attempt++ {
		err := handler(ctx, event)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.WithEvent(event.ID, event.Type).WithError(err).WithFields(map[string]interface{}{
			"attempt":  attempt,
			"retry_in": delay.String(),
		}).Error("Failed to process event")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		if delay *= 2; delay > c.maxRetryDelay {
			delay = c.maxRetryDelay
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
