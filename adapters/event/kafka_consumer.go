package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/career-compass/internal/application/service"
	"github.com/khoahotran/career-compass/internal/config"
	"github.com/khoahotran/career-compass/pkg/logger"
)

const profileConsumerGroup = "cv-archive-group"

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ProfileEventHandler processes one decoded event. A non-nil error stops the
// consumer with the message uncommitted, so the group resumes from it after a restart.
type ProfileEventHandler func(ctx context.Context, e service.ProfileEvent) error

type ProfileEventConsumer struct {
	reader messageReader
	log    logger.Logger
}

func NewProfileEventConsumer(cfg config.Config, log logger.Logger) *ProfileEventConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    TopicProfileEvents,
		GroupID:  profileConsumerGroup,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &ProfileEventConsumer{reader: reader, log: log}
}

// Run blocks until ctx is cancelled or a handler fails. Committing a later
// offset would skip the failed message, so Run returns instead of moving on.
func (c *ProfileEventConsumer) Run(ctx context.Context, handle ProfileEventHandler) error {
	c.log.Info("Worker listening on topic", zap.String("topic", TopicProfileEvents))
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			c.log.Error("Failed to read message from Kafka", err)
			continue
		}

		var e service.ProfileEvent
		if err := json.Unmarshal(msg.Value, &e); err != nil {
			c.log.Warn("Failed to unmarshal event, skipping", zap.Error(err), zap.Int64("offset", msg.Offset))
			c.commit(ctx, msg)
			continue
		}

		log := c.log.With(zap.String("event_type", string(e.EventType)), zap.String("user_id", e.UserID.String()))
		log.Info("Processing profile event")

		if err := handle(ctx, e); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Error("Failed to process profile event", err, zap.Int64("offset", msg.Offset))
			return fmt.Errorf("profile event at offset %d: %w", msg.Offset, err)
		}
		c.commit(ctx, msg)
	}
}

func (c *ProfileEventConsumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.log.Error("Failed to commit message", err, zap.Int64("offset", msg.Offset))
	}
}

func (c *ProfileEventConsumer) Close() error {
	return c.reader.Close()
}
