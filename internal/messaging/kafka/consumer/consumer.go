package consumer

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Reader is the part of *kafka.Reader the consumer loop uses.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// fetchRetryDelay spaces out fetches while the reader keeps failing.
var fetchRetryDelay = time.Second

// ConsumeMessages handles order events until ctx ends. Messages are
// committed once handled; malformed and unknown messages are committed and
// skipped.
func ConsumeMessages(ctx context.Context, reader Reader, carts CartClearer, logger *zap.Logger) {
	if logger == nil {
		logger = zap.L()
	}
	logger = logger.Named("kafka.consumer")
	logger.Info("started consuming order events")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("fetch message failed", zap.Error(err), zap.Duration("retry_in", fetchRetryDelay))
			select {
			case <-ctx.Done():
				return
			case <-time.After(fetchRetryDelay):
			}
			continue
		}

		eventType := getHeader(msg.Headers, HeaderEventType)
		log := logger.With(
			zap.String("event_type", eventType),
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
		)

		switch eventType {
		case EventDeleteCart:
			if err := handleDeleteCart(msg.Value, carts, log); err != nil {
				// Redelivery cannot fix a bad payload.
				log.Error("handle DELETE_CART failed", zap.Error(err))
			}
		default:
			log.Debug("skipping event")
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Warn("commit message failed", zap.Error(err))
		}
	}
}
