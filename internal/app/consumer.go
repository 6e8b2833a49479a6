package app

import (
	"context"

	"github.com/Keerthudarshu/petandco/internal/messaging/kafka/consumer"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// startConsumer runs the order-event consumer in this process: clearing a
// cart needs the live visitor stores, not just their persisted records.
func (a *App) startConsumer(ctx context.Context) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{a.cfg.Kafka.Broker},
		Topic:   a.cfg.Kafka.OrderTopic,
		GroupID: a.cfg.Kafka.GroupID,
	})
	a.closers = append(a.closers, reader.Close)
	a.logger.Info("kafka reader initialized",
		zap.String("topic", a.cfg.Kafka.OrderTopic),
		zap.String("group_id", a.cfg.Kafka.GroupID),
	)

	a.goRun(func() {
		consumer.ConsumeMessages(ctx, reader, a.Visitors, a.logger)
	})
}
