package app

import (
	"context"

	"github.com/Keerthudarshu/petandco/internal/messaging/kafka/producer"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// startWorker publishes cart events collected by the outbox.
func (a *App) startWorker(ctx context.Context) {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(a.cfg.Kafka.Broker),
		Topic:                  a.cfg.Kafka.CartTopic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	a.closers = append(a.closers, writer.Close)
	a.logger.Info("kafka writer initialized", zap.String("topic", a.cfg.Kafka.CartTopic))

	a.goRun(func() {
		producer.ProcessOutboxEvents(ctx, a.outbox, writer, a.cfg.Kafka.PublishInterval)
	})
}
