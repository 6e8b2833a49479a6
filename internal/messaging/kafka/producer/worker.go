package producer

import (
	"context"
	"sync"
	"time"

	"github.com/Keerthudarshu/petandco/internal/cart"

	"go.uber.org/zap"
)

// Outbox buffers cart events of signed-in visitors until the worker
// publishes them. When the buffer is full new events are dropped.
type Outbox struct {
	events chan CartEvent
	now    func() time.Time
	logger *zap.Logger

	mu      sync.Mutex
	dropped int
}

func NewOutbox(size int, logger *zap.Logger) *Outbox {
	if size <= 0 {
		size = 1024
	}
	if logger == nil {
		logger = zap.L()
	}
	return &Outbox{
		events: make(chan CartEvent, size),
		now:    time.Now,
		logger: logger.Named("kafka.outbox"),
	}
}

// ObserveCart matches visitor.CartObserver. Only changes to a signed-in
// user's cart are published; sync bookkeeping events are not.
func (o *Outbox) ObserveCart(visitorID, userID string, ev cart.Event) {
	if userID == "" {
		return
	}
	if ev.Kind != cart.EventMutated && ev.Kind != cart.EventCleared {
		return
	}
	o.Enqueue(newCartEvent(visitorID, userID, ev, o.now()))
}

func (o *Outbox) Enqueue(ev CartEvent) bool {
	select {
	case o.events <- ev:
		return true
	default:
		o.mu.Lock()
		o.dropped++
		o.mu.Unlock()
		return false
	}
}

func (o *Outbox) Dropped() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.dropped
}

// pending takes up to limit buffered events without blocking.
func (o *Outbox) pending(limit int) []CartEvent {
	out := make([]CartEvent, 0, limit)
	for len(out) < limit {
		select {
		case ev := <-o.events:
			out = append(out, ev)
		default:
			return out
		}
	}
	return out
}

// ProcessOutboxEvents publishes buffered events every interval until ctx
// ends, then flushes what is left with a short grace period.
func ProcessOutboxEvents(ctx context.Context, outbox *Outbox, writer Writer, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	outbox.logger.Info("outbox processor started", zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			processPendingEvents(flushCtx, outbox, writer)
			cancel()
			return
		case <-ticker.C:
			processPendingEvents(ctx, outbox, writer)
		}
	}
}

func processPendingEvents(ctx context.Context, outbox *Outbox, writer Writer) {
	for {
		events := outbox.pending(100)
		if len(events) == 0 {
			return
		}
		if err := publishEvents(ctx, writer, events); err != nil {
			// Cart events are notifications; a failed batch is not retried.
			outbox.logger.Warn("publish cart events failed", zap.Int("count", len(events)), zap.Error(err))
			return
		}
		outbox.logger.Debug("published cart events", zap.Int("count", len(events)))
	}
}
