package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Keerthudarshu/petandco/internal/cart"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

const (
	EventCartUpdated = "CART_UPDATED"
	EventCartCleared = "CART_CLEARED"

	aggregateType = "cart"
)

// Writer is the part of *kafka.Writer the publisher uses.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type CartEventLine struct {
	ID        string          `json:"id"`
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// CartEvent is the payload written to the cart topic.
type CartEvent struct {
	EventType  string          `json:"eventType"`
	UserID     string          `json:"userId"`
	VisitorID  string          `json:"visitorId"`
	Version    uint64          `json:"version"`
	ItemCount  int             `json:"itemCount"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Lines      []CartEventLine `json:"lines"`
	OccurredAt time.Time       `json:"occurredAt"`
}

func newCartEvent(visitorID, userID string, ev cart.Event, at time.Time) CartEvent {
	eventType := EventCartUpdated
	if ev.Kind == cart.EventCleared {
		eventType = EventCartCleared
	}

	lines := make([]CartEventLine, 0, len(ev.Snapshot.Lines))
	for _, l := range ev.Snapshot.Lines {
		lines = append(lines, CartEventLine{
			ID:        l.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}

	return CartEvent{
		EventType:  eventType,
		UserID:     userID,
		VisitorID:  visitorID,
		Version:    ev.Snapshot.Version,
		ItemCount:  ev.Snapshot.Count,
		Subtotal:   ev.Snapshot.Subtotal,
		Lines:      lines,
		OccurredAt: at,
	}
}

func toMessage(event CartEvent) (kafka.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(event.UserID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "aggregate_type", Value: []byte(aggregateType)},
		},
	}, nil
}

func publishEvents(ctx context.Context, writer Writer, events []CartEvent) error {
	msgs := make([]kafka.Message, 0, len(events))
	for _, ev := range events {
		msg, err := toMessage(ev)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	return writer.WriteMessages(ctx, msgs...)
}
