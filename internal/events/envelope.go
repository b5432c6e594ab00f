package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	EventOrderCompleted = "order.completed"
	producerName        = "storefront-api"
)

type Envelope struct {
	EventID    string    `json:"event_id"`
	EventType  string    `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`
	Producer   string    `json:"producer"`
	OrderID    string    `json:"order_id"`
}

func NewOrderCompleted(orderID string, now time.Time) Envelope {
	return Envelope{
		EventID:    uuid.NewString(),
		EventType:  EventOrderCompleted,
		OccurredAt: now.UTC(),
		Producer:   producerName,
		OrderID:    orderID,
	}
}

func DecodeEnvelope(b []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return env, fmt.Errorf("decode envelope: %w", err)
	}
	if env.EventType != EventOrderCompleted {
		return env, fmt.Errorf("unexpected event type %q", env.EventType)
	}
	if env.OrderID == "" {
		return env, fmt.Errorf("event %s has no order id", env.EventID)
	}
	return env, nil
}
