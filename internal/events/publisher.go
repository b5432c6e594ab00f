package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaOrderNotifier publishes order.completed keyed by order id,
// so every event for one order lands on the same partition. The write runs
// on the job pool; the caller only waits for the enqueue.
type KafkaOrderNotifier struct {
	jobs   Submitter
	writer MessageWriter
	now    func() time.Time
}

func NewKafkaOrderNotifier(jobs Submitter, writer MessageWriter) *KafkaOrderNotifier {
	return &KafkaOrderNotifier{jobs: jobs, writer: writer, now: time.Now}
}

func (n *KafkaOrderNotifier) OrderCompleted(_ context.Context, orderID string) error {
	env := NewOrderCompleted(orderID, n.now())
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(orderID),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
			{Key: "event_id", Value: []byte(env.EventID)},
		},
	}

	err = n.jobs.Submit("publish:"+orderID, func(ctx context.Context) error {
		if err := n.writer.WriteMessages(ctx, msg); err != nil {
			return fmt.Errorf("publish %s for order %s: %w", env.EventType, orderID, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("queue %s for order %s: %w", env.EventType, orderID, err)
	}
	return nil
}
