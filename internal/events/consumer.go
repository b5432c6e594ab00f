package events

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

const (
	retryBaseDelay = 200 * time.Millisecond
	retryMaxDelay  = 10 * time.Second
)

type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// PermanentFunc reports handler errors that will never succeed on retry.
type PermanentFunc func(err error) bool

// OrderConsumer commits an offset only once its message was handled.
// Transient failures are retried in place until they succeed or ctx ends,
// so delivery is at least once.
type OrderConsumer struct {
	reader    MessageReader
	handler   OrderHandler
	permanent PermanentFunc
}

func NewOrderConsumer(reader MessageReader, handler OrderHandler, permanent PermanentFunc) *OrderConsumer {
	if permanent == nil {
		permanent = func(error) bool { return false }
	}
	return &OrderConsumer{reader: reader, handler: handler, permanent: permanent}
}

func (c *OrderConsumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if !c.handle(ctx, msg) {
			// ctx ended mid retry; leave the offset for the next run
			return nil
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// handle returns false only when ctx was cancelled before the message was done.
func (c *OrderConsumer) handle(ctx context.Context, msg kafka.Message) bool {
	logger := log.With().Str("topic", msg.Topic).Int("partition", msg.Partition).Int64("offset", msg.Offset).Logger()

	env, err := DecodeEnvelope(msg.Value)
	if err != nil {
		logger.Error().Err(err).Msg("dropping malformed event")
		return true
	}

	delay := retryBaseDelay
	for attempt := 1; ; attempt++ {
		err := c.handler(ctx, env.OrderID)
		if err == nil {
			return true
		}
		if c.permanent(err) {
			logger.Error().Err(err).Str("order_id", env.OrderID).Msg("dropping event after permanent failure")
			return true
		}
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return false
		}

		logger.Warn().Err(err).Str("order_id", env.OrderID).Int("attempt", attempt).Msg("order event failed, retrying")
		select {
		case <-ctx.Done():
			return false
		case <-time.After(delay):
		}
		delay = min(delay*2, retryMaxDelay)
	}
}
