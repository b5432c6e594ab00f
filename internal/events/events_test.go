package events

import (
	"context"
	"encoding/json"
	"errors"
	"storefront-api/internal/client"
	"storefront-api/internal/jobs"
	"storefront-api/internal/model"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

type fakeReader struct {
	mu        sync.Mutex
	pending   []kafka.Message
	committed []kafka.Message
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.pending) > 0 {
		msg := r.pending[0]
		r.pending = r.pending[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()

	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) committedOffsets() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int64, len(r.committed))
	for i, m := range r.committed {
		out[i] = m.Offset
	}
	return out
}

func eventMessage(t *testing.T, orderID string, offset int64) kafka.Message {
	t.Helper()
	value, err := json.Marshal(NewOrderCompleted(orderID, time.Now()))
	require.NoError(t, err)
	return kafka.Message{Key: []byte(orderID), Value: value, Offset: offset}
}

// stalledWriter never hears back from the broker until the job context ends.
type stalledWriter struct {
	started chan struct{}
}

func (w *stalledWriter) WriteMessages(ctx context.Context, _ ...kafka.Message) error {
	close(w.started)
	<-ctx.Done()
	return ctx.Err()
}

func TestKafkaOrderNotifier_PublishesKeyedEnvelope(t *testing.T) {
	d := jobs.NewDispatcher(1, 4, time.Second)
	d.Start(context.Background())
	w := &fakeWriter{}
	n := NewKafkaOrderNotifier(d, w)

	require.NoError(t, n.OrderCompleted(context.Background(), "order-1"))
	require.NoError(t, d.Shutdown(context.Background()))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("order-1"), w.msgs[0].Key)

	env, err := DecodeEnvelope(w.msgs[0].Value)
	require.NoError(t, err)
	assert.Equal(t, "order-1", env.OrderID)
	assert.Equal(t, EventOrderCompleted, env.EventType)
	assert.NotEmpty(t, env.EventID)
}

func TestKafkaOrderNotifier_DoesNotWaitForBroker(t *testing.T) {
	d := jobs.NewDispatcher(1, 4, 200*time.Millisecond)
	d.Start(context.Background())
	w := &stalledWriter{started: make(chan struct{})}
	n := NewKafkaOrderNotifier(d, w)

	begin := time.Now()
	require.NoError(t, n.OrderCompleted(context.Background(), "order-1"))
	assert.Less(t, time.Since(begin), 100*time.Millisecond)

	<-w.started
	require.NoError(t, d.Shutdown(context.Background()))
}

func TestKafkaOrderNotifier_QueueFull(t *testing.T) {
	d := jobs.NewDispatcher(1, 1, 0)
	n := NewKafkaOrderNotifier(d, &fakeWriter{err: errors.New("broker down")})

	require.NoError(t, n.OrderCompleted(context.Background(), "a"))
	err := n.OrderCompleted(context.Background(), "b")
	assert.ErrorIs(t, err, jobs.ErrQueueFull)
}

func TestDecodeEnvelope_Rejects(t *testing.T) {
	_, err := DecodeEnvelope([]byte("not json"))
	assert.Error(t, err)

	_, err = DecodeEnvelope([]byte(`{"event_type":"order.cancelled","order_id":"o"}`))
	assert.Error(t, err)

	_, err = DecodeEnvelope([]byte(`{"event_type":"order.completed"}`))
	assert.Error(t, err)
}

func TestOrderConsumer_CommitsAfterHandling(t *testing.T) {
	reader := &fakeReader{pending: []kafka.Message{
		eventMessage(t, "o1", 1),
		{Value: []byte("garbage"), Offset: 2},
		eventMessage(t, "o3", 3),
	}}

	var mu sync.Mutex
	var handled []string
	attempts := 0
	done := make(chan struct{})

	handler := func(ctx context.Context, orderID string) error {
		mu.Lock()
		defer mu.Unlock()
		if orderID == "o1" && attempts == 0 {
			attempts++
			return errors.New("transient")
		}
		handled = append(handled, orderID)
		if orderID == "o3" {
			close(done)
		}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- NewOrderConsumer(reader, handler, nil).Run(ctx) }()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not handle all messages")
	}
	require.Eventually(t, func() bool { return len(reader.committedOffsets()) == 3 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-errCh)

	assert.Equal(t, []string{"o1", "o3"}, handled)
	assert.Equal(t, []int64{1, 2, 3}, reader.committedOffsets())
}

func TestOrderConsumer_PermanentErrorIsCommitted(t *testing.T) {
	reader := &fakeReader{pending: []kafka.Message{eventMessage(t, "gone", 7)}}
	permanent := errors.New("order not found")

	handler := func(ctx context.Context, orderID string) error { return permanent }
	isPermanent := func(err error) bool { return errors.Is(err, permanent) }

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- NewOrderConsumer(reader, handler, isPermanent).Run(ctx) }()

	require.Eventually(t, func() bool { return len(reader.committedOffsets()) == 1 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-errCh)
}

func TestOrderConsumer_CancelDuringRetryLeavesOffset(t *testing.T) {
	reader := &fakeReader{pending: []kafka.Message{eventMessage(t, "o1", 1)}}
	called := make(chan struct{}, 1)

	handler := func(ctx context.Context, orderID string) error {
		select {
		case called <- struct{}{}:
		default:
		}
		return errors.New("db down")
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- NewOrderConsumer(reader, handler, nil).Run(ctx) }()

	<-called
	cancel()
	require.NoError(t, <-errCh)
	assert.Empty(t, reader.committedOffsets())
}

func TestLocalOrderNotifier_RunsHandlerOnDispatcher(t *testing.T) {
	d := jobs.NewDispatcher(1, 4, time.Second)
	d.Start(context.Background())

	got := make(chan string, 1)
	n := NewLocalOrderNotifier(d, func(ctx context.Context, orderID string) error {
		got <- orderID
		return nil
	})

	require.NoError(t, n.OrderCompleted(context.Background(), "order-9"))
	require.NoError(t, d.Shutdown(context.Background()))
	assert.Equal(t, "order-9", <-got)
}

func TestLocalOrderNotifier_QueueFull(t *testing.T) {
	d := jobs.NewDispatcher(1, 1, 0)
	n := NewLocalOrderNotifier(d, func(ctx context.Context, orderID string) error { return nil })

	require.NoError(t, n.OrderCompleted(context.Background(), "a"))
	err := n.OrderCompleted(context.Background(), "b")
	assert.ErrorIs(t, err, jobs.ErrQueueFull)
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []*client.Mail
}

func (m *recordingMailer) Send(_ context.Context, mail *client.Mail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, mail)
	return nil
}

func TestWelcomeMailer_SendsInBackground(t *testing.T) {
	d := jobs.NewDispatcher(1, 4, time.Second)
	d.Start(context.Background())
	mailer := &recordingMailer{}

	w := NewWelcomeMailer(d, mailer)
	require.NoError(t, w.SendWelcome(context.Background(), &model.User{ID: "u1", Email: "ana@example.com", Username: "ana@example.com"}))
	require.NoError(t, d.Shutdown(context.Background()))

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "ana@example.com", mailer.sent[0].ToAddress)
	assert.Equal(t, welcomeSubject, mailer.sent[0].Subject)
}
