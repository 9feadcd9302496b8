package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storegate/storegate/pkg/bus"
	"github.com/storegate/storegate/pkg/mailer"
	"github.com/storegate/storegate/svc/checkout"
	"github.com/storegate/storegate/svc/notify"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []mailer.SendParams
	fail error
}

func (f *fakeSender) Send(_ context.Context, params mailer.SendParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.sent = append(f.sent, params)
	return nil
}

func (f *fakeSender) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func publish(t *testing.T, b *bus.MemoryBus, ev checkout.CompletedEvent) error {
	t.Helper()
	return b.Publish(context.Background(), checkout.TopicPaymentCompleted, ev)
}

func TestWorkerSendsConfirmation(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	worker := notify.NewWorker(sender, nil)

	memBus := bus.NewMemoryBus()
	memBus.Register(checkout.TopicPaymentCompleted, notify.Group, worker.HandlePaymentCompleted)

	require.NoError(t, publish(t, memBus, checkout.CompletedEvent{
		TenantID:      "t-1",
		SessionID:     "txn_1",
		CustomerEmail: "buyer@example.com",
	}))

	require.Equal(t, 1, sender.sentCount())
	assert.Equal(t, "buyer@example.com", sender.sent[0].To)
	assert.Equal(t, "order-confirmation", sender.sent[0].Tag)
	assert.Contains(t, sender.sent[0].BodyHTML, "txn_1")
}

func TestWorkerDeduplicates(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	worker := notify.NewWorker(sender, nil)

	memBus := bus.NewMemoryBus()
	memBus.Register(checkout.TopicPaymentCompleted, notify.Group, worker.HandlePaymentCompleted)

	ev := checkout.CompletedEvent{TenantID: "t-1", SessionID: "txn_dup", CustomerEmail: "buyer@example.com"}
	require.NoError(t, publish(t, memBus, ev))
	require.NoError(t, publish(t, memBus, ev))
	require.NoError(t, publish(t, memBus, ev))

	assert.Equal(t, 1, sender.sentCount(), "duplicate events must not double-send")
}

func TestWorkerSkipsEventsWithoutEmail(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	worker := notify.NewWorker(sender, nil)

	err := worker.HandlePaymentCompleted(context.Background(), bus.Message{
		Topic:   checkout.TopicPaymentCompleted,
		Payload: []byte(`{"tenant_id":"t-1","session_id":"txn_2"}`),
	})
	require.NoError(t, err)
	assert.Zero(t, sender.sentCount())
}

func TestWorkerRetriesAfterSendFailure(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{fail: errors.New("smtp down")}
	worker := notify.NewWorker(sender, nil)

	ev := checkout.CompletedEvent{TenantID: "t-1", SessionID: "txn_retry", CustomerEmail: "buyer@example.com"}
	msg := bus.Message{Topic: checkout.TopicPaymentCompleted, Payload: mustJSON(t, ev)}

	// First delivery fails and must stay unacknowledged.
	err := worker.HandlePaymentCompleted(context.Background(), msg)
	require.Error(t, err)

	// Redelivery after the mailer recovers sends exactly once.
	sender.fail = nil
	require.NoError(t, worker.HandlePaymentCompleted(context.Background(), msg))
	assert.Equal(t, 1, sender.sentCount())
}

func TestWorkerDropsMalformedEvents(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	worker := notify.NewWorker(sender, nil)

	err := worker.HandlePaymentCompleted(context.Background(), bus.Message{
		ID:      "bad-1",
		Topic:   checkout.TopicPaymentCompleted,
		Payload: []byte("{not json"),
	})
	assert.NoError(t, err, "malformed events must not redeliver forever")
	assert.Zero(t, sender.sentCount())
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}
