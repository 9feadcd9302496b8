// Package notify consumes platform events and sends the corresponding
// customer emails. It is a pure worker: no HTTP surface, just a bus
// subscription driving the mailer.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/storegate/storegate/pkg/bus"
	"github.com/storegate/storegate/pkg/mailer"
	"github.com/storegate/storegate/svc/checkout"
)

// Group is the consumer group the worker joins. All notify instances share
// it, so each payment event is handled once across the fleet.
const Group = "notify"

// Worker sends order confirmations for completed payments. The bus
// delivers at-least-once, so the worker remembers handled session ids and
// silently drops repeats.
type Worker struct {
	sender mailer.Sender
	log    *slog.Logger

	mu   sync.Mutex
	seen map[string]struct{}
}

// NewWorker builds a worker over the given sender.
func NewWorker(sender mailer.Sender, log *slog.Logger) *Worker {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Worker{
		sender: sender,
		log:    log,
		seen:   make(map[string]struct{}),
	}
}

// Run subscribes to payment events and blocks until ctx is canceled.
func (w *Worker) Run(ctx context.Context, sub bus.Subscriber) error {
	return sub.Subscribe(ctx, checkout.TopicPaymentCompleted, Group, w.HandlePaymentCompleted)
}

// HandlePaymentCompleted sends the order confirmation for one event.
// Returning an error leaves the message unacknowledged for redelivery.
func (w *Worker) HandlePaymentCompleted(ctx context.Context, msg bus.Message) error {
	var ev checkout.CompletedEvent
	if err := msg.Decode(&ev); err != nil {
		// Undecodable messages would redeliver forever; log and drop.
		w.log.ErrorContext(ctx, "dropping malformed payment event",
			slog.String("error", err.Error()),
			slog.String("message_id", msg.ID),
		)
		return nil
	}

	if ev.CustomerEmail == "" {
		w.log.InfoContext(ctx, "payment event without customer email, nothing to send",
			slog.String("session_id", ev.SessionID),
		)
		return nil
	}

	if w.alreadyHandled(ev.SessionID) {
		w.log.InfoContext(ctx, "duplicate payment event ignored",
			slog.String("session_id", ev.SessionID),
		)
		return nil
	}

	err := w.sender.Send(ctx, mailer.SendParams{
		To:       ev.CustomerEmail,
		Subject:  "Your order is confirmed",
		BodyHTML: confirmationBody(ev),
		Tag:      "order-confirmation",
	})
	if err != nil {
		w.forget(ev.SessionID)
		return fmt.Errorf("send order confirmation: %w", err)
	}

	w.log.InfoContext(ctx, "order confirmation sent",
		slog.String("session_id", ev.SessionID),
		slog.String("tenant_id", ev.TenantID),
	)
	return nil
}

// alreadyHandled marks the session as handled and reports whether it was
// seen before. Marking before sending keeps a concurrent duplicate from
// double-sending; forget() undoes the mark when the send fails.
func (w *Worker) alreadyHandled(sessionID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.seen[sessionID]; ok {
		return true
	}
	w.seen[sessionID] = struct{}{}
	return false
}

func (w *Worker) forget(sessionID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.seen, sessionID)
}

func confirmationBody(ev checkout.CompletedEvent) string {
	return fmt.Sprintf(
		"<h1>Thanks for your order!</h1><p>Your payment was received. Keep this reference for your records: <strong>%s</strong>.</p>",
		ev.SessionID,
	)
}
