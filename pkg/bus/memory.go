package bus

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryBus is a synchronous in-process bus for tests and local
// development. Publish delivers to every registered group before
// returning; like the Redis implementation, distinct groups each receive
// every message while handlers within one group share it (first registered
// wins here, since there is no real work splitting in-process).
type MemoryBus struct {
	mu       sync.RWMutex
	handlers map[string]map[string]Handler // topic -> group -> handler
}

// NewMemoryBus creates an empty in-memory bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{handlers: make(map[string]map[string]Handler)}
}

// Publish delivers the payload synchronously to one handler per group.
// Handler errors are joined and returned so tests can observe them;
// callers in production code treat them as delivery failures.
func (b *MemoryBus) Publish(ctx context.Context, topic string, payload any) error {
	if topic == "" {
		return ErrEmptyTopic
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Join(ErrPublishFailed, err)
	}

	msg := Message{
		ID:          uuid.NewString(),
		Topic:       topic,
		Payload:     data,
		PublishedAt: time.Now().UTC(),
	}

	b.mu.RLock()
	groups := make([]Handler, 0, len(b.handlers[topic]))
	for _, handler := range b.handlers[topic] {
		groups = append(groups, handler)
	}
	b.mu.RUnlock()

	var errs []error
	for _, handler := range groups {
		if err := handler(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Subscribe registers the handler for the topic and group, then blocks
// until ctx is canceled to mirror the Redis implementation's contract.
func (b *MemoryBus) Subscribe(ctx context.Context, topic, group string, handler Handler) error {
	if topic == "" {
		return ErrEmptyTopic
	}
	if group == "" {
		return ErrEmptyGroup
	}

	b.mu.Lock()
	if b.handlers[topic] == nil {
		b.handlers[topic] = make(map[string]Handler)
	}
	if _, taken := b.handlers[topic][group]; !taken {
		b.handlers[topic][group] = handler
	}
	b.mu.Unlock()

	<-ctx.Done()
	return ctx.Err()
}

// Register is the non-blocking form of Subscribe for tests.
func (b *MemoryBus) Register(topic, group string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.handlers[topic] == nil {
		b.handlers[topic] = make(map[string]Handler)
	}
	b.handlers[topic][group] = handler
}
