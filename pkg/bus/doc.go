// Package bus is the platform's event bus: topic-based publish/subscribe
// with consumer groups and at-least-once delivery.
//
// The production implementation rides on Redis Streams. Each topic is a
// stream; each subscriber joins a consumer group, so multiple instances of
// a service share one group and split the work, while different services
// each see every message. Messages are acknowledged only after the handler
// returns nil - a crashed consumer leaves its messages pending for
// redelivery, which is why handlers must be idempotent or tolerate
// duplicates.
//
// MemoryBus is a synchronous in-process implementation for tests and
// local development without Redis.
package bus
