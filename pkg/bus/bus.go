package bus

import (
	"context"
	"encoding/json"
	"time"
)

// Message is one delivered event.
type Message struct {
	ID          string    `json:"id"`
	Topic       string    `json:"topic"`
	Payload     []byte    `json:"payload"`
	PublishedAt time.Time `json:"published_at"`
}

// Decode unmarshals the message payload into v.
func (m Message) Decode(v any) error {
	return json.Unmarshal(m.Payload, v)
}

// Handler processes one message. Returning an error leaves the message
// unacknowledged so the bus can redeliver it.
type Handler func(ctx context.Context, msg Message) error

// Publisher emits events to a topic.
type Publisher interface {
	// Publish JSON-encodes payload and appends it to the topic.
	Publish(ctx context.Context, topic string, payload any) error
}

// Subscriber consumes events from a topic within a consumer group.
type Subscriber interface {
	// Subscribe blocks, delivering the topic's messages to handler until
	// ctx is canceled. Instances sharing a group split the messages;
	// distinct groups each receive every message.
	Subscribe(ctx context.Context, topic, group string, handler Handler) error
}

// Bus combines both sides.
type Bus interface {
	Publisher
	Subscriber
}
