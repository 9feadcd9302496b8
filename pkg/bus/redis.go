package bus

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisConfig holds the event bus connection settings.
type RedisConfig struct {
	ConnectionURL  string        `env:"REDIS_URL,required"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"10s"`
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
	ReadBlock      time.Duration `env:"BUS_READ_BLOCK" envDefault:"5s"`
	ReadBatch      int64         `env:"BUS_READ_BATCH" envDefault:"16"`
}

// Connect establishes the Redis connection for the bus, retrying per the
// config before giving up.
func Connect(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrSubscribeFailed, err)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	var lastErr error
	for range cfg.RetryAttempts {
		client := redis.NewClient(opt)
		if err := client.Ping(ctx).Err(); err == nil {
			return client, nil
		} else {
			lastErr = err
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrSubscribeFailed, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}
	return nil, errors.Join(ErrSubscribeFailed, lastErr)
}

// RedisBus implements Bus over Redis Streams.
type RedisBus struct {
	client *redis.Client
	cfg    RedisConfig
	logger *slog.Logger
}

// NewRedisBus wraps an established Redis client.
func NewRedisBus(client *redis.Client, cfg RedisConfig, logger *slog.Logger) *RedisBus {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.ReadBatch <= 0 {
		cfg.ReadBatch = 16
	}
	if cfg.ReadBlock <= 0 {
		cfg.ReadBlock = 5 * time.Second
	}
	return &RedisBus{client: client, cfg: cfg, logger: logger}
}

// Publish appends the JSON-encoded payload to the topic stream.
func (b *RedisBus) Publish(ctx context.Context, topic string, payload any) error {
	if topic == "" {
		return ErrEmptyTopic
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Join(ErrPublishFailed, err)
	}

	err = b.client.XAdd(ctx, &redis.XAddArgs{
		Stream: topic,
		Values: map[string]any{
			"id":           uuid.NewString(),
			"payload":      data,
			"published_at": time.Now().UTC().Format(time.RFC3339Nano),
		},
	}).Err()
	if err != nil {
		return errors.Join(ErrPublishFailed, err)
	}
	return nil
}

// Subscribe joins the consumer group on the topic stream and delivers
// messages to handler until ctx is canceled. Messages are acknowledged
// only after the handler succeeds; failed messages stay pending and are
// redelivered by Redis.
func (b *RedisBus) Subscribe(ctx context.Context, topic, group string, handler Handler) error {
	if topic == "" {
		return ErrEmptyTopic
	}
	if group == "" {
		return ErrEmptyGroup
	}

	err := b.client.XGroupCreateMkStream(ctx, topic, group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return errors.Join(ErrSubscribeFailed, err)
	}

	consumer := group + "-" + uuid.NewString()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		streams, err := b.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    group,
			Consumer: consumer,
			Streams:  []string{topic, ">"},
			Count:    b.cfg.ReadBatch,
			Block:    b.cfg.ReadBlock,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue // block timeout, poll again
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return ctx.Err()
			}
			b.logger.ErrorContext(ctx, "bus read failed",
				slog.String("topic", topic),
				slog.String("group", group),
				slog.String("error", err.Error()),
			)
			continue
		}

		for _, stream := range streams {
			for _, raw := range stream.Messages {
				msg := decodeStreamMessage(topic, raw)
				if err := handler(ctx, msg); err != nil {
					b.logger.ErrorContext(ctx, "bus handler failed, message left pending",
						slog.String("topic", topic),
						slog.String("group", group),
						slog.String("message_id", msg.ID),
						slog.String("error", err.Error()),
					)
					continue
				}
				if err := b.client.XAck(ctx, topic, group, raw.ID).Err(); err != nil {
					b.logger.ErrorContext(ctx, "bus ack failed",
						slog.String("topic", topic),
						slog.String("message_id", msg.ID),
						slog.String("error", err.Error()),
					)
				}
			}
		}
	}
}

func decodeStreamMessage(topic string, raw redis.XMessage) Message {
	msg := Message{ID: raw.ID, Topic: topic}
	if id, ok := raw.Values["id"].(string); ok && id != "" {
		msg.ID = id
	}
	if payload, ok := raw.Values["payload"].(string); ok {
		msg.Payload = []byte(payload)
	}
	if ts, ok := raw.Values["published_at"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			msg.PublishedAt = parsed
		}
	}
	return msg
}
