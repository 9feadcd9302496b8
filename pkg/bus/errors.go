package bus

import "errors"

var (
	// ErrPublishFailed wraps failures to append a message to a topic.
	ErrPublishFailed = errors.New("bus: publish failed")

	// ErrSubscribeFailed wraps failures to join a consumer group.
	ErrSubscribeFailed = errors.New("bus: subscribe failed")

	// ErrEmptyTopic is returned when a topic name is missing.
	ErrEmptyTopic = errors.New("bus: topic is required")

	// ErrEmptyGroup is returned when a consumer group name is missing.
	ErrEmptyGroup = errors.New("bus: consumer group is required")
)
