package tenantconn

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DialFunc opens a database handle for the given location string.
type DialFunc[T any] func(ctx context.Context, location string) (T, error)

// CloseFunc releases a handle during cache shutdown.
type CloseFunc[T any] func(ctx context.Context, handle T) error

// entry tracks one location's handle. ready is closed once the dial
// finished, successfully or not; err is only read after ready is closed.
type entry[T any] struct {
	ready  chan struct{}
	handle T
	err    error
}

// Cache maps database location strings to live, shared handles.
// Safe for concurrent use; at most one dial happens per distinct location.
type Cache[T any] struct {
	dial        DialFunc[T]
	closeHandle CloseFunc[T]
	dialTimeout time.Duration

	mu      sync.Mutex
	entries map[string]*entry[T]
	closed  bool
}

// Option configures a Cache.
type Option[T any] func(*Cache[T])

// WithDialTimeout bounds each connection attempt. A dial that exceeds the
// timeout fails with ErrConnectionFailed and the key becomes retryable.
func WithDialTimeout[T any](d time.Duration) Option[T] {
	return func(c *Cache[T]) {
		if d > 0 {
			c.dialTimeout = d
		}
	}
}

// WithCloser registers the function used to release handles on Close.
func WithCloser[T any](fn CloseFunc[T]) Option[T] {
	return func(c *Cache[T]) {
		c.closeHandle = fn
	}
}

// DefaultDialTimeout bounds connection creation when no timeout is configured.
const DefaultDialTimeout = 15 * time.Second

// New creates a connection cache around the given dial function.
func New[T any](dial DialFunc[T], opts ...Option[T]) *Cache[T] {
	c := &Cache[T]{
		dial:        dial,
		dialTimeout: DefaultDialTimeout,
		entries:     make(map[string]*entry[T]),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve returns the handle for location, dialing it on first use.
// Concurrent calls for a never-seen location share a single dial: the
// first caller creates the connection, the rest wait for its result.
// A failed dial clears the pending entry so a later call can retry.
func (c *Cache[T]) Resolve(ctx context.Context, location string) (T, error) {
	var zero T
	if location == "" {
		return zero, ErrEmptyLocation
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return zero, ErrCacheClosed
	}
	if e, ok := c.entries[location]; ok {
		c.mu.Unlock()
		return c.await(ctx, e)
	}

	e := &entry[T]{ready: make(chan struct{})}
	c.entries[location] = e
	c.mu.Unlock()

	dialCtx, cancel := context.WithTimeout(ctx, c.dialTimeout)
	defer cancel()

	handle, err := c.dial(dialCtx, location)
	if err != nil {
		e.err = errors.Join(ErrConnectionFailed, err)
		c.mu.Lock()
		// Clear the pending entry so the key stays retryable.
		if c.entries[location] == e {
			delete(c.entries, location)
		}
		c.mu.Unlock()
		close(e.ready)
		return zero, e.err
	}

	e.handle = handle
	close(e.ready)
	return handle, nil
}

// await blocks until the entry's dial completes or ctx is done.
func (c *Cache[T]) await(ctx context.Context, e *entry[T]) (T, error) {
	select {
	case <-e.ready:
		if e.err != nil {
			var zero T
			return zero, e.err
		}
		return e.handle, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Len reports the number of cached locations, counting in-flight dials.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close releases every ready handle and rejects further Resolve calls.
// Errors from individual handles are joined; in-flight dials are left to
// finish on their own.
func (c *Cache[T]) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	entries := c.entries
	c.entries = make(map[string]*entry[T])
	c.mu.Unlock()

	if c.closeHandle == nil {
		return nil
	}

	var errs []error
	for _, e := range entries {
		select {
		case <-e.ready:
		default:
			continue // dial still in flight, nothing to release yet
		}
		if e.err != nil {
			continue
		}
		if err := c.closeHandle(ctx, e.handle); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
