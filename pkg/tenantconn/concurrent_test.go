package tenantconn_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storegate/storegate/pkg/tenantconn"
)

func TestCacheConcurrentResolve(t *testing.T) {
	t.Parallel()

	t.Run("single dial under concurrent first access", func(t *testing.T) {
		t.Parallel()

		const callers = 50

		var dials atomic.Int32
		release := make(chan struct{})
		cache := tenantconn.New(func(ctx context.Context, location string) (*fakeConn, error) {
			dials.Add(1)
			<-release // hold the dial open so every caller piles up on it
			return &fakeConn{location: location}, nil
		})

		var wg sync.WaitGroup
		handles := make([]*fakeConn, callers)
		errs := make([]error, callers)

		for i := range callers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				handles[i], errs[i] = cache.Resolve(context.Background(), "mongodb://host/tenant-a")
			}()
		}

		// Give the goroutines a moment to converge on the pending entry.
		time.Sleep(50 * time.Millisecond)
		close(release)
		wg.Wait()

		assert.Equal(t, int32(1), dials.Load())
		for i := range callers {
			require.NoError(t, errs[i])
			assert.Same(t, handles[0], handles[i])
		}
	})

	t.Run("distinct locations dial independently", func(t *testing.T) {
		t.Parallel()

		const tenants = 10

		var dials atomic.Int32
		cache := tenantconn.New(func(ctx context.Context, location string) (*fakeConn, error) {
			dials.Add(1)
			return &fakeConn{location: location}, nil
		})

		var wg sync.WaitGroup
		for i := range tenants {
			location := fmt.Sprintf("mongodb://host/tenant-%d", i)
			for range 5 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					conn, err := cache.Resolve(context.Background(), location)
					assert.NoError(t, err)
					assert.Equal(t, location, conn.location)
				}()
			}
		}
		wg.Wait()

		assert.Equal(t, int32(tenants), dials.Load())
		assert.Equal(t, tenants, cache.Len())
	})

	t.Run("waiters see the first caller's failure", func(t *testing.T) {
		t.Parallel()

		dialErr := errors.New("auth failed")
		release := make(chan struct{})
		cache := tenantconn.New(func(ctx context.Context, location string) (*fakeConn, error) {
			<-release
			return nil, dialErr
		})

		const callers = 8
		var wg sync.WaitGroup
		errs := make([]error, callers)
		for i := range callers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = cache.Resolve(context.Background(), "mongodb://host/tenant-a")
			}()
		}

		time.Sleep(50 * time.Millisecond)
		close(release)
		wg.Wait()

		for i := range callers {
			assert.ErrorIs(t, errs[i], tenantconn.ErrConnectionFailed, "caller %d", i)
		}
		assert.Equal(t, 0, cache.Len())
	})
}
