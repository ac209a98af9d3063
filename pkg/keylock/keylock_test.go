package keylock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireRelease(t *testing.T) {
	r := New()
	ctx := context.Background()

	require.NoError(t, r.Acquire(ctx, "1"))
	assert.Equal(t, 1, r.Len())

	r.Release("1")
	assert.Equal(t, 0, r.Len(), "registry should be empty once the last holder leaves")
}

func TestReleaseIsIdempotent(t *testing.T) {
	r := New()

	// Releasing a key that was never acquired must be a no-op.
	r.Release("ghost")
	assert.Equal(t, 0, r.Len())

	require.NoError(t, r.Acquire(context.Background(), "1"))
	r.Release("1")
	r.Release("1")
	assert.Equal(t, 0, r.Len())

	// Key must still be acquirable afterwards.
	require.NoError(t, r.Acquire(context.Background(), "1"))
	r.Release("1")
}

func TestAcquireTimesOutWhenHeld(t *testing.T) {
	r := New()
	require.NoError(t, r.Acquire(context.Background(), "1"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := r.Acquire(ctx, "1")
	assert.ErrorIs(t, err, ErrAcquireTimeout)

	// The failed waiter must not leak a registry entry.
	r.Release("1")
	assert.Equal(t, 0, r.Len())
}

func TestDifferentKeysDoNotBlockEachOther(t *testing.T) {
	r := New()
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	require.NoError(t, r.Acquire(ctx, "1"))
	require.NoError(t, r.Acquire(ctx, "2"))
	r.Release("2")
	r.Release("1")
}

func TestMutualExclusion(t *testing.T) {
	r := New()

	const goroutines = 32
	const iterations = 50

	var counter int64
	var inside int32
	var wg sync.WaitGroup

	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				err := r.WithLock(context.Background(), "concert", func() error {
					if atomic.AddInt32(&inside, 1) != 1 {
						t.Error("two goroutines inside the critical section")
					}
					counter++
					atomic.AddInt32(&inside, -1)
					return nil
				})
				if err != nil {
					t.Errorf("WithLock: %v", err)
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(goroutines*iterations), counter)
	assert.Equal(t, 0, r.Len())
}

func TestWithLockReleasesOnError(t *testing.T) {
	r := New()
	sentinel := assert.AnError

	err := r.WithLock(context.Background(), "1", func() error { return sentinel })
	assert.ErrorIs(t, err, sentinel)

	// Lock must be free again.
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	require.NoError(t, r.Acquire(ctx, "1"))
	r.Release("1")
}
