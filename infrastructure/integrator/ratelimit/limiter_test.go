package ratelimit

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_BoundsConcurrency(t *testing.T) {
	limiter := New("test-concurrency", 2, 0)

	var current, peak int32
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := limiter.Do(context.Background(), func(ctx context.Context) error {
				n := atomic.AddInt32(&current, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				atomic.AddInt32(&current, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}

	wg.Wait()
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
	assert.Equal(t, int32(2), atomic.LoadInt32(&peak))
}

func TestLimiter_SpacesCalls(t *testing.T) {
	interval := 20 * time.Millisecond
	limiter := New("test-spacing", 5, interval)

	var mu sync.Mutex
	starts := make([]time.Time, 0, 4)

	for i := 0; i < 4; i++ {
		err := limiter.Do(context.Background(), func(ctx context.Context) error {
			mu.Lock()
			starts = append(starts, time.Now())
			mu.Unlock()
			return nil
		})
		require.NoError(t, err)
	}

	for i := 1; i < len(starts); i++ {
		// pequena folga para a granularidade do relógio
		assert.GreaterOrEqual(t, starts[i].Sub(starts[i-1]), interval-2*time.Millisecond)
	}
}

func TestLimiter_ReturnsErrorUnchanged(t *testing.T) {
	limiter := New("test-errors", 1, 0)
	boom := errors.New("boom")

	calls := 0
	err := limiter.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls, "o limiter não deve refazer a chamada")
}

func TestLimiter_CancelledContext(t *testing.T) {
	limiter := New("test-cancel", 1, 0)

	release := make(chan struct{})
	go func() {
		_ = limiter.Do(context.Background(), func(ctx context.Context) error {
			<-release
			return nil
		})
	}()
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	called := false
	err := limiter.Do(ctx, func(ctx context.Context) error {
		called = true
		return nil
	})
	close(release)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, called)
}

func TestSchedule_ReturnsResult(t *testing.T) {
	limiter := New("test-schedule", 1, 0)

	got, err := Schedule(context.Background(), limiter, func(ctx context.Context) (int, error) {
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, got)
}
