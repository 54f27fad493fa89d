package async

import (
	"context"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_HandlesEveryJob(t *testing.T) {
	ctx := context.Background()
	var active, peak atomic.Int32
	q := New(ctx, func(ctx context.Context, n int) int {
		cur := active.Add(1)
		for {
			p := peak.Load()
			if cur <= p || peak.CompareAndSwap(p, cur) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		active.Add(-1)
		return n * n
	}, nil, WithWorkers(3), WithQueueSize(2))

	go func() {
		for i := 1; i <= 10; i++ {
			assert.NoError(t, q.Enqueue(ctx, i))
		}
		q.Shutdown()
	}()

	var got []int
	for r := range q.Results() {
		got = append(got, r)
	}
	sort.Ints(got)
	assert.Equal(t, []int{1, 4, 9, 16, 25, 36, 49, 64, 81, 100}, got)
	assert.LessOrEqual(t, peak.Load(), int32(3))
	require.NoError(t, q.Wait(ctx))
}

func TestQueue_EnqueueAfterShutdown(t *testing.T) {
	q := New(context.Background(), func(context.Context, int) int { return 0 }, nil)
	q.Shutdown()
	q.Shutdown()
	assert.ErrorIs(t, q.Enqueue(context.Background(), 1), ErrQueueClosed)
	for range q.Results() {
	}
}

func TestQueue_ProcessTimeout(t *testing.T) {
	q := New(context.Background(), func(ctx context.Context, _ int) error {
		<-ctx.Done()
		return ctx.Err()
	}, nil, WithWorkers(1), WithProcessTimeout(10*time.Millisecond))
	require.NoError(t, q.Enqueue(context.Background(), 1))
	q.Shutdown()

	err := <-q.Results()
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
