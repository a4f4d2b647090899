package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"reverse-market/internal/services"
)

type stubNotifier struct {
	mu      sync.Mutex
	handled []uint
	block   chan struct{}
}

func (s *stubNotifier) NotifyStores(ctx context.Context, requestID uint) (services.FanoutResult, error) {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return services.FanoutResult{}, ctx.Err()
		}
	}
	s.mu.Lock()
	s.handled = append(s.handled, requestID)
	s.mu.Unlock()
	if requestID == 0 {
		return services.FanoutResult{}, errors.New("bad request")
	}
	return services.FanoutResult{Matched: 1, Succeeded: 1}, nil
}

func TestFanoutWorkerDrainsQueueOnStop(t *testing.T) {
	notifier := &stubNotifier{}
	w := NewFanoutWorker(notifier, 10, zap.NewNop())
	w.Start()

	for _, id := range []uint{1, 0, 3} {
		require.True(t, w.Enqueue(id))
	}
	require.NoError(t, w.Stop(context.Background()))

	assert.Equal(t, []uint{1, 0, 3}, notifier.handled)
	assert.False(t, w.Enqueue(4), "stopped worker refuses work")
}

func TestFanoutWorkerQueueFull(t *testing.T) {
	notifier := &stubNotifier{block: make(chan struct{})}
	w := NewFanoutWorker(notifier, 1, zap.NewNop())

	// not started: the single slot fills and the next enqueue is refused
	assert.True(t, w.Enqueue(1))
	assert.False(t, w.Enqueue(2))

	w.Start()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, w.Stop(ctx), context.DeadlineExceeded)
}

type stubPurger struct {
	calls     int
	retention time.Duration
}

func (p *stubPurger) Cleanup(_ context.Context, retention time.Duration) (int64, error) {
	p.calls++
	p.retention = retention
	return 2, nil
}

func TestNotificationCleanup(t *testing.T) {
	purger := &stubPurger{}
	job := NewNotificationCleanup(purger, time.Hour, 90*24*time.Hour, zap.NewNop())

	job.RunOnce(context.Background())
	assert.Equal(t, 1, purger.calls)
	assert.Equal(t, 90*24*time.Hour, purger.retention)

	go job.Start()
	job.Stop()
}
