package jobs

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"reverse-market/internal/services"
)

// StoreNotifier announces an approved request to matching stores
type StoreNotifier interface {
	NotifyStores(ctx context.Context, requestID uint) (services.FanoutResult, error)
}

// FanoutWorker runs store fan-outs in the background, one request at a time,
// so that the admin's approval returns immediately
type FanoutWorker struct {
	notifier StoreNotifier
	queue    chan uint
	log      *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewFanoutWorker creates a worker with a bounded queue
func NewFanoutWorker(notifier StoreNotifier, queueSize int, log *zap.Logger) *FanoutWorker {
	if queueSize <= 0 {
		queueSize = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &FanoutWorker{
		notifier: notifier,
		queue:    make(chan uint, queueSize),
		log:      log.Named("fanout"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Enqueue schedules a fan-out. It reports false when the queue is full or
// the worker has stopped.
func (w *FanoutWorker) Enqueue(requestID uint) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return false
	}
	select {
	case w.queue <- requestID:
		return true
	default:
		return false
	}
}

// Start launches the worker goroutine
func (w *FanoutWorker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.log.Info("store fan-out worker started", zap.Int("queue_size", cap(w.queue)))
		for id := range w.queue {
			w.run(id)
		}
		w.log.Info("store fan-out worker stopped")
	}()
}

func (w *FanoutWorker) run(requestID uint) {
	result, err := w.notifier.NotifyStores(w.ctx, requestID)
	if err != nil {
		w.log.Error("store fan-out failed", zap.Uint("request_id", requestID), zap.Error(err))
		return
	}
	w.log.Debug("store fan-out done",
		zap.Uint("request_id", requestID),
		zap.Int("matched", result.Matched),
		zap.Int("failed", result.Failed))
}

// Stop refuses new work and waits for queued fan-outs to finish. When ctx
// expires first, the in-flight fan-out is cancelled.
func (w *FanoutWorker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.cancel()
		return nil
	case <-ctx.Done():
		w.cancel()
		<-done
		return ctx.Err()
	}
}
