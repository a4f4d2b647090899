package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// NotificationPurger deletes read notifications older than a retention window
type NotificationPurger interface {
	Cleanup(ctx context.Context, retention time.Duration) (int64, error)
}

// NotificationCleanup periodically purges old read notifications
type NotificationCleanup struct {
	purger    NotificationPurger
	interval  time.Duration
	retention time.Duration
	log       *zap.Logger
	stopChan  chan struct{}
	done      chan struct{}
}

// NewNotificationCleanup creates a new cleanup job
func NewNotificationCleanup(purger NotificationPurger, interval, retention time.Duration, log *zap.Logger) *NotificationCleanup {
	return &NotificationCleanup{
		purger:    purger,
		interval:  interval,
		retention: retention,
		log:       log.Named("notification_cleanup"),
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start runs the cleanup loop until Stop is called
func (j *NotificationCleanup) Start() {
	defer close(j.done)
	j.log.Info("starting notification cleanup",
		zap.Duration("interval", j.interval),
		zap.Duration("retention", j.retention))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.RunOnce(context.Background())
		case <-j.stopChan:
			j.log.Info("stopping notification cleanup")
			return
		}
	}
}

// Stop ends the loop and waits for it to return
func (j *NotificationCleanup) Stop() {
	close(j.stopChan)
	<-j.done
}

// RunOnce performs a single purge
func (j *NotificationCleanup) RunOnce(ctx context.Context) {
	deleted, err := j.purger.Cleanup(ctx, j.retention)
	if err != nil {
		j.log.Error("failed to purge notifications", zap.Error(err))
		return
	}
	if deleted > 0 {
		j.log.Info("purged read notifications", zap.Int64("deleted", deleted))
	}
}
