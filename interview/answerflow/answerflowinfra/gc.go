package answerflowinfra

import (
	"context"
	"time"

	"github.com/Abraxas-365/gapflow/interview/answerflow"
	"github.com/Abraxas-365/gapflow/pkg/logx"
)

// Janitor sweeps expired snapshots on an interval. It runs until its
// context is cancelled.
type Janitor struct {
	store    answerflow.SnapshotStore
	interval time.Duration
	maxAge   time.Duration
}

func NewJanitor(store answerflow.SnapshotStore, interval, maxAge time.Duration) *Janitor {
	if interval <= 0 {
		interval = time.Hour
	}
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	return &Janitor{store: store, interval: interval, maxAge: maxAge}
}

// Run blocks sweeping on the interval; start it in a goroutine
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	logx.Infof("snapshot janitor started: every %s, max age %s", j.interval, j.maxAge)
	for {
		select {
		case <-ctx.Done():
			logx.Info("snapshot janitor stopped")
			return
		case <-ticker.C:
			removed, err := j.store.Cleanup(ctx, j.maxAge)
			if err != nil {
				logx.Warnf("snapshot janitor sweep failed: %v", err)
				continue
			}
			if removed > 0 {
				logx.Infof("snapshot janitor removed %d expired snapshots", removed)
			}
		}
	}
}
