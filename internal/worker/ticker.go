// Package worker runs the engine's periodic jobs: the overdue sweep and the
// outbox relay.
package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Job is one periodic unit of work.
type Job interface {
	Name() string
	RunOnce(ctx context.Context) error
}

// Run executes job every interval until ctx is done. The first run happens
// one interval after start. Errors are logged and never stop the loop.
func Run(ctx context.Context, job Job, interval time.Duration) {
	zap.L().Info("worker started", zap.String("job", job.Name()), zap.Duration("interval", interval))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.L().Info("worker stopped", zap.String("job", job.Name()))
			return
		case <-ticker.C:
			if err := job.RunOnce(ctx); err != nil && ctx.Err() == nil {
				zap.L().Error("worker run failed", zap.String("job", job.Name()), zap.Error(err))
			}
		}
	}
}
