package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type Drainer interface {
	Drain(ctx context.Context) (int, error)
}

type Purger interface {
	Purge(ctx context.Context, before time.Time) (int64, error)
}

// OutboxRelay adapts the messaging relay to a Job. When a purger is set, sent
// rows older than the retention window are removed after each drain.
type OutboxRelay struct {
	relay     Drainer
	purger    Purger
	retention time.Duration
	now       func() time.Time
}

func NewOutboxRelay(relay Drainer) *OutboxRelay {
	return &OutboxRelay{relay: relay, now: time.Now}
}

func (r *OutboxRelay) WithPurge(p Purger, retention time.Duration) *OutboxRelay {
	r.purger, r.retention = p, retention
	return r
}

func (r *OutboxRelay) Name() string { return "outbox-relay" }

func (r *OutboxRelay) RunOnce(ctx context.Context) error {
	if _, err := r.relay.Drain(ctx); err != nil {
		return err
	}
	if r.purger == nil || r.retention <= 0 {
		return nil
	}
	n, err := r.purger.Purge(ctx, r.now().Add(-r.retention))
	if err != nil {
		return err
	}
	if n > 0 {
		zap.L().Info("outbox purged", zap.Int64("rows", n))
	}
	return nil
}
