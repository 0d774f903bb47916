package worker

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"p2p-lending-engine/internal/usecase/repayment"
)

type LoanSweeper interface {
	ActiveLoanIDs(ctx context.Context, afterID string, limit int) ([]string, error)
	Sweep(ctx context.Context, loanID string) (*repayment.SweepResult, error)
}

// SweepStats summarizes one pass over the active loans.
type SweepStats struct {
	Visited   int
	Overdue   int
	Defaulted int
	Failed    int
}

// OverdueSweeper accrues penalties and applies the default policy to every
// active loan, a bounded number at a time.
type OverdueSweeper struct {
	loans   LoanSweeper
	workers int
	// page size for listing active loans; zero lists them all at once
	limit int

	// loans being swept; a slow pass never overlaps the next tick on one loan
	inFlight sync.Map
	last     atomic.Pointer[SweepStats]
}

func NewOverdueSweeper(loans LoanSweeper, workers, limit int) *OverdueSweeper {
	if workers < 1 {
		workers = 1
	}
	return &OverdueSweeper{loans: loans, workers: workers, limit: limit}
}

func (s *OverdueSweeper) Name() string { return "overdue-sweep" }

func (s *OverdueSweeper) RunOnce(ctx context.Context) error {
	_, err := s.Sweep(ctx)
	return err
}

// Last returns the stats of the most recent completed pass, or nil.
func (s *OverdueSweeper) Last() *SweepStats { return s.last.Load() }

// Sweep visits every active loan once, listing them page by page. A failure
// on one loan is logged and counted; it does not stop the pass.
func (s *OverdueSweeper) Sweep(ctx context.Context) (SweepStats, error) {
	var (
		visited, overdue, defaulted, failed atomic.Int64
		g                                   errgroup.Group
		listErr                             error
	)
	g.SetLimit(s.workers)

	after := ""
pages:
	for {
		ids, err := s.loans.ActiveLoanIDs(ctx, after, s.limit)
		if err != nil {
			listErr = err
			break
		}
		for _, loanID := range ids {
			if ctx.Err() != nil {
				break pages
			}
			if _, busy := s.inFlight.LoadOrStore(loanID, struct{}{}); busy {
				continue
			}
			loanID := loanID
			g.Go(func() error {
				defer s.inFlight.Delete(loanID)
				visited.Add(1)
				res, err := s.loans.Sweep(ctx, loanID)
				if err != nil {
					failed.Add(1)
					zap.L().Error("sweep loan failed", zap.String("loan_id", loanID), zap.Error(err))
					return nil
				}
				overdue.Add(int64(len(res.NewlyOverdue)))
				if res.Defaulted {
					defaulted.Add(1)
				}
				return nil
			})
		}
		if s.limit <= 0 || len(ids) < s.limit {
			break
		}
		after = ids[len(ids)-1]
	}
	_ = g.Wait()
	if listErr != nil {
		return SweepStats{}, listErr
	}

	stats := SweepStats{
		Visited:   int(visited.Load()),
		Overdue:   int(overdue.Load()),
		Defaulted: int(defaulted.Load()),
		Failed:    int(failed.Load()),
	}
	s.last.Store(&stats)
	zap.L().Info("overdue sweep finished",
		zap.Int("loans", stats.Visited),
		zap.Int("newly_overdue", stats.Overdue),
		zap.Int("defaulted", stats.Defaulted),
		zap.Int("failed", stats.Failed))
	return stats, ctx.Err()
}
