// Package engine holds the settings and collaborators shared by the loan,
// funding, repayment and wallet usecases. It is assembled once by whoever
// builds the service graph and passed in explicitly.
package engine

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"p2p-lending-engine/internal/domain/event"
	"p2p-lending-engine/internal/domain/loan"
	"p2p-lending-engine/internal/domain/uow"
	"p2p-lending-engine/internal/domain/wallet"
)

type Clock func() time.Time

func SystemClock() time.Time { return time.Now().UTC() }

type Settings struct {
	Retry uow.RetryPolicy
	// AutoApprove lets a fully subscribed pending loan fund without the desk.
	AutoApprove         bool
	ApplicationCooldown time.Duration
	Penalty             loan.PenaltyPolicy
	Default             loan.DefaultPolicy
	WalletLimits        wallet.Limits
}

func DefaultSettings() Settings {
	return Settings{
		Retry:               uow.RetryPolicy{Attempts: 5, Backoff: 10 * time.Millisecond},
		ApplicationCooldown: 24 * time.Hour,
		Penalty:             loan.DefaultPenaltyPolicy(),
		Default:             loan.DefaultPolicy{MissedInstallments: 3, Horizon: 90 * 24 * time.Hour},
		WalletLimits: wallet.Limits{
			DailyDeposit:      decimal.NewFromInt(1_000_000),
			DailyWithdrawal:   decimal.NewFromInt(500_000),
			DailyTransfer:     decimal.NewFromInt(1_000_000),
			MonthlyDeposit:    decimal.NewFromInt(10_000_000),
			MonthlyWithdrawal: decimal.NewFromInt(5_000_000),
			MonthlyTransfer:   decimal.NewFromInt(10_000_000),
		},
	}
}

// Emit publishes best-effort. A failure is logged with the full payload so the
// events can be replayed; it never undoes the mutation that produced them.
func Emit(ctx context.Context, pub event.Publisher, events ...event.Event) {
	if pub == nil || len(events) == 0 {
		return
	}
	if err := pub.Publish(ctx, events...); err != nil {
		for _, e := range events {
			payload, _ := json.Marshal(e)
			zap.L().Error("event publish failed",
				zap.String("event", string(e.Name)),
				zap.String("event_id", e.ID),
				zap.ByteString("replay", payload),
				zap.Error(err))
		}
	}
}
