package http

import (
	"errors"
	"fmt"
	stdhttp "net/http"
	"testing"

	"github.com/shopspring/decimal"

	domainApproval "p2p-lending-engine/internal/domain/approval"
	domainLoan "p2p-lending-engine/internal/domain/loan"
	"p2p-lending-engine/internal/domain/uow"
	domainWallet "p2p-lending-engine/internal/domain/wallet"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domainLoan.ErrNotFound, stdhttp.StatusNotFound},
		{fmt.Errorf("load: %w", domainWallet.ErrNotFound), stdhttp.StatusNotFound},
		{&domainLoan.TransitionError{From: domainLoan.StatusDraft, To: domainLoan.StatusApproved}, stdhttp.StatusConflict},
		{domainApproval.ErrAlreadyDecided, stdhttp.StatusConflict},
		{fmt.Errorf("%w: 3 attempts", uow.ErrConcurrentModification), stdhttp.StatusConflict},
		{fmt.Errorf("%w: LN-9", domainLoan.ErrDuplicateApplication), stdhttp.StatusConflict},
		{&domainLoan.OverflowError{Requested: decimal.NewFromInt(7000), Remaining: decimal.NewFromInt(6000)}, stdhttp.StatusUnprocessableEntity},
		{&domainWallet.LimitError{Kind: domainWallet.KindWithdrawal, Period: domainWallet.PeriodDaily}, stdhttp.StatusUnprocessableEntity},
		{domainWallet.ErrInsufficientFunds, stdhttp.StatusUnprocessableEntity},
		{domainWallet.ErrSameWalletTransfer, stdhttp.StatusUnprocessableEntity},
		{domainLoan.ErrSelfInvestment, stdhttp.StatusUnprocessableEntity},
		{errors.New("driver: bad connection"), stdhttp.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := StatusFor(tc.err); got != tc.want {
			t.Fatalf("StatusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
