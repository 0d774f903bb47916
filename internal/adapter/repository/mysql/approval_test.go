package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	approvalDomain "p2p-lending-engine/internal/domain/approval"
)

func decision(approvalID string, loanPK uint64, d approvalDomain.Decision, at time.Time) *approvalDomain.Approval {
	a := &approvalDomain.Approval{
		ApprovalID:          approvalID,
		LoanID:              loanPK,
		Decision:            d,
		ValidatorEmployeeID: "0123456789abcdef0123456789abcdef",
		DecisionDate:        at.UTC(),
	}
	if d == approvalDomain.DecisionApproved {
		a.PhotoURL = "https://files.example.com/visit/777.jpg"
	} else {
		a.Reason = "income could not be verified"
	}
	return a
}

func TestApproval_RoundTrip(t *testing.T) {
	repo := NewApprovalRepository(openTestDB(t))
	ctx := context.Background()
	at := time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

	if err := repo.Create(ctx, decision("apr-approved", 777, approvalDomain.DecisionApproved, at)); err != nil {
		t.Fatalf("Create approved: %v", err)
	}
	if err := repo.Create(ctx, decision("apr-rejected", 778, approvalDomain.DecisionRejected, at)); err != nil {
		t.Fatalf("Create rejected: %v", err)
	}

	approved, err := repo.GetByLoanID(ctx, 777)
	if err != nil {
		t.Fatalf("GetByLoanID: %v", err)
	}
	if approved.ApprovalID != "apr-approved" || approved.PhotoURL == "" || !approved.DecisionDate.Equal(at) {
		t.Errorf("approved row: %+v", approved)
	}

	rejected, err := repo.GetByApprovalID(ctx, "apr-rejected")
	if err != nil {
		t.Fatalf("GetByApprovalID: %v", err)
	}
	if rejected.LoanID != 778 || rejected.Decision != approvalDomain.DecisionRejected || rejected.Reason != "income could not be verified" {
		t.Errorf("rejected row: %+v", rejected)
	}
}

func TestApproval_SecondDecisionForLoanFails(t *testing.T) {
	repo := NewApprovalRepository(openTestDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, decision("apr-a", 5, approvalDomain.DecisionApproved, time.Now())); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := repo.Create(ctx, decision("apr-b", 5, approvalDomain.DecisionRejected, time.Now()))
	if !errors.Is(err, approvalDomain.ErrAlreadyDecided) {
		t.Fatalf("expected ErrAlreadyDecided, got %v", err)
	}
}

func TestApproval_Missing(t *testing.T) {
	repo := NewApprovalRepository(openTestDB(t))
	ctx := context.Background()

	lookups := map[string]func() error{
		"by loan": func() error { _, err := repo.GetByLoanID(ctx, 999); return err },
		"by id":   func() error { _, err := repo.GetByApprovalID(ctx, "apr-none"); return err },
	}
	for name, get := range lookups {
		if err := get(); !errors.Is(err, approvalDomain.ErrNotFound) {
			t.Errorf("%s: expected ErrNotFound, got %v", name, err)
		}
	}
}
