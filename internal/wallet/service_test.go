package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/shebloom/shebloom/internal/logging"
	"github.com/shebloom/shebloom/internal/payment"
)

func newTestService(processor payment.Processor) (*Service, Repository) {
	repo := NewMemoryRepository()
	svc := NewService(repo, processor, nil, logging.Discard())
	return svc, repo
}

func completedSum(t *testing.T, repo Repository, userID string) int64 {
	t.Helper()
	txns, err := repo.Transactions(context.Background(), userID, 0)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	var sum int64
	for _, txn := range txns {
		if txn.Status == StatusCompleted {
			sum += txn.AmountCents
		}
	}
	return sum
}

func TestTopUpThenPay(t *testing.T) {
	svc, repo := newTestService(payment.StaticProcessor{})
	ctx := context.Background()
	userID := uuid.NewString()

	res, err := svc.TopUp(ctx, userID, 1_000, "card")
	if err != nil {
		t.Fatalf("top up: %v", err)
	}
	if res.BalanceCents != 1_000 {
		t.Fatalf("expected balance 1000, got %d", res.BalanceCents)
	}
	if res.Transaction.Status != StatusCompleted {
		t.Fatalf("expected completed transaction, got %s", res.Transaction.Status)
	}
	if res.Transaction.ReceiptURL == "" {
		t.Fatal("expected receipt URL on completed top-up")
	}

	pay, err := svc.PayFromBalance(ctx, userID, 300, "Mentor session", TypeSessionPayment)
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if pay.BalanceCents != 700 {
		t.Fatalf("expected balance 700, got %d", pay.BalanceCents)
	}
	if pay.Transaction.AmountCents != -300 {
		t.Fatalf("expected amount -300, got %d", pay.Transaction.AmountCents)
	}

	if sum := completedSum(t, repo, userID); sum != 700 {
		t.Fatalf("balance does not match completed transaction sum: %d", sum)
	}
}

func TestBalanceEqualsLedgerSum(t *testing.T) {
	svc, repo := newTestService(payment.StaticProcessor{})
	ctx := context.Background()
	userID := uuid.NewString()

	steps := []struct {
		topUp int64
		spend int64
	}{
		{topUp: 2_000},
		{spend: 450},
		{topUp: 500},
		{spend: 1_200},
		{spend: 850},
	}
	for _, step := range steps {
		if step.topUp > 0 {
			if _, err := svc.TopUp(ctx, userID, step.topUp, "card"); err != nil {
				t.Fatalf("top up %d: %v", step.topUp, err)
			}
		}
		if step.spend > 0 {
			if _, err := svc.PayFromBalance(ctx, userID, step.spend, "spend", TypeMicroService); err != nil {
				t.Fatalf("spend %d: %v", step.spend, err)
			}
		}
	}

	b, err := svc.Balance(ctx, userID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if sum := completedSum(t, repo, userID); sum != b.BalanceCents {
		t.Fatalf("balance %d != completed sum %d", b.BalanceCents, sum)
	}
}

func TestTopUpRejectsBelowMinimum(t *testing.T) {
	svc, _ := newTestService(payment.StaticProcessor{})

	_, err := svc.TopUp(context.Background(), uuid.NewString(), 99, "card")
	if !errors.Is(err, ErrAmountTooSmall) {
		t.Fatalf("expected ErrAmountTooSmall, got %v", err)
	}
}

func TestDeclinedTopUpLeavesBalanceUnchanged(t *testing.T) {
	svc, repo := newTestService(payment.StaticProcessor{Err: payment.ErrDeclined})
	ctx := context.Background()
	userID := uuid.NewString()

	_, err := svc.TopUp(ctx, userID, 1_000, "card")
	if !errors.Is(err, ErrPaymentDeclined) {
		t.Fatalf("expected ErrPaymentDeclined, got %v", err)
	}

	b, err := svc.Balance(ctx, userID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if b.BalanceCents != 0 {
		t.Fatalf("expected balance 0 after declined top-up, got %d", b.BalanceCents)
	}

	txns, err := repo.Transactions(ctx, userID, 0)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("expected exactly one transaction, got %d", len(txns))
	}
	if txns[0].Status != StatusFailed {
		t.Fatalf("expected failed transaction, got %s", txns[0].Status)
	}
}

func TestPayFromBalanceInsufficientFunds(t *testing.T) {
	svc, repo := newTestService(payment.StaticProcessor{})
	ctx := context.Background()
	userID := uuid.NewString()

	if _, err := svc.TopUp(ctx, userID, 200, "card"); err != nil {
		t.Fatalf("top up: %v", err)
	}

	_, err := svc.PayFromBalance(ctx, userID, 300, "too much", TypeSessionPayment)
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	// Failed debit must have no side effects.
	b, err := svc.Balance(ctx, userID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if b.BalanceCents != 200 {
		t.Fatalf("expected balance 200, got %d", b.BalanceCents)
	}
	txns, _ := repo.Transactions(ctx, userID, 0)
	if len(txns) != 1 {
		t.Fatalf("expected one transaction, got %d", len(txns))
	}
}

func TestHasEnoughBalance(t *testing.T) {
	svc, _ := newTestService(payment.StaticProcessor{})
	ctx := context.Background()
	userID := uuid.NewString()

	ok, err := svc.HasEnoughBalance(ctx, userID, 1)
	if err != nil {
		t.Fatalf("has enough: %v", err)
	}
	if ok {
		t.Fatal("empty wallet should not cover 1 cent")
	}

	if _, err := svc.TopUp(ctx, userID, 500, "card"); err != nil {
		t.Fatalf("top up: %v", err)
	}
	ok, err = svc.HasEnoughBalance(ctx, userID, 500)
	if err != nil {
		t.Fatalf("has enough: %v", err)
	}
	if !ok {
		t.Fatal("expected 500 to be covered")
	}
}

func TestRefundCreditsBalance(t *testing.T) {
	svc, repo := newTestService(payment.StaticProcessor{})
	ctx := context.Background()
	userID := uuid.NewString()

	res, err := svc.Refund(ctx, userID, 750, "Session cancellation refund")
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if res.BalanceCents != 750 {
		t.Fatalf("expected balance 750, got %d", res.BalanceCents)
	}
	if res.Transaction.Type != TypeRefund || res.Transaction.AmountCents != 750 {
		t.Fatalf("unexpected refund transaction: %+v", res.Transaction)
	}
	if sum := completedSum(t, repo, userID); sum != 750 {
		t.Fatalf("completed sum %d", sum)
	}
}

func TestAutoTopUpAfterSpend(t *testing.T) {
	svc, _ := newTestService(payment.StaticProcessor{})
	ctx := context.Background()
	userID := uuid.NewString()

	enabled := true
	threshold := int64(500)
	amount := int64(1_000)
	if _, err := svc.UpdatePreferences(ctx, userID, UpdatePreferencesInput{
		AutoTopUpEnabled:        &enabled,
		AutoTopUpThresholdCents: &threshold,
		AutoTopUpAmountCents:    &amount,
	}); err != nil {
		t.Fatalf("update preferences: %v", err)
	}

	if _, err := svc.TopUp(ctx, userID, 600, "card"); err != nil {
		t.Fatalf("top up: %v", err)
	}
	// Drops the balance to 200, below the 500 threshold.
	if _, err := svc.PayFromBalance(ctx, userID, 400, "spend", TypeMicroService); err != nil {
		t.Fatalf("pay: %v", err)
	}

	b, err := svc.Balance(ctx, userID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if b.BalanceCents != 1_200 {
		t.Fatalf("expected auto top-up to bring balance to 1200, got %d", b.BalanceCents)
	}
}

func TestUpdatePreferencesPartialMerge(t *testing.T) {
	svc, _ := newTestService(payment.StaticProcessor{})
	ctx := context.Background()
	userID := uuid.NewString()

	initial, err := svc.Preferences(ctx, userID)
	if err != nil {
		t.Fatalf("preferences: %v", err)
	}

	method := "sepa"
	updated, err := svc.UpdatePreferences(ctx, userID, UpdatePreferencesInput{PreferredPaymentMethod: &method})
	if err != nil {
		t.Fatalf("update preferences: %v", err)
	}
	if updated.PreferredPaymentMethod != "sepa" {
		t.Fatalf("expected method sepa, got %s", updated.PreferredPaymentMethod)
	}
	if updated.AutoUseWallet != initial.AutoUseWallet || updated.RefundToWallet != initial.RefundToWallet {
		t.Fatal("untouched fields must survive a partial update")
	}
}
