package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shebloom/shebloom/internal/metrics"
	"github.com/shebloom/shebloom/internal/notification"
	"github.com/shebloom/shebloom/internal/payment"
)

var (
	// ErrAmountTooSmall indicates a top-up below the 100 cent minimum.
	ErrAmountTooSmall = errors.New("top-up amount below minimum")

	// ErrPaymentDeclined indicates the external processor refused the charge.
	// The pending transaction is left in failed status and the balance is
	// unchanged.
	ErrPaymentDeclined = errors.New("payment declined")

	// ErrInvalidAmount indicates a non-positive amount.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidType indicates an unknown transaction type.
	ErrInvalidType = errors.New("unknown transaction type")
)

// Service exposes wallet operations: top-ups via the payment processor,
// payments from the stored balance, refunds and preference management.
type Service struct {
	repo      Repository
	processor payment.Processor
	notifier  notification.Notifier
	logger    *slog.Logger
}

// NewService builds a wallet service instance.
func NewService(repo Repository, processor payment.Processor, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, processor: processor, notifier: notifier, logger: logger}
}

// TopUpResult describes the outcome of a successful top-up.
type TopUpResult struct {
	Transaction  Transaction
	BalanceCents int64
}

// PaymentResult describes the outcome of a balance debit or credit.
type PaymentResult struct {
	Transaction  Transaction
	BalanceCents int64
}

// TopUp charges the external processor and credits the wallet. A pending
// transaction is recorded up front; a declined charge flips it to failed
// without touching the balance.
func (s *Service) TopUp(ctx context.Context, userID string, amountCents int64, paymentMethod string) (TopUpResult, error) {
	if amountCents < MinTopUpCents {
		return TopUpResult{}, ErrAmountTooSmall
	}
	if err := s.repo.EnsureBalance(ctx, userID); err != nil {
		return TopUpResult{}, err
	}

	txn := Transaction{
		ID:                uuid.NewString(),
		UserID:            userID,
		Type:              TypeTopUp,
		AmountCents:       amountCents,
		Description:       fmt.Sprintf("Top-up wallet (%s)", paymentMethod),
		Status:            StatusPending,
		PaymentMethod:     paymentMethod,
		ExternalReference: fmt.Sprintf("sim_pi_%d", time.Now().UnixMilli()),
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.repo.CreateTransaction(ctx, txn); err != nil {
		return TopUpResult{}, err
	}

	charge, err := s.processor.Charge(ctx, payment.ChargeRequest{
		AmountCents: amountCents,
		Method:      paymentMethod,
		Reference:   txn.ExternalReference,
	})
	if err != nil {
		if markErr := s.repo.MarkTransactionFailed(ctx, txn.ID); markErr != nil {
			s.logger.Error("mark top-up failed", "transaction_id", txn.ID, "error", markErr)
		}
		metrics.WalletTransactionsTotal.WithLabelValues(TypeTopUp, StatusFailed).Inc()
		s.notify(ctx, notification.KindTopUpFailed, userID,
			fmt.Sprintf("Top-up of %s could not be processed. Please try again.", formatAmount(amountCents)))
		if errors.Is(err, payment.ErrDeclined) {
			return TopUpResult{}, ErrPaymentDeclined
		}
		return TopUpResult{}, err
	}

	newBalance, err := s.repo.CompleteTopUp(ctx, txn.ID, userID, amountCents, charge.ReceiptURL)
	if err != nil {
		return TopUpResult{}, err
	}

	txn.Status = StatusCompleted
	txn.ReceiptURL = charge.ReceiptURL
	metrics.WalletTransactionsTotal.WithLabelValues(TypeTopUp, StatusCompleted).Inc()
	s.notify(ctx, notification.KindTopUpSucceeded, userID,
		fmt.Sprintf("%s added to your wallet.", formatAmount(amountCents)))

	return TopUpResult{Transaction: txn, BalanceCents: newBalance}, nil
}

// PayFromBalance debits the wallet for the given amount. The precondition
// balance >= amount is enforced atomically by the repository; on failure no
// transaction row is written. After a successful debit an auto top-up may run
// if the preferences ask for one.
func (s *Service) PayFromBalance(ctx context.Context, userID string, amountCents int64, description, txnType string) (PaymentResult, error) {
	if amountCents <= 0 {
		return PaymentResult{}, ErrInvalidAmount
	}
	if !ValidType(txnType) {
		return PaymentResult{}, ErrInvalidType
	}
	if err := s.repo.EnsureBalance(ctx, userID); err != nil {
		return PaymentResult{}, err
	}

	txn := Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        txnType,
		AmountCents: -amountCents,
		Description: description,
		Status:      StatusCompleted,
		CreatedAt:   time.Now().UTC(),
	}
	newBalance, err := s.repo.Apply(ctx, txn)
	if err != nil {
		return PaymentResult{}, err
	}

	metrics.WalletTransactionsTotal.WithLabelValues(txnType, StatusCompleted).Inc()
	s.notify(ctx, notification.KindWalletPayment, userID,
		fmt.Sprintf("%s paid from wallet.", formatAmount(amountCents)))

	s.maybeAutoTopUp(ctx, userID, newBalance)

	return PaymentResult{Transaction: txn, BalanceCents: newBalance}, nil
}

// Refund credits the wallet with a completed refund transaction.
func (s *Service) Refund(ctx context.Context, userID string, amountCents int64, description string) (PaymentResult, error) {
	if amountCents <= 0 {
		return PaymentResult{}, ErrInvalidAmount
	}
	if err := s.repo.EnsureBalance(ctx, userID); err != nil {
		return PaymentResult{}, err
	}

	txn := Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        TypeRefund,
		AmountCents: amountCents,
		Description: description,
		Status:      StatusCompleted,
		CreatedAt:   time.Now().UTC(),
	}
	newBalance, err := s.repo.Apply(ctx, txn)
	if err != nil {
		return PaymentResult{}, err
	}

	metrics.WalletTransactionsTotal.WithLabelValues(TypeRefund, StatusCompleted).Inc()
	s.notify(ctx, notification.KindWalletRefund, userID,
		fmt.Sprintf("%s refunded to your wallet.", formatAmount(amountCents)))

	return PaymentResult{Transaction: txn, BalanceCents: newBalance}, nil
}

// HasEnoughBalance reports whether the user's balance covers the amount.
func (s *Service) HasEnoughBalance(ctx context.Context, userID string, amountCents int64) (bool, error) {
	b, err := s.repo.Balance(ctx, userID)
	if err != nil {
		return false, err
	}
	return b.BalanceCents >= amountCents, nil
}

// Balance returns the user's current balance, creating the row on first use.
func (s *Service) Balance(ctx context.Context, userID string) (Balance, error) {
	if err := s.repo.EnsureBalance(ctx, userID); err != nil {
		return Balance{}, err
	}
	return s.repo.Balance(ctx, userID)
}

// Transactions returns the user's most recent ledger entries.
func (s *Service) Transactions(ctx context.Context, userID string, limit int) ([]Transaction, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	return s.repo.Transactions(ctx, userID, limit)
}

// Preferences returns the user's preferences, upserting defaults on first access.
func (s *Service) Preferences(ctx context.Context, userID string) (Preferences, error) {
	return s.repo.Preferences(ctx, userID)
}

// UpdatePreferences merges the provided fields into the preferences row.
func (s *Service) UpdatePreferences(ctx context.Context, userID string, input UpdatePreferencesInput) (Preferences, error) {
	return s.repo.UpdatePreferences(ctx, userID, input)
}

// maybeAutoTopUp triggers a top-up when the balance fell below the configured
// threshold. Best effort: failures are logged, never surfaced to the caller.
func (s *Service) maybeAutoTopUp(ctx context.Context, userID string, balanceCents int64) {
	prefs, err := s.repo.Preferences(ctx, userID)
	if err != nil {
		s.logger.Warn("load preferences for auto top-up", "user_id", userID, "error", err)
		return
	}
	if !prefs.AutoTopUpEnabled || balanceCents >= prefs.AutoTopUpThresholdCents {
		return
	}
	if prefs.AutoTopUpAmountCents < MinTopUpCents {
		return
	}
	if _, err := s.TopUp(ctx, userID, prefs.AutoTopUpAmountCents, prefs.PreferredPaymentMethod); err != nil {
		s.logger.Warn("auto top-up failed", "user_id", userID, "error", err)
	}
}

func (s *Service) notify(ctx context.Context, kind, userID, body string) {
	if s.notifier == nil {
		return
	}
	_ = s.notifier.Send(ctx, notification.Message{Kind: kind, Destination: userID, Body: body})
}

func formatAmount(cents int64) string {
	return fmt.Sprintf("€%d.%02d", cents/100, cents%100)
}
