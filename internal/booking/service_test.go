package booking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shebloom/shebloom/internal/logging"
	"github.com/shebloom/shebloom/internal/payment"
	"github.com/shebloom/shebloom/internal/wallet"
)

func newTestService(t *testing.T) (*Service, *wallet.Service, *MemoryRepository) {
	t.Helper()
	logger := logging.Discard()
	wallets := wallet.NewService(wallet.NewMemoryRepository(), &payment.StaticProcessor{}, nil, logger)
	repo := NewMemoryRepository()
	repo.SeedMentor(Mentor{
		ID:                   "mentor-1",
		Name:                 "Dr. Amina Diallo",
		Specialty:            "Therapy",
		Category:             "mental_health",
		PricePerSessionCents: 3000,
		Rating:               4.8,
		ReviewsCount:         42,
		Verified:             true,
	})
	return NewService(repo, wallets, nil, logger), wallets, repo
}

func TestBookPaysFromWallet(t *testing.T) {
	svc, wallets, _ := newTestService(t)
	ctx := context.Background()

	_, err := wallets.TopUp(ctx, "user-1", 5000, "card")
	require.NoError(t, err)

	b, err := svc.Book(ctx, BookInput{UserID: "user-1", MentorID: "mentor-1", Date: "2026-09-10", Time: "14:00"})
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, b.Status)
	assert.Equal(t, "Therapy session", b.ServiceName)

	bal, err := wallets.Balance(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), bal.BalanceCents)
}

func TestBookInsufficientBalance(t *testing.T) {
	svc, wallets, _ := newTestService(t)
	ctx := context.Background()

	_, err := wallets.TopUp(ctx, "user-1", 1000, "card")
	require.NoError(t, err)

	_, err = svc.Book(ctx, BookInput{UserID: "user-1", MentorID: "mentor-1", Date: "2026-09-10", Time: "14:00"})
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	bookings, err := svc.Bookings(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, bookings)

	bal, err := wallets.Balance(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), bal.BalanceCents)
}

func TestBookUnknownMentor(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Book(context.Background(), BookInput{UserID: "user-1", MentorID: "nope", Date: "2026-09-10", Time: "14:00"})
	assert.ErrorIs(t, err, ErrMentorNotFound)
}

func TestBookRequiresDateAndTime(t *testing.T) {
	svc, wallets, _ := newTestService(t)
	ctx := context.Background()

	_, err := wallets.TopUp(ctx, "user-1", 5000, "card")
	require.NoError(t, err)

	_, err = svc.Book(ctx, BookInput{UserID: "user-1", MentorID: "mentor-1"})
	assert.Error(t, err)
}

func TestCancelRefundsToWallet(t *testing.T) {
	svc, wallets, _ := newTestService(t)
	ctx := context.Background()

	_, err := wallets.TopUp(ctx, "user-1", 5000, "card")
	require.NoError(t, err)

	b, err := svc.Book(ctx, BookInput{UserID: "user-1", MentorID: "mentor-1", Date: "2026-09-10", Time: "14:00"})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, "user-1", b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	// RefundToWallet defaults to true, so the price comes back.
	bal, err := wallets.Balance(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(5000), bal.BalanceCents)

	txns, err := wallets.Transactions(ctx, "user-1", 10)
	require.NoError(t, err)
	require.NotEmpty(t, txns)
	assert.Equal(t, wallet.TypeRefund, txns[0].Type)
}

func TestCancelWithoutRefundPreference(t *testing.T) {
	svc, wallets, _ := newTestService(t)
	ctx := context.Background()

	_, err := wallets.TopUp(ctx, "user-1", 5000, "card")
	require.NoError(t, err)

	off := false
	_, err = wallets.UpdatePreferences(ctx, "user-1", wallet.UpdatePreferencesInput{RefundToWallet: &off})
	require.NoError(t, err)

	b, err := svc.Book(ctx, BookInput{UserID: "user-1", MentorID: "mentor-1", Date: "2026-09-10", Time: "14:00"})
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, "user-1", b.ID)
	require.NoError(t, err)

	bal, err := wallets.Balance(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), bal.BalanceCents)
}

func TestCancelTwice(t *testing.T) {
	svc, wallets, _ := newTestService(t)
	ctx := context.Background()

	_, err := wallets.TopUp(ctx, "user-1", 5000, "card")
	require.NoError(t, err)

	b, err := svc.Book(ctx, BookInput{UserID: "user-1", MentorID: "mentor-1", Date: "2026-09-10", Time: "14:00"})
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, "user-1", b.ID)
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, "user-1", b.ID)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)
}
