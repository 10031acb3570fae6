package wallet

import "time"

// Transaction types. The sign of AmountCents encodes direction: positive
// amounts credit the balance, negative amounts debit it.
const (
	TypeTopUp          = "top_up"
	TypeSessionPayment = "session_payment"
	TypeMicroService   = "micro_service"
	TypeRefund         = "refund"
	TypeSubscription   = "subscription"
)

// Transaction statuses. A transaction starts pending and moves to completed
// or failed. Cancelled exists in the taxonomy but no operation produces it.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// MinTopUpCents is the smallest accepted top-up (1.00 in display currency).
const MinTopUpCents = 100

// Balance holds the stored value for one user. One row per user, created on
// first access and never deleted.
type Balance struct {
	UserID       string
	BalanceCents int64
	UpdatedAt    time.Time
}

// Transaction is one ledger entry. Completed transactions sum to the balance.
type Transaction struct {
	ID                string
	UserID            string
	Type              string
	AmountCents       int64
	Description       string
	Status            string
	PaymentMethod     string
	ExternalReference string
	ReceiptURL        string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Preferences controls automatic wallet behavior for one user.
type Preferences struct {
	UserID                  string
	AutoUseWallet           bool
	AutoTopUpEnabled        bool
	AutoTopUpThresholdCents int64
	AutoTopUpAmountCents    int64
	PreferredPaymentMethod  string
	RefundToWallet          bool
}

// DefaultPreferences returns the preferences row written on first access.
func DefaultPreferences(userID string) Preferences {
	return Preferences{
		UserID:                  userID,
		AutoUseWallet:           true,
		AutoTopUpEnabled:        false,
		AutoTopUpThresholdCents: 500,
		AutoTopUpAmountCents:    2000,
		PreferredPaymentMethod:  "card",
		RefundToWallet:          true,
	}
}

// UpdatePreferencesInput carries a partial preferences update; nil fields are
// left unchanged.
type UpdatePreferencesInput struct {
	AutoUseWallet           *bool
	AutoTopUpEnabled        *bool
	AutoTopUpThresholdCents *int64
	AutoTopUpAmountCents    *int64
	PreferredPaymentMethod  *string
	RefundToWallet          *bool
}

// ValidType reports whether t is a known transaction type.
func ValidType(t string) bool {
	switch t {
	case TypeTopUp, TypeSessionPayment, TypeMicroService, TypeRefund, TypeSubscription:
		return true
	default:
		return false
	}
}
