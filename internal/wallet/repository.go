package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrInsufficientBalance occurs when a debit would push the balance
	// below zero. The repository guarantees the operation has no effect.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrTransactionNotFound indicates the referenced transaction row does
	// not exist or is not in the expected status.
	ErrTransactionNotFound = errors.New("transaction not found")
)

// Repository persists balances, the transaction ledger and preferences.
type Repository interface {
	EnsureBalance(ctx context.Context, userID string) error
	Balance(ctx context.Context, userID string) (Balance, error)

	CreateTransaction(ctx context.Context, txn Transaction) error
	// Apply atomically inserts txn as completed and adjusts the balance by
	// txn.AmountCents, returning the new balance. A debit that would go
	// negative fails with ErrInsufficientBalance and writes nothing.
	Apply(ctx context.Context, txn Transaction) (int64, error)
	// CompleteTopUp atomically flips a pending transaction to completed,
	// records the receipt URL and credits the balance.
	CompleteTopUp(ctx context.Context, txnID, userID string, amountCents int64, receiptURL string) (int64, error)
	MarkTransactionFailed(ctx context.Context, txnID string) error
	Transactions(ctx context.Context, userID string, limit int) ([]Transaction, error)

	Preferences(ctx context.Context, userID string) (Preferences, error)
	UpdatePreferences(ctx context.Context, userID string, input UpdatePreferencesInput) (Preferences, error)
}

// PostgresRepository stores wallet state in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// EnsureBalance creates the zero balance row for a user if missing.
func (r *PostgresRepository) EnsureBalance(ctx context.Context, userID string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO wallet_balances (user_id, balance_cents, updated_at)
        VALUES ($1, 0, now()) ON CONFLICT (user_id) DO NOTHING`, uid)
	return err
}

// Balance fetches the current balance row.
func (r *PostgresRepository) Balance(ctx context.Context, userID string) (Balance, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return Balance{}, err
	}
	row := r.db.QueryRow(ctx, `SELECT balance_cents, updated_at FROM wallet_balances WHERE user_id = $1`, uid)
	b := Balance{UserID: userID}
	var updatedAt time.Time
	if err := row.Scan(&b.BalanceCents, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Balance{UserID: userID}, nil
		}
		return Balance{}, err
	}
	b.UpdatedAt = updatedAt.UTC()
	return b, nil
}

// CreateTransaction inserts a ledger row without touching the balance.
func (r *PostgresRepository) CreateTransaction(ctx context.Context, txn Transaction) error {
	txnID, uid, err := parseIDs(txn.ID, txn.UserID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO wallet_transactions
        (id, user_id, type, amount_cents, description, status, payment_method, external_reference, receipt_url, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`,
		txnID, uid, txn.Type, txn.AmountCents, txn.Description, txn.Status,
		nullable(txn.PaymentMethod), nullable(txn.ExternalReference), nullable(txn.ReceiptURL), txn.CreatedAt.UTC())
	return err
}

// Apply inserts a completed transaction and adjusts the balance in one
// database transaction. The guarded update keeps the balance non-negative.
func (r *PostgresRepository) Apply(ctx context.Context, txn Transaction) (int64, error) {
	txnID, uid, err := parseIDs(txn.ID, txn.UserID)
	if err != nil {
		return 0, err
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	var newBalance int64
	err = tx.QueryRow(ctx, `UPDATE wallet_balances
        SET balance_cents = balance_cents + $2, updated_at = now()
        WHERE user_id = $1 AND balance_cents + $2 >= 0
        RETURNING balance_cents`, uid, txn.AmountCents).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrInsufficientBalance
		}
		return 0, err
	}

	if _, err := tx.Exec(ctx, `INSERT INTO wallet_transactions
        (id, user_id, type, amount_cents, description, status, payment_method, external_reference, receipt_url, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())`,
		txnID, uid, txn.Type, txn.AmountCents, txn.Description, StatusCompleted,
		nullable(txn.PaymentMethod), nullable(txn.ExternalReference), nullable(txn.ReceiptURL)); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// CompleteTopUp marks a pending top-up completed and credits the balance.
func (r *PostgresRepository) CompleteTopUp(ctx context.Context, txnID, userID string, amountCents int64, receiptURL string) (int64, error) {
	tid, uid, err := parseIDs(txnID, userID)
	if err != nil {
		return 0, err
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	cmd, err := tx.Exec(ctx, `UPDATE wallet_transactions
        SET status = $2, receipt_url = $3, updated_at = now()
        WHERE id = $1 AND status = $4`, tid, StatusCompleted, receiptURL, StatusPending)
	if err != nil {
		return 0, err
	}
	if cmd.RowsAffected() == 0 {
		return 0, ErrTransactionNotFound
	}

	var newBalance int64
	err = tx.QueryRow(ctx, `UPDATE wallet_balances
        SET balance_cents = balance_cents + $2, updated_at = now()
        WHERE user_id = $1
        RETURNING balance_cents`, uid, amountCents).Scan(&newBalance)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// MarkTransactionFailed flips a pending transaction to failed.
func (r *PostgresRepository) MarkTransactionFailed(ctx context.Context, txnID string) error {
	tid, err := uuid.Parse(txnID)
	if err != nil {
		return err
	}
	cmd, err := r.db.Exec(ctx, `UPDATE wallet_transactions
        SET status = $2, updated_at = now()
        WHERE id = $1 AND status = $3`, tid, StatusFailed, StatusPending)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

// Transactions lists a user's ledger entries, newest first.
func (r *PostgresRepository) Transactions(ctx context.Context, userID string, limit int) ([]Transaction, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, `SELECT id, type, amount_cents, description, status,
        COALESCE(payment_method, ''), COALESCE(external_reference, ''), COALESCE(receipt_url, ''),
        created_at, updated_at
        FROM wallet_transactions WHERE user_id = $1
        ORDER BY created_at DESC LIMIT $2`, uid, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var (
			t       Transaction
			id      uuid.UUID
			created time.Time
			updated time.Time
		)
		if err := rows.Scan(&id, &t.Type, &t.AmountCents, &t.Description, &t.Status,
			&t.PaymentMethod, &t.ExternalReference, &t.ReceiptURL, &created, &updated); err != nil {
			return nil, err
		}
		t.ID = id.String()
		t.UserID = userID
		t.CreatedAt = created.UTC()
		t.UpdatedAt = updated.UTC()
		out = append(out, t)
	}
	return out, rows.Err()
}

// Preferences fetches the user's preferences, writing the defaults first when
// no row exists yet.
func (r *PostgresRepository) Preferences(ctx context.Context, userID string) (Preferences, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return Preferences{}, err
	}
	defaults := DefaultPreferences(userID)
	_, err = r.db.Exec(ctx, `INSERT INTO wallet_preferences
        (user_id, auto_use_wallet, auto_topup_enabled, auto_topup_threshold_cents, auto_topup_amount_cents, preferred_payment_method, refund_to_wallet)
        VALUES ($1, $2, $3, $4, $5, $6, $7) ON CONFLICT (user_id) DO NOTHING`,
		uid, defaults.AutoUseWallet, defaults.AutoTopUpEnabled, defaults.AutoTopUpThresholdCents,
		defaults.AutoTopUpAmountCents, defaults.PreferredPaymentMethod, defaults.RefundToWallet)
	if err != nil {
		return Preferences{}, err
	}
	return r.readPreferences(ctx, uid, userID)
}

// UpdatePreferences merges the provided fields into the preferences row.
func (r *PostgresRepository) UpdatePreferences(ctx context.Context, userID string, input UpdatePreferencesInput) (Preferences, error) {
	current, err := r.Preferences(ctx, userID)
	if err != nil {
		return Preferences{}, err
	}
	merged := mergePreferences(current, input)

	uid, err := uuid.Parse(userID)
	if err != nil {
		return Preferences{}, err
	}
	_, err = r.db.Exec(ctx, `UPDATE wallet_preferences SET
        auto_use_wallet = $2, auto_topup_enabled = $3, auto_topup_threshold_cents = $4,
        auto_topup_amount_cents = $5, preferred_payment_method = $6, refund_to_wallet = $7,
        updated_at = now()
        WHERE user_id = $1`,
		uid, merged.AutoUseWallet, merged.AutoTopUpEnabled, merged.AutoTopUpThresholdCents,
		merged.AutoTopUpAmountCents, merged.PreferredPaymentMethod, merged.RefundToWallet)
	if err != nil {
		return Preferences{}, err
	}
	return merged, nil
}

func (r *PostgresRepository) readPreferences(ctx context.Context, uid uuid.UUID, userID string) (Preferences, error) {
	row := r.db.QueryRow(ctx, `SELECT auto_use_wallet, auto_topup_enabled, auto_topup_threshold_cents,
        auto_topup_amount_cents, COALESCE(preferred_payment_method, ''), refund_to_wallet
        FROM wallet_preferences WHERE user_id = $1`, uid)
	p := Preferences{UserID: userID}
	if err := row.Scan(&p.AutoUseWallet, &p.AutoTopUpEnabled, &p.AutoTopUpThresholdCents,
		&p.AutoTopUpAmountCents, &p.PreferredPaymentMethod, &p.RefundToWallet); err != nil {
		return Preferences{}, err
	}
	return p, nil
}

func mergePreferences(current Preferences, input UpdatePreferencesInput) Preferences {
	if input.AutoUseWallet != nil {
		current.AutoUseWallet = *input.AutoUseWallet
	}
	if input.AutoTopUpEnabled != nil {
		current.AutoTopUpEnabled = *input.AutoTopUpEnabled
	}
	if input.AutoTopUpThresholdCents != nil {
		current.AutoTopUpThresholdCents = *input.AutoTopUpThresholdCents
	}
	if input.AutoTopUpAmountCents != nil {
		current.AutoTopUpAmountCents = *input.AutoTopUpAmountCents
	}
	if input.PreferredPaymentMethod != nil {
		current.PreferredPaymentMethod = *input.PreferredPaymentMethod
	}
	if input.RefundToWallet != nil {
		current.RefundToWallet = *input.RefundToWallet
	}
	return current
}

func parseIDs(txnID, userID string) (uuid.UUID, uuid.UUID, error) {
	tid, err := uuid.Parse(txnID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("transaction id: %w", err)
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("user id: %w", err)
	}
	return tid, uid, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
