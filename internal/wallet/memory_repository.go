package wallet

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryRepository struct {
	mu           sync.RWMutex
	balances     map[string]Balance
	transactions map[string]Transaction
	preferences  map[string]Preferences
}

// NewMemoryRepository constructs an in-memory repository for dev and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		balances:     make(map[string]Balance),
		transactions: make(map[string]Transaction),
		preferences:  make(map[string]Preferences),
	}
}

func (r *memoryRepository) EnsureBalance(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.balances[userID]; !exists {
		r.balances[userID] = Balance{UserID: userID, UpdatedAt: time.Now().UTC()}
	}
	return nil
}

func (r *memoryRepository) Balance(_ context.Context, userID string) (Balance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.balances[userID]
	if !ok {
		return Balance{UserID: userID}, nil
	}
	return b, nil
}

func (r *memoryRepository) CreateTransaction(_ context.Context, txn Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transactions[txn.ID] = txn
	return nil
}

func (r *memoryRepository) Apply(_ context.Context, txn Transaction) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := r.balances[txn.UserID]
	if b.BalanceCents+txn.AmountCents < 0 {
		return 0, ErrInsufficientBalance
	}
	b.UserID = txn.UserID
	b.BalanceCents += txn.AmountCents
	b.UpdatedAt = time.Now().UTC()
	r.balances[txn.UserID] = b

	txn.Status = StatusCompleted
	now := time.Now().UTC()
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = now
	}
	txn.UpdatedAt = now
	r.transactions[txn.ID] = txn

	return b.BalanceCents, nil
}

func (r *memoryRepository) CompleteTopUp(_ context.Context, txnID, userID string, amountCents int64, receiptURL string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	txn, ok := r.transactions[txnID]
	if !ok || txn.Status != StatusPending {
		return 0, ErrTransactionNotFound
	}
	txn.Status = StatusCompleted
	txn.ReceiptURL = receiptURL
	txn.UpdatedAt = time.Now().UTC()
	r.transactions[txnID] = txn

	b := r.balances[userID]
	b.UserID = userID
	b.BalanceCents += amountCents
	b.UpdatedAt = time.Now().UTC()
	r.balances[userID] = b

	return b.BalanceCents, nil
}

func (r *memoryRepository) MarkTransactionFailed(_ context.Context, txnID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	txn, ok := r.transactions[txnID]
	if !ok || txn.Status != StatusPending {
		return ErrTransactionNotFound
	}
	txn.Status = StatusFailed
	txn.UpdatedAt = time.Now().UTC()
	r.transactions[txnID] = txn
	return nil
}

func (r *memoryRepository) Transactions(_ context.Context, userID string, limit int) ([]Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Transaction
	for _, txn := range r.transactions {
		if txn.UserID == userID {
			out = append(out, txn)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryRepository) Preferences(_ context.Context, userID string) (Preferences, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.preferences[userID]
	if !ok {
		p = DefaultPreferences(userID)
		r.preferences[userID] = p
	}
	return p, nil
}

func (r *memoryRepository) UpdatePreferences(_ context.Context, userID string, input UpdatePreferencesInput) (Preferences, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.preferences[userID]
	if !ok {
		p = DefaultPreferences(userID)
	}
	p = mergePreferences(p, input)
	r.preferences[userID] = p
	return p, nil
}
