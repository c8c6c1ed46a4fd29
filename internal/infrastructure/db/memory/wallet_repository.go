// Package memory implements the repositories with in-memory maps. Used
// for development and tests; it mirrors the concurrency contracts of the
// MongoDB implementations without requiring a running database.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/optixtrade/trading-platform/internal/core/domain"
)

type walletEntry struct {
	mu        sync.Mutex
	balance   int64
	updatedAt time.Time
}

// WalletRepository keeps one lock per (userID, asset) pair so operations
// on different wallets never block each other, matching the per-document
// atomicity of the MongoDB ledger.
type WalletRepository struct {
	mu      sync.Mutex // guards the wallets map, not balances
	wallets map[walletKey]*walletEntry

	txMu sync.Mutex
	txs  []domain.Transaction
}

type walletKey struct {
	userID string
	asset  string
}

func NewWalletRepository() *WalletRepository {
	return &WalletRepository{wallets: make(map[walletKey]*walletEntry)}
}

func (r *WalletRepository) Balance(_ context.Context, userID, asset string) (int64, error) {
	r.mu.Lock()
	e, ok := r.wallets[walletKey{userID, asset}]
	r.mu.Unlock()
	if !ok {
		return 0, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.balance, nil
}

func (r *WalletRepository) Debit(_ context.Context, userID, asset string, cents int64, txType domain.TransactionType, reference string) error {
	if cents <= 0 {
		return domain.ErrInvalidAmount
	}

	r.mu.Lock()
	e, ok := r.wallets[walletKey{userID, asset}]
	r.mu.Unlock()
	if !ok {
		// No wallet row means a zero balance; a positive debit cannot
		// succeed and must not create the row.
		return domain.ErrInsufficientFunds
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.balance < cents {
		return domain.ErrInsufficientFunds
	}
	e.balance -= cents
	e.updatedAt = time.Now().UTC()

	r.appendTransaction(userID, asset, -cents, txType, reference)
	return nil
}

func (r *WalletRepository) Credit(_ context.Context, userID, asset string, cents int64, txType domain.TransactionType, reference string) error {
	if cents < 0 {
		return domain.ErrInvalidAmount
	}

	r.mu.Lock()
	key := walletKey{userID, asset}
	e, ok := r.wallets[key]
	if !ok {
		e = &walletEntry{}
		r.wallets[key] = e
	}
	r.mu.Unlock()

	e.mu.Lock()
	e.balance += cents
	e.updatedAt = time.Now().UTC()
	e.mu.Unlock()

	r.appendTransaction(userID, asset, cents, txType, reference)
	return nil
}

func (r *WalletRepository) appendTransaction(userID, asset string, cents int64, txType domain.TransactionType, reference string) {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	r.txs = append(r.txs, domain.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Asset:       asset,
		Type:        txType,
		AmountCents: cents,
		Reference:   reference,
		CreatedAt:   time.Now().UTC(),
	})
}

func (r *WalletRepository) ListByUser(_ context.Context, userID string) ([]domain.Wallet, error) {
	r.mu.Lock()
	keys := make([]walletKey, 0)
	entries := make([]*walletEntry, 0)
	for k, e := range r.wallets {
		if k.userID == userID {
			keys = append(keys, k)
			entries = append(entries, e)
		}
	}
	r.mu.Unlock()

	wallets := make([]domain.Wallet, 0, len(keys))
	for i, k := range keys {
		entries[i].mu.Lock()
		wallets = append(wallets, domain.Wallet{
			UserID:       k.userID,
			Asset:        k.asset,
			BalanceCents: entries[i].balance,
			UpdatedAt:    entries[i].updatedAt,
		})
		entries[i].mu.Unlock()
	}
	return wallets, nil
}

func (r *WalletRepository) ListTransactions(_ context.Context, userID, asset string) ([]domain.Transaction, error) {
	r.txMu.Lock()
	defer r.txMu.Unlock()

	var result []domain.Transaction
	for _, tx := range r.txs {
		if tx.UserID != userID {
			continue
		}
		if asset != "" && tx.Asset != asset {
			continue
		}
		result = append(result, tx)
	}
	return result, nil
}
