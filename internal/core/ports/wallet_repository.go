package ports

import (
	"context"

	"github.com/optixtrade/trading-platform/internal/core/domain"
)

// WalletRepository is the wallet ledger. Implementations must make Debit
// and Credit linearizable per (userID, asset) pair — no interleaving may
// observe or produce a negative intermediate balance — without a global
// lock across unrelated wallets. Each successful mutation appends exactly
// one Transaction as part of the same operation.
type WalletRepository interface {
	// Balance returns the current balance in cents, or 0 when no wallet
	// row exists yet. Reading never creates a wallet.
	Balance(ctx context.Context, userID, asset string) (int64, error)

	// Debit atomically decrements the balance. Returns
	// domain.ErrInsufficientFunds when the result would be negative and
	// domain.ErrInvalidAmount when cents <= 0.
	Debit(ctx context.Context, userID, asset string, cents int64, txType domain.TransactionType, reference string) error

	// Credit atomically increments the balance, creating the wallet row
	// if absent. Returns domain.ErrInvalidAmount when cents < 0.
	Credit(ctx context.Context, userID, asset string, cents int64, txType domain.TransactionType, reference string) error

	ListByUser(ctx context.Context, userID string) ([]domain.Wallet, error)
	ListTransactions(ctx context.Context, userID, asset string) ([]domain.Transaction, error)
}
