package ports

import (
	"context"

	"github.com/optixtrade/trading-platform/internal/core/domain"
)

// WalletService exposes balance reads and the deposit/withdraw operations.
type WalletService interface {
	Balances(ctx context.Context, userID string) ([]domain.Wallet, error)
	Deposit(ctx context.Context, userID, asset string, cents int64, ip string) (int64, error)
	Withdraw(ctx context.Context, userID, asset string, cents int64, ip string) (int64, error)
	// Transactions lists the caller's ledger entries, optionally filtered
	// by asset.
	Transactions(ctx context.Context, userID, asset string) ([]domain.Transaction, error)
}
