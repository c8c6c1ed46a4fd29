package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/optixtrade/trading-platform/internal/core/domain"
	"github.com/optixtrade/trading-platform/internal/core/ports"
)

// WalletService exposes balance reads plus deposits and withdrawals. The
// non-negative invariant lives in the repository; this layer only adds
// auditing and logging.
type WalletService struct {
	wallets ports.WalletRepository
	audit   ports.AuditService
	log     zerolog.Logger
}

func NewWalletService(wallets ports.WalletRepository, audit ports.AuditService, log zerolog.Logger) *WalletService {
	return &WalletService{wallets: wallets, audit: audit, log: log}
}

func (s *WalletService) Balances(ctx context.Context, userID string) ([]domain.Wallet, error) {
	return s.wallets.ListByUser(ctx, userID)
}

func (s *WalletService) Deposit(ctx context.Context, userID, asset string, cents int64, ip string) (int64, error) {
	if cents <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	if err := s.wallets.Credit(ctx, userID, asset, cents, domain.TxDeposit, uuid.NewString()); err != nil {
		return 0, err
	}

	_ = s.audit.Record(ctx, domain.EventDeposit, domain.EventOK, userID, ip,
		fmt.Sprintf("asset=%s cents=%d", asset, cents))
	s.log.Info().Str("user_id", userID).Str("asset", asset).Int64("cents", cents).Msg("deposit")

	return s.wallets.Balance(ctx, userID, asset)
}

func (s *WalletService) Transactions(ctx context.Context, userID, asset string) ([]domain.Transaction, error) {
	return s.wallets.ListTransactions(ctx, userID, asset)
}

func (s *WalletService) Withdraw(ctx context.Context, userID, asset string, cents int64, ip string) (int64, error) {
	if cents <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	if err := s.wallets.Debit(ctx, userID, asset, cents, domain.TxWithdrawal, uuid.NewString()); err != nil {
		return 0, err
	}

	_ = s.audit.Record(ctx, domain.EventWithdrawal, domain.EventOK, userID, ip,
		fmt.Sprintf("asset=%s cents=%d", asset, cents))
	s.log.Info().Str("user_id", userID).Str("asset", asset).Int64("cents", cents).Msg("withdrawal")

	return s.wallets.Balance(ctx, userID, asset)
}
