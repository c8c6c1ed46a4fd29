package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/optixtrade/trading-platform/internal/core/domain"
	"github.com/optixtrade/trading-platform/internal/core/ports"
)

// SettlementAsset is the wallet asset stakes are debited from and
// winnings credited to. Trades quote other symbols but always settle in
// USD cents.
const SettlementAsset = "USD"

const creditMaxRetries = 3

// TradeService owns the trade state machine: placement debits the ledger
// and snapshots the payout percentage; settlement credits winnings and
// moves the trade to its terminal state exactly once.
type TradeService struct {
	trades  ports.TradeRepository
	wallets ports.WalletRepository
	payout  ports.PayoutService
	audit   ports.AuditService
	log     zerolog.Logger
}

func NewTradeService(trades ports.TradeRepository, wallets ports.WalletRepository, payout ports.PayoutService, audit ports.AuditService, log zerolog.Logger) *TradeService {
	return &TradeService{trades: trades, wallets: wallets, payout: payout, audit: audit, log: log}
}

// Place validates the order, locks in the caller's current payout
// percentage, debits the stake and persists the trade as pending. The
// debit and the trade creation behave as one unit: a failed creation
// triggers a compensating credit.
func (s *TradeService) Place(ctx context.Context, in ports.PlaceTradeInput) (*domain.Trade, error) {
	switch {
	case in.StakeCents <= 0:
		return nil, fmt.Errorf("%w: stake must be positive", domain.ErrInvalidTrade)
	case !in.Direction.Valid():
		return nil, fmt.Errorf("%w: direction must be high or low", domain.ErrInvalidTrade)
	case in.DurationSec <= 0:
		return nil, fmt.Errorf("%w: duration must be positive", domain.ErrInvalidTrade)
	case in.Symbol == "" || in.Asset == "":
		return nil, fmt.Errorf("%w: symbol and asset are required", domain.ErrInvalidTrade)
	}

	// Snapshot the payout percentage now. Settlement uses this copy, never
	// a fresh policy lookup.
	pct, err := s.payout.Resolve(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	trade := &domain.Trade{
		ID:          uuid.NewString(),
		UserID:      in.UserID,
		Symbol:      in.Symbol,
		Asset:       in.Asset,
		StakeCents:  in.StakeCents,
		Direction:   in.Direction,
		DurationSec: in.DurationSec,
		EntryPrice:  in.EntryPrice,
		PayoutPct:   pct,
		Status:      domain.TradePending,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.wallets.Debit(ctx, in.UserID, SettlementAsset, in.StakeCents, domain.TxTradeDebit, trade.ID); err != nil {
		return nil, err
	}

	if err := s.trades.Create(ctx, trade); err != nil {
		// Undo the debit so the pair behaves atomically from the
		// caller's point of view.
		if cerr := s.wallets.Credit(ctx, in.UserID, SettlementAsset, in.StakeCents, domain.TxTradeCredit, trade.ID); cerr != nil {
			s.log.Error().Err(cerr).
				Str("trade_id", trade.ID).
				Str("user_id", in.UserID).
				Int64("stake_cents", in.StakeCents).
				Msg("compensating credit failed, wallet needs reconciliation")
		}
		return nil, fmt.Errorf("create trade: %w", err)
	}

	s.log.Info().
		Str("trade_id", trade.ID).
		Str("user_id", in.UserID).
		Str("symbol", in.Symbol).
		Int64("stake_cents", in.StakeCents).
		Int("payout_pct", pct).
		Msg("trade placed")

	return trade, nil
}

// Settle finalizes a pending trade exactly once. A win credits the stake
// plus floored profit at the trade's locked payout percentage; a loss
// credits nothing — the stake was already debited at placement and no
// second debit exists. The status transition is a compare-and-swap on
// pending, which makes duplicate settlement calls fail instead of
// double-crediting. A win whose credit failed after the flip stays
// marked uncredited, and the next settlement call for the same result
// re-delivers the payout instead of erroring.
func (s *TradeService) Settle(ctx context.Context, in ports.SettleTradeInput) (*domain.Trade, error) {
	if !in.Result.Valid() {
		return nil, fmt.Errorf("%w: result must be win or loss", domain.ErrInvalidTrade)
	}

	trade, err := s.trades.FindByID(ctx, in.TradeID)
	if err != nil {
		return nil, err
	}
	if trade.Status != domain.TradePending {
		return s.recoverCredit(ctx, trade, in)
	}

	var settledCents int64
	if in.Result == domain.ResultWin {
		settledCents = domain.WinSettlementCents(trade.StakeCents, trade.PayoutPct)
	}

	settled, err := s.trades.Settle(ctx, in.TradeID, in.Result, in.ExitPrice, settledCents, time.Now().UTC())
	if err != nil {
		if errors.Is(err, domain.ErrAlreadySettled) {
			// Another settlement won the race after our pre-check.
			return nil, domain.ErrSettlementConflict
		}
		return nil, err
	}

	if settledCents > 0 {
		if err := s.deliverCredit(ctx, settled); err != nil {
			return nil, err
		}
		settled.Credited = true
	}

	_ = s.audit.Record(ctx, domain.EventTradeOverride, domain.EventOK, in.ActorID, in.IP,
		fmt.Sprintf("trade=%s result=%s settled_cents=%d", trade.ID, in.Result, settledCents))

	s.log.Info().
		Str("trade_id", trade.ID).
		Str("result", string(in.Result)).
		Int64("settled_cents", settledCents).
		Msg("trade settled")

	return settled, nil
}

// recoverCredit handles settlement calls that arrive after the status
// flip. A settled win whose payout never landed is re-delivered; every
// other repeat settles to ErrAlreadySettled.
func (s *TradeService) recoverCredit(ctx context.Context, trade *domain.Trade, in ports.SettleTradeInput) (*domain.Trade, error) {
	if trade.Credited || trade.SettledCents == 0 || trade.Result != in.Result {
		return nil, domain.ErrAlreadySettled
	}

	if err := s.deliverCredit(ctx, trade); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("trade_id", trade.ID).
		Int64("settled_cents", trade.SettledCents).
		Msg("settlement credit recovered")

	recovered := *trade
	recovered.Credited = true
	return &recovered, nil
}

// deliverCredit pays out a settled win. The credited flag is the gate:
// only the caller that wins the claim performs the credit, and a failed
// credit releases the claim so a later retry can deliver it.
func (s *TradeService) deliverCredit(ctx context.Context, trade *domain.Trade) error {
	if err := s.trades.ClaimCredit(ctx, trade.ID); err != nil {
		return err
	}

	if err := s.creditWithRetry(ctx, trade.UserID, trade.SettledCents, trade.ID); err != nil {
		if rerr := s.trades.ReleaseCredit(ctx, trade.ID); rerr != nil {
			s.log.Error().Err(rerr).
				Str("trade_id", trade.ID).
				Int64("settled_cents", trade.SettledCents).
				Msg("credit claim stuck after failed payout, wallet needs reconciliation")
		}
		s.log.Error().Err(err).
			Str("trade_id", trade.ID).
			Int64("settled_cents", trade.SettledCents).
			Msg("settlement credit failed after retries, trade held for retry")
		return err
	}
	return nil
}

func (s *TradeService) ListByUser(ctx context.Context, userID string) ([]*domain.Trade, error) {
	return s.trades.ListByUser(ctx, userID)
}

// creditWithRetry retries the settlement credit on transient store
// failures only. Business rejections are permanent and surface unchanged.
func (s *TradeService) creditWithRetry(ctx context.Context, userID string, cents int64, reference string) error {
	op := func() error {
		err := s.wallets.Credit(ctx, userID, SettlementAsset, cents, domain.TxTradeCredit, reference)
		if err != nil && !errors.Is(err, domain.ErrStoreUnavailable) {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), creditMaxRetries), ctx)
	return backoff.Retry(op, policy)
}
