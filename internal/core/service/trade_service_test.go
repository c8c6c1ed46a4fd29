package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/optixtrade/trading-platform/internal/core/domain"
	"github.com/optixtrade/trading-platform/internal/core/ports"
	"github.com/optixtrade/trading-platform/internal/infrastructure/db/memory"
)

type tradeFixture struct {
	svc     *TradeService
	payout  *PayoutService
	wallets *memory.WalletRepository
	users   *memory.UserRepository
}

func newTradeFixture(t *testing.T, defaultPct int) *tradeFixture {
	t.Helper()
	users := memory.NewUserRepository()
	wallets := memory.NewWalletRepository()
	trades := memory.NewTradeRepository()
	audit := NewAuditService(memory.NewSecurityEventRepository(), zerolog.Nop())
	payout := NewPayoutService(users, audit, defaultPct, zerolog.Nop())
	return &tradeFixture{
		svc:     NewTradeService(trades, wallets, payout, audit, zerolog.Nop()),
		payout:  payout,
		wallets: wallets,
		users:   users,
	}
}

func (f *tradeFixture) fund(t *testing.T, userID string, cents int64) {
	t.Helper()
	if err := f.wallets.Credit(context.Background(), userID, SettlementAsset, cents, domain.TxDeposit, "test"); err != nil {
		t.Fatalf("fund wallet: %v", err)
	}
}

func (f *tradeFixture) balance(t *testing.T, userID string) int64 {
	t.Helper()
	b, err := f.wallets.Balance(context.Background(), userID, SettlementAsset)
	if err != nil {
		t.Fatalf("read balance: %v", err)
	}
	return b
}

func placeInput(userID string, stakeCents int64) ports.PlaceTradeInput {
	return ports.PlaceTradeInput{
		UserID:      userID,
		Symbol:      "BTC/USD",
		Asset:       "BTC",
		StakeCents:  stakeCents,
		Direction:   domain.DirectionHigh,
		DurationSec: 60,
		EntryPrice:  decimal.RequireFromString("64250.50"),
	}
}

func TestTradeService_Place_DebitsStake(t *testing.T) {
	f := newTradeFixture(t, 80)
	seedUser(t, f.users, "u1", domain.RoleTrader)
	f.fund(t, "u1", 100_000) // $1000

	trade, err := f.svc.Place(context.Background(), placeInput("u1", 10_000))
	if err != nil {
		t.Fatalf("Place returned error: %v", err)
	}

	if trade.Status != domain.TradePending {
		t.Errorf("expected pending trade, got %s", trade.Status)
	}
	if trade.PayoutPct != 80 {
		t.Errorf("expected payout snapshot 80, got %d", trade.PayoutPct)
	}
	if got := f.balance(t, "u1"); got != 90_000 {
		t.Errorf("expected balance 90000 after debit, got %d", got)
	}
}

func TestTradeService_Place_InsufficientFunds(t *testing.T) {
	f := newTradeFixture(t, 80)
	seedUser(t, f.users, "u1", domain.RoleTrader)
	f.fund(t, "u1", 5_000)

	_, err := f.svc.Place(context.Background(), placeInput("u1", 10_000))
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	// Rejected placement leaves no trade and no balance change.
	if got := f.balance(t, "u1"); got != 5_000 {
		t.Errorf("balance changed on rejected placement: %d", got)
	}
	trades, err := f.svc.ListByUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListByUser returned error: %v", err)
	}
	if len(trades) != 0 {
		t.Errorf("expected no trades, got %d", len(trades))
	}
}

func TestTradeService_Place_Validation(t *testing.T) {
	f := newTradeFixture(t, 80)
	seedUser(t, f.users, "u1", domain.RoleTrader)
	f.fund(t, "u1", 100_000)

	cases := []struct {
		name   string
		mutate func(*ports.PlaceTradeInput)
	}{
		{"zero stake", func(in *ports.PlaceTradeInput) { in.StakeCents = 0 }},
		{"negative stake", func(in *ports.PlaceTradeInput) { in.StakeCents = -100 }},
		{"bad direction", func(in *ports.PlaceTradeInput) { in.Direction = "sideways" }},
		{"zero duration", func(in *ports.PlaceTradeInput) { in.DurationSec = 0 }},
		{"missing symbol", func(in *ports.PlaceTradeInput) { in.Symbol = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := placeInput("u1", 10_000)
			tc.mutate(&in)
			if _, err := f.svc.Place(context.Background(), in); !errors.Is(err, domain.ErrInvalidTrade) {
				t.Fatalf("expected ErrInvalidTrade, got %v", err)
			}
		})
	}

	if got := f.balance(t, "u1"); got != 100_000 {
		t.Errorf("balance changed on invalid placements: %d", got)
	}
}

func TestTradeService_Settle_WinCreditsFlooredPayout(t *testing.T) {
	f := newTradeFixture(t, 80)
	seedUser(t, f.users, "u1", domain.RoleTrader)
	f.fund(t, "u1", 1_000)

	trade, err := f.svc.Place(context.Background(), placeInput("u1", 333))
	if err != nil {
		t.Fatalf("Place returned error: %v", err)
	}

	exit := decimal.RequireFromString("64411.00")
	settled, err := f.svc.Settle(context.Background(), ports.SettleTradeInput{
		TradeID:   trade.ID,
		Result:    domain.ResultWin,
		ExitPrice: &exit,
		ActorID:   "admin1",
		IP:        "127.0.0.1",
	})
	if err != nil {
		t.Fatalf("Settle returned error: %v", err)
	}

	// 333 * 80 / 100 = 266.4 profit, floored to 266.
	if settled.SettledCents != 599 {
		t.Errorf("expected settled 599 cents, got %d", settled.SettledCents)
	}
	if settled.Status != domain.TradeSettled || settled.Result != domain.ResultWin {
		t.Errorf("unexpected terminal state: %+v", settled)
	}
	if got := f.balance(t, "u1"); got != 1_000-333+599 {
		t.Errorf("expected balance %d, got %d", 1_000-333+599, got)
	}
}

func TestTradeService_Settle_LossCreditsNothing(t *testing.T) {
	f := newTradeFixture(t, 80)
	seedUser(t, f.users, "u1", domain.RoleTrader)
	f.fund(t, "u1", 10_000)

	trade, err := f.svc.Place(context.Background(), placeInput("u1", 4_000))
	if err != nil {
		t.Fatalf("Place returned error: %v", err)
	}

	settled, err := f.svc.Settle(context.Background(), ports.SettleTradeInput{
		TradeID: trade.ID,
		Result:  domain.ResultLoss,
		ActorID: "admin1",
	})
	if err != nil {
		t.Fatalf("Settle returned error: %v", err)
	}

	if settled.SettledCents != 0 {
		t.Errorf("loss must settle at 0 cents, got %d", settled.SettledCents)
	}
	// The stake was debited at placement; a loss changes nothing more.
	if got := f.balance(t, "u1"); got != 6_000 {
		t.Errorf("expected balance 6000, got %d", got)
	}
}

func TestTradeService_Settle_Idempotent(t *testing.T) {
	f := newTradeFixture(t, 80)
	seedUser(t, f.users, "u1", domain.RoleTrader)
	f.fund(t, "u1", 10_000)

	trade, err := f.svc.Place(context.Background(), placeInput("u1", 5_000))
	if err != nil {
		t.Fatalf("Place returned error: %v", err)
	}

	in := ports.SettleTradeInput{TradeID: trade.ID, Result: domain.ResultWin, ActorID: "admin1"}
	if _, err := f.svc.Settle(context.Background(), in); err != nil {
		t.Fatalf("first Settle returned error: %v", err)
	}
	want := f.balance(t, "u1")

	if _, err := f.svc.Settle(context.Background(), in); !errors.Is(err, domain.ErrAlreadySettled) {
		t.Fatalf("expected ErrAlreadySettled, got %v", err)
	}

	// The duplicate call must not double-credit.
	if got := f.balance(t, "u1"); got != want {
		t.Errorf("balance changed on duplicate settlement: %d != %d", got, want)
	}
}

// flakyWalletRepo fails the next n Credit calls, then behaves normally.
type flakyWalletRepo struct {
	ports.WalletRepository

	mu          sync.Mutex
	failCredits int
}

func (r *flakyWalletRepo) Credit(ctx context.Context, userID, asset string, cents int64, txType domain.TransactionType, reference string) error {
	r.mu.Lock()
	if r.failCredits > 0 {
		r.failCredits--
		r.mu.Unlock()
		return errors.New("credit unavailable")
	}
	r.mu.Unlock()
	return r.WalletRepository.Credit(ctx, userID, asset, cents, txType, reference)
}

func TestTradeService_Settle_RetryDeliversFailedWinCredit(t *testing.T) {
	users := memory.NewUserRepository()
	wallets := memory.NewWalletRepository()
	flaky := &flakyWalletRepo{WalletRepository: wallets, failCredits: 1}
	trades := memory.NewTradeRepository()
	audit := NewAuditService(memory.NewSecurityEventRepository(), zerolog.Nop())
	payout := NewPayoutService(users, audit, 80, zerolog.Nop())
	svc := NewTradeService(trades, flaky, payout, audit, zerolog.Nop())

	seedUser(t, users, "u1", domain.RoleTrader)
	if err := wallets.Credit(context.Background(), "u1", SettlementAsset, 10_000, domain.TxDeposit, "test"); err != nil {
		t.Fatalf("fund wallet: %v", err)
	}

	trade, err := svc.Place(context.Background(), placeInput("u1", 5_000))
	if err != nil {
		t.Fatalf("Place returned error: %v", err)
	}

	in := ports.SettleTradeInput{TradeID: trade.ID, Result: domain.ResultWin, ActorID: "admin1"}

	// First attempt settles the trade but the payout never lands.
	if _, err := svc.Settle(context.Background(), in); err == nil {
		t.Fatal("expected first Settle to fail on the credit")
	}
	stored, err := trades.FindByID(context.Background(), trade.ID)
	if err != nil {
		t.Fatalf("FindByID returned error: %v", err)
	}
	if stored.Status != domain.TradeSettled || stored.Credited {
		t.Fatalf("expected a settled, uncredited trade, got status=%s credited=%v", stored.Status, stored.Credited)
	}
	if got, _ := wallets.Balance(context.Background(), "u1", SettlementAsset); got != 5_000 {
		t.Fatalf("expected balance 5000 after failed credit, got %d", got)
	}

	// The retry delivers the payout instead of reporting ErrAlreadySettled.
	settled, err := svc.Settle(context.Background(), in)
	if err != nil {
		t.Fatalf("retry Settle returned error: %v", err)
	}
	if settled.SettledCents != 9_000 || !settled.Credited {
		t.Fatalf("unexpected recovered trade: %+v", settled)
	}
	if got, _ := wallets.Balance(context.Background(), "u1", SettlementAsset); got != 14_000 {
		t.Fatalf("expected balance 14000 after recovery, got %d", got)
	}

	// A third call is a plain duplicate and must not pay twice.
	if _, err := svc.Settle(context.Background(), in); !errors.Is(err, domain.ErrAlreadySettled) {
		t.Fatalf("expected ErrAlreadySettled, got %v", err)
	}
	if got, _ := wallets.Balance(context.Background(), "u1", SettlementAsset); got != 14_000 {
		t.Fatalf("balance changed on duplicate settlement: %d", got)
	}
}

func TestTradeService_Settle_UsesPayoutSnapshot(t *testing.T) {
	f := newTradeFixture(t, 72)
	seedUser(t, f.users, "u1", domain.RoleTrader)
	f.fund(t, "u1", 50_000)

	first, err := f.svc.Place(context.Background(), placeInput("u1", 10_000))
	if err != nil {
		t.Fatalf("Place returned error: %v", err)
	}
	if first.PayoutPct != 72 {
		t.Fatalf("expected snapshot 72, got %d", first.PayoutPct)
	}

	// Change the user's payout between the two placements.
	if _, err := f.payout.SetOverride(context.Background(),
		ports.PayoutOverrideItem{UserID: "u1", Pct: decimal.NewFromInt(55)}, "admin1", ""); err != nil {
		t.Fatalf("SetOverride returned error: %v", err)
	}

	second, err := f.svc.Place(context.Background(), placeInput("u1", 10_000))
	if err != nil {
		t.Fatalf("Place returned error: %v", err)
	}
	if second.PayoutPct != 55 {
		t.Fatalf("expected snapshot 55 on new trade, got %d", second.PayoutPct)
	}

	// The earlier trade settles at its own snapshot, not the new policy.
	settled, err := f.svc.Settle(context.Background(), ports.SettleTradeInput{
		TradeID: first.ID, Result: domain.ResultWin, ActorID: "admin1",
	})
	if err != nil {
		t.Fatalf("Settle returned error: %v", err)
	}
	if settled.SettledCents != 17_200 {
		t.Errorf("expected 17200 cents at snapshot pct 72, got %d", settled.SettledCents)
	}
}

func TestTradeService_Settle_UnknownTrade(t *testing.T) {
	f := newTradeFixture(t, 80)

	_, err := f.svc.Settle(context.Background(), ports.SettleTradeInput{
		TradeID: "missing", Result: domain.ResultWin,
	})
	if !errors.Is(err, domain.ErrTradeNotFound) {
		t.Fatalf("expected ErrTradeNotFound, got %v", err)
	}
}

func TestTradeService_Settle_InvalidResult(t *testing.T) {
	f := newTradeFixture(t, 80)

	_, err := f.svc.Settle(context.Background(), ports.SettleTradeInput{
		TradeID: "whatever", Result: "draw",
	})
	if !errors.Is(err, domain.ErrInvalidTrade) {
		t.Fatalf("expected ErrInvalidTrade, got %v", err)
	}
}

func TestTradeService_Place_ConcurrentNeverOverdraws(t *testing.T) {
	const (
		workers = 8
		stake   = int64(1_000)
	)

	f := newTradeFixture(t, 80)
	seedUser(t, f.users, "u1", domain.RoleTrader)
	// One stake short of funding every worker.
	f.fund(t, "u1", stake*(workers-1))

	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		placed       int
		insufficient int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Place(context.Background(), placeInput("u1", stake))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				placed++
			case errors.Is(err, domain.ErrInsufficientFunds):
				insufficient++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if placed != workers-1 || insufficient != 1 {
		t.Fatalf("expected %d placements and 1 rejection, got %d/%d", workers-1, placed, insufficient)
	}
	if got := f.balance(t, "u1"); got != 0 {
		t.Errorf("expected balance drained to 0, got %d", got)
	}
}

func TestTradeService_Settle_ConcurrentSingleWinner(t *testing.T) {
	f := newTradeFixture(t, 80)
	seedUser(t, f.users, "u1", domain.RoleTrader)
	f.fund(t, "u1", 10_000)

	trade, err := f.svc.Place(context.Background(), placeInput("u1", 5_000))
	if err != nil {
		t.Fatalf("Place returned error: %v", err)
	}

	const callers = 6
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Settle(context.Background(), ports.SettleTradeInput{
				TradeID: trade.ID, Result: domain.ResultWin, ActorID: "admin1",
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, domain.ErrAlreadySettled), errors.Is(err, domain.ErrSettlementConflict):
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("expected exactly one successful settlement, got %d", wins)
	}
	// stake 5000 at pct 80 → 9000 back; one credit only.
	if got := f.balance(t, "u1"); got != 10_000-5_000+9_000 {
		t.Errorf("expected balance 14000, got %d", got)
	}
}
