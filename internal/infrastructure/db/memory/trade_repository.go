package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/optixtrade/trading-platform/internal/core/domain"
)

// TradeRepository stores trades in a map. Settle performs the status
// compare-and-swap under the lock, so concurrent duplicate settlements
// resolve exactly like the MongoDB implementation.
type TradeRepository struct {
	mu     sync.Mutex
	trades map[string]*domain.Trade
}

func NewTradeRepository() *TradeRepository {
	return &TradeRepository{trades: make(map[string]*domain.Trade)}
}

func (r *TradeRepository) Create(_ context.Context, t *domain.Trade) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *t
	r.trades[t.ID] = &clone
	return nil
}

func (r *TradeRepository) FindByID(_ context.Context, id string) (*domain.Trade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.trades[id]
	if !ok {
		return nil, domain.ErrTradeNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *TradeRepository) ListByUser(_ context.Context, userID string) ([]*domain.Trade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*domain.Trade
	for _, t := range r.trades {
		if t.UserID == userID {
			clone := *t
			result = append(result, &clone)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *TradeRepository) Settle(_ context.Context, id string, result domain.TradeResult, exitPrice *decimal.Decimal, settledCents int64, settledAt time.Time) (*domain.Trade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.trades[id]
	if !ok {
		return nil, domain.ErrTradeNotFound
	}
	if t.Status != domain.TradePending {
		return nil, domain.ErrAlreadySettled
	}

	t.Status = domain.TradeSettled
	t.Result = result
	t.ExitPrice = exitPrice
	t.SettledCents = settledCents
	t.SettledAt = &settledAt
	t.Credited = settledCents == 0

	clone := *t
	return &clone, nil
}

func (r *TradeRepository) ClaimCredit(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.trades[id]
	if !ok {
		return domain.ErrTradeNotFound
	}
	if t.Credited {
		return domain.ErrAlreadySettled
	}
	t.Credited = true
	return nil
}

func (r *TradeRepository) ReleaseCredit(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.trades[id]
	if !ok {
		return domain.ErrTradeNotFound
	}
	t.Credited = false
	return nil
}
