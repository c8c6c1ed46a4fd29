package memory

import (
	"context"
	"sync"

	"github.com/optixtrade/trading-platform/internal/core/domain"
)

type SecurityEventRepository struct {
	mu     sync.Mutex
	events []domain.SecurityEvent
}

func NewSecurityEventRepository() *SecurityEventRepository {
	return &SecurityEventRepository{}
}

func (r *SecurityEventRepository) Append(_ context.Context, e *domain.SecurityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *e)
	return nil
}

func (r *SecurityEventRepository) List(_ context.Context, limit int64) ([]domain.SecurityEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Newest first, capped at limit.
	result := make([]domain.SecurityEvent, 0, limit)
	for i := len(r.events) - 1; i >= 0 && int64(len(result)) < limit; i-- {
		result = append(result, r.events[i])
	}
	return result, nil
}
