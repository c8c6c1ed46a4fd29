package ports

import (
	"context"

	"github.com/optixtrade/trading-platform/internal/core/domain"
)

// SecurityEventRepository is the append-only audit trail. Events are never
// updated or deleted.
type SecurityEventRepository interface {
	Append(ctx context.Context, e *domain.SecurityEvent) error
	// List returns up to limit events ordered by creation time descending.
	List(ctx context.Context, limit int64) ([]domain.SecurityEvent, error)
}
