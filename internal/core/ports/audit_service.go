package ports

import (
	"context"

	"github.com/optixtrade/trading-platform/internal/core/domain"
)

// AuditService records and lists security events. Recording is best
// effort for callers on non-financial paths, but the service itself never
// swallows an append failure silently — it logs and returns it.
type AuditService interface {
	Record(ctx context.Context, typ domain.SecurityEventType, status domain.SecurityEventStatus, actorID, ip, details string) error
	List(ctx context.Context, limit int64) ([]domain.SecurityEvent, error)
}
