package ports

import (
	"context"

	"github.com/optixtrade/trading-platform/internal/core/domain"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// CountByRole reports how many users currently hold the given role.
	// Used by admin bootstrap to decide whether a first admin exists.
	CountByRole(ctx context.Context, role domain.Role) (int64, error)
	UpdateRole(ctx context.Context, id string, role domain.Role) error
	// SetPayoutOverride stores the clamped per-user payout percentage.
	SetPayoutOverride(ctx context.Context, id string, pct int) error
}
