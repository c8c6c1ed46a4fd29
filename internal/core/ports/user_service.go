package ports

import (
	"context"

	"github.com/optixtrade/trading-platform/internal/core/domain"
)

// UserService covers administrative user mutations.
type UserService interface {
	// ChangeRole assigns one of the closed set of roles and records the
	// change in the audit trail.
	ChangeRole(ctx context.Context, userID string, role domain.Role, actorID, ip string) (*domain.User, error)
}
