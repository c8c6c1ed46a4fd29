package ports

import (
	"context"

	"github.com/optixtrade/trading-platform/internal/core/domain"
)

// AuthService implements registration, login and the one-time admin
// bootstrap.
type AuthService interface {
	Register(ctx context.Context, username, password, email, ip string) (*domain.User, string, error)
	Login(ctx context.Context, username, password, ip string) (string, *domain.User, error)
	// Bootstrap creates the first admin account. It is idempotent: once
	// an admin exists, repeat calls return the outcome without creating a
	// second admin or failing the legitimate caller.
	Bootstrap(ctx context.Context, username, password, ip string) (*domain.User, bool, error)
}
