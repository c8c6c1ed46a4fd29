package security

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/optixtrade/trading-platform/internal/core/domain"
)

// BootstrapGuard authorizes calls to the one-time admin bootstrap
// endpoint. A caller presenting the correct pre-shared key bypasses the
// rate limiter entirely; everyone else burns one attempt per call and is
// rejected with domain.ErrRateLimited once over the limit.
type BootstrapGuard struct {
	key     string
	limiter RateLimiter
}

func NewBootstrapGuard(key string, limiter RateLimiter) *BootstrapGuard {
	return &BootstrapGuard{key: key, limiter: limiter}
}

// Authorize decides whether the caller may attempt a bootstrap.
// callerKey identifies the caller for rate limiting (normally the IP).
func (g *BootstrapGuard) Authorize(ctx context.Context, presentedKey, callerKey string) error {
	if g.key != "" && subtle.ConstantTimeCompare([]byte(presentedKey), []byte(g.key)) == 1 {
		return nil
	}

	ok, err := g.limiter.Allow(ctx, callerKey)
	if err != nil {
		// Fail closed: an unreachable counter must not open the
		// bootstrap endpoint to a flood.
		return fmt.Errorf("bootstrap limiter: %w", err)
	}
	if !ok {
		return domain.ErrRateLimited
	}
	return nil
}
