package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/optixtrade/trading-platform/internal/core/domain"
	"github.com/optixtrade/trading-platform/internal/core/ports"
)

type auditService struct {
	repo ports.SecurityEventRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditService over the append-only event store.
func NewAuditService(repo ports.SecurityEventRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

func (s *auditService) Record(ctx context.Context, typ domain.SecurityEventType, status domain.SecurityEventStatus, actorID, ip, details string) error {
	e := &domain.SecurityEvent{
		ID:        uuid.NewString(),
		Type:      typ,
		Status:    status,
		ActorID:   actorID,
		IP:        ip,
		Details:   details,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Append(ctx, e); err != nil {
		s.log.Error().Err(err).Str("type", string(typ)).Msg("failed to append security event")
		return fmt.Errorf("record security event: %w", err)
	}
	return nil
}

func (s *auditService) List(ctx context.Context, limit int64) ([]domain.SecurityEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}
	return s.repo.List(ctx, limit)
}
