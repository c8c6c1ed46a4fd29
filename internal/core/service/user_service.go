package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/optixtrade/trading-platform/internal/core/domain"
	"github.com/optixtrade/trading-platform/internal/core/ports"
)

type userService struct {
	users ports.UserRepository
	audit ports.AuditService
	log   zerolog.Logger
}

func NewUserService(users ports.UserRepository, audit ports.AuditService, log zerolog.Logger) ports.UserService {
	return &userService{users: users, audit: audit, log: log}
}

func (s *userService) ChangeRole(ctx context.Context, userID string, role domain.Role, actorID, ip string) (*domain.User, error) {
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	if err := s.users.UpdateRole(ctx, userID, role); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	_ = s.audit.Record(ctx, domain.EventRoleChange, domain.EventOK, actorID, ip,
		fmt.Sprintf("user=%s role=%s", userID, role))
	s.log.Info().Str("user_id", userID).Str("role", string(role)).Msg("role changed")

	return user, nil
}
