package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/optixtrade/trading-platform/internal/core/domain"
	"github.com/optixtrade/trading-platform/internal/core/ports"
)

// AuthService implements registration, login and admin bootstrap.
type AuthService struct {
	repo      ports.UserRepository
	audit     ports.AuditService
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger

	// bootstrapMu serializes the admin-exists check with the admin
	// create, so concurrent bootstrap calls cannot each observe an
	// empty store and all mint an admin.
	bootstrapMu sync.Mutex
}

func NewAuthService(repo ports.UserRepository, audit ports.AuditService, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{repo: repo, audit: audit, jwtSecret: jwtSecret, tokenTTL: tokenTTL, log: log}
}

// Register creates a new trader account and returns it with a session token.
func (s *AuthService) Register(ctx context.Context, username, password, email, ip string) (*domain.User, string, error) {
	if username == "" || len(password) < 8 {
		return nil, "", domain.ErrInvalidCredentials
	}

	user, err := s.createUser(ctx, username, password, email, domain.RoleTrader)
	if err != nil {
		return nil, "", err
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, "", err
	}

	_ = s.audit.Record(ctx, domain.EventRegister, domain.EventOK, user.ID, ip, "username="+username)
	return user, token, nil
}

// Login authenticates a user and returns a signed session token.
func (s *AuthService) Login(ctx context.Context, username, password, ip string) (string, *domain.User, error) {
	if username == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		_ = s.audit.Record(ctx, domain.EventLoginFailed, domain.EventDenied, "", ip, "username="+username)
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		_ = s.audit.Record(ctx, domain.EventLoginFailed, domain.EventDenied, user.ID, ip, "bad password")
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}

	_ = s.audit.Record(ctx, domain.EventLogin, domain.EventOK, user.ID, ip, "")
	return token, user, nil
}

// Bootstrap creates the first admin account. When an admin already exists
// the call succeeds without creating anything (created=false), so the
// legitimate caller can safely re-invoke it.
func (s *AuthService) Bootstrap(ctx context.Context, username, password, ip string) (*domain.User, bool, error) {
	s.bootstrapMu.Lock()
	defer s.bootstrapMu.Unlock()

	n, err := s.repo.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return nil, false, fmt.Errorf("bootstrap: %w", err)
	}
	if n > 0 {
		return nil, false, nil
	}

	if username == "" || len(password) < 8 {
		return nil, false, domain.ErrInvalidCredentials
	}

	user, err := s.createUser(ctx, username, password, "", domain.RoleAdmin)
	if err != nil {
		return nil, false, err
	}

	_ = s.audit.Record(ctx, domain.EventBootstrap, domain.EventOK, user.ID, ip, "first admin created")
	s.log.Info().Str("user_id", user.ID).Msg("admin bootstrapped")
	return user, true, nil
}

func (s *AuthService) createUser(ctx context.Context, username, password, email string, role domain.Role) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		KYCStatus:    domain.KYCPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"role":     string(user.Role),
		"exp":      time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
