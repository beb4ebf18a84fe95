package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/pqrs-service/internal/auth"
	"github.com/spec-kit/pqrs-service/internal/config"
	"github.com/spec-kit/pqrs-service/internal/domain"
	"github.com/spec-kit/pqrs-service/internal/repository"
	apperrors "github.com/spec-kit/pqrs-service/pkg/util"
)

// LoginResult carries a fresh token and its holder.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Staff     *domain.StaffMember
}

// AuthService authenticates staff members. Submitters never authenticate;
// tracking codes are their only credential.
type AuthService struct {
	staff      repository.StaffRepository
	resets     repository.PasswordResetRepository
	tokens     *auth.TokenManager
	blacklist  *auth.TokenBlacklist
	logger     *zap.Logger
	bcryptCost int
	resetTTL   time.Duration
}

// NewAuthService builds the service.
func NewAuthService(
	cfg config.AuthConfig,
	staff repository.StaffRepository,
	resets repository.PasswordResetRepository,
	tokens *auth.TokenManager,
	blacklist *auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	ttl := time.Duration(cfg.PasswordResetTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &AuthService{
		staff:      staff,
		resets:     resets,
		tokens:     tokens,
		blacklist:  blacklist,
		logger:     logger,
		bcryptCost: cfg.BcryptCost,
		resetTTL:   ttl,
	}
}

// TokenManager exposes the token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// Blacklist exposes the revocation store for middleware wiring.
func (s *AuthService) Blacklist() *auth.TokenBlacklist {
	return s.blacklist
}

// LoginStaff verifies credentials and issues a token. Invalid email and wrong
// password are indistinguishable to the caller.
func (s *AuthService) LoginStaff(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password are required", nil)
	}

	staff, err := s.staff.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if !staff.Active {
		return nil, apperrors.NewUnauthorized("account is disabled")
	}
	if err := auth.ComparePassword(staff.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateToken(staff)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, Staff: staff}, nil
}

// Logout revokes the presented token for its remaining lifetime.
func (s *AuthService) Logout(ctx context.Context, tokenStr string) error {
	claims, err := s.tokens.ParseToken(tokenStr)
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	return s.blacklist.Revoke(ctx, claims.ID, ttl)
}

// RequestPasswordReset issues a single-use reset token. Unknown emails get
// the same answer as known ones so the endpoint cannot enumerate accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	staff, err := s.staff.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Info("password reset requested for unknown email")
			return "", nil
		}
		return "", err
	}

	token := &repository.PasswordResetToken{
		StaffID:   staff.ID,
		Token:     randomToken(),
		ExpiresAt: time.Now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return "", err
	}
	s.logger.Info("password reset token issued", zap.String("staff_id", staff.ID))
	return token.Token, nil
}

// ConfirmPasswordReset consumes a reset token and sets the new password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword string) error {
	if len(newPassword) < 8 {
		return apperrors.NewValidationError("password must be at least 8 characters", nil)
	}

	token, err := s.resets.GetByToken(ctx, strings.TrimSpace(tokenStr))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("invalid or expired reset token")
		}
		return err
	}
	if token.UsedAt != nil || time.Now().After(token.ExpiresAt) {
		return apperrors.NewUnauthorized("invalid or expired reset token")
	}

	staff, err := s.staff.GetByID(ctx, token.StaffID)
	if err != nil {
		return err
	}
	hashed, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	staff.PasswordHash = hashed
	if err := s.staff.Update(ctx, staff); err != nil {
		return err
	}
	return s.resets.MarkUsed(ctx, token.ID)
}

// ChangePassword lets an authenticated staff member rotate their password.
func (s *AuthService) ChangePassword(ctx context.Context, staff *domain.StaffMember, current, next string) error {
	if err := auth.ComparePassword(staff.PasswordHash, current); err != nil {
		return apperrors.NewUnauthorized("current password is incorrect")
	}
	if len(next) < 8 {
		return apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	hashed, err := auth.HashPassword(next, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	staff.PasswordHash = hashed
	return s.staff.Update(ctx, staff)
}

func randomToken() string {
	buf := make([]byte, 32)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
