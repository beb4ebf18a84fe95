package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/pqrs-service/internal/auth"
	"github.com/spec-kit/pqrs-service/internal/config"
	"github.com/spec-kit/pqrs-service/internal/domain"
	"github.com/spec-kit/pqrs-service/internal/repository"
	apperrors "github.com/spec-kit/pqrs-service/pkg/util"
)

// StaffCreateInput carries fields for registering a staff member.
type StaffCreateInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.StaffRole
	Area     string
	Phone    string
}

// StaffUpdateInput carries optional update fields; nil means unchanged.
type StaffUpdateInput struct {
	Name   *string
	Role   *domain.StaffRole
	Area   *string
	Phone  *string
	Active *bool
}

// StaffService manages staff accounts. Every operation is admin only.
type StaffService struct {
	staff      repository.StaffRepository
	bcryptCost int
}

// NewStaffService builds the service.
func NewStaffService(cfg config.AuthConfig, staff repository.StaffRepository) *StaffService {
	return &StaffService{staff: staff, bcryptCost: cfg.BcryptCost}
}

// CreateStaff registers a new staff account.
func (s *StaffService) CreateStaff(ctx context.Context, actor *domain.StaffMember, input StaffCreateInput) (*domain.StaffMember, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if name == "" || email == "" {
		return nil, apperrors.NewValidationError("name and email are required", nil)
	}
	if len(input.Password) < 8 {
		return nil, apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	if !input.Role.Valid() {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": string(input.Role)})
	}
	if existing, err := s.staff.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hashed, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	member := &domain.StaffMember{
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		Role:         input.Role,
		Area:         strings.TrimSpace(input.Area),
		Phone:        strings.TrimSpace(input.Phone),
		Active:       true,
	}
	if err := s.staff.Create(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// GetStaff fetches one staff member.
func (s *StaffService) GetStaff(ctx context.Context, actor *domain.StaffMember, id string) (*domain.StaffMember, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	member, err := s.staff.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("staff member", map[string]any{"id": id})
		}
		return nil, err
	}
	return member, nil
}

// ListStaff returns staff accounts matching the filter.
func (s *StaffService) ListStaff(ctx context.Context, actor *domain.StaffMember, filter repository.StaffFilter) ([]domain.StaffMember, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.staff.List(ctx, filter)
}

// UpdateStaff applies the provided changes.
func (s *StaffService) UpdateStaff(ctx context.Context, actor *domain.StaffMember, id string, input StaffUpdateInput) (*domain.StaffMember, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	member, err := s.staff.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("staff member", map[string]any{"id": id})
		}
		return nil, err
	}

	if input.Name != nil {
		member.Name = strings.TrimSpace(*input.Name)
	}
	if input.Role != nil {
		if !input.Role.Valid() {
			return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": string(*input.Role)})
		}
		member.Role = *input.Role
	}
	if input.Area != nil {
		member.Area = strings.TrimSpace(*input.Area)
	}
	if input.Phone != nil {
		member.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.Active != nil {
		member.Active = *input.Active
	}

	if err := s.staff.Update(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func requireAdmin(actor *domain.StaffMember) error {
	if actor == nil || actor.Role != domain.StaffRoleAdmin {
		return apperrors.NewForbidden("administrator role required")
	}
	return nil
}
