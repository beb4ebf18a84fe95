package dto

import (
	"time"

	"github.com/spec-kit/pqrs-service/internal/domain"
)

// LoginRequest is the staff login payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries a fresh token.
type LoginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	Staff     StaffResponse `json:"staff"`
}

// CreateStaffRequest registers a staff account.
type CreateStaffRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=ADMIN HANDLER SUPERVISOR"`
	Area     string `json:"area" validate:"omitempty,max=120"`
	Phone    string `json:"phone" validate:"omitempty,max=30"`
}

// UpdateStaffRequest applies partial staff updates.
type UpdateStaffRequest struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,max=120"`
	Role   *string `json:"role,omitempty" validate:"omitempty,oneof=ADMIN HANDLER SUPERVISOR"`
	Area   *string `json:"area,omitempty" validate:"omitempty,max=120"`
	Phone  *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Active *bool   `json:"active,omitempty"`
}

// PasswordResetRequest starts a reset flow.
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// PasswordResetConfirmRequest completes a reset flow.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// ChangePasswordRequest rotates the caller's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// StaffResponse is the staff representation returned to clients. The password
// hash never leaves the service.
type StaffResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Area      string    `json:"area,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewStaffResponse maps a staff member.
func NewStaffResponse(staff *domain.StaffMember) StaffResponse {
	return StaffResponse{
		ID:        staff.ID,
		Name:      staff.Name,
		Email:     staff.Email,
		Role:      string(staff.Role),
		Area:      staff.Area,
		Phone:     staff.Phone,
		Active:    staff.Active,
		CreatedAt: staff.CreatedAt,
		UpdatedAt: staff.UpdatedAt,
	}
}

// NewStaffResponses maps a list of staff members.
func NewStaffResponses(members []domain.StaffMember) []StaffResponse {
	result := make([]StaffResponse, 0, len(members))
	for i := range members {
		result = append(result, NewStaffResponse(&members[i]))
	}
	return result
}
