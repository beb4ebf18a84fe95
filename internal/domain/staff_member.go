package domain

import "time"

// StaffRole enumerates internal operator roles.
type StaffRole string

const (
	StaffRoleAdmin      StaffRole = "ADMIN"
	StaffRoleHandler    StaffRole = "HANDLER"
	StaffRoleSupervisor StaffRole = "SUPERVISOR"
)

// Valid reports whether the role is recognized.
func (r StaffRole) Valid() bool {
	switch r {
	case StaffRoleAdmin, StaffRoleHandler, StaffRoleSupervisor:
		return true
	}
	return false
}

// StaffMember models an operator who triages and answers cases.
type StaffMember struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         StaffRole
	Area         string
	Phone        string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
