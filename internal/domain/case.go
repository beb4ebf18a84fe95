package domain

import (
	"math"
	"time"
)

// CaseCategory enumerates the kinds of citizen requests (PQRS).
type CaseCategory string

const (
	CategoryPetition   CaseCategory = "petition"
	CategoryComplaint  CaseCategory = "complaint"
	CategoryClaim      CaseCategory = "claim"
	CategorySuggestion CaseCategory = "suggestion"
)

// Categories lists every recognized category.
func Categories() []CaseCategory {
	return []CaseCategory{CategoryPetition, CategoryComplaint, CategoryClaim, CategorySuggestion}
}

// Valid reports whether the category is a recognized enumeration value.
func (c CaseCategory) Valid() bool {
	switch c {
	case CategoryPetition, CategoryComplaint, CategoryClaim, CategorySuggestion:
		return true
	}
	return false
}

// CaseStatus enumerates lifecycle states for cases.
type CaseStatus string

const (
	CaseStatusPending    CaseStatus = "pending"
	CaseStatusInProgress CaseStatus = "in_progress"
	CaseStatusOverdue    CaseStatus = "overdue"
	CaseStatusResolved   CaseStatus = "resolved"
	CaseStatusClosed     CaseStatus = "closed"
)

// Valid reports whether the status is a recognized enumeration value.
func (s CaseStatus) Valid() bool {
	switch s {
	case CaseStatusPending, CaseStatusInProgress, CaseStatusOverdue, CaseStatusResolved, CaseStatusClosed:
		return true
	}
	return false
}

// Terminal reports whether the status ends the response clock.
func (s CaseStatus) Terminal() bool {
	return s == CaseStatusResolved || s == CaseStatusClosed
}

// TrafficLight is the display color derived from the response deadline.
type TrafficLight string

const (
	TrafficGreen  TrafficLight = "green"
	TrafficYellow TrafficLight = "yellow"
	TrafficRed    TrafficLight = "red"
)

// Case is the aggregate for a citizen request.
type Case struct {
	ID              string
	TrackingCode    string
	Category        CaseCategory
	Subject         string
	Description     string
	SubmitterName   string
	SubmitterEmail  string
	SubmitterPhone  string
	AttachmentRef   *string
	Status          CaseStatus
	FiledAt         time.Time
	ResponseDue     time.Time
	ClosedAt        *time.Time
	DaysRemaining   int
	TrafficLight    TrafficLight
	ResponsibleArea string
	AssigneeID      *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Derivation is the result of evaluating a case against its deadline.
type Derivation struct {
	Status        CaseStatus
	DaysRemaining int
	TrafficLight  TrafficLight
	// Frozen marks terminal cases whose days-remaining must not be recomputed.
	Frozen bool
}

// DeriveTiming computes the timing-dependent fields of a case without mutating it.
// Terminal cases are always green and keep their last computed days-remaining.
// A negative days-remaining forces a non-terminal case to overdue; within
// yellowWithinDays of the deadline the light turns yellow.
func DeriveTiming(status CaseStatus, deadline, now time.Time, yellowWithinDays int) Derivation {
	if status.Terminal() {
		return Derivation{Status: status, TrafficLight: TrafficGreen, Frozen: true}
	}

	days := int(math.Floor(deadline.Sub(now).Hours() / 24))
	derived := Derivation{Status: status, DaysRemaining: days}
	switch {
	case days < 0:
		derived.TrafficLight = TrafficRed
		if status != CaseStatusOverdue {
			derived.Status = CaseStatusOverdue
		}
	case days <= yellowWithinDays:
		derived.TrafficLight = TrafficYellow
	default:
		derived.TrafficLight = TrafficGreen
	}
	return derived
}

// ApplyDerivation copies derived values onto the case.
func (c *Case) ApplyDerivation(d Derivation) {
	c.Status = d.Status
	c.TrafficLight = d.TrafficLight
	if !d.Frozen {
		c.DaysRemaining = d.DaysRemaining
	}
}

// Overdue reports whether the deadline has passed.
func (c *Case) Overdue(now time.Time) bool {
	return now.After(c.ResponseDue)
}
