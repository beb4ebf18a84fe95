package events

import (
	"time"

	"github.com/spec-kit/pqrs-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventCaseCreated       EventType = "case_created"
	EventCaseStatusChanged EventType = "case_status_changed"
	EventCaseResponded     EventType = "case_responded"
	EventCaseArchived      EventType = "case_archived"
	EventCaseAssigned      EventType = "case_assigned"
)

// Event represents a domain event emitted by the lifecycle engine.
// A nil ActorID means the submitter caused the transition.
type Event struct {
	ID           string      `json:"id"`
	Type         EventType   `json:"type"`
	CaseID       string      `json:"case_id"`
	TrackingCode string      `json:"tracking_code"`
	ActorID      *string     `json:"actor_id,omitempty"`
	Timestamp    time.Time   `json:"timestamp"`
	Payload      interface{} `json:"payload"`
}

// CaseCreatedPayload payload.
type CaseCreatedPayload struct {
	Category       domain.CaseCategory `json:"category"`
	Subject        string              `json:"subject"`
	SubmitterName  string              `json:"submitter_name"`
	SubmitterEmail string              `json:"submitter_email"`
	FiledAt        time.Time           `json:"filed_at"`
	ResponseDue    time.Time           `json:"response_due"`
}

// CaseStatusChangedPayload payload.
type CaseStatusChangedPayload struct {
	PriorStatus domain.CaseStatus `json:"prior_status"`
	NewStatus   domain.CaseStatus `json:"new_status"`
	Note        string            `json:"note,omitempty"`
}

// CaseRespondedPayload payload.
type CaseRespondedPayload struct {
	ResponseID     string `json:"response_id"`
	SubmitterName  string `json:"submitter_name"`
	SubmitterEmail string `json:"submitter_email"`
	Body           string `json:"body"`
}

// CaseAssignedPayload payload.
type CaseAssignedPayload struct {
	ResponsibleArea string  `json:"responsible_area"`
	AssigneeID      *string `json:"assignee_id,omitempty"`
}
