package domain

import "time"

// NotificationKind enumerates outbound email categories.
type NotificationKind string

const (
	NotificationCaseCreated   NotificationKind = "case_created"
	NotificationCaseResponded NotificationKind = "case_responded"
	NotificationCaseClosed    NotificationKind = "case_closed"
	NotificationCaseOverdue   NotificationKind = "case_overdue"
)

// Notification records a single email attempt for a case. Delivery failures
// are captured here instead of propagating to the lifecycle operation.
type Notification struct {
	ID        string
	CaseID    string
	Kind      NotificationKind
	Recipient string
	Subject   string
	Body      string
	Sent      bool
	SentAt    *time.Time
	Error     string
	CreatedAt time.Time
}
