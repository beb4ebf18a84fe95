package domain

import "time"

// HistoryEntry is an immutable audit record for a case status change.
// A nil ActorID means the transition was caused by the submitter.
type HistoryEntry struct {
	ID          string
	CaseID      string
	PriorStatus CaseStatus
	NewStatus   CaseStatus
	Note        string
	ActorID     *string
	ActorName   string
	CreatedAt   time.Time
}
