package domain

import "time"

// Response is a staff reply to a case. Notified flips to true once the
// submitter has been emailed about it.
type Response struct {
	ID        string
	CaseID    string
	Body      string
	StaffID   *string
	StaffName string
	Notified  bool
	CreatedAt time.Time
}
