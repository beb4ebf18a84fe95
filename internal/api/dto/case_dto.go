package dto

import (
	"time"

	"github.com/spec-kit/pqrs-service/internal/domain"
)

// CreateCaseRequest is the public intake payload.
type CreateCaseRequest struct {
	Category       string             `json:"category" validate:"required,oneof=petition complaint claim suggestion"`
	Subject        string             `json:"subject" validate:"required,max=200"`
	Description    string             `json:"description" validate:"required"`
	SubmitterName  string             `json:"submitter_name" validate:"required,max=120"`
	SubmitterEmail string             `json:"submitter_email" validate:"required,email"`
	SubmitterPhone string             `json:"submitter_phone" validate:"omitempty,max=30"`
	Attachment     *AttachmentRequest `json:"attachment,omitempty"`
}

// AttachmentRequest describes uploaded attachment metadata.
type AttachmentRequest struct {
	FileName   string `json:"file_name" validate:"required"`
	SizeBytes  int64  `json:"size_bytes" validate:"required,min=1"`
	StorageKey string `json:"storage_key" validate:"required"`
}

// ChangeStatusRequest requests an explicit transition.
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending in_progress overdue resolved closed"`
	Note   string `json:"note" validate:"required"`
}

// RespondRequest is a staff reply.
type RespondRequest struct {
	Body string `json:"body" validate:"required"`
}

// AssignCaseRequest routes a case.
type AssignCaseRequest struct {
	ResponsibleArea string  `json:"responsible_area" validate:"required,max=120"`
	AssigneeID      *string `json:"assignee_id,omitempty" validate:"omitempty,uuid"`
}

// CaseResponse is the case representation returned to clients.
type CaseResponse struct {
	ID              string     `json:"id"`
	TrackingCode    string     `json:"tracking_code"`
	Category        string     `json:"category"`
	Subject         string     `json:"subject"`
	Description     string     `json:"description"`
	SubmitterName   string     `json:"submitter_name"`
	SubmitterEmail  string     `json:"submitter_email"`
	SubmitterPhone  string     `json:"submitter_phone,omitempty"`
	AttachmentRef   *string    `json:"attachment_ref,omitempty"`
	Status          string     `json:"status"`
	FiledAt         time.Time  `json:"filed_at"`
	ResponseDue     time.Time  `json:"response_due"`
	ClosedAt        *time.Time `json:"closed_at,omitempty"`
	DaysRemaining   int        `json:"days_remaining"`
	TrafficLight    string     `json:"traffic_light"`
	ResponsibleArea string     `json:"responsible_area,omitempty"`
	AssigneeID      *string    `json:"assignee_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// HistoryEntryResponse is one audit record.
type HistoryEntryResponse struct {
	ID          string    `json:"id"`
	PriorStatus string    `json:"prior_status,omitempty"`
	NewStatus   string    `json:"new_status"`
	Note        string    `json:"note"`
	ActorName   string    `json:"actor_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// StaffResponseBody is one staff reply on a case.
type StaffResponseBody struct {
	ID        string    `json:"id"`
	Body      string    `json:"body"`
	StaffName string    `json:"staff_name,omitempty"`
	Notified  bool      `json:"notified"`
	CreatedAt time.Time `json:"created_at"`
}

// CaseDetailResponse bundles a case with its thread.
type CaseDetailResponse struct {
	Case      CaseResponse           `json:"case"`
	History   []HistoryEntryResponse `json:"history"`
	Responses []StaffResponseBody    `json:"responses"`
}

// CaseListResponse wraps a page of cases.
type CaseListResponse struct {
	Cases []CaseResponse `json:"cases"`
	Count int            `json:"count"`
}

// TrackingLookupResponse is the public tracking view. Submitter contact
// details are omitted so a tracking code alone does not leak them.
type TrackingLookupResponse struct {
	TrackingCode  string                 `json:"tracking_code"`
	Category      string                 `json:"category"`
	Subject       string                 `json:"subject"`
	Status        string                 `json:"status"`
	FiledAt       time.Time              `json:"filed_at"`
	ResponseDue   time.Time              `json:"response_due"`
	ClosedAt      *time.Time             `json:"closed_at,omitempty"`
	DaysRemaining int                    `json:"days_remaining"`
	TrafficLight  string                 `json:"traffic_light"`
	History       []HistoryEntryResponse `json:"history"`
	Responses     []StaffResponseBody    `json:"responses"`
}

// NewCaseResponse maps a domain case.
func NewCaseResponse(c *domain.Case) CaseResponse {
	return CaseResponse{
		ID:              c.ID,
		TrackingCode:    c.TrackingCode,
		Category:        string(c.Category),
		Subject:         c.Subject,
		Description:     c.Description,
		SubmitterName:   c.SubmitterName,
		SubmitterEmail:  c.SubmitterEmail,
		SubmitterPhone:  c.SubmitterPhone,
		AttachmentRef:   c.AttachmentRef,
		Status:          string(c.Status),
		FiledAt:         c.FiledAt,
		ResponseDue:     c.ResponseDue,
		ClosedAt:        c.ClosedAt,
		DaysRemaining:   c.DaysRemaining,
		TrafficLight:    string(c.TrafficLight),
		ResponsibleArea: c.ResponsibleArea,
		AssigneeID:      c.AssigneeID,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

// NewHistoryResponses maps audit records.
func NewHistoryResponses(entries []domain.HistoryEntry) []HistoryEntryResponse {
	result := make([]HistoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		result = append(result, HistoryEntryResponse{
			ID:          entry.ID,
			PriorStatus: string(entry.PriorStatus),
			NewStatus:   string(entry.NewStatus),
			Note:        entry.Note,
			ActorName:   entry.ActorName,
			CreatedAt:   entry.CreatedAt,
		})
	}
	return result
}

// NewStaffResponseBodies maps staff replies.
func NewStaffResponseBodies(responses []domain.Response) []StaffResponseBody {
	result := make([]StaffResponseBody, 0, len(responses))
	for _, response := range responses {
		result = append(result, StaffResponseBody{
			ID:        response.ID,
			Body:      response.Body,
			StaffName: response.StaffName,
			Notified:  response.Notified,
			CreatedAt: response.CreatedAt,
		})
	}
	return result
}

// NewCaseDetailResponse maps a case with its thread.
func NewCaseDetailResponse(c *domain.Case, history []domain.HistoryEntry, responses []domain.Response) CaseDetailResponse {
	return CaseDetailResponse{
		Case:      NewCaseResponse(c),
		History:   NewHistoryResponses(history),
		Responses: NewStaffResponseBodies(responses),
	}
}

// NewTrackingLookupResponse maps the public tracking view.
func NewTrackingLookupResponse(c *domain.Case, history []domain.HistoryEntry, responses []domain.Response) TrackingLookupResponse {
	return TrackingLookupResponse{
		TrackingCode:  c.TrackingCode,
		Category:      string(c.Category),
		Subject:       c.Subject,
		Status:        string(c.Status),
		FiledAt:       c.FiledAt,
		ResponseDue:   c.ResponseDue,
		ClosedAt:      c.ClosedAt,
		DaysRemaining: c.DaysRemaining,
		TrafficLight:  string(c.TrafficLight),
		History:       NewHistoryResponses(history),
		Responses:     NewStaffResponseBodies(responses),
	}
}
