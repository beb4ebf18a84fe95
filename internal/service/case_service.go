package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/pqrs-service/internal/config"
	"github.com/spec-kit/pqrs-service/internal/domain"
	"github.com/spec-kit/pqrs-service/internal/events"
	"github.com/spec-kit/pqrs-service/internal/repository"
	apperrors "github.com/spec-kit/pqrs-service/pkg/util"
)

const (
	noteRegistered   = "registered by submitter"
	noteResponseSent = "response sent by handler"
	noteArchived     = "archived by user"
)

// SLAPolicy maps a case category to its statutory response window in days.
type SLAPolicy map[domain.CaseCategory]int

// DefaultSLAPolicy returns the mandated response windows.
func DefaultSLAPolicy() SLAPolicy {
	return SLAPolicy{
		domain.CategoryPetition:   15,
		domain.CategoryComplaint:  15,
		domain.CategoryClaim:      15,
		domain.CategorySuggestion: 30,
	}
}

// SLAPolicyFromConfig builds the policy table from configuration.
func SLAPolicyFromConfig(cfg config.LifecycleConfig) SLAPolicy {
	return SLAPolicy{
		domain.CategoryPetition:   cfg.PetitionDays,
		domain.CategoryComplaint:  cfg.ComplaintDays,
		domain.CategoryClaim:      cfg.ClaimDays,
		domain.CategorySuggestion: cfg.SuggestionDays,
	}
}

// CaseService is the lifecycle engine: it owns deadline computation, status
// and traffic-light derivation, state transitions and the audit trail.
type CaseService struct {
	cases      repository.CaseRepository
	history    repository.CaseHistoryRepository
	responses  repository.CaseResponseRepository
	dispatcher events.Dispatcher

	sla                 SLAPolicy
	yellowWithinDays    int
	allowReopenTerminal bool
	codeAttempts        int
	attachments         config.AttachmentConfig

	now func() time.Time
}

// CaseDependencies bundles repositories for the case service.
type CaseDependencies struct {
	CaseRepo     repository.CaseRepository
	HistoryRepo  repository.CaseHistoryRepository
	ResponseRepo repository.CaseResponseRepository
	Dispatcher   events.Dispatcher
}

// NewCaseService constructs the service.
func NewCaseService(cfg config.Config, deps CaseDependencies) *CaseService {
	attempts := cfg.Lifecycle.TrackingCodeAttempts
	if attempts <= 0 {
		attempts = 5
	}
	return &CaseService{
		cases:               deps.CaseRepo,
		history:             deps.HistoryRepo,
		responses:           deps.ResponseRepo,
		dispatcher:          deps.Dispatcher,
		sla:                 SLAPolicyFromConfig(cfg.Lifecycle),
		yellowWithinDays:    cfg.Lifecycle.YellowWithinDays,
		allowReopenTerminal: cfg.Lifecycle.AllowReopenTerminal,
		codeAttempts:        attempts,
		attachments:         cfg.Attachment,
		now:                 time.Now,
	}
}

// AttachmentInput describes intake attachment metadata.
type AttachmentInput struct {
	FileName   string
	SizeBytes  int64
	StorageKey string
}

// CaseCreateInput describes the public intake payload.
type CaseCreateInput struct {
	Category       domain.CaseCategory
	Subject        string
	Description    string
	SubmitterName  string
	SubmitterEmail string
	SubmitterPhone string
	Attachment     *AttachmentInput
}

// CaseListFilter describes staff listing filters.
type CaseListFilter struct {
	Statuses      []domain.CaseStatus
	Categories    []domain.CaseCategory
	TrafficLights []domain.TrafficLight
	AssigneeID    *string
	Area          *string
	SearchTerm    *string
	FiledFrom     *time.Time
	FiledTo       *time.Time
	Limit         int
	Offset        int
}

// CreateCase registers a new case. The deadline is computed exactly once,
// timing is derived before the first persist, and the case row plus its
// creation history entry commit together. Tracking-code collisions are
// retried with a fresh suffix up to the configured bound.
func (s *CaseService) CreateCase(ctx context.Context, input CaseCreateInput) (*domain.Case, error) {
	if !input.Category.Valid() {
		return nil, apperrors.NewValidationError("unknown category", map[string]any{"category": string(input.Category)})
	}
	subject := strings.TrimSpace(input.Subject)
	description := strings.TrimSpace(input.Description)
	name := strings.TrimSpace(input.SubmitterName)
	email := strings.TrimSpace(input.SubmitterEmail)
	if subject == "" || description == "" || name == "" || email == "" {
		return nil, apperrors.NewValidationError("subject, description, submitter_name and submitter_email are required", nil)
	}
	if err := s.validateAttachment(input.Attachment); err != nil {
		return nil, err
	}

	now := s.now()
	window := s.sla[input.Category]

	c := &domain.Case{
		TrackingCode:   generateTrackingCode(now),
		Category:       input.Category,
		Subject:        subject,
		Description:    description,
		SubmitterName:  name,
		SubmitterEmail: email,
		SubmitterPhone: strings.TrimSpace(input.SubmitterPhone),
		Status:         domain.CaseStatusPending,
		FiledAt:        now,
		ResponseDue:    now.Add(time.Duration(window) * 24 * time.Hour),
	}
	if input.Attachment != nil {
		ref := input.Attachment.StorageKey
		c.AttachmentRef = &ref
	}
	c.ApplyDerivation(domain.DeriveTiming(c.Status, c.ResponseDue, now, s.yellowWithinDays))

	entry := &domain.HistoryEntry{
		PriorStatus: "",
		NewStatus:   domain.CaseStatusPending,
		Note:        noteRegistered,
		ActorID:     nil,
	}

	var err error
	for attempt := 0; attempt < s.codeAttempts; attempt++ {
		err = s.cases.CreateWithHistory(ctx, c, entry)
		if err == nil {
			s.publishEvent(ctx, events.Event{
				Type:         events.EventCaseCreated,
				CaseID:       c.ID,
				TrackingCode: c.TrackingCode,
				Payload: events.CaseCreatedPayload{
					Category:       c.Category,
					Subject:        c.Subject,
					SubmitterName:  c.SubmitterName,
					SubmitterEmail: c.SubmitterEmail,
					FiledAt:        c.FiledAt,
					ResponseDue:    c.ResponseDue,
				},
			})
			return c, nil
		}
		if !isUniqueViolation(err) {
			return nil, err
		}
		c.TrackingCode = generateTrackingCode(now)
	}
	return nil, apperrors.NewGenerationError(
		fmt.Sprintf("could not generate a unique tracking code after %d attempts", s.codeAttempts))
}

// LookupByTrackingCode fetches a case with its history and responses, newest
// first. Timing is derived for display only; nothing is persisted.
func (s *CaseService) LookupByTrackingCode(ctx context.Context, code string) (*domain.Case, []domain.HistoryEntry, []domain.Response, error) {
	c, err := s.cases.GetByTrackingCode(ctx, strings.TrimSpace(code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, nil, apperrors.NewNotFound("case", map[string]any{"tracking_code": code})
		}
		return nil, nil, nil, err
	}
	return s.withThread(ctx, c)
}

// GetCase fetches a case by ID for staff, timing derived for display only.
func (s *CaseService) GetCase(ctx context.Context, id string) (*domain.Case, []domain.HistoryEntry, []domain.Response, error) {
	c, err := s.cases.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, nil, apperrors.NewNotFound("case", map[string]any{"id": id})
		}
		return nil, nil, nil, err
	}
	return s.withThread(ctx, c)
}

func (s *CaseService) withThread(ctx context.Context, c *domain.Case) (*domain.Case, []domain.HistoryEntry, []domain.Response, error) {
	s.deriveForDisplay(c)
	history, err := s.history.ListByCase(ctx, c.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	responses, err := s.responses.ListByCase(ctx, c.ID)
	if err != nil {
		return nil, nil, nil, err
	}
	return c, history, responses, nil
}

// ListCases returns cases matching the filter, timing derived for display.
func (s *CaseService) ListCases(ctx context.Context, filter CaseListFilter) ([]domain.Case, error) {
	cases, err := s.cases.ListWithFilter(ctx, repository.CaseFilter{
		Statuses:      filter.Statuses,
		Categories:    filter.Categories,
		TrafficLights: filter.TrafficLights,
		AssigneeID:    filter.AssigneeID,
		Area:          filter.Area,
		SearchTerm:    filter.SearchTerm,
		FiledFrom:     filter.FiledFrom,
		FiledTo:       filter.FiledTo,
		Limit:         filter.Limit,
		Offset:        filter.Offset,
	})
	if err != nil {
		return nil, err
	}
	for i := range cases {
		s.deriveForDisplay(&cases[i])
	}
	return cases, nil
}

// ChangeStatus applies an explicit transition. The closure timestamp is
// overwritten on every transition into a terminal status, matching the
// documented policy. The history entry records the requested status even when
// derivation immediately forces the case overdue.
func (s *CaseService) ChangeStatus(ctx context.Context, caseID string, newStatus domain.CaseStatus, note string, actor *domain.StaffMember) (*domain.Case, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, apperrors.NewValidationError("note is required", nil)
	}
	if !newStatus.Valid() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": string(newStatus)})
	}

	c, err := s.getForUpdate(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if !s.allowReopenTerminal && c.Status.Terminal() && !newStatus.Terminal() {
		return nil, apperrors.NewConflict("case is closed and cannot be reopened", map[string]any{"status": string(c.Status)})
	}

	prior := c.Status
	c.Status = newStatus
	if newStatus.Terminal() {
		closedAt := s.now()
		c.ClosedAt = &closedAt
	}
	c.ApplyDerivation(domain.DeriveTiming(c.Status, c.ResponseDue, s.now(), s.yellowWithinDays))

	entry := &domain.HistoryEntry{
		PriorStatus: prior,
		NewStatus:   newStatus,
		Note:        note,
		ActorID:     actorID(actor),
	}
	if err := s.cases.UpdateWithHistory(ctx, c, entry); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:         events.EventCaseStatusChanged,
		CaseID:       c.ID,
		TrackingCode: c.TrackingCode,
		ActorID:      actorID(actor),
		Payload: events.CaseStatusChangedPayload{
			PriorStatus: prior,
			NewStatus:   newStatus,
			Note:        note,
		},
	})
	return c, nil
}

// Respond records a staff reply. The first response moves a pending case to
// in-progress with its own history entry; later responses leave history
// untouched. The submitter notification is dispatched after commit and can
// never fail the operation.
func (s *CaseService) Respond(ctx context.Context, caseID string, body string, actor *domain.StaffMember) (*domain.Case, *domain.Response, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, nil, apperrors.NewValidationError("response body is required", nil)
	}

	c, err := s.getForUpdate(ctx, caseID)
	if err != nil {
		return nil, nil, err
	}

	response := &domain.Response{
		CaseID:  c.ID,
		Body:    body,
		StaffID: actorID(actor),
	}
	if actor != nil {
		response.StaffName = actor.Name
	}
	if err := s.responses.Create(ctx, response); err != nil {
		return nil, nil, err
	}

	if c.Status == domain.CaseStatusPending {
		c.Status = domain.CaseStatusInProgress
		c.ApplyDerivation(domain.DeriveTiming(c.Status, c.ResponseDue, s.now(), s.yellowWithinDays))
		entry := &domain.HistoryEntry{
			PriorStatus: domain.CaseStatusPending,
			NewStatus:   domain.CaseStatusInProgress,
			Note:        noteResponseSent,
			ActorID:     actorID(actor),
		}
		if err := s.cases.UpdateWithHistory(ctx, c, entry); err != nil {
			return nil, nil, err
		}
	} else {
		c.ApplyDerivation(domain.DeriveTiming(c.Status, c.ResponseDue, s.now(), s.yellowWithinDays))
		if err := s.cases.Update(ctx, c); err != nil {
			return nil, nil, err
		}
	}

	s.publishEvent(ctx, events.Event{
		Type:         events.EventCaseResponded,
		CaseID:       c.ID,
		TrackingCode: c.TrackingCode,
		ActorID:      actorID(actor),
		Payload: events.CaseRespondedPayload{
			ResponseID:     response.ID,
			SubmitterName:  c.SubmitterName,
			SubmitterEmail: c.SubmitterEmail,
			Body:           response.Body,
		},
	})
	return c, response, nil
}

// Archive closes a case. Re-archiving an already closed case is rejected
// with a conflict rather than accepted as a no-op.
func (s *CaseService) Archive(ctx context.Context, caseID string, actor *domain.StaffMember) (*domain.Case, error) {
	c, err := s.getForUpdate(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if c.Status == domain.CaseStatusClosed {
		return nil, apperrors.NewConflict("case is already closed", map[string]any{"tracking_code": c.TrackingCode})
	}

	prior := c.Status
	c.Status = domain.CaseStatusClosed
	closedAt := s.now()
	c.ClosedAt = &closedAt
	c.ApplyDerivation(domain.DeriveTiming(c.Status, c.ResponseDue, s.now(), s.yellowWithinDays))

	entry := &domain.HistoryEntry{
		PriorStatus: prior,
		NewStatus:   domain.CaseStatusClosed,
		Note:        noteArchived,
		ActorID:     actorID(actor),
	}
	if err := s.cases.UpdateWithHistory(ctx, c, entry); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:         events.EventCaseArchived,
		CaseID:       c.ID,
		TrackingCode: c.TrackingCode,
		ActorID:      actorID(actor),
		Payload: events.CaseStatusChangedPayload{
			PriorStatus: prior,
			NewStatus:   domain.CaseStatusClosed,
			Note:        noteArchived,
		},
	})
	return c, nil
}

// AssignCase routes a case to a responsible area and optionally a staff
// member. Assignment is not a status change, so no history entry is written.
func (s *CaseService) AssignCase(ctx context.Context, caseID string, area string, assigneeID *string, actor *domain.StaffMember) (*domain.Case, error) {
	c, err := s.getForUpdate(ctx, caseID)
	if err != nil {
		return nil, err
	}

	c.ResponsibleArea = strings.TrimSpace(area)
	c.AssigneeID = assigneeID
	c.ApplyDerivation(domain.DeriveTiming(c.Status, c.ResponseDue, s.now(), s.yellowWithinDays))
	if err := s.cases.Update(ctx, c); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:         events.EventCaseAssigned,
		CaseID:       c.ID,
		TrackingCode: c.TrackingCode,
		ActorID:      actorID(actor),
		Payload: events.CaseAssignedPayload{
			ResponsibleArea: c.ResponsibleArea,
			AssigneeID:      c.AssigneeID,
		},
	})
	return c, nil
}

func (s *CaseService) getForUpdate(ctx context.Context, caseID string) (*domain.Case, error) {
	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("case", map[string]any{"id": caseID})
		}
		return nil, err
	}
	return c, nil
}

func (s *CaseService) deriveForDisplay(c *domain.Case) {
	c.ApplyDerivation(domain.DeriveTiming(c.Status, c.ResponseDue, s.now(), s.yellowWithinDays))
}

func (s *CaseService) validateAttachment(att *AttachmentInput) error {
	if att == nil {
		return nil
	}
	if att.SizeBytes > s.attachments.MaxSizeBytes {
		return apperrors.NewValidationError("attachment exceeds maximum size", map[string]any{
			"size_bytes": att.SizeBytes,
			"max_bytes":  s.attachments.MaxSizeBytes,
		})
	}
	ext := strings.ToLower(filepath.Ext(att.FileName))
	for _, allowed := range s.attachments.AllowedExtensions {
		if ext == allowed {
			return nil
		}
	}
	return apperrors.NewValidationError("attachment type not allowed", map[string]any{
		"extension": ext,
		"allowed":   s.attachments.AllowedExtensions,
	})
}

func (s *CaseService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func generateTrackingCode(now time.Time) string {
	return fmt.Sprintf("PQRS-%s-%04d", now.Format("20060102"), rand.Intn(10000))
}

func actorID(actor *domain.StaffMember) *string {
	if actor == nil {
		return nil
	}
	id := actor.ID
	return &id
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
