package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/pqrs-service/internal/config"
	"github.com/spec-kit/pqrs-service/internal/domain"
	"github.com/spec-kit/pqrs-service/internal/events"
	"github.com/spec-kit/pqrs-service/internal/repository"
	apperrors "github.com/spec-kit/pqrs-service/pkg/util"
)

var testClock = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

type fakeCaseRepo struct {
	cases       map[string]*domain.Case
	history     []domain.HistoryEntry
	nextID      int
	failCreates int
	createCalls int
}

func newFakeCaseRepo() *fakeCaseRepo {
	return &fakeCaseRepo{cases: map[string]*domain.Case{}}
}

func (r *fakeCaseRepo) CreateWithHistory(_ context.Context, c *domain.Case, entry *domain.HistoryEntry) error {
	r.createCalls++
	if r.failCreates > 0 {
		r.failCreates--
		return &pgconn.PgError{Code: "23505", ConstraintName: "cases_tracking_code_key"}
	}
	r.nextID++
	c.ID = string(rune('a' + r.nextID))
	c.CreatedAt = testClock
	c.UpdatedAt = testClock
	stored := *c
	r.cases[c.ID] = &stored
	entry.CaseID = c.ID
	entry.CreatedAt = testClock
	r.history = append(r.history, *entry)
	return nil
}

func (r *fakeCaseRepo) UpdateWithHistory(_ context.Context, c *domain.Case, entry *domain.HistoryEntry) error {
	if _, ok := r.cases[c.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *c
	r.cases[c.ID] = &stored
	entry.CaseID = c.ID
	entry.CreatedAt = testClock
	r.history = append(r.history, *entry)
	return nil
}

func (r *fakeCaseRepo) Update(_ context.Context, c *domain.Case) error {
	if _, ok := r.cases[c.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *c
	r.cases[c.ID] = &stored
	return nil
}

func (r *fakeCaseRepo) GetByID(_ context.Context, id string) (*domain.Case, error) {
	stored, ok := r.cases[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

func (r *fakeCaseRepo) GetByTrackingCode(_ context.Context, code string) (*domain.Case, error) {
	for _, stored := range r.cases {
		if stored.TrackingCode == code {
			copied := *stored
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeCaseRepo) ListWithFilter(_ context.Context, _ repository.CaseFilter) ([]domain.Case, error) {
	result := make([]domain.Case, 0, len(r.cases))
	for _, stored := range r.cases {
		result = append(result, *stored)
	}
	return result, nil
}

type fakeHistoryRepo struct {
	repo *fakeCaseRepo
}

func (r *fakeHistoryRepo) ListByCase(_ context.Context, caseID string) ([]domain.HistoryEntry, error) {
	var result []domain.HistoryEntry
	for i := len(r.repo.history) - 1; i >= 0; i-- {
		if r.repo.history[i].CaseID == caseID {
			result = append(result, r.repo.history[i])
		}
	}
	return result, nil
}

func (r *fakeHistoryRepo) CountByCase(_ context.Context, caseID string) (int, error) {
	count := 0
	for _, entry := range r.repo.history {
		if entry.CaseID == caseID {
			count++
		}
	}
	return count, nil
}

type fakeResponseRepo struct {
	responses []domain.Response
	nextID    int
}

func (r *fakeResponseRepo) Create(_ context.Context, response *domain.Response) error {
	r.nextID++
	response.ID = string(rune('A' + r.nextID))
	response.CreatedAt = testClock
	r.responses = append(r.responses, *response)
	return nil
}

func (r *fakeResponseRepo) ListByCase(_ context.Context, caseID string) ([]domain.Response, error) {
	var result []domain.Response
	for i := len(r.responses) - 1; i >= 0; i-- {
		if r.responses[i].CaseID == caseID {
			result = append(result, r.responses[i])
		}
	}
	return result, nil
}

func (r *fakeResponseRepo) MarkNotified(_ context.Context, id string) error {
	for i := range r.responses {
		if r.responses[i].ID == id {
			r.responses[i].Notified = true
		}
	}
	return nil
}

type capturingDispatcher struct {
	published []events.Event
}

func (d *capturingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *capturingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func testConfig() config.Config {
	return config.Config{
		Lifecycle: config.LifecycleConfig{
			PetitionDays:         15,
			ComplaintDays:        15,
			ClaimDays:            15,
			SuggestionDays:       30,
			YellowWithinDays:     3,
			AllowReopenTerminal:  true,
			TrackingCodeAttempts: 5,
		},
		Attachment: config.AttachmentConfig{
			MaxSizeBytes:      10 * 1024 * 1024,
			AllowedExtensions: []string{".pdf", ".jpg", ".png"},
		},
	}
}

func newTestCaseService(cfg config.Config) (*CaseService, *fakeCaseRepo, *fakeResponseRepo, *capturingDispatcher) {
	caseRepo := newFakeCaseRepo()
	responseRepo := &fakeResponseRepo{}
	dispatcher := &capturingDispatcher{}
	svc := NewCaseService(cfg, CaseDependencies{
		CaseRepo:     caseRepo,
		HistoryRepo:  &fakeHistoryRepo{repo: caseRepo},
		ResponseRepo: responseRepo,
		Dispatcher:   dispatcher,
	})
	svc.now = func() time.Time { return testClock }
	return svc, caseRepo, responseRepo, dispatcher
}

func validIntake() CaseCreateInput {
	return CaseCreateInput{
		Category:       domain.CategoryPetition,
		Subject:        "Street lighting out",
		Description:    "The lamps on 5th avenue have been dark for a week.",
		SubmitterName:  "Maria Lopez",
		SubmitterEmail: "maria@example.com",
	}
}

func TestCreateCase(t *testing.T) {
	svc, repo, _, dispatcher := newTestCaseService(testConfig())

	created, err := svc.CreateCase(context.Background(), validIntake())
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^PQRS-20240301-\d{4}$`), created.TrackingCode)
	assert.Equal(t, domain.CaseStatusPending, created.Status)
	assert.Equal(t, testClock.Add(15*24*time.Hour), created.ResponseDue)
	assert.Equal(t, 15, created.DaysRemaining)
	assert.Equal(t, domain.TrafficGreen, created.TrafficLight)

	require.Len(t, repo.history, 1)
	entry := repo.history[0]
	assert.Equal(t, domain.CaseStatus(""), entry.PriorStatus)
	assert.Equal(t, domain.CaseStatusPending, entry.NewStatus)
	assert.Nil(t, entry.ActorID)

	require.Len(t, dispatcher.published, 1)
	assert.Equal(t, events.EventCaseCreated, dispatcher.published[0].Type)
}

func TestCreateCaseSuggestionWindow(t *testing.T) {
	svc, _, _, _ := newTestCaseService(testConfig())

	input := validIntake()
	input.Category = domain.CategorySuggestion
	created, err := svc.CreateCase(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, testClock.Add(30*24*time.Hour), created.ResponseDue)
	assert.Equal(t, 30, created.DaysRemaining)
}

func TestCreateCaseUnknownCategory(t *testing.T) {
	svc, _, _, _ := newTestCaseService(testConfig())

	input := validIntake()
	input.Category = "inquiry"
	_, err := svc.CreateCase(context.Background(), input)

	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
}

func TestCreateCaseRetriesTrackingCodeCollision(t *testing.T) {
	svc, repo, _, _ := newTestCaseService(testConfig())
	repo.failCreates = 2

	_, err := svc.CreateCase(context.Background(), validIntake())
	require.NoError(t, err)
	assert.Equal(t, 3, repo.createCalls)
}

func TestCreateCaseExhaustsTrackingCodeAttempts(t *testing.T) {
	svc, repo, _, _ := newTestCaseService(testConfig())
	repo.failCreates = 5

	_, err := svc.CreateCase(context.Background(), validIntake())
	require.Error(t, err)

	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "TRACKING_CODE_EXHAUSTED", domainErr.Code)
	assert.Equal(t, 5, repo.createCalls)
}

func TestCreateCaseRejectsOversizedAttachment(t *testing.T) {
	svc, _, _, _ := newTestCaseService(testConfig())

	input := validIntake()
	input.Attachment = &AttachmentInput{FileName: "evidence.pdf", SizeBytes: 11 * 1024 * 1024, StorageKey: "k"}
	_, err := svc.CreateCase(context.Background(), input)

	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestCreateCaseRejectsDisallowedExtension(t *testing.T) {
	svc, _, _, _ := newTestCaseService(testConfig())

	input := validIntake()
	input.Attachment = &AttachmentInput{FileName: "payload.exe", SizeBytes: 1024, StorageKey: "k"}
	_, err := svc.CreateCase(context.Background(), input)

	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestChangeStatusRequiresNote(t *testing.T) {
	svc, _, _, _ := newTestCaseService(testConfig())
	created, err := svc.CreateCase(context.Background(), validIntake())
	require.NoError(t, err)

	_, err = svc.ChangeStatus(context.Background(), created.ID, domain.CaseStatusInProgress, "  ", nil)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestChangeStatusToResolvedSetsClosedAt(t *testing.T) {
	svc, repo, _, _ := newTestCaseService(testConfig())
	created, err := svc.CreateCase(context.Background(), validIntake())
	require.NoError(t, err)

	actor := &domain.StaffMember{ID: "staff-1", Name: "Ana", Role: domain.StaffRoleHandler}
	updated, err := svc.ChangeStatus(context.Background(), created.ID, domain.CaseStatusResolved, "answered in full", actor)
	require.NoError(t, err)

	require.NotNil(t, updated.ClosedAt)
	assert.Equal(t, testClock, *updated.ClosedAt)
	assert.Equal(t, domain.TrafficGreen, updated.TrafficLight)

	require.Len(t, repo.history, 2)
	entry := repo.history[1]
	assert.Equal(t, domain.CaseStatusPending, entry.PriorStatus)
	assert.Equal(t, domain.CaseStatusResolved, entry.NewStatus)
	require.NotNil(t, entry.ActorID)
	assert.Equal(t, "staff-1", *entry.ActorID)
}

func TestChangeStatusClosedAtOverwrittenOnReclose(t *testing.T) {
	svc, _, _, _ := newTestCaseService(testConfig())
	created, err := svc.CreateCase(context.Background(), validIntake())
	require.NoError(t, err)

	_, err = svc.ChangeStatus(context.Background(), created.ID, domain.CaseStatusResolved, "done", nil)
	require.NoError(t, err)

	later := testClock.Add(48 * time.Hour)
	svc.now = func() time.Time { return later }

	_, err = svc.ChangeStatus(context.Background(), created.ID, domain.CaseStatusInProgress, "reopened", nil)
	require.NoError(t, err)
	updated, err := svc.ChangeStatus(context.Background(), created.ID, domain.CaseStatusClosed, "closed again", nil)
	require.NoError(t, err)

	require.NotNil(t, updated.ClosedAt)
	assert.Equal(t, later, *updated.ClosedAt)
}

func TestChangeStatusReopenBlockedWhenDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Lifecycle.AllowReopenTerminal = false
	svc, _, _, _ := newTestCaseService(cfg)

	created, err := svc.CreateCase(context.Background(), validIntake())
	require.NoError(t, err)
	_, err = svc.ChangeStatus(context.Background(), created.ID, domain.CaseStatusResolved, "done", nil)
	require.NoError(t, err)

	_, err = svc.ChangeStatus(context.Background(), created.ID, domain.CaseStatusInProgress, "reopen", nil)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestRespondMovesPendingToInProgress(t *testing.T) {
	svc, repo, responses, dispatcher := newTestCaseService(testConfig())
	created, err := svc.CreateCase(context.Background(), validIntake())
	require.NoError(t, err)

	actor := &domain.StaffMember{ID: "staff-1", Name: "Ana", Role: domain.StaffRoleHandler}
	updated, response, err := svc.Respond(context.Background(), created.ID, "We dispatched a crew.", actor)
	require.NoError(t, err)

	assert.Equal(t, domain.CaseStatusInProgress, updated.Status)
	assert.Equal(t, "Ana", response.StaffName)
	require.Len(t, repo.history, 2)
	assert.Equal(t, domain.CaseStatusInProgress, repo.history[1].NewStatus)
	assert.Len(t, responses.responses, 1)

	assert.Equal(t, events.EventCaseResponded, dispatcher.published[len(dispatcher.published)-1].Type)
}

func TestRespondAgainLeavesHistoryAlone(t *testing.T) {
	svc, repo, responses, _ := newTestCaseService(testConfig())
	created, err := svc.CreateCase(context.Background(), validIntake())
	require.NoError(t, err)

	_, _, err = svc.Respond(context.Background(), created.ID, "first reply", nil)
	require.NoError(t, err)
	_, _, err = svc.Respond(context.Background(), created.ID, "second reply", nil)
	require.NoError(t, err)

	assert.Len(t, repo.history, 2)
	assert.Len(t, responses.responses, 2)
}

func TestRespondRequiresBody(t *testing.T) {
	svc, _, _, _ := newTestCaseService(testConfig())
	created, err := svc.CreateCase(context.Background(), validIntake())
	require.NoError(t, err)

	_, _, err = svc.Respond(context.Background(), created.ID, "   ", nil)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestArchiveClosesCase(t *testing.T) {
	svc, repo, _, _ := newTestCaseService(testConfig())
	created, err := svc.CreateCase(context.Background(), validIntake())
	require.NoError(t, err)

	updated, err := svc.Archive(context.Background(), created.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.CaseStatusClosed, updated.Status)
	require.NotNil(t, updated.ClosedAt)
	require.Len(t, repo.history, 2)
	assert.Equal(t, "archived by user", repo.history[1].Note)
}

func TestArchiveAlreadyClosedConflicts(t *testing.T) {
	svc, repo, _, _ := newTestCaseService(testConfig())
	created, err := svc.CreateCase(context.Background(), validIntake())
	require.NoError(t, err)

	_, err = svc.Archive(context.Background(), created.ID, nil)
	require.NoError(t, err)
	historyBefore := len(repo.history)

	_, err = svc.Archive(context.Background(), created.ID, nil)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
	assert.Len(t, repo.history, historyBefore)
}

func TestAssignCaseWritesNoHistory(t *testing.T) {
	svc, repo, _, dispatcher := newTestCaseService(testConfig())
	created, err := svc.CreateCase(context.Background(), validIntake())
	require.NoError(t, err)

	assignee := "staff-2"
	updated, err := svc.AssignCase(context.Background(), created.ID, "Public Works", &assignee, nil)
	require.NoError(t, err)

	assert.Equal(t, "Public Works", updated.ResponsibleArea)
	require.NotNil(t, updated.AssigneeID)
	assert.Equal(t, "staff-2", *updated.AssigneeID)
	assert.Len(t, repo.history, 1)

	assert.Equal(t, events.EventCaseAssigned, dispatcher.published[len(dispatcher.published)-1].Type)
}

func TestLookupByTrackingCodeDerivesDisplayOnly(t *testing.T) {
	svc, repo, _, _ := newTestCaseService(testConfig())
	created, err := svc.CreateCase(context.Background(), validIntake())
	require.NoError(t, err)

	svc.now = func() time.Time { return testClock.Add(16 * 24 * time.Hour) }

	found, history, _, err := svc.LookupByTrackingCode(context.Background(), created.TrackingCode)
	require.NoError(t, err)

	assert.Equal(t, domain.CaseStatusOverdue, found.Status)
	assert.Equal(t, domain.TrafficRed, found.TrafficLight)
	assert.Equal(t, -1, found.DaysRemaining)
	assert.Len(t, history, 1)

	stored := repo.cases[created.ID]
	assert.Equal(t, domain.CaseStatusPending, stored.Status)
}

func TestLookupByTrackingCodeNotFound(t *testing.T) {
	svc, _, _, _ := newTestCaseService(testConfig())

	_, _, _, err := svc.LookupByTrackingCode(context.Background(), "PQRS-20240301-0000")
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}
