package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/pqrs-service/internal/config"
	"github.com/spec-kit/pqrs-service/internal/domain"
	"github.com/spec-kit/pqrs-service/internal/events"
)

type fakeNotificationRepo struct {
	records []domain.Notification
	sent    []string
	failed  map[string]string
	nextID  int
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{failed: map[string]string{}}
}

func (r *fakeNotificationRepo) Create(_ context.Context, notification *domain.Notification) error {
	r.nextID++
	notification.ID = string(rune('0' + r.nextID))
	r.records = append(r.records, *notification)
	return nil
}

func (r *fakeNotificationRepo) MarkSent(_ context.Context, id string, _ time.Time) error {
	r.sent = append(r.sent, id)
	return nil
}

func (r *fakeNotificationRepo) MarkFailed(_ context.Context, id string, reason string) error {
	r.failed[id] = reason
	return nil
}

func (r *fakeNotificationRepo) ListByCase(context.Context, string) ([]domain.Notification, error) {
	return r.records, nil
}

type fakeSender struct {
	sent []string
	err  error
}

func (s *fakeSender) Send(_ context.Context, _, to, _, _ string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, to)
	return nil
}

func notificationTestService(sender EmailSender) (*NotificationService, *fakeNotificationRepo, *fakeResponseRepo) {
	repo := newFakeNotificationRepo()
	responses := &fakeResponseRepo{}
	svc := NewNotificationService(config.NotificationConfig{
		EmailFrom: "noreply@example.com",
		QueueSize: 8,
	}, repo, responses, sender, zap.NewNop())
	return svc, repo, responses
}

func createdEvent() events.Event {
	return events.Event{
		Type:         events.EventCaseCreated,
		CaseID:       "case-1",
		TrackingCode: "PQRS-20240301-0042",
		Payload: events.CaseCreatedPayload{
			Category:       domain.CategoryComplaint,
			Subject:        "Noise at night",
			SubmitterName:  "Maria Lopez",
			SubmitterEmail: "maria@example.com",
			FiledAt:        testClock,
			ResponseDue:    testClock.Add(15 * 24 * time.Hour),
		},
	}
}

func TestNotificationDeliveredOnCaseCreated(t *testing.T) {
	sender := &fakeSender{}
	svc, repo, _ := notificationTestService(sender)

	require.NoError(t, svc.onCaseCreated(context.Background(), createdEvent()))

	job := <-svc.jobs
	svc.deliver(context.Background(), job)

	require.Len(t, repo.records, 1)
	assert.Equal(t, domain.NotificationCaseCreated, repo.records[0].Kind)
	assert.Equal(t, "maria@example.com", repo.records[0].Recipient)
	assert.Contains(t, repo.records[0].Subject, "PQRS-20240301-0042")
	assert.Len(t, repo.sent, 1)
	assert.Equal(t, []string{"maria@example.com"}, sender.sent)
}

func TestNotificationFailureRecordedNotPropagated(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp unreachable")}
	svc, repo, _ := notificationTestService(sender)

	require.NoError(t, svc.onCaseCreated(context.Background(), createdEvent()))

	job := <-svc.jobs
	svc.deliver(context.Background(), job)

	require.Len(t, repo.records, 1)
	assert.Empty(t, repo.sent)
	assert.Equal(t, "smtp unreachable", repo.failed[repo.records[0].ID])
}

func TestRespondedNotificationFlagsResponse(t *testing.T) {
	sender := &fakeSender{}
	svc, _, responses := notificationTestService(sender)

	response := &domain.Response{CaseID: "case-1", Body: "we are on it"}
	require.NoError(t, responses.Create(context.Background(), response))

	event := events.Event{
		Type:         events.EventCaseResponded,
		CaseID:       "case-1",
		TrackingCode: "PQRS-20240301-0042",
		Payload: events.CaseRespondedPayload{
			ResponseID:     response.ID,
			SubmitterName:  "Maria Lopez",
			SubmitterEmail: "maria@example.com",
			Body:           response.Body,
		},
	}
	require.NoError(t, svc.onCaseResponded(context.Background(), event))

	job := <-svc.jobs
	svc.deliver(context.Background(), job)

	assert.True(t, responses.responses[0].Notified)
}

func TestQueueFullDropsJob(t *testing.T) {
	sender := &fakeSender{}
	repo := newFakeNotificationRepo()
	svc := NewNotificationService(config.NotificationConfig{QueueSize: 1}, repo, &fakeResponseRepo{}, sender, zap.NewNop())

	require.NoError(t, svc.onCaseCreated(context.Background(), createdEvent()))
	require.NoError(t, svc.onCaseCreated(context.Background(), createdEvent()))

	assert.Len(t, svc.jobs, 1)
}
