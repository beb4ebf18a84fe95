package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/pqrs-service/internal/config"
	"github.com/spec-kit/pqrs-service/internal/domain"
	"github.com/spec-kit/pqrs-service/internal/events"
	"github.com/spec-kit/pqrs-service/internal/repository"
)

// EmailSender delivers a single message.
type EmailSender interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type logEmailSender struct {
	logger *zap.Logger
}

// NewLogEmailSender returns a sender that only logs. Deployments plug a real
// SMTP implementation behind the same interface.
func NewLogEmailSender(logger *zap.Logger) EmailSender {
	return &logEmailSender{logger: logger}
}

func (s *logEmailSender) Send(_ context.Context, from, to, subject, _ string) error {
	s.logger.Info("email dispatched",
		zap.String("from", from),
		zap.String("to", to),
		zap.String("subject", subject),
	)
	return nil
}

type notificationJob struct {
	kind       domain.NotificationKind
	caseID     string
	tracking   string
	recipient  string
	subject    string
	body       string
	responseID string
}

// NotificationService turns lifecycle events into submitter emails. Jobs are
// queued on a buffered channel and delivered by Run; the publishing operation
// never waits on delivery and never sees its errors.
type NotificationService struct {
	notifications repository.NotificationRepository
	responses     repository.CaseResponseRepository
	sender        EmailSender
	logger        *zap.Logger
	from          string
	jobs          chan notificationJob
}

// NewNotificationService builds the service.
func NewNotificationService(
	cfg config.NotificationConfig,
	notifications repository.NotificationRepository,
	responses repository.CaseResponseRepository,
	sender EmailSender,
	logger *zap.Logger,
) *NotificationService {
	size := cfg.QueueSize
	if size <= 0 {
		size = 64
	}
	return &NotificationService{
		notifications: notifications,
		responses:     responses,
		sender:        sender,
		logger:        logger,
		from:          cfg.EmailFrom,
		jobs:          make(chan notificationJob, size),
	}
}

// RegisterHandlers subscribes the service to the lifecycle events it emails
// about.
func (s *NotificationService) RegisterHandlers(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventCaseCreated, s.onCaseCreated)
	dispatcher.Subscribe(events.EventCaseResponded, s.onCaseResponded)
}

func (s *NotificationService) onCaseCreated(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.CaseCreatedPayload)
	if !ok {
		return nil
	}
	s.enqueue(notificationJob{
		kind:      domain.NotificationCaseCreated,
		caseID:    event.CaseID,
		tracking:  event.TrackingCode,
		recipient: payload.SubmitterEmail,
		subject:   fmt.Sprintf("Your case %s has been registered", event.TrackingCode),
		body: fmt.Sprintf(
			"Dear %s,\n\nYour %s has been registered under tracking code %s.\n"+
				"You can follow its progress with that code at any time.\n"+
				"A response is due by %s.\n",
			payload.SubmitterName, payload.Category, event.TrackingCode,
			payload.ResponseDue.Format("2006-01-02")),
	})
	return nil
}

func (s *NotificationService) onCaseResponded(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.CaseRespondedPayload)
	if !ok {
		return nil
	}
	s.enqueue(notificationJob{
		kind:       domain.NotificationCaseResponded,
		caseID:     event.CaseID,
		tracking:   event.TrackingCode,
		recipient:  payload.SubmitterEmail,
		subject:    fmt.Sprintf("New response on your case %s", event.TrackingCode),
		responseID: payload.ResponseID,
		body: fmt.Sprintf(
			"Dear %s,\n\nA response has been added to your case %s:\n\n%s\n",
			payload.SubmitterName, event.TrackingCode, payload.Body),
	})
	return nil
}

func (s *NotificationService) enqueue(job notificationJob) {
	select {
	case s.jobs <- job:
	default:
		s.logger.Warn("notification queue full, dropping job",
			zap.String("kind", string(job.kind)),
			zap.String("tracking_code", job.tracking),
		)
	}
}

// Run consumes queued jobs until the context is cancelled.
func (s *NotificationService) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-s.jobs:
			s.deliver(ctx, job)
		}
	}
}

func (s *NotificationService) deliver(ctx context.Context, job notificationJob) {
	record := &domain.Notification{
		CaseID:    job.caseID,
		Kind:      job.kind,
		Recipient: job.recipient,
		Subject:   job.subject,
		Body:      job.body,
	}
	if err := s.notifications.Create(ctx, record); err != nil {
		s.logger.Error("failed to record notification",
			zap.String("tracking_code", job.tracking),
			zap.Error(err),
		)
		return
	}

	if err := s.sender.Send(ctx, s.from, job.recipient, job.subject, job.body); err != nil {
		s.logger.Error("email delivery failed",
			zap.String("tracking_code", job.tracking),
			zap.String("recipient", job.recipient),
			zap.Error(err),
		)
		if markErr := s.notifications.MarkFailed(ctx, record.ID, err.Error()); markErr != nil {
			s.logger.Error("failed to mark notification failed", zap.Error(markErr))
		}
		return
	}

	if err := s.notifications.MarkSent(ctx, record.ID, time.Now()); err != nil {
		s.logger.Error("failed to mark notification sent", zap.Error(err))
	}
	if job.responseID != "" {
		if err := s.responses.MarkNotified(ctx, job.responseID); err != nil {
			s.logger.Error("failed to flag response as notified", zap.Error(err))
		}
	}
}
