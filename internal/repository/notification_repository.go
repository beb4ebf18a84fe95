package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/pqrs-service/internal/domain"
)

// NotificationRepository records email attempts and their outcome.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	MarkSent(ctx context.Context, id string, at time.Time) error
	MarkFailed(ctx context.Context, id string, reason string) error
	ListByCase(ctx context.Context, caseID string) ([]domain.Notification, error)
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository constructs repository.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	const query = `
        INSERT INTO notifications (case_id, kind, recipient, subject, body, sent, error)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		notification.CaseID,
		notification.Kind,
		notification.Recipient,
		notification.Subject,
		notification.Body,
		notification.Sent,
		notification.Error,
	).Scan(&notification.ID, &notification.CreatedAt)
}

func (r *notificationRepository) MarkSent(ctx context.Context, id string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE notifications SET sent=TRUE, sent_at=$1, error='' WHERE id=$2`, at, id)
	return err
}

func (r *notificationRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	_, err := r.pool.Exec(ctx, `UPDATE notifications SET sent=FALSE, error=$1 WHERE id=$2`, reason, id)
	return err
}

func (r *notificationRepository) ListByCase(ctx context.Context, caseID string) ([]domain.Notification, error) {
	const query = `
        SELECT id, case_id, kind, recipient, subject, body, sent, sent_at, error, created_at
        FROM notifications WHERE case_id=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var notification domain.Notification
		if err := rows.Scan(
			&notification.ID,
			&notification.CaseID,
			&notification.Kind,
			&notification.Recipient,
			&notification.Subject,
			&notification.Body,
			&notification.Sent,
			&notification.SentAt,
			&notification.Error,
			&notification.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, notification)
	}
	return result, rows.Err()
}
