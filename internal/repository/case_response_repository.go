package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/pqrs-service/internal/domain"
)

// CaseResponseRepository persists staff replies.
type CaseResponseRepository interface {
	Create(ctx context.Context, response *domain.Response) error
	ListByCase(ctx context.Context, caseID string) ([]domain.Response, error)
	MarkNotified(ctx context.Context, id string) error
}

type caseResponseRepository struct {
	pool *pgxpool.Pool
}

// NewCaseResponseRepository constructs repository.
func NewCaseResponseRepository(pool *pgxpool.Pool) CaseResponseRepository {
	return &caseResponseRepository{pool: pool}
}

func (r *caseResponseRepository) Create(ctx context.Context, response *domain.Response) error {
	const query = `
        INSERT INTO case_responses (case_id, body, staff_id, notified)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		response.CaseID,
		response.Body,
		response.StaffID,
		response.Notified,
	).Scan(&response.ID, &response.CreatedAt)
}

// ListByCase returns responses newest first.
func (r *caseResponseRepository) ListByCase(ctx context.Context, caseID string) ([]domain.Response, error) {
	const query = `
        SELECT r.id, r.case_id, r.body, r.staff_id, COALESCE(s.name, ''), r.notified, r.created_at
        FROM case_responses r
        LEFT JOIN staff_members s ON s.id = r.staff_id
        WHERE r.case_id=$1 ORDER BY r.created_at DESC`
	rows, err := r.pool.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Response
	for rows.Next() {
		var response domain.Response
		if err := rows.Scan(
			&response.ID,
			&response.CaseID,
			&response.Body,
			&response.StaffID,
			&response.StaffName,
			&response.Notified,
			&response.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, response)
	}
	return result, rows.Err()
}

func (r *caseResponseRepository) MarkNotified(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `UPDATE case_responses SET notified=TRUE WHERE id=$1`, id)
	return err
}
