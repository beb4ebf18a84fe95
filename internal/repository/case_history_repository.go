package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/pqrs-service/internal/domain"
)

// CaseHistoryRepository stores the append-only audit trail. Entries are never
// updated or deleted.
type CaseHistoryRepository interface {
	ListByCase(ctx context.Context, caseID string) ([]domain.HistoryEntry, error)
	CountByCase(ctx context.Context, caseID string) (int, error)
}

type caseHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewCaseHistoryRepository builds repository.
func NewCaseHistoryRepository(pool *pgxpool.Pool) CaseHistoryRepository {
	return &caseHistoryRepository{pool: pool}
}

// insertHistory writes an audit entry inside the caller's transaction.
func insertHistory(ctx context.Context, q rowQuerier, entry *domain.HistoryEntry) error {
	const query = `
        INSERT INTO case_history (case_id, prior_status, new_status, note, actor_staff_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return q.QueryRow(ctx, query,
		entry.CaseID,
		entry.PriorStatus,
		entry.NewStatus,
		entry.Note,
		entry.ActorID,
	).Scan(&entry.ID, &entry.CreatedAt)
}

// ListByCase returns entries newest first.
func (r *caseHistoryRepository) ListByCase(ctx context.Context, caseID string) ([]domain.HistoryEntry, error) {
	const query = `
        SELECT h.id, h.case_id, h.prior_status, h.new_status, h.note, h.actor_staff_id,
               COALESCE(s.name, ''), h.created_at
        FROM case_history h
        LEFT JOIN staff_members s ON s.id = h.actor_staff_id
        WHERE h.case_id=$1 ORDER BY h.created_at DESC`
	rows, err := r.pool.Query(ctx, query, caseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.HistoryEntry
	for rows.Next() {
		var entry domain.HistoryEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.CaseID,
			&entry.PriorStatus,
			&entry.NewStatus,
			&entry.Note,
			&entry.ActorID,
			&entry.ActorName,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *caseHistoryRepository) CountByCase(ctx context.Context, caseID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM case_history WHERE case_id=$1`, caseID).Scan(&count)
	return count, err
}
