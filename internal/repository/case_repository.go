package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/pqrs-service/internal/domain"
)

// CaseFilter captures staff search parameters.
type CaseFilter struct {
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

// CaseRepository encapsulates case persistence. The WithHistory variants
// persist the case row and its audit entry in one transaction so a crash
// between the two never leaves an orphaned state change.
type CaseRepository interface {
	CreateWithHistory(ctx context.Context, c *domain.Case, entry *domain.HistoryEntry) error
	UpdateWithHistory(ctx context.Context, c *domain.Case, entry *domain.HistoryEntry) error
	Update(ctx context.Context, c *domain.Case) error
	GetByID(ctx context.Context, id string) (*domain.Case, error)
	GetByTrackingCode(ctx context.Context, code string) (*domain.Case, error)
	ListWithFilter(ctx context.Context, filter CaseFilter) ([]domain.Case, error)
}

type caseRepository struct {
	pool *pgxpool.Pool
}

// NewCaseRepository instantiates repository.
func NewCaseRepository(pool *pgxpool.Pool) CaseRepository {
	return &caseRepository{pool: pool}
}

const caseColumns = `id, tracking_code, category, subject, description, submitter_name,
               submitter_email, submitter_phone, attachment_ref, status, filed_at,
               response_due, closed_at, days_remaining, traffic_light, responsible_area,
               assignee_staff_id, created_at, updated_at`

func (r *caseRepository) CreateWithHistory(ctx context.Context, c *domain.Case, entry *domain.HistoryEntry) error {
	return WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		const query = `
        INSERT INTO cases (tracking_code, category, subject, description, submitter_name,
            submitter_email, submitter_phone, attachment_ref, status, filed_at, response_due,
            days_remaining, traffic_light, responsible_area, assignee_staff_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
        RETURNING id, created_at, updated_at`
		if err := tx.QueryRow(ctx, query,
			c.TrackingCode,
			c.Category,
			c.Subject,
			c.Description,
			c.SubmitterName,
			c.SubmitterEmail,
			c.SubmitterPhone,
			c.AttachmentRef,
			c.Status,
			c.FiledAt,
			c.ResponseDue,
			c.DaysRemaining,
			c.TrafficLight,
			c.ResponsibleArea,
			c.AssigneeID,
		).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return err
		}
		entry.CaseID = c.ID
		return insertHistory(ctx, tx, entry)
	})
}

func (r *caseRepository) UpdateWithHistory(ctx context.Context, c *domain.Case, entry *domain.HistoryEntry) error {
	return WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := updateCase(ctx, tx, c); err != nil {
			return err
		}
		entry.CaseID = c.ID
		return insertHistory(ctx, tx, entry)
	})
}

func (r *caseRepository) Update(ctx context.Context, c *domain.Case) error {
	return updateCase(ctx, r.pool, c)
}

func updateCase(ctx context.Context, q rowQuerier, c *domain.Case) error {
	const query = `
        UPDATE cases SET status=$1, closed_at=$2, days_remaining=$3, traffic_light=$4,
            responsible_area=$5, assignee_staff_id=$6, updated_at=NOW()
        WHERE id=$7
        RETURNING updated_at`
	return q.QueryRow(ctx, query,
		c.Status,
		c.ClosedAt,
		c.DaysRemaining,
		c.TrafficLight,
		c.ResponsibleArea,
		c.AssigneeID,
		c.ID,
	).Scan(&c.UpdatedAt)
}

func (r *caseRepository) GetByID(ctx context.Context, id string) (*domain.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *caseRepository) GetByTrackingCode(ctx context.Context, code string) (*domain.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE tracking_code=$1`
	return r.fetchSingle(ctx, query, code)
}

func (r *caseRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Case, error) {
	var c domain.Case
	if err := scanCase(r.pool.QueryRow(ctx, query, arg), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *caseRepository) ListWithFilter(ctx context.Context, filter CaseFilter) ([]domain.Case, error) {
	base := `SELECT ` + caseColumns + ` FROM cases`
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Categories) > 0 {
		placeholders := make([]string, len(filter.Categories))
		for i, category := range filter.Categories {
			args = append(args, category)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("category IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.TrafficLights) > 0 {
		placeholders := make([]string, len(filter.TrafficLights))
		for i, light := range filter.TrafficLights {
			args = append(args, light)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("traffic_light IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("assignee_staff_id=$%d", len(args)))
	}
	if filter.Area != nil {
		args = append(args, *filter.Area)
		clauses = append(clauses, fmt.Sprintf("responsible_area=$%d", len(args)))
	}
	if filter.FiledFrom != nil {
		args = append(args, *filter.FiledFrom)
		clauses = append(clauses, fmt.Sprintf("filed_at >= $%d", len(args)))
	}
	if filter.FiledTo != nil {
		args = append(args, *filter.FiledTo)
		clauses = append(clauses, fmt.Sprintf("filed_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(subject) LIKE %s OR LOWER(submitter_name) LIKE %s OR LOWER(tracking_code) LIKE %s)", placeholder, placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY filed_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCases(rows)
}

func scanCase(row pgx.Row, c *domain.Case) error {
	return row.Scan(
		&c.ID,
		&c.TrackingCode,
		&c.Category,
		&c.Subject,
		&c.Description,
		&c.SubmitterName,
		&c.SubmitterEmail,
		&c.SubmitterPhone,
		&c.AttachmentRef,
		&c.Status,
		&c.FiledAt,
		&c.ResponseDue,
		&c.ClosedAt,
		&c.DaysRemaining,
		&c.TrafficLight,
		&c.ResponsibleArea,
		&c.AssigneeID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
}

func scanCases(rows pgx.Rows) ([]domain.Case, error) {
	var result []domain.Case
	for rows.Next() {
		var c domain.Case
		if err := scanCase(rows, &c); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}
