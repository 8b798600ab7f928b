package calls

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

const callColumns = "id, campaign_id, contact_id, batch_call_id, to_number, status, duration_seconds, provider_call_id, created_at"

func (r *PostgresRepo) Insert(ctx context.Context, c Call) error {
	if !c.Status.Valid() {
		return ErrInvalidArgument
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO calls (`+callColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.CampaignID, c.ContactID, c.BatchCallID, c.To, c.Status, c.DurationSeconds, c.ProviderCallID, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert call: %w", err)
	}
	return nil
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Call, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+callColumns+` FROM calls WHERE id = $1`, id)
	c, err := scanCall(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Call{}, ErrNotFound
	}
	if err != nil {
		return Call{}, fmt.Errorf("get call: %w", err)
	}
	return c, nil
}

func (r *PostgresRepo) List(ctx context.Context, f ListFilter) ([]Call, error) {
	q := psql.Select("id", "campaign_id", "contact_id", "batch_call_id", "to_number",
		"status", "duration_seconds", "provider_call_id", "created_at").
		From("calls").
		OrderBy("created_at DESC")

	if f.CampaignID != "" {
		q = q.Where(sq.Eq{"campaign_id": f.CampaignID})
	}
	if f.BatchCallID != "" {
		q = q.Where(sq.Eq{"batch_call_id": f.BatchCallID})
	}
	if f.Status != "" {
		q = q.Where(sq.Eq{"status": f.Status})
	}
	if !f.Since.IsZero() {
		q = q.Where(sq.GtOrEq{"created_at": f.Since})
	}
	if !f.Until.IsZero() {
		q = q.Where(sq.Lt{"created_at": f.Until})
	}
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q = q.Limit(uint64(limit))

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list calls: %w", err)
	}
	defer rows.Close()

	var out []Call
	for rows.Next() {
		c, err := scanCall(rows)
		if err != nil {
			return nil, fmt.Errorf("scan call: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCall(row rowScanner) (Call, error) {
	var c Call
	err := row.Scan(&c.ID, &c.CampaignID, &c.ContactID, &c.BatchCallID, &c.To,
		&c.Status, &c.DurationSeconds, &c.ProviderCallID, &c.CreatedAt)
	return c, err
}
