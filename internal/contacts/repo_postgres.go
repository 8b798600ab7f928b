package contacts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"voicecampaign-platform/pkg/utils"

	sq "github.com/Masterminds/squirrel"
)

// PostgresRepo stores contacts with dynamic_variables as JSONB.
// Duplicate protection comes from UNIQUE (campaign_id, phone_number).
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const contactColumns = "id, campaign_id, phone_number, dynamic_variables, call_status, attempts, created_at, updated_at"

func (r *PostgresRepo) Create(ctx context.Context, c Contact) error {
	vars, err := json.Marshal(c.DynamicVariables)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO contacts (id, campaign_id, phone_number, dynamic_variables, call_status, attempts, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`
	_, err = r.db.ExecContext(ctx, q,
		c.ID, c.CampaignID, c.Phone, vars, c.CallStatus, c.Attempts, c.CreatedAt, c.UpdatedAt,
	)
	if utils.IsUniqueViolation(err) {
		return ErrDuplicatePhone
	}
	return err
}

func (r *PostgresRepo) GetByID(ctx context.Context, campaignID, id string) (Contact, error) {
	const q = `
SELECT id, campaign_id, phone_number, dynamic_variables, call_status, attempts, created_at, updated_at
FROM contacts
WHERE campaign_id = $1 AND id = $2
`
	c, err := scanContact(r.db.QueryRowContext(ctx, q, campaignID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Contact{}, ErrNotFound
	}
	return c, err
}

func (r *PostgresRepo) List(ctx context.Context, campaignID string, status CallStatus) ([]Contact, error) {
	b := psql.Select(contactColumns).From("contacts").
		Where(sq.Eq{"campaign_id": campaignID}).
		OrderBy("created_at ASC")
	if status != "" {
		b = b.Where(sq.Eq{"call_status": status})
	}
	q, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) CountByStatus(ctx context.Context, campaignID string, status CallStatus) (int, error) {
	b := psql.Select("COUNT(*)").From("contacts").Where(sq.Eq{"campaign_id": campaignID})
	if status != "" {
		b = b.Where(sq.Eq{"call_status": status})
	}
	q, args, err := b.ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *PostgresRepo) Update(ctx context.Context, c Contact) error {
	vars, err := json.Marshal(c.DynamicVariables)
	if err != nil {
		return err
	}
	const q = `
UPDATE contacts
SET phone_number = $3, dynamic_variables = $4, updated_at = $5
WHERE campaign_id = $1 AND id = $2
`
	res, err := r.db.ExecContext(ctx, q, c.CampaignID, c.ID, c.Phone, vars, c.UpdatedAt)
	if utils.IsUniqueViolation(err) {
		return ErrDuplicatePhone
	}
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PostgresRepo) MarkDialing(ctx context.Context, campaignID string, ids []string, now time.Time) error {
	q, args, err := psql.Update("contacts").
		Set("call_status", CallStatusInProgress).
		Set("attempts", sq.Expr("attempts + 1")).
		Set("updated_at", now).
		Where(sq.Eq{"campaign_id": campaignID, "id": ids}).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, q, args...)
	return err
}

func (r *PostgresRepo) SetCallStatus(ctx context.Context, campaignID, id string, status CallStatus, now time.Time) error {
	const q = `
UPDATE contacts
SET call_status = $3, updated_at = $4
WHERE campaign_id = $1 AND id = $2
`
	res, err := r.db.ExecContext(ctx, q, campaignID, id, status, now)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PostgresRepo) Delete(ctx context.Context, campaignID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE campaign_id = $1 AND id = $2`, campaignID, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (Contact, error) {
	var c Contact
	var vars []byte
	if err := row.Scan(
		&c.ID, &c.CampaignID, &c.Phone, &vars, &c.CallStatus, &c.Attempts, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return Contact{}, err
	}
	if len(vars) > 0 {
		if err := json.Unmarshal(vars, &c.DynamicVariables); err != nil {
			return Contact{}, err
		}
	}
	if c.DynamicVariables == nil {
		c.DynamicVariables = map[string]string{}
	}
	return c, nil
}
