package numbers

import (
	"context"
	"database/sql"
	"errors"

	"voicecampaign-platform/pkg/utils"

	sq "github.com/Masterminds/squirrel"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const numberColumns = "id, number, provider_number_id, client_id, active, created_at, updated_at"

func (r *PostgresRepo) Create(ctx context.Context, n PhoneNumber) error {
	const q = `
INSERT INTO phone_numbers (id, number, provider_number_id, client_id, active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`
	_, err := r.db.ExecContext(ctx, q, n.ID, n.Number, n.ProviderNumberID, n.ClientID, n.Active, n.CreatedAt, n.UpdatedAt)
	if utils.IsUniqueViolation(err) {
		return ErrNumberTaken
	}
	return err
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (PhoneNumber, error) {
	const q = `
SELECT id, number, provider_number_id, client_id, active, created_at, updated_at
FROM phone_numbers
WHERE id = $1
`
	var n PhoneNumber
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&n.ID, &n.Number, &n.ProviderNumberID, &n.ClientID, &n.Active, &n.CreatedAt, &n.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return PhoneNumber{}, ErrNotFound
	}
	return n, err
}

func (r *PostgresRepo) List(ctx context.Context, clientID string) ([]PhoneNumber, error) {
	b := psql.Select(numberColumns).From("phone_numbers").OrderBy("created_at DESC")
	if clientID != "" {
		b = b.Where(sq.Eq{"client_id": clientID})
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

	out := make([]PhoneNumber, 0)
	for rows.Next() {
		var n PhoneNumber
		if err := rows.Scan(&n.ID, &n.Number, &n.ProviderNumberID, &n.ClientID, &n.Active, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Update(ctx context.Context, n PhoneNumber) error {
	const q = `
UPDATE phone_numbers
SET number = $2, provider_number_id = $3, client_id = $4, active = $5, updated_at = $6
WHERE id = $1
`
	res, err := r.db.ExecContext(ctx, q, n.ID, n.Number, n.ProviderNumberID, n.ClientID, n.Active, n.UpdatedAt)
	if utils.IsUniqueViolation(err) {
		return ErrNumberTaken
	}
	if err != nil {
		return err
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if cnt == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM phone_numbers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if cnt == 0 {
		return ErrNotFound
	}
	return nil
}
