package clients

import (
	"context"
	"database/sql"
	"errors"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Create(ctx context.Context, c Client) error {
	const q = `
INSERT INTO clients (id, name, contact_email, active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6)
`
	_, err := r.db.ExecContext(ctx, q, c.ID, c.Name, c.ContactEmail, c.Active, c.CreatedAt, c.UpdatedAt)
	return err
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Client, error) {
	const q = `
SELECT id, name, contact_email, active, created_at, updated_at
FROM clients
WHERE id = $1
`
	var c Client
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&c.ID, &c.Name, &c.ContactEmail, &c.Active, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Client{}, ErrNotFound
	}
	return c, err
}

func (r *PostgresRepo) List(ctx context.Context) ([]Client, error) {
	const q = `
SELECT id, name, contact_email, active, created_at, updated_at
FROM clients
ORDER BY created_at DESC
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Client, 0)
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.Name, &c.ContactEmail, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Update(ctx context.Context, c Client) error {
	const q = `
UPDATE clients
SET name = $2, contact_email = $3, active = $4, updated_at = $5
WHERE id = $1
`
	res, err := r.db.ExecContext(ctx, q, c.ID, c.Name, c.ContactEmail, c.Active, c.UpdatedAt)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
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
