package campaigns

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Create(ctx context.Context, c Campaign) error {
	const q = `
INSERT INTO campaigns (id, client_id, agent_id, name, status, prompt, published_version, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
`
	_, err := r.db.ExecContext(ctx, q,
		c.ID, c.ClientID, c.AgentID, c.Name, c.Status, c.Prompt, c.PublishedVersion, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (r *PostgresRepo) GetByID(ctx context.Context, clientID, id string) (Campaign, error) {
	const q = `
SELECT id, client_id, agent_id, name, status, prompt, published_version, created_at, updated_at
FROM campaigns
WHERE client_id = $1 AND id = $2
`
	var c Campaign
	err := r.db.QueryRowContext(ctx, q, clientID, id).Scan(
		&c.ID, &c.ClientID, &c.AgentID, &c.Name, &c.Status, &c.Prompt, &c.PublishedVersion, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Campaign{}, ErrNotFound
	}
	return c, err
}

func (r *PostgresRepo) List(ctx context.Context, clientID string) ([]Campaign, error) {
	const q = `
SELECT id, client_id, agent_id, name, status, prompt, published_version, created_at, updated_at
FROM campaigns
WHERE client_id = $1
ORDER BY created_at DESC
`
	rows, err := r.db.QueryContext(ctx, q, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Campaign, 0)
	for rows.Next() {
		var c Campaign
		if err := rows.Scan(&c.ID, &c.ClientID, &c.AgentID, &c.Name, &c.Status, &c.Prompt, &c.PublishedVersion, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Update(ctx context.Context, c Campaign) error {
	const q = `
UPDATE campaigns
SET agent_id = $3, name = $4, prompt = $5, updated_at = $6
WHERE client_id = $1 AND id = $2
`
	res, err := r.db.ExecContext(ctx, q, c.ClientID, c.ID, c.AgentID, c.Name, c.Prompt, c.UpdatedAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Publish relies on the store's per-row atomicity: status flip and counter
// bump happen in one statement, so concurrent publishes each count once.
func (r *PostgresRepo) Publish(ctx context.Context, clientID, id string, now time.Time) (Campaign, error) {
	const q = `
UPDATE campaigns
SET status = 'published', published_version = published_version + 1, updated_at = $3
WHERE client_id = $1 AND id = $2
RETURNING id, client_id, agent_id, name, status, prompt, published_version, created_at, updated_at
`
	var c Campaign
	err := r.db.QueryRowContext(ctx, q, clientID, id, now).Scan(
		&c.ID, &c.ClientID, &c.AgentID, &c.Name, &c.Status, &c.Prompt, &c.PublishedVersion, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Campaign{}, ErrNotFound
	}
	return c, err
}

func (r *PostgresRepo) Delete(ctx context.Context, clientID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM campaigns WHERE client_id = $1 AND id = $2`, clientID, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
