package agents

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

const agentColumns = "id, provider_agent_id, name, slug, client_id, created_at, updated_at"

func (r *PostgresRepo) Create(ctx context.Context, a Agent) error {
	const q = `
INSERT INTO agents (id, provider_agent_id, name, slug, client_id, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`
	_, err := r.db.ExecContext(ctx, q, a.ID, a.ProviderAgentID, a.Name, a.Slug, a.ClientID, a.CreatedAt, a.UpdatedAt)
	if utils.IsUniqueViolation(err) {
		return ErrSlugTaken
	}
	return err
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (Agent, error) {
	const q = `
SELECT id, provider_agent_id, name, slug, client_id, created_at, updated_at
FROM agents
WHERE id = $1
`
	var a Agent
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&a.ID, &a.ProviderAgentID, &a.Name, &a.Slug, &a.ClientID, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Agent{}, ErrNotFound
	}
	return a, err
}

func (r *PostgresRepo) List(ctx context.Context, clientID string) ([]Agent, error) {
	b := psql.Select(agentColumns).From("agents").OrderBy("created_at DESC")
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

	out := make([]Agent, 0)
	for rows.Next() {
		var a Agent
		if err := rows.Scan(&a.ID, &a.ProviderAgentID, &a.Name, &a.Slug, &a.ClientID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Update(ctx context.Context, a Agent) error {
	const q = `
UPDATE agents
SET provider_agent_id = $2, name = $3, slug = $4, client_id = $5, updated_at = $6
WHERE id = $1
`
	res, err := r.db.ExecContext(ctx, q, a.ID, a.ProviderAgentID, a.Name, a.Slug, a.ClientID, a.UpdatedAt)
	if utils.IsUniqueViolation(err) {
		return ErrSlugTaken
	}
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

func (r *PostgresRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM agents WHERE id = $1`, id)
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
