package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Append(ctx context.Context, e Entry) error {
	details, err := json.Marshal(e.Details)
	if err != nil {
		return fmt.Errorf("marshal details: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, actor_id, actor_type, action, resource, resource_id, status, severity, category, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		e.ID, e.ActorID, e.ActorType, e.Action, e.Resource, e.ResourceID, e.Status, e.Severity, e.Category, details, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// SecurityEvents returns entries that are security-relevant by any of three
// signals: a rejection status, critical severity, or a security action name.
func (r *PostgresRepo) SecurityEvents(ctx context.Context, f SecurityFilter) ([]Entry, error) {
	q := psql.Select("id", "actor_id", "actor_type", "action", "resource", "resource_id",
		"status", "severity", "category", "details", "created_at").
		From("audit_logs").
		Where(sq.Or{
			sq.Eq{"status": []Status{StatusUnauthorized, StatusForbidden}},
			sq.Eq{"severity": SeverityCritical},
			sq.Eq{"action": SecurityActions},
		}).
		OrderBy("created_at DESC")

	if f.ActorID != "" {
		q = q.Where(sq.Eq{"actor_id": f.ActorID})
	}
	if f.Action != "" {
		q = q.Where(sq.Eq{"action": f.Action})
	}
	if f.Status != "" {
		q = q.Where(sq.Eq{"status": f.Status})
	}
	if f.Severity != "" {
		q = q.Where(sq.Eq{"severity": f.Severity})
	}
	if !f.Since.IsZero() {
		q = q.Where(sq.GtOrEq{"created_at": f.Since})
	}
	if !f.Until.IsZero() {
		q = q.Where(sq.Lt{"created_at": f.Until})
	}
	q = q.Limit(uint64(f.Limit))

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build security events query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query security events: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var details []byte
		if err := rows.Scan(&e.ID, &e.ActorID, &e.ActorType, &e.Action, &e.Resource, &e.ResourceID,
			&e.Status, &e.Severity, &e.Category, &details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &e.Details); err != nil {
				return nil, fmt.Errorf("unmarshal details: %w", err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) ActivitySummary(ctx context.Context, actorID string, since, until time.Time) ([]ActivityGroup, error) {
	q := psql.Select(
		"action",
		"resource",
		"COUNT(*) AS total_attempts",
		"COUNT(*) FILTER (WHERE status = 'success') AS successful_attempts",
		"COUNT(*) FILTER (WHERE status <> 'success') AS failed_attempts",
		"MAX(created_at) AS last_activity_at",
	).
		From("audit_logs").
		Where(sq.Eq{"actor_id": actorID}).
		GroupBy("action", "resource").
		OrderBy("last_activity_at DESC")

	if !since.IsZero() {
		q = q.Where(sq.GtOrEq{"created_at": since})
	}
	if !until.IsZero() {
		q = q.Where(sq.Lt{"created_at": until})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build activity summary query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query activity summary: %w", err)
	}
	defer rows.Close()

	var out []ActivityGroup
	for rows.Next() {
		var g ActivityGroup
		if err := rows.Scan(&g.Action, &g.Resource, &g.TotalAttempts, &g.SuccessfulAttempts, &g.FailedAttempts, &g.LastActivityAt); err != nil {
			return nil, fmt.Errorf("scan activity group: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge audit logs: %w", err)
	}
	return res.RowsAffected()
}
