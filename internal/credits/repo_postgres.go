package credits

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// lockClient takes a row lock on the client so concurrent postings for the
// same client serialize. Also validates the client exists.
func lockClient(ctx context.Context, tx *sql.Tx, clientID string) error {
	var id string
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM clients WHERE id = $1 FOR UPDATE`, clientID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lock client: %w", err)
	}
	return nil
}

func insertLedger(ctx context.Context, tx *sql.Tx, e LedgerEntry) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO credit_ledger (id, client_id, type, minutes, external_ref, idempotency_key, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.ClientID, e.Type, e.Minutes, e.ExternalRef, e.IdempotencyKey, e.Metadata, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

func findLedgerByIdempotency(ctx context.Context, tx *sql.Tx, clientID, key string) (LedgerEntry, bool, error) {
	var e LedgerEntry
	err := tx.QueryRowContext(ctx, `
		SELECT id, client_id, type, minutes, external_ref, idempotency_key, metadata, created_at
		FROM credit_ledger
		WHERE client_id = $1 AND idempotency_key = $2`,
		clientID, key).Scan(&e.ID, &e.ClientID, &e.Type, &e.Minutes, &e.ExternalRef, &e.IdempotencyKey, &e.Metadata, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return LedgerEntry{}, false, nil
	}
	if err != nil {
		return LedgerEntry{}, false, fmt.Errorf("find ledger by idempotency key: %w", err)
	}
	return e, true, nil
}

func insertAdminAction(ctx context.Context, tx *sql.Tx, a AdminAction) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO admin_credit_actions (id, client_id, admin_user_id, admin_role, reason, minutes, related_ledger_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.ClientID, a.AdminUserID, a.AdminRole, a.Reason, a.Minutes, a.RelatedLedgerID, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert admin credit action: %w", err)
	}
	return nil
}

func findAdminActionByLedger(ctx context.Context, tx *sql.Tx, clientID, ledgerID string) (AdminAction, bool, error) {
	var a AdminAction
	err := tx.QueryRowContext(ctx, `
		SELECT id, client_id, admin_user_id, admin_role, reason, minutes, related_ledger_id, created_at
		FROM admin_credit_actions
		WHERE client_id = $1 AND related_ledger_id = $2`,
		clientID, ledgerID).Scan(&a.ID, &a.ClientID, &a.AdminUserID, &a.AdminRole, &a.Reason, &a.Minutes, &a.RelatedLedgerID, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return AdminAction{}, false, nil
	}
	if err != nil {
		return AdminAction{}, false, fmt.Errorf("find admin credit action: %w", err)
	}
	return a, true, nil
}

// applyBalanceDelta upserts the per-client balance projection and returns the
// resulting row.
func applyBalanceDelta(ctx context.Context, tx *sql.Tx, clientID string, delta int64, now time.Time) (Balance, error) {
	var b Balance
	err := tx.QueryRowContext(ctx, `
		INSERT INTO credit_balances (client_id, minutes, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (client_id)
		DO UPDATE SET minutes = credit_balances.minutes + EXCLUDED.minutes, updated_at = EXCLUDED.updated_at
		RETURNING client_id, minutes, updated_at`,
		clientID, delta, now).Scan(&b.ClientID, &b.Minutes, &b.UpdatedAt)
	if err != nil {
		return Balance{}, fmt.Errorf("apply balance delta: %w", err)
	}
	return b, nil
}

func getBalance(ctx context.Context, q querier, clientID string) (Balance, error) {
	return scanBalance(q.QueryRowContext(ctx, `
		SELECT client_id, minutes, updated_at
		FROM credit_balances
		WHERE client_id = $1`, clientID))
}

func getBalanceTx(ctx context.Context, tx *sql.Tx, clientID string) (Balance, error) {
	return getBalance(ctx, tx, clientID)
}

func getBalanceForUpdate(ctx context.Context, tx *sql.Tx, clientID string) (Balance, error) {
	return scanBalance(tx.QueryRowContext(ctx, `
		SELECT client_id, minutes, updated_at
		FROM credit_balances
		WHERE client_id = $1
		FOR UPDATE`, clientID))
}

func scanBalance(row *sql.Row) (Balance, error) {
	var b Balance
	err := row.Scan(&b.ClientID, &b.Minutes, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Balance{}, ErrNotFound
	}
	if err != nil {
		return Balance{}, fmt.Errorf("scan balance: %w", err)
	}
	return b, nil
}

// ListLedger returns the most recent ledger entries for a client, newest
// first.
func (s *Service) ListLedger(ctx context.Context, clientID string, limit int) ([]LedgerEntry, error) {
	if clientID == "" {
		return nil, ErrInvalidArgument
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, client_id, type, minutes, external_ref, idempotency_key, metadata, created_at
		FROM credit_ledger
		WHERE client_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, clientID, limit)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	defer rows.Close()

	var out []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.ID, &e.ClientID, &e.Type, &e.Minutes, &e.ExternalRef, &e.IdempotencyKey, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
