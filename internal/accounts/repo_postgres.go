package accounts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"voicecampaign-platform/pkg/utils"

	sq "github.com/Masterminds/squirrel"
)

// PostgresRepo persists user accounts in the users table.
// Permissions are stored as JSONB.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const userColumns = "id, name, email, password_hash, role, permissions, client_id, active, last_login_at, created_at, updated_at"

func (r *PostgresRepo) Create(ctx context.Context, u User) error {
	perms, err := json.Marshal(u.Permissions)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO users (id, name, email, password_hash, role, permissions, client_id, active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`
	_, err = r.db.ExecContext(ctx, q,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, perms, u.ClientID, u.Active, u.CreatedAt, u.UpdatedAt,
	)
	if utils.IsUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (User, error) {
	return r.getWhere(ctx, sq.Eq{"id": id})
}

func (r *PostgresRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.getWhere(ctx, sq.Eq{"email": email})
}

func (r *PostgresRepo) getWhere(ctx context.Context, pred any) (User, error) {
	q, args, err := psql.Select(userColumns).From("users").Where(pred).Limit(1).ToSql()
	if err != nil {
		return User{}, err
	}
	u, err := scanUser(r.db.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (r *PostgresRepo) List(ctx context.Context, role string) ([]User, error) {
	b := psql.Select(userColumns).From("users").OrderBy("created_at DESC")
	if role != "" {
		b = b.Where(sq.Eq{"role": role})
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

	out := make([]User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) UpdatePassword(ctx context.Context, id, passwordHash string, now time.Time) error {
	const q = `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`
	return r.execOne(ctx, q, id, passwordHash, now)
}

func (r *PostgresRepo) TouchLastLogin(ctx context.Context, id string, now time.Time) error {
	const q = `UPDATE users SET last_login_at = $2, updated_at = $2 WHERE id = $1`
	return r.execOne(ctx, q, id, now)
}

func (r *PostgresRepo) SetActive(ctx context.Context, id string, active bool, now time.Time) error {
	const q = `UPDATE users SET active = $2, updated_at = $3 WHERE id = $1`
	return r.execOne(ctx, q, id, active, now)
}

func (r *PostgresRepo) execOne(ctx context.Context, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var u User
	var perms []byte
	var clientID sql.NullString
	var lastLogin sql.NullTime
	if err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &perms, &clientID, &u.Active, &lastLogin, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return User{}, err
	}
	if clientID.Valid {
		s := clientID.String
		u.ClientID = &s
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}
	if len(perms) > 0 {
		if err := json.Unmarshal(perms, &u.Permissions); err != nil {
			return User{}, err
		}
	}
	if u.Permissions == nil {
		u.Permissions = []string{}
	}
	return u, nil
}
