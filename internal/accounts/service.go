package accounts

import (
	"context"
	"errors"
	"strings"
	"time"

	"voicecampaign-platform/internal/auth"
	"voicecampaign-platform/internal/rbac"

	"github.com/google/uuid"
)

var (
	ErrNotFound           = errors.New("accounts: not found")
	ErrEmailTaken         = errors.New("accounts: email already registered")
	ErrInvalidArgument    = errors.New("accounts: invalid argument")
	ErrInvalidCredentials = errors.New("accounts: invalid credentials")
)

// Repository is the persistence contract for user accounts.
type Repository interface {
	Create(ctx context.Context, u User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context, role string) ([]User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string, now time.Time) error
	TouchLastLogin(ctx context.Context, id string, now time.Time) error
	SetActive(ctx context.Context, id string, active bool, now time.Time) error
}

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	ClientID string `json:"client_id"`
}

const minPasswordLength = 8

// Register creates an account with a bcrypt-hashed password.
// Duplicate emails surface as ErrEmailTaken and leave the existing record
// untouched.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)

	if req.Name == "" || req.Email == "" || req.Password == "" || req.Role == "" {
		return User{}, ErrInvalidArgument
	}
	if !strings.Contains(req.Email, "@") {
		return User{}, ErrInvalidArgument
	}
	if len(req.Password) < minPasswordLength {
		return User{}, ErrInvalidArgument
	}
	if !rbac.IsValidRole(req.Role) {
		return User{}, ErrInvalidArgument
	}
	// Client accounts are tenant-scoped; admin accounts are not.
	if req.Role == rbac.RoleClient && req.ClientID == "" {
		return User{}, ErrInvalidArgument
	}
	if req.Role != rbac.RoleClient && req.ClientID != "" {
		return User{}, ErrInvalidArgument
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return User{}, err
	}

	now := s.clock().UTC()
	u := User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		Permissions:  []string{},
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if req.ClientID != "" {
		cid := req.ClientID
		u.ClientID = &cid
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Login validates credentials and returns the account. Token issuance and
// domain selection belong to the HTTP layer; this only answers "who is this".
func (s *Service) Login(ctx context.Context, email, password string) (User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return User{}, ErrInvalidArgument
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if !u.Active {
		return User{}, ErrInvalidCredentials
	}
	if err := auth.CheckPassword(u.PasswordHash, password); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

// RecordLogin updates the last-login timestamp. Best-effort for admin logins.
func (s *Service) RecordLogin(ctx context.Context, userID string) error {
	return s.repo.TouchLastLogin(ctx, userID, s.clock().UTC())
}

func (s *Service) Get(ctx context.Context, id string) (User, error) {
	if id == "" {
		return User{}, ErrInvalidArgument
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, role string) ([]User, error) {
	return s.repo.List(ctx, role)
}

func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	if userID == "" || current == "" || next == "" {
		return ErrInvalidArgument
	}
	if len(next) < minPasswordLength {
		return ErrInvalidArgument
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := auth.CheckPassword(u.PasswordHash, current); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, userID, hash, s.clock().UTC())
}

func (s *Service) SetActive(ctx context.Context, userID string, active bool) error {
	if userID == "" {
		return ErrInvalidArgument
	}
	return s.repo.SetActive(ctx, userID, active, s.clock().UTC())
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
