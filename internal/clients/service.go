package clients

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("clients: not found")
	ErrInvalidArgument = errors.New("clients: invalid argument")
)

type Repository interface {
	Create(ctx context.Context, c Client) error
	GetByID(ctx context.Context, id string) (Client, error)
	List(ctx context.Context) ([]Client, error)
	Update(ctx context.Context, c Client) error
	Delete(ctx context.Context, id string) error
}

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

type CreateRequest struct {
	Name         string `json:"name"`
	ContactEmail string `json:"contact_email"`
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (Client, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return Client{}, ErrInvalidArgument
	}

	now := s.clock().UTC()
	c := Client{
		ID:           uuid.NewString(),
		Name:         req.Name,
		ContactEmail: strings.TrimSpace(req.ContactEmail),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return Client{}, err
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, id string) (Client, error) {
	if id == "" {
		return Client{}, ErrInvalidArgument
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Client, error) {
	return s.repo.List(ctx)
}

type UpdateRequest struct {
	Name         *string `json:"name"`
	ContactEmail *string `json:"contact_email"`
	Active       *bool   `json:"active"`
}

func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (Client, error) {
	if id == "" {
		return Client{}, ErrInvalidArgument
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Client{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return Client{}, ErrInvalidArgument
		}
		c.Name = name
	}
	if req.ContactEmail != nil {
		c.ContactEmail = strings.TrimSpace(*req.ContactEmail)
	}
	if req.Active != nil {
		c.Active = *req.Active
	}
	c.UpdatedAt = s.clock().UTC()

	if err := s.repo.Update(ctx, c); err != nil {
		return Client{}, err
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidArgument
	}
	return s.repo.Delete(ctx, id)
}
