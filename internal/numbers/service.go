package numbers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("numbers: not found")
	ErrNumberTaken     = errors.New("numbers: number already registered")
	ErrInvalidArgument = errors.New("numbers: invalid argument")
)

type Repository interface {
	Create(ctx context.Context, n PhoneNumber) error
	GetByID(ctx context.Context, id string) (PhoneNumber, error)
	List(ctx context.Context, clientID string) ([]PhoneNumber, error)
	Update(ctx context.Context, n PhoneNumber) error
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
	Number           string `json:"number"`
	ProviderNumberID string `json:"provider_number_id"`
	ClientID         string `json:"client_id"`
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (PhoneNumber, error) {
	num, ok := NormalizeE164(req.Number)
	if !ok {
		return PhoneNumber{}, ErrInvalidArgument
	}

	now := s.clock().UTC()
	n := PhoneNumber{
		ID:               uuid.NewString(),
		Number:           num,
		ProviderNumberID: strings.TrimSpace(req.ProviderNumberID),
		Active:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if req.ClientID != "" {
		cid := req.ClientID
		n.ClientID = &cid
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return PhoneNumber{}, err
	}
	return n, nil
}

func (s *Service) Get(ctx context.Context, id string) (PhoneNumber, error) {
	if id == "" {
		return PhoneNumber{}, ErrInvalidArgument
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, clientID string) ([]PhoneNumber, error) {
	return s.repo.List(ctx, clientID)
}

// AssignClient moves the number to a client's pool; empty clears it.
func (s *Service) AssignClient(ctx context.Context, id, clientID string) (PhoneNumber, error) {
	if id == "" {
		return PhoneNumber{}, ErrInvalidArgument
	}
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return PhoneNumber{}, err
	}

	if clientID == "" {
		n.ClientID = nil
	} else {
		n.ClientID = &clientID
	}
	n.UpdatedAt = s.clock().UTC()

	if err := s.repo.Update(ctx, n); err != nil {
		return PhoneNumber{}, err
	}
	return n, nil
}

func (s *Service) SetActive(ctx context.Context, id string, active bool) (PhoneNumber, error) {
	if id == "" {
		return PhoneNumber{}, ErrInvalidArgument
	}
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return PhoneNumber{}, err
	}
	n.Active = active
	n.UpdatedAt = s.clock().UTC()
	if err := s.repo.Update(ctx, n); err != nil {
		return PhoneNumber{}, err
	}
	return n, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidArgument
	}
	return s.repo.Delete(ctx, id)
}
