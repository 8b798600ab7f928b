package contacts

import (
	"context"
	"errors"
	"time"

	"voicecampaign-platform/internal/numbers"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("contacts: not found")
	ErrDuplicatePhone  = errors.New("contacts: phone already on campaign")
	ErrInvalidArgument = errors.New("contacts: invalid argument")
)

// Repository is scoped by campaign; the HTTP layer verifies campaign
// ownership before calling in.
type Repository interface {
	Create(ctx context.Context, c Contact) error
	GetByID(ctx context.Context, campaignID, id string) (Contact, error)
	List(ctx context.Context, campaignID string, status CallStatus) ([]Contact, error)
	CountByStatus(ctx context.Context, campaignID string, status CallStatus) (int, error)
	Update(ctx context.Context, c Contact) error
	// MarkDialing flips pending contacts to in_progress and bumps attempts.
	MarkDialing(ctx context.Context, campaignID string, ids []string, now time.Time) error
	// SetCallStatus records a terminal (or provider-pushed) status change.
	SetCallStatus(ctx context.Context, campaignID, id string, status CallStatus, now time.Time) error
	Delete(ctx context.Context, campaignID, id string) error
}

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

type CreateRequest struct {
	Phone            string            `json:"phone_number"`
	DynamicVariables map[string]string `json:"dynamic_variables"`
}

func (s *Service) Create(ctx context.Context, campaignID string, req CreateRequest) (Contact, error) {
	if campaignID == "" {
		return Contact{}, ErrInvalidArgument
	}
	phone, ok := numbers.NormalizeE164(req.Phone)
	if !ok {
		return Contact{}, ErrInvalidArgument
	}

	now := s.clock().UTC()
	c := Contact{
		ID:               uuid.NewString(),
		CampaignID:       campaignID,
		Phone:            phone,
		DynamicVariables: req.DynamicVariables,
		CallStatus:       CallStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if c.DynamicVariables == nil {
		c.DynamicVariables = map[string]string{}
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return Contact{}, err
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, campaignID, id string) (Contact, error) {
	if campaignID == "" || id == "" {
		return Contact{}, ErrInvalidArgument
	}
	return s.repo.GetByID(ctx, campaignID, id)
}

// List returns campaign contacts, optionally filtered by call status.
func (s *Service) List(ctx context.Context, campaignID string, status CallStatus) ([]Contact, error) {
	if campaignID == "" {
		return nil, ErrInvalidArgument
	}
	if status != "" && !IsValidCallStatus(status) {
		return nil, ErrInvalidArgument
	}
	return s.repo.List(ctx, campaignID, status)
}

func (s *Service) Count(ctx context.Context, campaignID string, status CallStatus) (int, error) {
	if campaignID == "" {
		return 0, ErrInvalidArgument
	}
	return s.repo.CountByStatus(ctx, campaignID, status)
}

type UpdateRequest struct {
	Phone            *string            `json:"phone_number"`
	DynamicVariables *map[string]string `json:"dynamic_variables"`
}

func (s *Service) Update(ctx context.Context, campaignID, id string, req UpdateRequest) (Contact, error) {
	if campaignID == "" || id == "" {
		return Contact{}, ErrInvalidArgument
	}
	c, err := s.repo.GetByID(ctx, campaignID, id)
	if err != nil {
		return Contact{}, err
	}

	if req.Phone != nil {
		phone, ok := numbers.NormalizeE164(*req.Phone)
		if !ok {
			return Contact{}, ErrInvalidArgument
		}
		c.Phone = phone
	}
	if req.DynamicVariables != nil {
		c.DynamicVariables = *req.DynamicVariables
		if c.DynamicVariables == nil {
			c.DynamicVariables = map[string]string{}
		}
	}
	c.UpdatedAt = s.clock().UTC()

	if err := s.repo.Update(ctx, c); err != nil {
		return Contact{}, err
	}
	return c, nil
}

// MarkDialing is called when a batch call starts: each listed contact moves
// to in_progress and its attempt counter increments.
func (s *Service) MarkDialing(ctx context.Context, campaignID string, ids []string) error {
	if campaignID == "" || len(ids) == 0 {
		return ErrInvalidArgument
	}
	return s.repo.MarkDialing(ctx, campaignID, ids, s.clock().UTC())
}

func (s *Service) SetCallStatus(ctx context.Context, campaignID, id string, status CallStatus) error {
	if campaignID == "" || id == "" || !IsValidCallStatus(status) {
		return ErrInvalidArgument
	}
	return s.repo.SetCallStatus(ctx, campaignID, id, status, s.clock().UTC())
}

func (s *Service) Delete(ctx context.Context, campaignID, id string) error {
	if campaignID == "" || id == "" {
		return ErrInvalidArgument
	}
	return s.repo.Delete(ctx, campaignID, id)
}
