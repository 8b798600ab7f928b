package campaigns

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("campaigns: not found")
	ErrInvalidArgument = errors.New("campaigns: invalid argument")
)

// Repository is scoped by client on every read/write; a campaign is only
// visible to its owning client.
type Repository interface {
	Create(ctx context.Context, c Campaign) error
	GetByID(ctx context.Context, clientID, id string) (Campaign, error)
	List(ctx context.Context, clientID string) ([]Campaign, error)
	Update(ctx context.Context, c Campaign) error
	// Publish sets status to published and increments published_version in a
	// single statement; returns the updated row.
	Publish(ctx context.Context, clientID, id string, now time.Time) (Campaign, error)
	Delete(ctx context.Context, clientID, id string) error
}

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

type CreateRequest struct {
	AgentID string `json:"agent_id"`
	Name    string `json:"name"`
	Prompt  string `json:"prompt"`
}

func (s *Service) Create(ctx context.Context, clientID string, req CreateRequest) (Campaign, error) {
	req.AgentID = strings.TrimSpace(req.AgentID)
	req.Name = strings.TrimSpace(req.Name)
	if clientID == "" || req.AgentID == "" || req.Name == "" {
		return Campaign{}, ErrInvalidArgument
	}

	now := s.clock().UTC()
	c := Campaign{
		ID:        uuid.NewString(),
		ClientID:  clientID,
		AgentID:   req.AgentID,
		Name:      req.Name,
		Status:    StatusDraft,
		Prompt:    req.Prompt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return Campaign{}, err
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, clientID, id string) (Campaign, error) {
	if clientID == "" || id == "" {
		return Campaign{}, ErrInvalidArgument
	}
	return s.repo.GetByID(ctx, clientID, id)
}

func (s *Service) List(ctx context.Context, clientID string) ([]Campaign, error) {
	if clientID == "" {
		return nil, ErrInvalidArgument
	}
	return s.repo.List(ctx, clientID)
}

type UpdateRequest struct {
	Name    *string `json:"name"`
	Prompt  *string `json:"prompt"`
	AgentID *string `json:"agent_id"`
}

func (s *Service) Update(ctx context.Context, clientID, id string, req UpdateRequest) (Campaign, error) {
	if clientID == "" || id == "" {
		return Campaign{}, ErrInvalidArgument
	}
	c, err := s.repo.GetByID(ctx, clientID, id)
	if err != nil {
		return Campaign{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return Campaign{}, ErrInvalidArgument
		}
		c.Name = name
	}
	if req.Prompt != nil {
		c.Prompt = *req.Prompt
	}
	if req.AgentID != nil {
		agentID := strings.TrimSpace(*req.AgentID)
		if agentID == "" {
			return Campaign{}, ErrInvalidArgument
		}
		c.AgentID = agentID
	}
	c.UpdatedAt = s.clock().UTC()

	if err := s.repo.Update(ctx, c); err != nil {
		return Campaign{}, err
	}
	return c, nil
}

// Publish transitions draft -> published. Calling it on an already published
// campaign keeps the status and still bumps the version counter.
func (s *Service) Publish(ctx context.Context, clientID, id string) (Campaign, error) {
	if clientID == "" || id == "" {
		return Campaign{}, ErrInvalidArgument
	}
	return s.repo.Publish(ctx, clientID, id, s.clock().UTC())
}

func (s *Service) Delete(ctx context.Context, clientID, id string) error {
	if clientID == "" || id == "" {
		return ErrInvalidArgument
	}
	return s.repo.Delete(ctx, clientID, id)
}
