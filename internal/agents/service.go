package agents

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("agents: not found")
	ErrSlugTaken       = errors.New("agents: slug already in use")
	ErrInvalidArgument = errors.New("agents: invalid argument")
)

type Repository interface {
	Create(ctx context.Context, a Agent) error
	GetByID(ctx context.Context, id string) (Agent, error)
	List(ctx context.Context, clientID string) ([]Agent, error)
	Update(ctx context.Context, a Agent) error
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
	ProviderAgentID string `json:"provider_agent_id"`
	Name            string `json:"name"`
	Slug            string `json:"slug"`
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (Agent, error) {
	req.ProviderAgentID = strings.TrimSpace(req.ProviderAgentID)
	req.Name = strings.TrimSpace(req.Name)
	if req.ProviderAgentID == "" || req.Name == "" {
		return Agent{}, ErrInvalidArgument
	}

	slug := strings.TrimSpace(req.Slug)
	if slug == "" {
		slug = Slugify(req.Name)
	}
	if slug == "" {
		return Agent{}, ErrInvalidArgument
	}

	now := s.clock().UTC()
	a := Agent{
		ID:              uuid.NewString(),
		ProviderAgentID: req.ProviderAgentID,
		Name:            req.Name,
		Slug:            slug,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return Agent{}, err
	}
	return a, nil
}

func (s *Service) Get(ctx context.Context, id string) (Agent, error) {
	if id == "" {
		return Agent{}, ErrInvalidArgument
	}
	return s.repo.GetByID(ctx, id)
}

// List returns all agents, or only those assigned to clientID when set.
func (s *Service) List(ctx context.Context, clientID string) ([]Agent, error) {
	return s.repo.List(ctx, clientID)
}

type UpdateRequest struct {
	Name *string `json:"name"`
	Slug *string `json:"slug"`
}

func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (Agent, error) {
	if id == "" {
		return Agent{}, ErrInvalidArgument
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Agent{}, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return Agent{}, ErrInvalidArgument
		}
		a.Name = name
	}
	if req.Slug != nil {
		slug := strings.TrimSpace(*req.Slug)
		if slug == "" {
			return Agent{}, ErrInvalidArgument
		}
		a.Slug = slug
	}
	a.UpdatedAt = s.clock().UTC()

	if err := s.repo.Update(ctx, a); err != nil {
		return Agent{}, err
	}
	return a, nil
}

// AssignClient reassigns the agent; an empty clientID clears the assignment.
func (s *Service) AssignClient(ctx context.Context, id, clientID string) (Agent, error) {
	if id == "" {
		return Agent{}, ErrInvalidArgument
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Agent{}, err
	}

	if clientID == "" {
		a.ClientID = nil
	} else {
		a.ClientID = &clientID
	}
	a.UpdatedAt = s.clock().UTC()

	if err := s.repo.Update(ctx, a); err != nil {
		return Agent{}, err
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidArgument
	}
	return s.repo.Delete(ctx, id)
}
