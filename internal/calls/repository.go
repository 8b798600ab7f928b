package calls

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("calls: not found")
	ErrInvalidArgument = errors.New("calls: invalid argument")
)

// ListFilter narrows List results. Zero values mean "no constraint".
type ListFilter struct {
	CampaignID  string
	BatchCallID string
	Status      Status
	Since       time.Time
	Until       time.Time
	Limit       int
}

type Repository interface {
	Insert(ctx context.Context, c Call) error
	GetByID(ctx context.Context, id string) (Call, error)
	List(ctx context.Context, f ListFilter) ([]Call, error)
}
