package credits

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"voicecampaign-platform/pkg/utils"

	"github.com/google/uuid"
)

// Service provides credit operations.
//
// Invariants:
// - No balance update without a ledger entry.
// - Ledger is append-only.
// - All posting operations run in a DB transaction with the client row locked.
type Service struct {
	db    *sql.DB
	clock func() time.Time
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db, clock: time.Now}
}

var (
	ErrNotFound           = errors.New("credits: not found")
	ErrInsufficientCredit = errors.New("credits: insufficient credit")
	ErrInvalidArgument    = errors.New("credits: invalid argument")
)

func (s *Service) GetBalance(ctx context.Context, clientID string) (Balance, error) {
	if clientID == "" {
		return Balance{}, ErrInvalidArgument
	}
	b, err := getBalance(ctx, s.db, clientID)
	if errors.Is(err, ErrNotFound) {
		// No ledger activity yet: zero balance, not an error.
		return Balance{ClientID: clientID, Minutes: 0}, nil
	}
	return b, err
}

type AdminAdjustRequest struct {
	Minutes        int64  `json:"minutes"`
	Reason         string `json:"reason"`
	IdempotencyKey string `json:"idempotency_key"`
	Metadata       string `json:"metadata,omitempty"`
}

// AdminAdjust posts a signed manual adjustment (top-up or clawback) and
// records the acting admin alongside the ledger entry.
func (s *Service) AdminAdjust(ctx context.Context, clientID, adminUserID, adminRole string, req AdminAdjustRequest) (AdminAction, Balance, error) {
	if clientID == "" || adminUserID == "" || adminRole == "" {
		return AdminAction{}, Balance{}, ErrInvalidArgument
	}
	if req.Reason == "" || req.IdempotencyKey == "" || req.Minutes == 0 {
		return AdminAction{}, Balance{}, ErrInvalidArgument
	}

	now := s.clock().UTC()
	entryType := EntryTypeCredit
	if req.Minutes < 0 {
		entryType = EntryTypeDebit
	}

	var outAction AdminAction
	var outBal Balance

	err := utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		if err := lockClient(ctx, tx, clientID); err != nil {
			return err
		}

		if existing, ok, err := findLedgerByIdempotency(ctx, tx, clientID, req.IdempotencyKey); err != nil {
			return err
		} else if ok {
			act, found, err := findAdminActionByLedger(ctx, tx, clientID, existing.ID)
			if err != nil {
				return err
			}
			if found {
				outAction = act
			}
			b, err := getBalanceTx(ctx, tx, clientID)
			if err != nil {
				return err
			}
			outBal = b
			return nil
		}

		entry := LedgerEntry{
			ID:             uuid.NewString(),
			ClientID:       clientID,
			Type:           entryType,
			Minutes:        req.Minutes,
			ExternalRef:    "admin_adjust",
			IdempotencyKey: req.IdempotencyKey,
			Metadata:       req.Metadata,
			CreatedAt:      now,
		}
		if err := insertLedger(ctx, tx, entry); err != nil {
			return err
		}

		b, err := applyBalanceDelta(ctx, tx, clientID, req.Minutes, now)
		if err != nil {
			return err
		}

		action := AdminAction{
			ID:              uuid.NewString(),
			ClientID:        clientID,
			AdminUserID:     adminUserID,
			AdminRole:       adminRole,
			Reason:          req.Reason,
			Minutes:         req.Minutes,
			RelatedLedgerID: entry.ID,
			CreatedAt:       now,
		}
		if err := insertAdminAction(ctx, tx, action); err != nil {
			return err
		}

		outAction = action
		outBal = b
		return nil
	})

	return outAction, outBal, err
}

type DebitRequest struct {
	Minutes        int64  `json:"minutes"`
	ExternalRef    string `json:"external_ref"`
	IdempotencyKey string `json:"idempotency_key"`
	Metadata       string `json:"metadata,omitempty"`
}

// DebitUsage charges call time against a client's balance. Balances may not
// go negative; callers get ErrInsufficientCredit instead.
func (s *Service) DebitUsage(ctx context.Context, clientID string, req DebitRequest) (LedgerEntry, Balance, error) {
	if clientID == "" || req.IdempotencyKey == "" {
		return LedgerEntry{}, Balance{}, ErrInvalidArgument
	}
	if req.Minutes <= 0 {
		return LedgerEntry{}, Balance{}, ErrInvalidArgument
	}

	now := s.clock().UTC()

	var outEntry LedgerEntry
	var outBal Balance

	err := utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		if err := lockClient(ctx, tx, clientID); err != nil {
			return err
		}

		if existing, ok, err := findLedgerByIdempotency(ctx, tx, clientID, req.IdempotencyKey); err != nil {
			return err
		} else if ok {
			outEntry = existing
			b, err := getBalanceTx(ctx, tx, clientID)
			if err != nil {
				return err
			}
			outBal = b
			return nil
		}

		b, err := getBalanceForUpdate(ctx, tx, clientID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if b.Minutes < req.Minutes {
			return ErrInsufficientCredit
		}

		entry := LedgerEntry{
			ID:             uuid.NewString(),
			ClientID:       clientID,
			Type:           EntryTypeDebit,
			Minutes:        -req.Minutes,
			ExternalRef:    req.ExternalRef,
			IdempotencyKey: req.IdempotencyKey,
			Metadata:       req.Metadata,
			CreatedAt:      now,
		}
		if err := insertLedger(ctx, tx, entry); err != nil {
			return err
		}

		out, err := applyBalanceDelta(ctx, tx, clientID, -req.Minutes, now)
		if err != nil {
			return err
		}
		outEntry = entry
		outBal = out
		return nil
	})

	return outEntry, outBal, err
}
