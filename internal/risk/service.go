package risk

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mariel-soto/brewhaus-backend/pkg/db/models"
	pkgerrors "github.com/mariel-soto/brewhaus-backend/pkg/errors"
)

// Restriction thresholds. Crossing either flips the entry active and blocks
// future checkouts until an operator releases it.
const (
	CancellationThreshold = 5
	NoShowThreshold       = 3
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service tracks customer reliability and gates checkout.
type Service interface {
	IsRestricted(ctx context.Context, customerID uuid.UUID, email, phone *string) (bool, error)
	RecordCancellation(ctx context.Context, tx *gorm.DB, customerID uuid.UUID, email, phone *string) error
	RecordNoShow(ctx context.Context, tx *gorm.DB, customerID uuid.UUID, email, phone *string) error
	ListActive(ctx context.Context) ([]models.BlacklistEntry, error)
	Release(ctx context.Context, entryID uuid.UUID) error
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService wires risk dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("risk repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) IsRestricted(ctx context.Context, customerID uuid.UUID, email, phone *string) (bool, error) {
	_, err := s.repo.FindActiveMatch(ctx, customerID, email, phone)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check blacklist")
	}
	return true, nil
}

type counterBump struct {
	column    string
	threshold int64
	reason    string
	seed      func(*models.BlacklistEntry)
	count     func(*models.BlacklistEntry) int64
}

func (s *service) RecordCancellation(ctx context.Context, tx *gorm.DB, customerID uuid.UUID, email, phone *string) error {
	return s.record(ctx, tx, customerID, email, phone, counterBump{
		column:    "cancellation_count",
		threshold: CancellationThreshold,
		reason:    "multiple cancellations",
		seed:      func(e *models.BlacklistEntry) { e.CancellationCount = 1 },
		count:     func(e *models.BlacklistEntry) int64 { return e.CancellationCount },
	})
}

func (s *service) RecordNoShow(ctx context.Context, tx *gorm.DB, customerID uuid.UUID, email, phone *string) error {
	return s.record(ctx, tx, customerID, email, phone, counterBump{
		column:    "no_show_count",
		threshold: NoShowThreshold,
		reason:    "repeated no-shows",
		seed:      func(e *models.BlacklistEntry) { e.NoShowCount = 1 },
		count:     func(e *models.BlacklistEntry) int64 { return e.NoShowCount },
	})
}

// record bumps the counter with a relative UPDATE, never read-modify-write, so
// two concurrent cancellations for the same customer both land.
func (s *service) record(ctx context.Context, tx *gorm.DB, customerID uuid.UUID, email, phone *string, bump counterBump) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for risk counters")
	}

	repo := s.repo.WithTx(tx)

	bumped, err := repo.Increment(ctx, customerID, bump.column)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bump risk counter")
	}
	if !bumped {
		cid := customerID
		entry := &models.BlacklistEntry{
			ID:         uuid.New(),
			CustomerID: &cid,
			Email:      email,
			Phone:      phone,
		}
		bump.seed(entry)
		if err := repo.Create(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create blacklist entry")
		}
		return nil
	}

	entry, err := repo.FindByCustomer(ctx, customerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load blacklist entry")
	}
	if bump.count(entry) >= bump.threshold && !entry.Active {
		if err := repo.Activate(ctx, customerID, bump.reason); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restrict customer")
		}
	}
	return nil
}

func (s *service) ListActive(ctx context.Context) ([]models.BlacklistEntry, error) {
	entries, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list blacklist")
	}
	return entries, nil
}

func (s *service) Release(ctx context.Context, entryID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		released, err := s.repo.WithTx(tx).Deactivate(ctx, entryID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release blacklist entry")
		}
		if !released {
			return pkgerrors.New(pkgerrors.CodeNotFound, "active blacklist entry not found")
		}
		return nil
	})
}
