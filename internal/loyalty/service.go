package loyalty

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mariel-soto/brewhaus-backend/pkg/db/models"
	"github.com/mariel-soto/brewhaus-backend/pkg/enums"
	pkgerrors "github.com/mariel-soto/brewhaus-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// PointsForOrder converts an order total to earned points: one point per
// whole currency unit actually paid.
func PointsForOrder(totalCents int64) int64 {
	if totalCents <= 0 {
		return 0
	}
	return totalCents / 100
}

// Service manages the loyalty ledger. Award runs inside the caller's order
// completion transaction so the existence check and the insert commit together.
type Service interface {
	Award(ctx context.Context, tx *gorm.DB, customerID, orderID uuid.UUID, points int64) error
	Redeem(ctx context.Context, customerID uuid.UUID, points int64, reason string) error
	Balance(ctx context.Context, customerID uuid.UUID) (*models.LoyaltyPoints, error)
	History(ctx context.Context, customerID uuid.UUID) ([]models.LoyaltyTransaction, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService wires loyalty dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("loyalty repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// Award credits points for a completed order exactly once. A second award for
// the same order is a silent no-op, which makes completion retries safe.
func (s *service) Award(ctx context.Context, tx *gorm.DB, customerID, orderID uuid.UUID, points int64) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for loyalty award")
	}
	if points <= 0 {
		return nil
	}

	repo := s.repo.WithTx(tx)

	exists, err := repo.EarnedExistsForOrder(ctx, orderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check loyalty ledger")
	}
	if exists {
		return nil
	}

	if err := repo.EnsureBalanceRow(ctx, customerID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ensure loyalty balance")
	}
	if err := repo.CreditBalance(ctx, customerID, points); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit loyalty balance")
	}

	oid := orderID
	txn := &models.LoyaltyTransaction{
		CustomerID:  customerID,
		OrderID:     &oid,
		Type:        enums.LoyaltyTransactionEarned,
		PointsDelta: points,
		Reason:      "order completed",
	}
	if err := repo.AppendTransaction(ctx, txn); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record loyalty award")
	}
	return nil
}

func (s *service) Redeem(ctx context.Context, customerID uuid.UUID, points int64, reason string) error {
	if points <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "redemption points must be positive")
	}
	if reason == "" {
		reason = "points redeemed"
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		debited, err := repo.DebitBalance(ctx, customerID, points)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "debit loyalty balance")
		}
		if !debited {
			return pkgerrors.New(pkgerrors.CodePolicy, "insufficient loyalty points")
		}

		txn := &models.LoyaltyTransaction{
			CustomerID:  customerID,
			Type:        enums.LoyaltyTransactionRedeemed,
			PointsDelta: -points,
			Reason:      reason,
		}
		if err := repo.AppendTransaction(ctx, txn); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record loyalty redemption")
		}
		return nil
	})
}

func (s *service) Balance(ctx context.Context, customerID uuid.UUID) (*models.LoyaltyPoints, error) {
	balance, err := s.repo.FindBalance(ctx, customerID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return &models.LoyaltyPoints{CustomerID: customerID}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load loyalty balance")
	}
	return balance, nil
}

func (s *service) History(ctx context.Context, customerID uuid.UUID) ([]models.LoyaltyTransaction, error) {
	txns, err := s.repo.ListTransactions(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list loyalty ledger")
	}
	return txns, nil
}
