package loyalty

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mariel-soto/brewhaus-backend/pkg/db/models"
	"github.com/mariel-soto/brewhaus-backend/pkg/enums"
)

// Repository exposes loyalty balance and ledger persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindBalance(ctx context.Context, customerID uuid.UUID) (*models.LoyaltyPoints, error)
	EnsureBalanceRow(ctx context.Context, customerID uuid.UUID) error
	CreditBalance(ctx context.Context, customerID uuid.UUID, points int64) error
	DebitBalance(ctx context.Context, customerID uuid.UUID, points int64) (bool, error)
	EarnedExistsForOrder(ctx context.Context, orderID uuid.UUID) (bool, error)
	AppendTransaction(ctx context.Context, txn *models.LoyaltyTransaction) error
	ListTransactions(ctx context.Context, customerID uuid.UUID) ([]models.LoyaltyTransaction, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a loyalty repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindBalance(ctx context.Context, customerID uuid.UUID) (*models.LoyaltyPoints, error) {
	var balance models.LoyaltyPoints
	err := r.db.WithContext(ctx).Where("customer_id = ?", customerID).First(&balance).Error
	if err != nil {
		return nil, err
	}
	return &balance, nil
}

func (r *repository) EnsureBalanceRow(ctx context.Context, customerID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO loyalty_points (customer_id, balance_points, lifetime_earned, lifetime_redeemed, updated_at)
		VALUES (?, 0, 0, 0, CURRENT_TIMESTAMP)
		ON CONFLICT (customer_id) DO NOTHING
	`, customerID).Error
}

func (r *repository) CreditBalance(ctx context.Context, customerID uuid.UUID, points int64) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE loyalty_points
		SET balance_points = balance_points + ?,
			lifetime_earned = lifetime_earned + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE customer_id = ?
	`, points, points, customerID).Error
}

// DebitBalance decrements only when the balance covers the redemption.
func (r *repository) DebitBalance(ctx context.Context, customerID uuid.UUID, points int64) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE loyalty_points
		SET balance_points = balance_points - ?,
			lifetime_redeemed = lifetime_redeemed + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE customer_id = ? AND balance_points >= ?
	`, points, points, customerID, points)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) EarnedExistsForOrder(ctx context.Context, orderID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.LoyaltyTransaction{}).
		Where("order_id = ? AND type = ?", orderID, enums.LoyaltyTransactionEarned).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) AppendTransaction(ctx context.Context, txn *models.LoyaltyTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) ListTransactions(ctx context.Context, customerID uuid.UUID) ([]models.LoyaltyTransaction, error) {
	var txns []models.LoyaltyTransaction
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at ASC").
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}
