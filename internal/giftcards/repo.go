package giftcards

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mariel-soto/brewhaus-backend/pkg/db/models"
)

// Repository exposes gift card persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, card *models.GiftCard) error
	FindByCode(ctx context.Context, code string) (*models.GiftCard, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.GiftCard, error)
	Debit(ctx context.Context, cardID uuid.UUID, amountCents int64) (bool, error)
	Claim(ctx context.Context, cardID, customerID uuid.UUID) error
	AppendTransaction(ctx context.Context, txn *models.GiftCardTransaction) error
	ListTransactions(ctx context.Context, cardID uuid.UUID) ([]models.GiftCardTransaction, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a gift card repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, card *models.GiftCard) error {
	return r.db.WithContext(ctx).Create(card).Error
}

func (r *repository) FindByCode(ctx context.Context, code string) (*models.GiftCard, error) {
	var card models.GiftCard
	err := r.db.WithContext(ctx).
		Where("code = ?", NormalizeCode(code)).
		First(&card).Error
	if err != nil {
		return nil, err
	}
	return &card, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.GiftCard, error) {
	var card models.GiftCard
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&card).Error; err != nil {
		return nil, err
	}
	return &card, nil
}

// Debit decrements the balance only when it covers the amount. A false return
// means a concurrent redemption drained the card first.
func (r *repository) Debit(ctx context.Context, cardID uuid.UUID, amountCents int64) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE gift_cards
		SET balance_cents = balance_cents - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND active = ? AND balance_cents >= ?
	`, amountCents, cardID, true, amountCents)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) Claim(ctx context.Context, cardID, customerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.GiftCard{}).
		Where("id = ? AND customer_id IS NULL", cardID).
		Update("customer_id", customerID).Error
}

func (r *repository) AppendTransaction(ctx context.Context, txn *models.GiftCardTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) ListTransactions(ctx context.Context, cardID uuid.UUID) ([]models.GiftCardTransaction, error) {
	var txns []models.GiftCardTransaction
	err := r.db.WithContext(ctx).
		Where("gift_card_id = ?", cardID).
		Order("created_at ASC").
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

// NormalizeCode canonicalizes user-entered gift card codes.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
