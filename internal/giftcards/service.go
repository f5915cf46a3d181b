package giftcards

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mariel-soto/brewhaus-backend/pkg/db/models"
	"github.com/mariel-soto/brewhaus-backend/pkg/enums"
	pkgerrors "github.com/mariel-soto/brewhaus-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service covers issuing cards, balance lookups, and checkout-time
// redemption. Redeem runs inside the caller's transaction.
type Service interface {
	Purchase(ctx context.Context, input PurchaseInput) (*models.GiftCard, error)
	Lookup(ctx context.Context, code string) (*models.GiftCard, error)
	Redeem(ctx context.Context, tx *gorm.DB, input RedeemInput) error
}

// PurchaseInput issues a new card. ExpiresAt nil means the card never expires.
type PurchaseInput struct {
	AmountCents int64
	ExpiresAt   *time.Time
}

// RedeemInput debits AmountCents from the card for the given order.
type RedeemInput struct {
	CardID      uuid.UUID
	CustomerID  uuid.UUID
	OrderID     uuid.UUID
	AmountCents int64
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService wires gift card dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("gift card repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) Purchase(ctx context.Context, input PurchaseInput) (*models.GiftCard, error) {
	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gift card amount must be positive")
	}

	card := &models.GiftCard{
		Code:         generateCode(),
		AmountCents:  input.AmountCents,
		BalanceCents: input.AmountCents,
		ExpiresAt:    input.ExpiresAt,
		Active:       true,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, card); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create gift card")
		}
		txn := &models.GiftCardTransaction{
			GiftCardID:  card.ID,
			Type:        enums.GiftCardTransactionPurchase,
			AmountCents: input.AmountCents,
		}
		if err := repo.AppendTransaction(ctx, txn); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record gift card purchase")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

func (s *service) Lookup(ctx context.Context, code string) (*models.GiftCard, error) {
	card, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "gift card not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gift card")
	}
	return card, nil
}

// Redeem runs inside the checkout transaction: it claims an unowned card for
// the customer, rejects cards claimed by someone else, debits the balance
// under guard, and appends the redemption ledger row.
func (s *service) Redeem(ctx context.Context, tx *gorm.DB, input RedeemInput) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for gift card redemption")
	}
	if input.AmountCents <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "redemption amount must be positive")
	}

	repo := s.repo.WithTx(tx)

	card, err := repo.FindByID(ctx, input.CardID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "gift card not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gift card")
	}

	if err := Usable(card, input.CustomerID, time.Now().UTC()); err != nil {
		return err
	}

	if card.CustomerID == nil {
		if err := repo.Claim(ctx, card.ID, input.CustomerID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim gift card")
		}
	}

	debited, err := repo.Debit(ctx, card.ID, input.AmountCents)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "debit gift card")
	}
	if !debited {
		return pkgerrors.New(pkgerrors.CodeConflict, "gift card balance changed, retry checkout")
	}

	orderID := input.OrderID
	txn := &models.GiftCardTransaction{
		GiftCardID:  card.ID,
		OrderID:     &orderID,
		Type:        enums.GiftCardTransactionRedemption,
		AmountCents: -input.AmountCents,
	}
	if err := repo.AppendTransaction(ctx, txn); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record gift card redemption")
	}
	return nil
}

// Usable rejects inactive, expired, drained, or foreign-owned cards.
func Usable(card *models.GiftCard, customerID uuid.UUID, now time.Time) error {
	if card == nil || !card.Active {
		return pkgerrors.New(pkgerrors.CodePolicy, "gift card is not active")
	}
	if card.ExpiresAt != nil && now.After(*card.ExpiresAt) {
		return pkgerrors.New(pkgerrors.CodePolicy, "gift card has expired")
	}
	if card.BalanceCents <= 0 {
		return pkgerrors.New(pkgerrors.CodePolicy, "gift card has no remaining balance")
	}
	if card.CustomerID != nil && *card.CustomerID != customerID {
		return pkgerrors.New(pkgerrors.CodePolicy, "gift card belongs to another customer")
	}
	return nil
}

func generateCode() string {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("GC-%s", uuid.NewString()[:12])
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return fmt.Sprintf("GC-%s-%s-%s", buf[0:4], buf[4:8], buf[8:12])
}
