package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mariel-soto/brewhaus-backend/internal/catalog"
	"github.com/mariel-soto/brewhaus-backend/internal/giftcards"
	"github.com/mariel-soto/brewhaus-backend/internal/promotions"
	"github.com/mariel-soto/brewhaus-backend/pkg/db/models"
	"github.com/mariel-soto/brewhaus-backend/pkg/enums"
	pkgerrors "github.com/mariel-soto/brewhaus-backend/pkg/errors"
)

// LineInput is one requested cart line.
type LineInput struct {
	MenuItemID uuid.UUID
	Quantity   int64
}

// Request carries everything the engine needs to price a cart.
type Request struct {
	CustomerID    uuid.UUID
	Lines         []LineInput
	PromoCode     *string
	GiftCardCode  *string
	PaymentMethod enums.PaymentMethod
	PaymentProof  *string
}

// QuotedLine is a priced cart line with the unit price frozen at quote time.
type QuotedLine struct {
	MenuItemID     uuid.UUID `json:"menu_item_id"`
	Name           string    `json:"name"`
	Quantity       int64     `json:"quantity"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	LineTotalCents int64     `json:"line_total_cents"`
}

// Quote is the full pricing outcome. DueCents is what remains after the gift
// card contribution; TotalCents is subtotal minus promo discount.
type Quote struct {
	Lines           []QuotedLine        `json:"lines"`
	SubtotalCents   int64               `json:"subtotal_cents"`
	DiscountCents   int64               `json:"discount_cents"`
	TotalCents      int64               `json:"total_cents"`
	PromoID         *uuid.UUID          `json:"promo_id,omitempty"`
	PromoCode       *string             `json:"promo_code,omitempty"`
	GiftCardID      *uuid.UUID          `json:"gift_card_id,omitempty"`
	GiftCardCents   int64               `json:"gift_card_cents"`
	DueCents        int64               `json:"due_cents"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method"`
	PaymentProof    *string             `json:"payment_proof,omitempty"`
	PaymentVerified bool                `json:"payment_verified"`
}

// Engine prices carts. It never mutates state: promo usage and gift card
// balances are consumed later, inside the checkout transaction.
type Engine interface {
	Quote(ctx context.Context, req Request) (*Quote, error)
}

type engine struct {
	catalog catalog.Repository
	promos  promotions.Repository
	cards   giftcards.Repository
	now     func() time.Time
}

// NewEngine wires the pricing engine's read dependencies.
func NewEngine(catalogRepo catalog.Repository, promoRepo promotions.Repository, cardRepo giftcards.Repository) (Engine, error) {
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if promoRepo == nil {
		return nil, fmt.Errorf("promotions repository required")
	}
	if cardRepo == nil {
		return nil, fmt.Errorf("gift card repository required")
	}
	return &engine{
		catalog: catalogRepo,
		promos:  promoRepo,
		cards:   cardRepo,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// Quote applies the pricing steps in a fixed order: subtotal, promo discount,
// gift card contribution, then payment method rules. The first failing step
// rejects the whole request.
func (e *engine) Quote(ctx context.Context, req Request) (*Quote, error) {
	if len(req.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if !req.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	quote := &Quote{PaymentMethod: req.PaymentMethod, PaymentProof: req.PaymentProof}

	if err := e.priceLines(ctx, req.Lines, quote); err != nil {
		return nil, err
	}
	if err := e.applyPromo(ctx, req.PromoCode, quote); err != nil {
		return nil, err
	}
	if err := e.applyGiftCard(ctx, req.GiftCardCode, req.CustomerID, quote); err != nil {
		return nil, err
	}
	if err := resolvePayment(quote); err != nil {
		return nil, err
	}
	return quote, nil
}

func (e *engine) priceLines(ctx context.Context, lines []LineInput, quote *Quote) error {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be positive")
		}
		ids = append(ids, line.MenuItemID)
	}

	items, err := e.catalog.FindByIDs(ctx, ids)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load menu items")
	}
	byID := make(map[uuid.UUID]*models.MenuItem, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}

	for _, line := range lines {
		item, ok := byID[line.MenuItemID]
		if !ok {
			return pkgerrors.New(pkgerrors.CodeValidation, "unknown menu item").
				WithDetails(map[string]any{"menu_item_id": line.MenuItemID})
		}
		if !item.Available {
			return pkgerrors.New(pkgerrors.CodeValidation, "menu item is unavailable").
				WithDetails(map[string]any{"menu_item": item.Name})
		}
		lineTotal := item.PriceCents * line.Quantity
		quote.Lines = append(quote.Lines, QuotedLine{
			MenuItemID:     item.ID,
			Name:           item.Name,
			Quantity:       line.Quantity,
			UnitPriceCents: item.PriceCents,
			LineTotalCents: lineTotal,
		})
		quote.SubtotalCents += lineTotal
	}

	quote.TotalCents = quote.SubtotalCents
	return nil
}

func (e *engine) applyPromo(ctx context.Context, code *string, quote *Quote) error {
	if code == nil || *code == "" {
		return nil
	}

	promo, err := e.promos.FindActiveByCode(ctx, *code)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodePolicy, "promo code not recognized")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load promo code")
	}

	if ok, reason := promotions.Eligibility(promo, quote.SubtotalCents, e.now()); !ok {
		return pkgerrors.New(pkgerrors.CodePolicy, reason)
	}

	discount := discountFor(promo, quote.SubtotalCents)
	if discount > quote.SubtotalCents {
		discount = quote.SubtotalCents
	}

	promoID := promo.ID
	promoCode := promo.Code
	quote.PromoID = &promoID
	quote.PromoCode = &promoCode
	quote.DiscountCents = discount
	quote.TotalCents = quote.SubtotalCents - discount
	return nil
}

func (e *engine) applyGiftCard(ctx context.Context, code *string, customerID uuid.UUID, quote *Quote) error {
	if code == nil || *code == "" {
		quote.DueCents = quote.TotalCents
		return nil
	}

	card, err := e.cards.FindByCode(ctx, *code)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "gift card not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gift card")
	}

	if err := giftcards.Usable(card, customerID, e.now()); err != nil {
		return err
	}

	contribution := card.BalanceCents
	if contribution > quote.TotalCents {
		contribution = quote.TotalCents
	}

	cardID := card.ID
	quote.GiftCardID = &cardID
	quote.GiftCardCents = contribution
	quote.DueCents = quote.TotalCents - contribution
	return nil
}

func resolvePayment(quote *Quote) error {
	if quote.DueCents == 0 && quote.GiftCardCents > 0 {
		quote.PaymentMethod = enums.PaymentMethodGiftCard
		quote.PaymentProof = nil
		quote.PaymentVerified = true
		return nil
	}

	switch quote.PaymentMethod {
	case enums.PaymentMethodGiftCard:
		return pkgerrors.New(pkgerrors.CodePolicy, "gift card does not cover the order total")
	case enums.PaymentMethodCash:
		quote.PaymentVerified = true
		return nil
	default:
		if quote.PaymentMethod.RequiresProof() {
			if quote.PaymentProof == nil || *quote.PaymentProof == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "payment proof reference required")
			}
			quote.PaymentVerified = false
		}
		return nil
	}
}

func discountFor(promo *models.Promotion, subtotalCents int64) int64 {
	switch promo.DiscountType {
	case enums.DiscountTypePercentage:
		return decimal.NewFromInt(subtotalCents).
			Mul(decimal.NewFromInt(promo.DiscountValue)).
			Div(decimal.NewFromInt(100)).
			Floor().
			IntPart()
	case enums.DiscountTypeFixed:
		if promo.DiscountValue > subtotalCents {
			return subtotalCents
		}
		return promo.DiscountValue
	default:
		return 0
	}
}
