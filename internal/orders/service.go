package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mariel-soto/brewhaus-backend/internal/giftcards"
	"github.com/mariel-soto/brewhaus-backend/internal/inventory"
	"github.com/mariel-soto/brewhaus-backend/internal/loyalty"
	"github.com/mariel-soto/brewhaus-backend/internal/pricing"
	"github.com/mariel-soto/brewhaus-backend/internal/promotions"
	"github.com/mariel-soto/brewhaus-backend/internal/risk"
	"github.com/mariel-soto/brewhaus-backend/pkg/db/models"
	"github.com/mariel-soto/brewhaus-backend/pkg/enums"
	pkgerrors "github.com/mariel-soto/brewhaus-backend/pkg/errors"
	"github.com/mariel-soto/brewhaus-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Notifier is the post-commit, fire-and-forget notification hook.
type Notifier interface {
	OrderStatus(customerID, orderID uuid.UUID, status enums.OrderStatus)
}

// Service is the order state machine: checkout, status transitions, the
// no-show path, and payment verification.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Order, error)
	Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Order, error)
	Transition(ctx context.Context, input TransitionInput) (*models.Order, error)
	MarkNoShow(ctx context.Context, orderID uuid.UUID) error
	VerifyPayment(ctx context.Context, orderID uuid.UUID) error
}

type service struct {
	repo      Repository
	tx        txRunner
	pricer    pricing.Engine
	inventory inventory.Service
	promos    promotions.Repository
	cards     giftcards.Service
	loyalty   loyalty.Service
	risk      risk.Service
	notifier  Notifier
	metrics   *metrics.OrderMetrics
}

// NewService wires the order state machine's dependencies.
func NewService(
	repo Repository,
	tx txRunner,
	pricer pricing.Engine,
	inventorySvc inventory.Service,
	promoRepo promotions.Repository,
	cardSvc giftcards.Service,
	loyaltySvc loyalty.Service,
	riskSvc risk.Service,
	notifier Notifier,
	m *metrics.OrderMetrics,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if pricer == nil {
		return nil, fmt.Errorf("pricing engine required")
	}
	if inventorySvc == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	if promoRepo == nil {
		return nil, fmt.Errorf("promotions repository required")
	}
	if cardSvc == nil {
		return nil, fmt.Errorf("gift card service required")
	}
	if loyaltySvc == nil {
		return nil, fmt.Errorf("loyalty service required")
	}
	if riskSvc == nil {
		return nil, fmt.Errorf("risk service required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		pricer:    pricer,
		inventory: inventorySvc,
		promos:    promoRepo,
		cards:     cardSvc,
		loyalty:   loyaltySvc,
		risk:      riskSvc,
		notifier:  notifier,
		metrics:   m,
	}, nil
}

// Create turns a cart into a priced, paid, inventory-consuming order. All
// debits and the order insert commit in one transaction; the pending
// notification fires only after commit.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.Order, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if input.PickupTime.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pickup time required")
	}

	customer, err := s.repo.FindCustomer(ctx, input.CustomerID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
	}

	email := customer.Email
	restricted, err := s.risk.IsRestricted(ctx, customer.ID, &email, customer.Phone)
	if err != nil {
		return nil, err
	}
	if restricted {
		s.countRejection(pkgerrors.CodePolicy)
		return nil, pkgerrors.New(pkgerrors.CodePolicy, "account is restricted from ordering")
	}

	quote, err := s.pricer.Quote(ctx, pricing.Request{
		CustomerID:    input.CustomerID,
		Lines:         input.Lines,
		PromoCode:     input.PromoCode,
		GiftCardCode:  input.GiftCardCode,
		PaymentMethod: input.PaymentMethod,
		PaymentProof:  input.PaymentProof,
	})
	if err != nil {
		s.countRejectionErr(err)
		return nil, err
	}

	order := &models.Order{
		ID:              uuid.New(),
		CustomerID:      input.CustomerID,
		Status:          enums.OrderStatusPending,
		SubtotalCents:   quote.SubtotalCents,
		DiscountCents:   quote.DiscountCents,
		TotalCents:      quote.TotalCents,
		PromoCode:       quote.PromoCode,
		PaymentMethod:   quote.PaymentMethod,
		PaymentProof:    quote.PaymentProof,
		PaymentVerified: quote.PaymentVerified,
		GiftCardID:      quote.GiftCardID,
		GiftCardCents:   quote.GiftCardCents,
		PickupTime:      input.PickupTime,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert order")
		}

		items := make([]models.OrderItem, 0, len(quote.Lines))
		for _, line := range quote.Lines {
			items = append(items, models.OrderItem{
				ID:             uuid.New(),
				OrderID:        order.ID,
				MenuItemID:     line.MenuItemID,
				Name:           line.Name,
				Quantity:       line.Quantity,
				UnitPriceCents: line.UnitPriceCents,
			})
		}
		if err := repo.CreateItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert order items")
		}
		order.Items = items

		debitLines := make([]inventory.OrderLine, 0, len(input.Lines))
		for _, line := range input.Lines {
			debitLines = append(debitLines, inventory.OrderLine{
				MenuItemID: line.MenuItemID,
				Quantity:   line.Quantity,
			})
		}
		if err := s.inventory.DebitForOrder(ctx, tx, order.ID, debitLines); err != nil {
			return err
		}

		if quote.PromoID != nil {
			consumed, err := s.promos.WithTx(tx).ConsumeUsage(ctx, *quote.PromoID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume promo usage")
			}
			if !consumed {
				return pkgerrors.New(pkgerrors.CodeConflict, "promo code usage limit reached")
			}
		}

		if quote.GiftCardID != nil && quote.GiftCardCents > 0 {
			err := s.cards.Redeem(ctx, tx, giftcards.RedeemInput{
				CardID:      *quote.GiftCardID,
				CustomerID:  input.CustomerID,
				OrderID:     order.ID,
				AmountCents: quote.GiftCardCents,
			})
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		s.countRejectionErr(err)
		return nil, err
	}

	s.metrics.IncOrderCreated()
	s.notifier.OrderStatus(order.CustomerID, order.ID, order.Status)
	return order, nil
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Order, error) {
	orders, err := s.repo.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return orders, nil
}

// Transition applies one state machine step. Same-status requests are silent
// no-ops. Completion awards loyalty points idempotently; cancellation bumps
// the customer's cancellation counter. Side effects commit with the status
// change; the notification fires after commit.
func (s *service) Transition(ctx context.Context, input TransitionInput) (*models.Order, error) {
	if !input.Target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	var order *models.Order
	changed := false

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		order, err = repo.FindByID(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if order.Status == input.Target {
			return nil
		}
		if !order.Status.CanTransitionTo(input.Target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move order from %s to %s", order.Status, input.Target))
		}
		if requiresVerifiedPayment(input.Target) && order.PaymentMethod.RequiresProof() && !order.PaymentVerified {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "payment must be verified before confirming")
		}

		now := time.Now().UTC()
		updates := map[string]any{"status": input.Target}

		switch input.Target {
		case enums.OrderStatusCompleted:
			updates["completed_at"] = now
			points := loyalty.PointsForOrder(order.TotalCents)
			if err := s.loyalty.Award(ctx, tx, order.CustomerID, order.ID, points); err != nil {
				return err
			}
		case enums.OrderStatusCancelled:
			updates["cancelled_at"] = now
			customer, err := repo.FindCustomer(ctx, order.CustomerID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
			}
			email := customer.Email
			if err := s.risk.RecordCancellation(ctx, tx, customer.ID, &email, customer.Phone); err != nil {
				return err
			}
		}

		if err := repo.Update(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}

		order.Status = input.Target
		switch input.Target {
		case enums.OrderStatusCompleted:
			order.CompletedAt = &now
		case enums.OrderStatusCancelled:
			order.CancelledAt = &now
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.metrics.IncStatusTransition(order.Status.String())
		s.notifier.OrderStatus(order.CustomerID, order.ID, order.Status)
	}
	return order, nil
}

// MarkNoShow closes out an order the customer never picked up. It cancels the
// order through the no-show path: the no-show counter is bumped instead of
// the cancellation counter.
func (s *service) MarkNoShow(ctx context.Context, orderID uuid.UUID) error {
	var order *models.Order

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		order, err = repo.FindByID(ctx, orderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is already closed")
		}

		customer, err := repo.FindCustomer(ctx, order.CustomerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customer")
		}
		email := customer.Email
		if err := s.risk.RecordNoShow(ctx, tx, customer.ID, &email, customer.Phone); err != nil {
			return err
		}

		now := time.Now().UTC()
		updates := map[string]any{
			"status":       enums.OrderStatusCancelled,
			"cancelled_at": now,
		}
		if err := repo.Update(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		order.Status = enums.OrderStatusCancelled
		order.CancelledAt = &now
		return nil
	})
	if err != nil {
		return err
	}

	s.metrics.IncStatusTransition(enums.OrderStatusCancelled.String())
	s.notifier.OrderStatus(order.CustomerID, order.ID, order.Status)
	return nil
}

// VerifyPayment flips payment_verified after an operator checks the proof
// reference. Non-cash orders cannot progress past pending without it.
func (s *service) VerifyPayment(ctx context.Context, orderID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.PaymentVerified {
			return nil
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is already closed")
		}

		if err := repo.Update(ctx, order.ID, map[string]any{"payment_verified": true}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify payment")
		}
		return nil
	})
}

func requiresVerifiedPayment(target enums.OrderStatus) bool {
	switch target {
	case enums.OrderStatusConfirmed, enums.OrderStatusPreparing, enums.OrderStatusReady:
		return true
	default:
		return false
	}
}

func (s *service) countRejection(code pkgerrors.Code) {
	s.metrics.IncCheckoutRejection(string(code))
}

func (s *service) countRejectionErr(err error) {
	if typed := pkgerrors.As(err); typed != nil {
		s.countRejection(typed.Code())
		return
	}
	s.countRejection(pkgerrors.CodeInternal)
}
