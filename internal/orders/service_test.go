package orders

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mariel-soto/brewhaus-backend/internal/catalog"
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

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS customers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  phone TEXT,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS menu_items (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  price_cents INTEGER NOT NULL,
  category TEXT NOT NULL,
  available INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS ingredients (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  unit TEXT NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0,
  min_stock INTEGER NOT NULL DEFAULT 0,
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS recipe_entries (
  id TEXT PRIMARY KEY,
  menu_item_id TEXT NOT NULL,
  ingredient_id TEXT NOT NULL,
  quantity INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  subtotal_cents INTEGER NOT NULL,
  discount_cents INTEGER NOT NULL DEFAULT 0,
  total_cents INTEGER NOT NULL,
  promo_code TEXT,
  payment_method TEXT NOT NULL,
  payment_proof TEXT,
  payment_verified INTEGER NOT NULL DEFAULT 0,
  gift_card_id TEXT,
  gift_card_cents INTEGER NOT NULL DEFAULT 0,
  pickup_time DATETIME NOT NULL,
  completed_at DATETIME,
  cancelled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  menu_item_id TEXT NOT NULL,
  name TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  created_at DATETIME
);
CREATE TABLE IF NOT EXISTS gift_cards (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  customer_id TEXT,
  amount_cents INTEGER NOT NULL,
  balance_cents INTEGER NOT NULL,
  expires_at DATETIME,
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS gift_card_transactions (
  id TEXT PRIMARY KEY,
  gift_card_id TEXT NOT NULL,
  order_id TEXT,
  type TEXT NOT NULL,
  amount_cents INTEGER NOT NULL,
  created_at DATETIME
);
CREATE TABLE IF NOT EXISTS promotions (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  discount_type TEXT NOT NULL,
  discount_value INTEGER NOT NULL,
  min_order_cents INTEGER NOT NULL DEFAULT 0,
  usage_cap INTEGER,
  used_count INTEGER NOT NULL DEFAULT 0,
  active INTEGER NOT NULL DEFAULT 1,
  starts_at DATETIME,
  ends_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS loyalty_points (
  customer_id TEXT PRIMARY KEY,
  balance_points INTEGER NOT NULL DEFAULT 0,
  lifetime_earned INTEGER NOT NULL DEFAULT 0,
  lifetime_redeemed INTEGER NOT NULL DEFAULT 0,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS loyalty_transactions (
  id TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL,
  order_id TEXT,
  type TEXT NOT NULL,
  points_delta INTEGER NOT NULL,
  reason TEXT NOT NULL,
  created_at DATETIME
);
CREATE TABLE IF NOT EXISTS blacklist_entries (
  id TEXT PRIMARY KEY,
  customer_id TEXT,
  email TEXT,
  phone TEXT,
  reason TEXT NOT NULL DEFAULT '',
  no_show_count INTEGER NOT NULL DEFAULT 0,
  cancellation_count INTEGER NOT NULL DEFAULT 0,
  active INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS inventory_transactions (
  id TEXT PRIMARY KEY,
  ingredient_id TEXT NOT NULL,
  order_id TEXT,
  delta INTEGER NOT NULL,
  reason TEXT NOT NULL,
  created_at DATETIME
);`
	for _, stmt := range strings.Split(ddl, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type dbTxRunner struct {
	db *gorm.DB
}

func (r dbTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []enums.OrderStatus
}

func (n *recordingNotifier) OrderStatus(customerID, orderID uuid.UUID, status enums.OrderStatus) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, status)
}

func (n *recordingNotifier) statuses() []enums.OrderStatus {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]enums.OrderStatus(nil), n.calls...)
}

type fixture struct {
	db       *gorm.DB
	svc      Service
	notifier *recordingNotifier
	loyalty  loyalty.Service
	risk     risk.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupOrdersTestDB(t)
	runner := dbTxRunner{db: db}

	cardSvc, err := giftcards.NewService(giftcards.NewRepository(db), runner)
	require.NoError(t, err)
	inventorySvc, err := inventory.NewService(inventory.NewRepository(db), runner)
	require.NoError(t, err)
	loyaltySvc, err := loyalty.NewService(loyalty.NewRepository(db), runner)
	require.NoError(t, err)
	riskSvc, err := risk.NewService(risk.NewRepository(db), runner)
	require.NoError(t, err)
	engine, err := pricing.NewEngine(catalog.NewRepository(db), promotions.NewRepository(db), giftcards.NewRepository(db))
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	svc, err := NewService(
		NewRepository(db),
		runner,
		engine,
		inventorySvc,
		promotions.NewRepository(db),
		cardSvc,
		loyaltySvc,
		riskSvc,
		notifier,
		metrics.NewOrderMetrics(nil),
	)
	require.NoError(t, err)

	return &fixture{db: db, svc: svc, notifier: notifier, loyalty: loyaltySvc, risk: riskSvc}
}

func (f *fixture) seedCustomer(t *testing.T) *models.Customer {
	t.Helper()
	customer := &models.Customer{
		ID:    uuid.New(),
		Name:  "Mara",
		Email: uuid.NewString() + "@brewhaus.test",
	}
	require.NoError(t, f.db.Create(customer).Error)
	return customer
}

func (f *fixture) seedItem(t *testing.T, name string, priceCents int64) *models.MenuItem {
	t.Helper()
	item := &models.MenuItem{
		ID:         uuid.New(),
		Name:       name,
		PriceCents: priceCents,
		Category:   "drinks",
		Available:  true,
	}
	require.NoError(t, f.db.Create(item).Error)
	return item
}

func (f *fixture) seedIngredient(t *testing.T, item *models.MenuItem, name string, stock, perUnit int64) *models.Ingredient {
	t.Helper()
	ing := &models.Ingredient{
		ID:     uuid.New(),
		Name:   name,
		Unit:   enums.IngredientUnitMilliliter,
		Stock:  stock,
		Active: true,
	}
	require.NoError(t, f.db.Create(ing).Error)
	require.NoError(t, f.db.Create(&models.RecipeEntry{
		ID:           uuid.New(),
		MenuItemID:   item.ID,
		IngredientID: ing.ID,
		Quantity:     perUnit,
	}).Error)
	return ing
}

func strPtr(s string) *string { return &s }

func pickup() time.Time { return time.Now().Add(2 * time.Hour).UTC() }

func TestCreate_HappyPathWithPromoAndGiftCard(t *testing.T) {
	f := newFixture(t)
	customer := f.seedCustomer(t)
	latte := f.seedItem(t, "latte", 350)
	milk := f.seedIngredient(t, latte, "milk", 1000, 200)

	require.NoError(t, f.db.Create(&models.Promotion{
		ID:            uuid.New(),
		Code:          "SAVE10",
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: 10,
		Active:        true,
	}).Error)
	card := &models.GiftCard{
		ID:           uuid.New(),
		Code:         "GC-TEST-CARD-0001",
		AmountCents:  500,
		BalanceCents: 500,
		Active:       true,
	}
	require.NoError(t, f.db.Create(card).Error)

	order, err := f.svc.Create(context.Background(), CreateInput{
		CustomerID:    customer.ID,
		Lines:         []pricing.LineInput{{MenuItemID: latte.ID, Quantity: 2}},
		PromoCode:     strPtr("SAVE10"),
		GiftCardCode:  strPtr("GC-TEST-CARD-0001"),
		PaymentMethod: enums.PaymentMethodCash,
		PickupTime:    pickup(),
	})
	require.NoError(t, err)

	require.Equal(t, enums.OrderStatusPending, order.Status)
	require.Equal(t, int64(700), order.SubtotalCents)
	require.Equal(t, int64(70), order.DiscountCents)
	require.Equal(t, int64(630), order.TotalCents)
	require.Equal(t, int64(500), order.GiftCardCents)
	require.Len(t, order.Items, 1)
	require.Equal(t, int64(350), order.Items[0].UnitPriceCents)

	// stock consumed
	var ing models.Ingredient
	require.NoError(t, f.db.First(&ing, "id = ?", milk.ID).Error)
	require.Equal(t, int64(600), ing.Stock)

	// gift card debited with ledger row
	var reloadedCard models.GiftCard
	require.NoError(t, f.db.First(&reloadedCard, "id = ?", card.ID).Error)
	require.Equal(t, int64(0), reloadedCard.BalanceCents)
	require.Equal(t, customer.ID, *reloadedCard.CustomerID)

	// promo usage consumed
	var promo models.Promotion
	require.NoError(t, f.db.First(&promo, "code = ?", "SAVE10").Error)
	require.Equal(t, int64(1), promo.UsedCount)

	require.Equal(t, []enums.OrderStatus{enums.OrderStatusPending}, f.notifier.statuses())
}

func TestCreate_ItemPricesFrozenAgainstLaterCatalogEdits(t *testing.T) {
	f := newFixture(t)
	customer := f.seedCustomer(t)
	latte := f.seedItem(t, "latte", 350)

	order, err := f.svc.Create(context.Background(), CreateInput{
		CustomerID:    customer.ID,
		Lines:         []pricing.LineInput{{MenuItemID: latte.ID, Quantity: 2}},
		PaymentMethod: enums.PaymentMethodCash,
		PickupTime:    pickup(),
	})
	require.NoError(t, err)

	// price hike after checkout
	require.NoError(t, f.db.Model(&models.MenuItem{}).
		Where("id = ?", latte.ID).
		Update("price_cents", 999).Error)

	reloaded, err := f.svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Items, 1)
	require.Equal(t, int64(350), reloaded.Items[0].UnitPriceCents)
	require.Equal(t, int64(700), reloaded.SubtotalCents)
	require.Equal(t, int64(700), reloaded.TotalCents)
}

func TestCreate_InsufficientStockRollsBackWholeCheckout(t *testing.T) {
	f := newFixture(t)
	customer := f.seedCustomer(t)
	latte := f.seedItem(t, "latte", 350)
	f.seedIngredient(t, latte, "milk", 100, 200)

	card := &models.GiftCard{
		ID:           uuid.New(),
		Code:         "GC-TEST-CARD-0002",
		AmountCents:  500,
		BalanceCents: 500,
		Active:       true,
	}
	require.NoError(t, f.db.Create(card).Error)

	_, err := f.svc.Create(context.Background(), CreateInput{
		CustomerID:    customer.ID,
		Lines:         []pricing.LineInput{{MenuItemID: latte.ID, Quantity: 1}},
		GiftCardCode:  strPtr("GC-TEST-CARD-0002"),
		PaymentMethod: enums.PaymentMethodCash,
		PickupTime:    pickup(),
	})
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())

	var orderCount int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&orderCount).Error)
	require.Zero(t, orderCount, "no order row may survive a failed debit")

	var reloadedCard models.GiftCard
	require.NoError(t, f.db.First(&reloadedCard, "id = ?", card.ID).Error)
	require.Equal(t, int64(500), reloadedCard.BalanceCents)

	require.Empty(t, f.notifier.statuses())
}

func TestCreate_RestrictedCustomerRejected(t *testing.T) {
	f := newFixture(t)
	customer := f.seedCustomer(t)
	latte := f.seedItem(t, "latte", 350)

	cid := customer.ID
	require.NoError(t, f.db.Create(&models.BlacklistEntry{
		ID:         uuid.New(),
		CustomerID: &cid,
		Active:     true,
		Reason:     "repeated no-shows",
	}).Error)

	_, err := f.svc.Create(context.Background(), CreateInput{
		CustomerID:    customer.ID,
		Lines:         []pricing.LineInput{{MenuItemID: latte.ID, Quantity: 1}},
		PaymentMethod: enums.PaymentMethodCash,
		PickupTime:    pickup(),
	})
	require.Equal(t, pkgerrors.CodePolicy, pkgerrors.As(err).Code())
}

func TestCreate_UntrackedItemSkipsInventory(t *testing.T) {
	f := newFixture(t)
	customer := f.seedCustomer(t)
	water := f.seedItem(t, "bottled water", 200)

	order, err := f.svc.Create(context.Background(), CreateInput{
		CustomerID:    customer.ID,
		Lines:         []pricing.LineInput{{MenuItemID: water.ID, Quantity: 3}},
		PaymentMethod: enums.PaymentMethodCash,
		PickupTime:    pickup(),
	})
	require.NoError(t, err)
	require.Equal(t, int64(600), order.TotalCents)
}

func TestTransition_FullLifecycleAwardsPointsOnce(t *testing.T) {
	f := newFixture(t)
	customer := f.seedCustomer(t)
	latte := f.seedItem(t, "latte", 350)

	order, err := f.svc.Create(context.Background(), CreateInput{
		CustomerID:    customer.ID,
		Lines:         []pricing.LineInput{{MenuItemID: latte.ID, Quantity: 2}},
		PaymentMethod: enums.PaymentMethodCash,
		PickupTime:    pickup(),
	})
	require.NoError(t, err)

	for _, target := range []enums.OrderStatus{
		enums.OrderStatusConfirmed,
		enums.OrderStatusPreparing,
		enums.OrderStatusReady,
		enums.OrderStatusCompleted,
	} {
		order, err = f.svc.Transition(context.Background(), TransitionInput{OrderID: order.ID, Target: target})
		require.NoError(t, err)
		require.Equal(t, target, order.Status)
	}
	require.NotNil(t, order.CompletedAt)

	// 7.00 paid -> 7 points, exactly once
	balance, err := f.loyalty.Balance(context.Background(), customer.ID)
	require.NoError(t, err)
	require.Equal(t, int64(7), balance.BalancePoints)

	// retrying the completion is a silent no-op: no duplicate points
	_, err = f.svc.Transition(context.Background(), TransitionInput{OrderID: order.ID, Target: enums.OrderStatusCompleted})
	require.NoError(t, err)
	balance, err = f.loyalty.Balance(context.Background(), customer.ID)
	require.NoError(t, err)
	require.Equal(t, int64(7), balance.BalancePoints)

	require.Equal(t, []enums.OrderStatus{
		enums.OrderStatusPending,
		enums.OrderStatusConfirmed,
		enums.OrderStatusPreparing,
		enums.OrderStatusReady,
		enums.OrderStatusCompleted,
	}, f.notifier.statuses(), "same-status retry must not notify")
}

func TestTransition_IllegalJumpRejected(t *testing.T) {
	f := newFixture(t)
	customer := f.seedCustomer(t)
	latte := f.seedItem(t, "latte", 350)

	order, err := f.svc.Create(context.Background(), CreateInput{
		CustomerID:    customer.ID,
		Lines:         []pricing.LineInput{{MenuItemID: latte.ID, Quantity: 1}},
		PaymentMethod: enums.PaymentMethodCash,
		PickupTime:    pickup(),
	})
	require.NoError(t, err)

	_, err = f.svc.Transition(context.Background(), TransitionInput{OrderID: order.ID, Target: enums.OrderStatusReady})
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())

	reloaded, err := f.svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusPending, reloaded.Status, "failed transition leaves status unchanged")
}

func TestTransition_UnverifiedCardPaymentBlocked(t *testing.T) {
	f := newFixture(t)
	customer := f.seedCustomer(t)
	latte := f.seedItem(t, "latte", 350)

	order, err := f.svc.Create(context.Background(), CreateInput{
		CustomerID:    customer.ID,
		Lines:         []pricing.LineInput{{MenuItemID: latte.ID, Quantity: 1}},
		PaymentMethod: enums.PaymentMethodCard,
		PaymentProof:  strPtr("txn-789"),
		PickupTime:    pickup(),
	})
	require.NoError(t, err)
	require.False(t, order.PaymentVerified)

	_, err = f.svc.Transition(context.Background(), TransitionInput{OrderID: order.ID, Target: enums.OrderStatusConfirmed})
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())

	require.NoError(t, f.svc.VerifyPayment(context.Background(), order.ID))

	updated, err := f.svc.Transition(context.Background(), TransitionInput{OrderID: order.ID, Target: enums.OrderStatusConfirmed})
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusConfirmed, updated.Status)
}

func TestTransition_CancellationBumpsCounterAndRestrictsAtThreshold(t *testing.T) {
	f := newFixture(t)
	customer := f.seedCustomer(t)
	latte := f.seedItem(t, "latte", 350)

	for i := 0; i < risk.CancellationThreshold; i++ {
		order, err := f.svc.Create(context.Background(), CreateInput{
			CustomerID:    customer.ID,
			Lines:         []pricing.LineInput{{MenuItemID: latte.ID, Quantity: 1}},
			PaymentMethod: enums.PaymentMethodCash,
			PickupTime:    pickup(),
		})
		require.NoError(t, err)
		_, err = f.svc.Transition(context.Background(), TransitionInput{OrderID: order.ID, Target: enums.OrderStatusCancelled})
		require.NoError(t, err)
	}

	// fifth cancellation restricted the account; the next checkout fails
	_, err := f.svc.Create(context.Background(), CreateInput{
		CustomerID:    customer.ID,
		Lines:         []pricing.LineInput{{MenuItemID: latte.ID, Quantity: 1}},
		PaymentMethod: enums.PaymentMethodCash,
		PickupTime:    pickup(),
	})
	require.Equal(t, pkgerrors.CodePolicy, pkgerrors.As(err).Code())
}

func TestMarkNoShow_BumpsNoShowCounterNotCancellation(t *testing.T) {
	f := newFixture(t)
	customer := f.seedCustomer(t)
	latte := f.seedItem(t, "latte", 350)

	order, err := f.svc.Create(context.Background(), CreateInput{
		CustomerID:    customer.ID,
		Lines:         []pricing.LineInput{{MenuItemID: latte.ID, Quantity: 1}},
		PaymentMethod: enums.PaymentMethodCash,
		PickupTime:    pickup(),
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.MarkNoShow(context.Background(), order.ID))

	reloaded, err := f.svc.Get(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusCancelled, reloaded.Status)

	var entry models.BlacklistEntry
	require.NoError(t, f.db.First(&entry, "customer_id = ?", customer.ID).Error)
	require.Equal(t, int64(1), entry.NoShowCount)
	require.Zero(t, entry.CancellationCount)
	require.False(t, entry.Active)

	// closed orders cannot be marked again
	err = f.svc.MarkNoShow(context.Background(), order.ID)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestMarkNoShow_RestrictsAtThreshold(t *testing.T) {
	f := newFixture(t)
	customer := f.seedCustomer(t)
	latte := f.seedItem(t, "latte", 350)

	for i := 0; i < risk.NoShowThreshold; i++ {
		order, err := f.svc.Create(context.Background(), CreateInput{
			CustomerID:    customer.ID,
			Lines:         []pricing.LineInput{{MenuItemID: latte.ID, Quantity: 1}},
			PaymentMethod: enums.PaymentMethodCash,
			PickupTime:    pickup(),
		})
		require.NoError(t, err)
		require.NoError(t, f.svc.MarkNoShow(context.Background(), order.ID))
	}

	restricted, err := f.risk.IsRestricted(context.Background(), customer.ID, nil, nil)
	require.NoError(t, err)
	require.True(t, restricted)
}

func TestCreate_CancelledOrderNeverRestocks(t *testing.T) {
	f := newFixture(t)
	customer := f.seedCustomer(t)
	latte := f.seedItem(t, "latte", 350)
	milk := f.seedIngredient(t, latte, "milk", 1000, 200)

	order, err := f.svc.Create(context.Background(), CreateInput{
		CustomerID:    customer.ID,
		Lines:         []pricing.LineInput{{MenuItemID: latte.ID, Quantity: 1}},
		PaymentMethod: enums.PaymentMethodCash,
		PickupTime:    pickup(),
	})
	require.NoError(t, err)

	_, err = f.svc.Transition(context.Background(), TransitionInput{OrderID: order.ID, Target: enums.OrderStatusCancelled})
	require.NoError(t, err)

	var ing models.Ingredient
	require.NoError(t, f.db.First(&ing, "id = ?", milk.ID).Error)
	require.Equal(t, int64(800), ing.Stock, "cancellation must not credit stock back")
}
