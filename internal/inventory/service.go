package inventory

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

// OrderLine is one menu item and quantity being debited for an order.
type OrderLine struct {
	MenuItemID uuid.UUID
	Quantity   int64
}

// Shortfall reports an ingredient that cannot cover a requested quantity.
type Shortfall struct {
	IngredientID   uuid.UUID `json:"ingredient_id"`
	IngredientName string    `json:"ingredient_name"`
	Required       int64     `json:"required"`
	Available      int64     `json:"available"`
}

// Service manages the ingredient debit ledger. Stock only moves through
// DebitForOrder (usage) and Restock (manual credit); cancellations never
// return stock automatically.
type Service interface {
	DebitForOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, lines []OrderLine) error
	Restock(ctx context.Context, ingredientID uuid.UUID, qty int64) error
	CoverageShortfalls(ctx context.Context, menuItemID uuid.UUID, quantity int64) ([]Shortfall, error)
	LowStock(ctx context.Context) ([]models.Ingredient, error)
	LedgerForOrder(ctx context.Context, orderID uuid.UUID) ([]models.InventoryTransaction, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService wires inventory dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// DebitForOrder consumes recipe quantities for every tracked line item inside
// the caller's transaction. Items without recipe entries are untracked and
// skipped. Any uncovered ingredient fails the whole call.
func (s *service) DebitForOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, lines []OrderLine) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for inventory debit")
	}

	repo := s.repo.WithTx(tx)

	// Aggregate first so an item appearing twice debits each ingredient once.
	required := map[uuid.UUID]int64{}
	names := map[uuid.UUID]string{}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be positive")
		}
		entries, err := repo.RecipeFor(ctx, line.MenuItemID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recipe")
		}
		for _, entry := range entries {
			required[entry.IngredientID] += entry.Quantity * line.Quantity
			if entry.Ingredient != nil {
				names[entry.IngredientID] = entry.Ingredient.Name
			}
		}
	}

	oid := orderID
	for ingredientID, qty := range required {
		if qty == 0 {
			continue
		}
		debited, err := repo.DebitStock(ctx, ingredientID, qty)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "debit ingredient stock")
		}
		if !debited {
			return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
				WithDetails(map[string]any{"ingredient": names[ingredientID]})
		}
		txn := &models.InventoryTransaction{
			IngredientID: ingredientID,
			OrderID:      &oid,
			Delta:        -qty,
			Reason:       enums.InventoryReasonUsage,
		}
		if err := repo.AppendTransaction(ctx, txn); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record inventory usage")
		}
	}
	return nil
}

func (s *service) Restock(ctx context.Context, ingredientID uuid.UUID, qty int64) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "restock quantity must be positive")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		credited, err := repo.CreditStock(ctx, ingredientID, qty)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "credit ingredient stock")
		}
		if !credited {
			return pkgerrors.New(pkgerrors.CodeNotFound, "ingredient not found")
		}
		txn := &models.InventoryTransaction{
			IngredientID: ingredientID,
			Delta:        qty,
			Reason:       enums.InventoryReasonRestock,
		}
		if err := repo.AppendTransaction(ctx, txn); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record restock")
		}
		return nil
	})
}

// CoverageShortfalls reports which ingredients cannot cover the requested
// quantity of a menu item. An empty result means the item is coverable.
func (s *service) CoverageShortfalls(ctx context.Context, menuItemID uuid.UUID, quantity int64) ([]Shortfall, error) {
	if quantity <= 0 {
		quantity = 1
	}

	entries, err := s.repo.RecipeFor(ctx, menuItemID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recipe")
	}

	var shortfalls []Shortfall
	for _, entry := range entries {
		needed := entry.Quantity * quantity
		if entry.Ingredient == nil {
			continue
		}
		available := entry.Ingredient.Stock
		if !entry.Ingredient.Active {
			available = 0
		}
		if available < needed {
			shortfalls = append(shortfalls, Shortfall{
				IngredientID:   entry.IngredientID,
				IngredientName: entry.Ingredient.Name,
				Required:       needed,
				Available:      available,
			})
		}
	}
	return shortfalls, nil
}

func (s *service) LowStock(ctx context.Context) ([]models.Ingredient, error) {
	ingredients, err := s.repo.LowStock(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list low stock")
	}
	return ingredients, nil
}

func (s *service) LedgerForOrder(ctx context.Context, orderID uuid.UUID) ([]models.InventoryTransaction, error) {
	txns, err := s.repo.ListTransactionsByOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inventory ledger")
	}
	return txns, nil
}
