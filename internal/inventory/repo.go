package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mariel-soto/brewhaus-backend/pkg/db/models"
)

// Repository exposes ingredient stock persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error)
	DebitStock(ctx context.Context, ingredientID uuid.UUID, qty int64) (bool, error)
	CreditStock(ctx context.Context, ingredientID uuid.UUID, qty int64) (bool, error)
	AppendTransaction(ctx context.Context, txn *models.InventoryTransaction) error
	ListTransactionsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.InventoryTransaction, error)
	RecipeFor(ctx context.Context, menuItemID uuid.UUID) ([]models.RecipeEntry, error)
	LowStock(ctx context.Context) ([]models.Ingredient, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an inventory repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&ingredient).Error; err != nil {
		return nil, err
	}
	return &ingredient, nil
}

// DebitStock decrements stock only when enough remains. A false return means
// a concurrent order consumed the stock first and the caller must roll back.
func (r *repository) DebitStock(ctx context.Context, ingredientID uuid.UUID, qty int64) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE ingredients
		SET stock = stock - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND active = ? AND stock >= ?
	`, qty, ingredientID, true, qty)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) CreditStock(ctx context.Context, ingredientID uuid.UUID, qty int64) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE ingredients
		SET stock = stock + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, qty, ingredientID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) AppendTransaction(ctx context.Context, txn *models.InventoryTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) ListTransactionsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.InventoryTransaction, error) {
	var txns []models.InventoryTransaction
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *repository) RecipeFor(ctx context.Context, menuItemID uuid.UUID) ([]models.RecipeEntry, error) {
	var entries []models.RecipeEntry
	err := r.db.WithContext(ctx).
		Preload("Ingredient").
		Where("menu_item_id = ?", menuItemID).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) LowStock(ctx context.Context) ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	err := r.db.WithContext(ctx).
		Where("active = ? AND stock <= min_stock", true).
		Order("name ASC").
		Find(&ingredients).Error
	if err != nil {
		return nil, err
	}
	return ingredients, nil
}
