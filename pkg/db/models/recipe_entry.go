package models

import (
	"github.com/google/uuid"
)

// RecipeEntry maps a menu item to one ingredient it consumes per unit sold.
// Menu items without recipe entries are untracked and skip stock checks.
type RecipeEntry struct {
	ID           uuid.UUID   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MenuItemID   uuid.UUID   `gorm:"column:menu_item_id;type:uuid;not null;index"`
	IngredientID uuid.UUID   `gorm:"column:ingredient_id;type:uuid;not null;index"`
	Quantity     int64       `gorm:"column:quantity;not null"`
	Ingredient   *Ingredient `gorm:"foreignKey:IngredientID"`
}
