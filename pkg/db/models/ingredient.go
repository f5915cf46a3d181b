package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mariel-soto/brewhaus-backend/pkg/enums"
)

// Ingredient tracks raw stock in integer base units (ml, g, pcs).
// Stock never goes below zero; debits are guarded updates.
type Ingredient struct {
	ID        uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string               `gorm:"column:name;not null;uniqueIndex"`
	Unit      enums.IngredientUnit `gorm:"column:unit;type:text;not null"`
	Stock     int64                `gorm:"column:stock;not null;default:0"`
	MinStock  int64                `gorm:"column:min_stock;not null;default:0"`
	Active    bool                 `gorm:"column:active;not null;default:true"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
