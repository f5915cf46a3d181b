package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mariel-soto/brewhaus-backend/pkg/enums"
)

// InventoryTransaction is an append-only stock movement row. Delta is negative
// for usage and positive for restock.
type InventoryTransaction struct {
	ID           uuid.UUID                        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	IngredientID uuid.UUID                        `gorm:"column:ingredient_id;type:uuid;not null;index"`
	OrderID      *uuid.UUID                       `gorm:"column:order_id;type:uuid;index"`
	Delta        int64                            `gorm:"column:delta;not null"`
	Reason       enums.InventoryTransactionReason `gorm:"column:reason;type:text;not null"`
	CreatedAt    time.Time                        `gorm:"column:created_at;autoCreateTime"`
}
