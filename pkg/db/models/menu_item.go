package models

import (
	"time"

	"github.com/google/uuid"
)

// MenuItem is a sellable catalog entry. PriceCents is the current price;
// order items freeze their own copy at checkout time.
type MenuItem struct {
	ID          uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string        `gorm:"column:name;not null"`
	Description *string       `gorm:"column:description"`
	PriceCents  int64         `gorm:"column:price_cents;not null"`
	Category    string        `gorm:"column:category;not null"`
	Available   bool          `gorm:"column:available;not null;default:true"`
	Recipe      []RecipeEntry `gorm:"foreignKey:MenuItemID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}
