package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mariel-soto/brewhaus-backend/pkg/enums"
)

// Promotion is a promo code. DiscountValue is whole percent for percentage
// codes and cents for fixed codes.
type Promotion struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code          string             `gorm:"column:code;not null;uniqueIndex"`
	DiscountType  enums.DiscountType `gorm:"column:discount_type;type:text;not null"`
	DiscountValue int64              `gorm:"column:discount_value;not null"`
	MinOrderCents int64              `gorm:"column:min_order_cents;not null;default:0"`
	UsageCap      *int64             `gorm:"column:usage_cap"`
	UsedCount     int64              `gorm:"column:used_count;not null;default:0"`
	Active        bool               `gorm:"column:active;not null;default:true"`
	StartsAt      *time.Time         `gorm:"column:starts_at"`
	EndsAt        *time.Time         `gorm:"column:ends_at"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
