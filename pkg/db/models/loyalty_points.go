package models

import (
	"time"

	"github.com/google/uuid"
)

// LoyaltyPoints holds one balance row per customer.
// Invariant: BalancePoints = LifetimeEarned - LifetimeRedeemed, never negative.
type LoyaltyPoints struct {
	CustomerID       uuid.UUID `gorm:"column:customer_id;type:uuid;primaryKey"`
	BalancePoints    int64     `gorm:"column:balance_points;not null;default:0"`
	LifetimeEarned   int64     `gorm:"column:lifetime_earned;not null;default:0"`
	LifetimeRedeemed int64     `gorm:"column:lifetime_redeemed;not null;default:0"`
	UpdatedAt        time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
