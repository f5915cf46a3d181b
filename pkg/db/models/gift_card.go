package models

import (
	"time"

	"github.com/google/uuid"
)

// GiftCard carries a prepaid balance. CustomerID is nil until the first
// redemption claims the card; 0 <= BalanceCents <= AmountCents.
type GiftCard struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code         string     `gorm:"column:code;not null;uniqueIndex"`
	CustomerID   *uuid.UUID `gorm:"column:customer_id;type:uuid;index"`
	AmountCents  int64      `gorm:"column:amount_cents;not null"`
	BalanceCents int64      `gorm:"column:balance_cents;not null"`
	ExpiresAt    *time.Time `gorm:"column:expires_at"`
	Active       bool       `gorm:"column:active;not null;default:true"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
