package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mariel-soto/brewhaus-backend/pkg/enums"
)

// Order is the priced, paid, inventory-consuming record produced by checkout.
// Invariant: DiscountCents <= SubtotalCents and TotalCents = Subtotal - Discount.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID      uuid.UUID           `gorm:"column:customer_id;type:uuid;not null;index"`
	Status          enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'pending'"`
	SubtotalCents   int64               `gorm:"column:subtotal_cents;not null"`
	DiscountCents   int64               `gorm:"column:discount_cents;not null;default:0"`
	TotalCents      int64               `gorm:"column:total_cents;not null"`
	PromoCode       *string             `gorm:"column:promo_code"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	PaymentProof    *string             `gorm:"column:payment_proof"`
	PaymentVerified bool                `gorm:"column:payment_verified;not null;default:false"`
	GiftCardID      *uuid.UUID          `gorm:"column:gift_card_id;type:uuid"`
	GiftCardCents   int64               `gorm:"column:gift_card_cents;not null;default:0"`
	PickupTime      time.Time           `gorm:"column:pickup_time;not null"`
	Items           []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CompletedAt     *time.Time          `gorm:"column:completed_at"`
	CancelledAt     *time.Time          `gorm:"column:cancelled_at"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
