package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mariel-soto/brewhaus-backend/pkg/enums"
)

// GiftCardTransaction is an append-only ledger row per purchase/redemption.
// Rows are immutable once written.
type GiftCardTransaction struct {
	ID          uuid.UUID                     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GiftCardID  uuid.UUID                     `gorm:"column:gift_card_id;type:uuid;not null;index"`
	OrderID     *uuid.UUID                    `gorm:"column:order_id;type:uuid;index"`
	Type        enums.GiftCardTransactionType `gorm:"column:type;type:text;not null"`
	AmountCents int64                         `gorm:"column:amount_cents;not null"`
	CreatedAt   time.Time                     `gorm:"column:created_at;autoCreateTime"`
}
