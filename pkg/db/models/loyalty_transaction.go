package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mariel-soto/brewhaus-backend/pkg/enums"
)

// LoyaltyTransaction is an append-only ledger row. At most one "earned" row
// exists per order id; that existence check is the accrual idempotence guard.
type LoyaltyTransaction struct {
	ID          uuid.UUID                    `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID  uuid.UUID                    `gorm:"column:customer_id;type:uuid;not null;index"`
	OrderID     *uuid.UUID                   `gorm:"column:order_id;type:uuid;index"`
	Type        enums.LoyaltyTransactionType `gorm:"column:type;type:text;not null"`
	PointsDelta int64                        `gorm:"column:points_delta;not null"`
	Reason      string                       `gorm:"column:reason;not null"`
	CreatedAt   time.Time                    `gorm:"column:created_at;autoCreateTime"`
}
