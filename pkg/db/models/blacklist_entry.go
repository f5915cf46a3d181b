package models

import (
	"time"

	"github.com/google/uuid"
)

// BlacklistEntry tracks no-show/cancellation counters per customer and flips
// Active once a threshold is crossed. Email/phone are kept so a banned person
// retrying with a fresh account but the same contact details is still caught.
type BlacklistEntry struct {
	ID                uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID        *uuid.UUID `gorm:"column:customer_id;type:uuid;index"`
	Email             *string    `gorm:"column:email;index"`
	Phone             *string    `gorm:"column:phone;index"`
	Reason            string     `gorm:"column:reason;not null;default:''"`
	NoShowCount       int64      `gorm:"column:no_show_count;not null;default:0"`
	CancellationCount int64      `gorm:"column:cancellation_count;not null;default:0"`
	Active            bool       `gorm:"column:active;not null;default:false"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
