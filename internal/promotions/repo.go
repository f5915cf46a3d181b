package promotions

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mariel-soto/brewhaus-backend/pkg/db/models"
)

// Repository exposes promo code persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindActiveByCode(ctx context.Context, code string) (*models.Promotion, error)
	ConsumeUsage(ctx context.Context, promotionID uuid.UUID) (bool, error)
	Create(ctx context.Context, promo *models.Promotion) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a promotions repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindActiveByCode(ctx context.Context, code string) (*models.Promotion, error) {
	var promo models.Promotion
	err := r.db.WithContext(ctx).
		Where("code = ? AND active = ?", strings.ToUpper(strings.TrimSpace(code)), true).
		First(&promo).Error
	if err != nil {
		return nil, err
	}
	return &promo, nil
}

// ConsumeUsage bumps used_count under the usage cap. A false return means the
// cap was already exhausted by a concurrent checkout and the caller must fail.
func (r *repository) ConsumeUsage(ctx context.Context, promotionID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE promotions
		SET used_count = used_count + 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND (usage_cap IS NULL OR used_count < usage_cap)
	`, promotionID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) Create(ctx context.Context, promo *models.Promotion) error {
	return r.db.WithContext(ctx).Create(promo).Error
}

// Eligibility checks a loaded promotion against a subtotal at a point in time.
// Callers surface the returned reason to the client verbatim.
func Eligibility(promo *models.Promotion, subtotalCents int64, now time.Time) (ok bool, reason string) {
	if promo == nil || !promo.Active {
		return false, "promo code is not active"
	}
	if promo.StartsAt != nil && now.Before(*promo.StartsAt) {
		return false, "promo code is not active yet"
	}
	if promo.EndsAt != nil && now.After(*promo.EndsAt) {
		return false, "promo code has expired"
	}
	if promo.UsageCap != nil && promo.UsedCount >= *promo.UsageCap {
		return false, "promo code usage limit reached"
	}
	if subtotalCents < promo.MinOrderCents {
		return false, "order does not meet the promo minimum"
	}
	return true, ""
}
