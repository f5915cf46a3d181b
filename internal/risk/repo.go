package risk

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mariel-soto/brewhaus-backend/pkg/db/models"
)

// Repository exposes blacklist persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindActiveMatch(ctx context.Context, customerID uuid.UUID, email, phone *string) (*models.BlacklistEntry, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID) (*models.BlacklistEntry, error)
	Create(ctx context.Context, entry *models.BlacklistEntry) error
	Increment(ctx context.Context, customerID uuid.UUID, column string) (bool, error)
	Activate(ctx context.Context, customerID uuid.UUID, reason string) error
	ListActive(ctx context.Context) ([]models.BlacklistEntry, error)
	Deactivate(ctx context.Context, entryID uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a risk repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// FindActiveMatch ORs the customer id with their contact details so a new
// account reusing a blocked email or phone is still caught.
func (r *repository) FindActiveMatch(ctx context.Context, customerID uuid.UUID, email, phone *string) (*models.BlacklistEntry, error) {
	query := r.db.WithContext(ctx).Where("active = ?", true)

	match := r.db.Where("customer_id = ?", customerID)
	if email != nil && *email != "" {
		match = match.Or("email = ?", *email)
	}
	if phone != nil && *phone != "" {
		match = match.Or("phone = ?", *phone)
	}

	var entry models.BlacklistEntry
	if err := query.Where(match).First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) FindByCustomer(ctx context.Context, customerID uuid.UUID) (*models.BlacklistEntry, error) {
	var entry models.BlacklistEntry
	if err := r.db.WithContext(ctx).Where("customer_id = ?", customerID).First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) Create(ctx context.Context, entry *models.BlacklistEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// Increment bumps the counter column in place so two concurrent bumps for the
// same customer never lose an update. Returns false when no entry exists yet.
func (r *repository) Increment(ctx context.Context, customerID uuid.UUID, column string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.BlacklistEntry{}).
		Where("customer_id = ?", customerID).
		Updates(map[string]any{column: gorm.Expr(column + " + 1")})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) Activate(ctx context.Context, customerID uuid.UUID, reason string) error {
	return r.db.WithContext(ctx).
		Model(&models.BlacklistEntry{}).
		Where("customer_id = ? AND active = ?", customerID, false).
		Updates(map[string]any{"active": true, "reason": reason}).Error
}

func (r *repository) ListActive(ctx context.Context) ([]models.BlacklistEntry, error) {
	var entries []models.BlacklistEntry
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("updated_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) Deactivate(ctx context.Context, entryID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.BlacklistEntry{}).
		Where("id = ? AND active = ?", entryID, true).
		Updates(map[string]any{"active": false})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
