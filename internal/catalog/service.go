package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mariel-soto/brewhaus-backend/pkg/db/models"
	pkgerrors "github.com/mariel-soto/brewhaus-backend/pkg/errors"
)

// Service serves the storefront menu. Availability combines the item flag
// with live stock coverage: an item whose recipe cannot be made once is
// hidden even when flagged available.
type Service interface {
	ListAvailable(ctx context.Context) ([]models.MenuItem, error)
	Get(ctx context.Context, id uuid.UUID) (*models.MenuItem, error)
}

type service struct {
	repo Repository
}

// NewService wires catalog dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListAvailable(ctx context.Context) ([]models.MenuItem, error) {
	items, err := s.repo.ListAvailable(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list menu")
	}

	sellable := make([]models.MenuItem, 0, len(items))
	for _, item := range items {
		if CoversOneUnit(&item) {
			sellable = append(sellable, item)
		}
	}
	return sellable, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load menu item")
	}
	return item, nil
}

// CoversOneUnit reports whether current stock covers one unit of the item's
// recipe. Items without recipe entries are untracked and always covered.
func CoversOneUnit(item *models.MenuItem) bool {
	for _, entry := range item.Recipe {
		if entry.Ingredient == nil {
			continue
		}
		if !entry.Ingredient.Active || entry.Ingredient.Stock < entry.Quantity {
			return false
		}
	}
	return true
}
