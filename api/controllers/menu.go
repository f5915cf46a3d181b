package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/mariel-soto/brewhaus-backend/api/responses"
	"github.com/mariel-soto/brewhaus-backend/internal/catalog"
	"github.com/mariel-soto/brewhaus-backend/pkg/db/models"
	pkgerrors "github.com/mariel-soto/brewhaus-backend/pkg/errors"
	"github.com/mariel-soto/brewhaus-backend/pkg/logger"
	"github.com/mariel-soto/brewhaus-backend/pkg/types"
)

type menuItemResponse struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Description *string     `json:"description,omitempty"`
	Category    string      `json:"category"`
	Price       types.Money `json:"price"`
}

// Menu lists items that are available and covered by current stock.
func Menu(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		items, err := svc.ListAvailable(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := make([]menuItemResponse, 0, len(items))
		for _, item := range items {
			resp = append(resp, newMenuItemResponse(item))
		}
		responses.WriteSuccess(w, resp)
	}
}

func newMenuItemResponse(item models.MenuItem) menuItemResponse {
	return menuItemResponse{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Category:    item.Category,
		Price:       types.NewMoney(item.PriceCents),
	}
}
