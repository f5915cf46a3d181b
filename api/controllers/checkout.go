package controllers

import (
	"net/http"
	"time"

	"github.com/mariel-soto/brewhaus-backend/api/responses"
	"github.com/mariel-soto/brewhaus-backend/api/validators"
	"github.com/mariel-soto/brewhaus-backend/internal/orders"
	"github.com/mariel-soto/brewhaus-backend/internal/pricing"
	pkgerrors "github.com/mariel-soto/brewhaus-backend/pkg/errors"
	"github.com/mariel-soto/brewhaus-backend/pkg/logger"
)

type checkoutRequest struct {
	quoteRequest
	PickupTime time.Time `json:"pickup_time" validate:"required"`
}

// Checkout submits a cart and produces a paid, inventory-consuming order.
func Checkout(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		req, err := payload.toPricingRequest()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		lines := make([]pricing.LineInput, len(req.Lines))
		copy(lines, req.Lines)

		order, err := svc.Create(r.Context(), orders.CreateInput{
			CustomerID:    payload.CustomerID,
			Lines:         lines,
			PromoCode:     payload.PromoCode,
			GiftCardCode:  payload.GiftCardCode,
			PaymentMethod: req.PaymentMethod,
			PaymentProof:  payload.PaymentProof,
			PickupTime:    payload.PickupTime,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(order))
	}
}
