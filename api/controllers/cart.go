package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/mariel-soto/brewhaus-backend/api/responses"
	"github.com/mariel-soto/brewhaus-backend/api/validators"
	"github.com/mariel-soto/brewhaus-backend/internal/pricing"
	"github.com/mariel-soto/brewhaus-backend/pkg/enums"
	pkgerrors "github.com/mariel-soto/brewhaus-backend/pkg/errors"
	"github.com/mariel-soto/brewhaus-backend/pkg/logger"
)

type cartLineRequest struct {
	MenuItemID uuid.UUID `json:"menu_item_id" validate:"required"`
	Quantity   int64     `json:"quantity" validate:"required,min=1"`
}

type quoteRequest struct {
	CustomerID    uuid.UUID         `json:"customer_id" validate:"required"`
	Lines         []cartLineRequest `json:"lines" validate:"required,min=1,dive"`
	PromoCode     *string           `json:"promo_code,omitempty"`
	GiftCardCode  *string           `json:"gift_card_code,omitempty"`
	PaymentMethod string            `json:"payment_method" validate:"required"`
	PaymentProof  *string           `json:"payment_proof,omitempty"`
}

func (q quoteRequest) toPricingRequest() (pricing.Request, error) {
	method, err := enums.ParsePaymentMethod(q.PaymentMethod)
	if err != nil {
		return pricing.Request{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
	}
	lines := make([]pricing.LineInput, 0, len(q.Lines))
	for _, line := range q.Lines {
		lines = append(lines, pricing.LineInput{MenuItemID: line.MenuItemID, Quantity: line.Quantity})
	}
	return pricing.Request{
		CustomerID:    q.CustomerID,
		Lines:         lines,
		PromoCode:     q.PromoCode,
		GiftCardCode:  q.GiftCardCode,
		PaymentMethod: method,
		PaymentProof:  q.PaymentProof,
	}, nil
}

// CartQuote prices a cart without consuming promo usage, stock, or gift card
// balance. The returned quote is what checkout would charge right now.
func CartQuote(engine pricing.Engine, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if engine == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing engine unavailable"))
			return
		}

		var payload quoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		req, err := payload.toPricingRequest()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := engine.Quote(r.Context(), req)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}
