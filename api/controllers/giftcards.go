package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mariel-soto/brewhaus-backend/api/responses"
	"github.com/mariel-soto/brewhaus-backend/api/validators"
	"github.com/mariel-soto/brewhaus-backend/internal/giftcards"
	"github.com/mariel-soto/brewhaus-backend/pkg/db/models"
	pkgerrors "github.com/mariel-soto/brewhaus-backend/pkg/errors"
	"github.com/mariel-soto/brewhaus-backend/pkg/logger"
	"github.com/mariel-soto/brewhaus-backend/pkg/types"
)

type giftCardPurchaseRequest struct {
	AmountCents int64      `json:"amount_cents" validate:"required,min=1"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

type giftCardResponse struct {
	ID        uuid.UUID   `json:"id"`
	Code      string      `json:"code"`
	Amount    types.Money `json:"amount"`
	Balance   types.Money `json:"balance"`
	Active    bool        `json:"active"`
	Claimed   bool        `json:"claimed"`
	ExpiresAt *time.Time  `json:"expires_at,omitempty"`
}

func newGiftCardResponse(card *models.GiftCard) giftCardResponse {
	if card == nil {
		return giftCardResponse{}
	}
	return giftCardResponse{
		ID:        card.ID,
		Code:      card.Code,
		Amount:    types.NewMoney(card.AmountCents),
		Balance:   types.NewMoney(card.BalanceCents),
		Active:    card.Active,
		Claimed:   card.CustomerID != nil,
		ExpiresAt: card.ExpiresAt,
	}
}

// GiftCardPurchase issues a new card with a fresh code and full balance.
func GiftCardPurchase(svc giftcards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gift card service unavailable"))
			return
		}

		var payload giftCardPurchaseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		card, err := svc.Purchase(r.Context(), giftcards.PurchaseInput{
			AmountCents: payload.AmountCents,
			ExpiresAt:   payload.ExpiresAt,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newGiftCardResponse(card))
	}
}

// GiftCardLookup returns a card's remaining balance by code.
func GiftCardLookup(svc giftcards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gift card service unavailable"))
			return
		}

		code := strings.TrimSpace(chi.URLParam(r, "code"))
		if code == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "gift card code is required"))
			return
		}

		card, err := svc.Lookup(r.Context(), code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newGiftCardResponse(card))
	}
}
