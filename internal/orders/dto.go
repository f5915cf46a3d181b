package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/mariel-soto/brewhaus-backend/internal/pricing"
	"github.com/mariel-soto/brewhaus-backend/pkg/enums"
)

// CreateInput is a checkout request: the cart plus payment intent.
type CreateInput struct {
	CustomerID    uuid.UUID
	Lines         []pricing.LineInput
	PromoCode     *string
	GiftCardCode  *string
	PaymentMethod enums.PaymentMethod
	PaymentProof  *string
	PickupTime    time.Time
}

// TransitionInput moves an order to a target status.
type TransitionInput struct {
	OrderID uuid.UUID
	Target  enums.OrderStatus
}
