package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mariel-soto/brewhaus-backend/internal/orders"
	"github.com/mariel-soto/brewhaus-backend/pkg/db/models"
	"github.com/mariel-soto/brewhaus-backend/pkg/enums"
	pkgerrors "github.com/mariel-soto/brewhaus-backend/pkg/errors"
)

func requestWithOrderID(method, target, orderID string, body string) *http.Request {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("orderID", orderID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestOrderTransitionSuccess(t *testing.T) {
	orderID := uuid.New()
	var gotInput orders.TransitionInput
	svc := &testOrdersService{
		transitionFn: func(_ context.Context, input orders.TransitionInput) (*models.Order, error) {
			gotInput = input
			return &models.Order{ID: input.OrderID, Status: input.Target}, nil
		},
	}

	req := requestWithOrderID(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/status", orderID.String(), `{"status":"confirmed"}`)
	resp := httptest.NewRecorder()
	OrderTransition(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if gotInput.OrderID != orderID {
		t.Fatalf("unexpected order id %s", gotInput.OrderID)
	}
	if gotInput.Target != enums.OrderStatusConfirmed {
		t.Fatalf("unexpected target %s", gotInput.Target)
	}
}

func TestOrderTransitionRejectsUnknownStatus(t *testing.T) {
	svc := &testOrdersService{
		transitionFn: func(context.Context, orders.TransitionInput) (*models.Order, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}

	orderID := uuid.NewString()
	req := requestWithOrderID(http.MethodPost, "/api/v1/orders/"+orderID+"/status", orderID, `{"status":"teleported"}`)
	resp := httptest.NewRecorder()
	OrderTransition(svc, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestOrderTransitionMapsStateConflict(t *testing.T) {
	svc := &testOrdersService{
		transitionFn: func(context.Context, orders.TransitionInput) (*models.Order, error) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot move order from pending to completed")
		},
	}

	orderID := uuid.NewString()
	req := requestWithOrderID(http.MethodPost, "/api/v1/orders/"+orderID+"/status", orderID, `{"status":"completed"}`)
	resp := httptest.NewRecorder()
	OrderTransition(svc, testLogger())(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

func TestOrderDetailRejectsMalformedID(t *testing.T) {
	req := requestWithOrderID(http.MethodGet, "/api/v1/orders/not-a-uuid", "not-a-uuid", "")
	resp := httptest.NewRecorder()
	OrderDetail(&testOrdersService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestOrderNoShowCallsService(t *testing.T) {
	orderID := uuid.New()
	called := false
	svc := &testOrdersService{
		noShowFn: func(_ context.Context, id uuid.UUID) error {
			called = true
			if id != orderID {
				t.Fatalf("unexpected order id %s", id)
			}
			return nil
		},
	}

	req := requestWithOrderID(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/no-show", orderID.String(), "")
	resp := httptest.NewRecorder()
	OrderNoShow(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !called {
		t.Fatal("expected service called")
	}
}

func TestOrderVerifyPaymentMapsStateConflict(t *testing.T) {
	svc := &testOrdersService{
		verifyFn: func(context.Context, uuid.UUID) error {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is already closed")
		},
	}

	orderID := uuid.NewString()
	req := requestWithOrderID(http.MethodPost, "/api/v1/orders/"+orderID+"/verify-payment", orderID, "")
	resp := httptest.NewRecorder()
	OrderVerifyPayment(svc, testLogger())(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}
