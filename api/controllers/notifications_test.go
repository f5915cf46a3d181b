package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mariel-soto/brewhaus-backend/internal/notifications"
)

type testNotificationsService struct {
	listFn        func(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error)
	markReadFn    func(ctx context.Context, customerID, notificationID uuid.UUID) error
	markAllReadFn func(ctx context.Context, customerID uuid.UUID) (int64, error)
}

func (s *testNotificationsService) List(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
	if s.listFn != nil {
		return s.listFn(ctx, params)
	}
	return &notifications.ListResult{}, nil
}

func (s *testNotificationsService) MarkRead(ctx context.Context, customerID, notificationID uuid.UUID) error {
	if s.markReadFn != nil {
		return s.markReadFn(ctx, customerID, notificationID)
	}
	return nil
}

func (s *testNotificationsService) MarkAllRead(ctx context.Context, customerID uuid.UUID) (int64, error) {
	if s.markAllReadFn != nil {
		return s.markAllReadFn(ctx, customerID)
	}
	return 0, nil
}

func requestWithCustomerID(method, target, customerID string, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("customerID", customerID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestListNotificationsParsesQuery(t *testing.T) {
	customerID := uuid.New()
	var gotParams notifications.ListParams
	svc := &testNotificationsService{
		listFn: func(_ context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
			gotParams = params
			return &notifications.ListResult{}, nil
		},
	}

	req := requestWithCustomerID(http.MethodGet,
		"/api/v1/customers/"+customerID.String()+"/notifications?limit=5&unreadOnly=true",
		customerID.String(), "")
	resp := httptest.NewRecorder()
	ListNotifications(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if gotParams.CustomerID != customerID {
		t.Fatalf("unexpected customer %s", gotParams.CustomerID)
	}
	if gotParams.Limit != 5 || !gotParams.UnreadOnly {
		t.Fatalf("unexpected params %+v", gotParams)
	}
}

func TestListNotificationsRejectsBadLimit(t *testing.T) {
	customerID := uuid.NewString()
	req := requestWithCustomerID(http.MethodGet,
		"/api/v1/customers/"+customerID+"/notifications?limit=zero",
		customerID, "")
	resp := httptest.NewRecorder()
	ListNotifications(&testNotificationsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestMarkNotificationReadSuccess(t *testing.T) {
	customerID := uuid.New()
	notificationID := uuid.New()
	called := false
	svc := &testNotificationsService{
		markReadFn: func(_ context.Context, cid, nid uuid.UUID) error {
			called = true
			if cid != customerID {
				t.Fatalf("unexpected customer %s", cid)
			}
			if nid != notificationID {
				t.Fatalf("unexpected notification %s", nid)
			}
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodPost,
		"/api/v1/notifications/"+notificationID.String()+"/read",
		strings.NewReader(`{"customer_id":"`+customerID.String()+`"}`))
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("notificationID", notificationID.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	resp := httptest.NewRecorder()
	MarkNotificationRead(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if !called {
		t.Fatal("expected service called")
	}
}

func TestMarkAllNotificationsReadReturnsCount(t *testing.T) {
	customerID := uuid.New()
	svc := &testNotificationsService{
		markAllReadFn: func(context.Context, uuid.UUID) (int64, error) {
			return 3, nil
		},
	}

	req := requestWithCustomerID(http.MethodPost,
		"/api/v1/customers/"+customerID.String()+"/notifications/read-all",
		customerID.String(), "")
	resp := httptest.NewRecorder()
	MarkAllNotificationsRead(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"updated":3`) {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}
