package notifications

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/mariel-soto/brewhaus-backend/pkg/db/models"
	"github.com/mariel-soto/brewhaus-backend/pkg/enums"
	"github.com/mariel-soto/brewhaus-backend/pkg/logger"
	"github.com/mariel-soto/brewhaus-backend/pkg/metrics"
)

// Sink delivers one notification over one channel (in-app row, log line).
type Sink interface {
	Name() string
	Deliver(ctx context.Context, notification *models.Notification) error
}

// Notifier dispatches order status notifications. Dispatch is fire and
// forget: it runs after the order transaction commits, fans out to every
// sink, and never surfaces errors to the caller.
type Notifier interface {
	OrderStatus(customerID, orderID uuid.UUID, status enums.OrderStatus)
	Wait()
}

type dispatcher struct {
	sinks   []Sink
	log     *logger.Logger
	metrics *metrics.OrderMetrics
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewNotifier builds a dispatcher over the given sinks.
func NewNotifier(log *logger.Logger, m *metrics.OrderMetrics, sinks ...Sink) (Notifier, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if len(sinks) == 0 {
		return nil, fmt.Errorf("at least one sink required")
	}
	return &dispatcher{
		sinks:   sinks,
		log:     log,
		metrics: m,
		timeout: 10 * time.Second,
	}, nil
}

func (d *dispatcher) OrderStatus(customerID, orderID uuid.UUID, status enums.OrderStatus) {
	oid := orderID
	notification := &models.Notification{
		CustomerID: customerID,
		OrderID:    &oid,
		Type:       enums.NotificationOrderStatus,
		Title:      titleFor(status),
		Message:    messageFor(status),
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		d.dispatch(ctx, notification)
	}()
}

// Wait blocks until in-flight dispatches finish. Used on shutdown and in tests.
func (d *dispatcher) Wait() {
	d.wg.Wait()
}

func (d *dispatcher) dispatch(ctx context.Context, notification *models.Notification) {
	var errs error
	for _, sink := range d.sinks {
		if err := sink.Deliver(ctx, notification); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
		}
	}
	if errs != nil {
		d.metrics.IncNotificationFailure()
		ctx = d.log.WithOrderID(ctx, orderIDString(notification))
		d.log.Error(ctx, "notification dispatch failed", errs)
	}
}

func orderIDString(notification *models.Notification) string {
	if notification.OrderID == nil {
		return ""
	}
	return notification.OrderID.String()
}

func titleFor(status enums.OrderStatus) string {
	switch status {
	case enums.OrderStatusPending:
		return "Order received"
	case enums.OrderStatusConfirmed:
		return "Order confirmed"
	case enums.OrderStatusPreparing:
		return "Order in preparation"
	case enums.OrderStatusReady:
		return "Order ready for pickup"
	case enums.OrderStatusCompleted:
		return "Order completed"
	case enums.OrderStatusCancelled:
		return "Order cancelled"
	default:
		return "Order update"
	}
}

func messageFor(status enums.OrderStatus) string {
	switch status {
	case enums.OrderStatusPending:
		return "We received your order and will confirm it shortly."
	case enums.OrderStatusConfirmed:
		return "Your order is confirmed and queued for preparation."
	case enums.OrderStatusPreparing:
		return "The baristas are working on your order."
	case enums.OrderStatusReady:
		return "Your order is ready. See you at the counter!"
	case enums.OrderStatusCompleted:
		return "Thanks for visiting. Points for this order were added to your account."
	case enums.OrderStatusCancelled:
		return "Your order was cancelled."
	default:
		return "Your order status changed."
	}
}

// InAppSink persists notifications so customers see them in the app.
type InAppSink struct {
	repo Repository
}

// NewInAppSink builds the persistence-backed sink.
func NewInAppSink(repo Repository) *InAppSink {
	return &InAppSink{repo: repo}
}

func (s *InAppSink) Name() string { return "in_app" }

func (s *InAppSink) Deliver(ctx context.Context, notification *models.Notification) error {
	return s.repo.Create(ctx, notification)
}

// LogSink writes a structured log line per notification. It stands in for
// external channels (email, push) that are out of scope here.
type LogSink struct {
	log *logger.Logger
}

// NewLogSink builds the log-backed sink.
func NewLogSink(log *logger.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Deliver(ctx context.Context, notification *models.Notification) error {
	ctx = s.log.WithCustomerID(ctx, notification.CustomerID.String())
	if notification.OrderID != nil {
		ctx = s.log.WithOrderID(ctx, notification.OrderID.String())
	}
	s.log.Info(ctx, fmt.Sprintf("notify: %s", notification.Title))
	return nil
}
