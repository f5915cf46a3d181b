package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mariel-soto/brewhaus-backend/api/controllers"
	"github.com/mariel-soto/brewhaus-backend/api/middleware"
	"github.com/mariel-soto/brewhaus-backend/internal/catalog"
	"github.com/mariel-soto/brewhaus-backend/internal/giftcards"
	"github.com/mariel-soto/brewhaus-backend/internal/notifications"
	"github.com/mariel-soto/brewhaus-backend/internal/orders"
	"github.com/mariel-soto/brewhaus-backend/internal/pricing"
	"github.com/mariel-soto/brewhaus-backend/pkg/config"
	"github.com/mariel-soto/brewhaus-backend/pkg/db"
	"github.com/mariel-soto/brewhaus-backend/pkg/logger"
	"github.com/mariel-soto/brewhaus-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	catalogService catalog.Service,
	pricingEngine pricing.Engine,
	ordersService orders.Service,
	giftCardService giftcards.Service,
	notificationsService notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Get("/healthz", controllers.HealthLive(cfg))
	r.Get("/readyz", controllers.HealthReady(cfg, logg, dbP, redisPinger(redisClient)))

	if registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	} else {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(idempotencyStore(redisClient), logg))

		r.Get("/menu", controllers.Menu(catalogService, logg))
		r.Post("/cart/quote", controllers.CartQuote(pricingEngine, logg))
		r.Post("/checkout", controllers.Checkout(ordersService, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/{orderID}", controllers.OrderDetail(ordersService, logg))
			r.Post("/{orderID}/status", controllers.OrderTransition(ordersService, logg))
			r.Post("/{orderID}/no-show", controllers.OrderNoShow(ordersService, logg))
			r.Post("/{orderID}/verify-payment", controllers.OrderVerifyPayment(ordersService, logg))
		})

		r.Route("/gift-cards", func(r chi.Router) {
			r.Post("/", controllers.GiftCardPurchase(giftCardService, logg))
			r.Get("/{code}", controllers.GiftCardLookup(giftCardService, logg))
		})

		r.Route("/customers/{customerID}", func(r chi.Router) {
			r.Get("/orders", controllers.CustomerOrders(ordersService, logg))
			r.Get("/notifications", controllers.ListNotifications(notificationsService, logg))
			r.Post("/notifications/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
		})

		r.Post("/notifications/{notificationID}/read", controllers.MarkNotificationRead(notificationsService, logg))
	})

	return r
}

// idempotencyStore avoids handing the middleware a typed-nil interface when
// redis is not wired, e.g. in router tests.
func idempotencyStore(client *redis.Client) redis.IdempotencyStore {
	if client == nil {
		return nil
	}
	return client
}

func redisPinger(client *redis.Client) redis.Pinger {
	if client == nil {
		return nil
	}
	return client
}
