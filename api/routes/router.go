package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mercaline/mercaline-backend/api/controllers"
	paymentcontrollers "github.com/mercaline/mercaline-backend/api/controllers/payments"
	"github.com/mercaline/mercaline-backend/api/middleware"
	"github.com/mercaline/mercaline-backend/internal/notifications"
	"github.com/mercaline/mercaline-backend/internal/orders"
	"github.com/mercaline/mercaline-backend/internal/payments"
	"github.com/mercaline/mercaline-backend/pkg/config"
	"github.com/mercaline/mercaline-backend/pkg/db"
	"github.com/mercaline/mercaline-backend/pkg/logger"
	"github.com/mercaline/mercaline-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	metricsHandler http.Handler,
	orderService orders.Service,
	notificationService notifications.Service,
	paymentService payments.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderCreate(orderService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(orderService, logg))
			r.Get("/{orderId}/notifications", controllers.OrderNotifications(notificationService, logg))
			r.Get("/{orderId}/payment-intent", paymentcontrollers.GetIntentByOrder(paymentService, logg))
		})

		r.Route("/payments/intents", func(r chi.Router) {
			r.Post("/", paymentcontrollers.CreateIntent(paymentService, logg))
			r.Get("/{intentId}", paymentcontrollers.GetIntent(paymentService, logg))
			r.Get("/{intentId}/events", paymentcontrollers.ListEvents(paymentService, logg))
			r.Post("/{intentId}/authorize", paymentcontrollers.Authorize(paymentService, logg))
			r.Post("/{intentId}/capture", paymentcontrollers.Capture(paymentService, logg))
			r.Post("/{intentId}/cancel", paymentcontrollers.Cancel(paymentService, logg))
			r.Post("/{intentId}/fail", paymentcontrollers.Fail(paymentService, logg))
			r.Post("/{intentId}/refund", paymentcontrollers.Refund(paymentService, logg))
			r.Post("/{intentId}/3ds/confirm", paymentcontrollers.Confirm3DSecure(paymentService, logg))
			if !cfg.App.IsProd() {
				r.Post("/{intentId}/simulate", paymentcontrollers.Simulate(paymentService, logg))
			}
		})
	})

	return r
}
