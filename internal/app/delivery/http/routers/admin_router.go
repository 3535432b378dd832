package routers

import (
	"farmstay-service/internal/app/delivery/http/controllers"
	"farmstay-service/internal/app/delivery/http/middlewares"

	"github.com/go-chi/chi/v5"
)

func attachAdminRoutes(router chi.Router, middlewares *middlewares.Middlewares, paymentController *controllers.PaymentController) {
	router.Use(middlewares.RequireSuperadminAPIKey)
	router.Put("/bookings/{bookingID}/payment-status", paymentController.OverridePaymentStatus)
}
