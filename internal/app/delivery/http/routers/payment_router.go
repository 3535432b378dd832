package routers

import (
	"farmstay-service/internal/app/delivery/http/controllers"
	"farmstay-service/internal/app/delivery/http/middlewares"

	"github.com/go-chi/chi/v5"
)

func attachPaymentRoutes(router chi.Router, middlewares *middlewares.Middlewares, paymentController *controllers.PaymentController) {
	router.With(middlewares.BodyBuffer).Post("/callback", paymentController.PaymentCallback)
	router.Get("/return", paymentController.PaymentReturn)
}
