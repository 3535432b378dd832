package routers

import (
	"farmstay-service/internal/app/delivery/http/controllers"
	"farmstay-service/internal/app/delivery/http/middlewares"

	"github.com/go-chi/chi/v5"
)

func attachBookingRoutes(router chi.Router, middlewares *middlewares.Middlewares, bookingController *controllers.BookingController, paymentController *controllers.PaymentController) {
	router.With(middlewares.RequireSuperadminAPIKey).Get("/", bookingController.ListBookings)

	router.Group(func(r chi.Router) {
		r.Use(middlewares.Authenticate)

		r.Post("/", bookingController.CreateBooking)
		r.Get("/{bookingID}", bookingController.GetBooking)
		r.Post("/{bookingID}/cancel", bookingController.CancelBooking)

		r.Post("/{bookingID}/payments", paymentController.CreatePaymentRequest)
		r.Post("/{bookingID}/payments/retry", paymentController.RetryPaymentRequest)
		r.Post("/{bookingID}/payments/reconcile", paymentController.ReconcilePayment)
	})
}
