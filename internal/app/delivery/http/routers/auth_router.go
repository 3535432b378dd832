package routers

import (
	"farmstay-service/internal/app/delivery/http/controllers"
	"farmstay-service/internal/app/delivery/http/middlewares"

	"github.com/go-chi/chi/v5"
)

func attachAuthRoutes(router chi.Router, middlewares *middlewares.Middlewares, authController *controllers.AuthController) {
	router.Post("/otp/request", authController.RequestOTP)
	router.Post("/otp/verify", authController.VerifyOTP)
	router.With(middlewares.Authenticate).Post("/logout", authController.Logout)
}
