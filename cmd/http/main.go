package main

import (
	"context"
	"errors"
	"farmstay-service/internal/app/config"
	"farmstay-service/internal/app/contracts"
	"farmstay-service/internal/app/delivery/http/controllers"
	"farmstay-service/internal/app/delivery/http/middlewares"
	"farmstay-service/internal/app/delivery/http/routers"
	"farmstay-service/internal/app/drivers/database"
	"farmstay-service/internal/app/drivers/logger"
	"farmstay-service/internal/app/drivers/messaging"
	"farmstay-service/internal/app/drivers/storage"
	"farmstay-service/internal/app/services/core/auth"
	"farmstay-service/internal/app/services/core/bookings"
	"farmstay-service/internal/app/services/core/payments"
	"farmstay-service/internal/app/services/core/session"
	"farmstay-service/internal/app/services/shared/locker"
	"farmstay-service/internal/app/services/shared/metrics"
	"farmstay-service/internal/app/services/shared/payment_gateway"
	"farmstay-service/internal/app/services/shared/redis"
	"farmstay-service/internal/app/services/shared/sms"
	minioStorage "farmstay-service/internal/app/services/shared/storage"
	"farmstay-service/internal/pkg/constvars"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Version sets the default build version
var Version = "develop"

// Tag sets the default latest commit tag
var Tag = "0.0.1-rc"

const startupTimeout = 30 * time.Second

func main() {
	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()

	log := logger.NewZapLogger(driverConfig, internalConfig)
	log.Info("Starting farmstay service",
		zap.String("version", Version),
		zap.String("tag", Tag),
		zap.String("env", internalConfig.App.Env),
	)

	mongoDB := database.NewMongoDB(driverConfig)
	redisClient := database.NewRedisClient(driverConfig)
	rabbitMQConnection := messaging.NewRabbitMQ(driverConfig)
	minioClient := storage.NewMinio(driverConfig)
	chiRouter := chi.NewRouter()

	bootstrap := config.Bootstrap{
		Router:         chiRouter,
		MongoDB:        mongoDB,
		Redis:          redisClient,
		Logger:         log,
		RabbitMQ:       rabbitMQConnection,
		Minio:          minioClient,
		DriverConfig:   driverConfig,
		InternalConfig: internalConfig,
	}

	reconcileWorker, err := bootstrapingTheApp(bootstrap)
	if err != nil {
		log.Fatal("Failed to bootstrap the app", zap.Error(err))
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", internalConfig.App.Port),
		Handler:           chiRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	reconcileWorker.Start(workerCtx)

	go func() {
		log.Info("Server listening", zap.String("address", server.Addr))
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c

	log.Info("Waiting for pending requests that already received by server to be processed..")

	shutdownTimeout := time.Duration(internalConfig.App.ShutdownTimeoutInSeconds) * time.Second
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err = server.Shutdown(shutdownCtx)
	if err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	reconcileWorker.Stop()

	err = bootstrap.Shutdown(shutdownCtx)
	if err != nil {
		log.Error("Failed to release connections", zap.Error(err))
	}

	log.Info("Server exiting")
}

func bootstrapingTheApp(bootstrap config.Bootstrap) (*payments.ReconcileWorker, error) {
	internalConfig := bootstrap.InternalConfig
	driverConfig := bootstrap.DriverConfig
	log := bootstrap.Logger

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New("farmstay", registry)

	// Infrastructure
	messaging.DeclareDurableQueue(bootstrap.RabbitMQ, internalConfig.RabbitMQ.SMSQueue)
	storage.EnsureBucket(ctx, bootstrap.Minio, internalConfig.Minio.CallbackArchiveBucketName)

	redisRepository := redis.NewRedisRepository(bootstrap.Redis)
	lockService := locker.NewLockService(redisRepository, log)
	objectStorage := minioStorage.NewMinioStorage(bootstrap.Minio)

	smsService, err := sms.NewSMSService(bootstrap.RabbitMQ, log, internalConfig.RabbitMQ.SMSQueue)
	if err != nil {
		return nil, err
	}

	// Repositories
	bookingRepository := bookings.NewBookingMongoRepository(bootstrap.MongoDB)
	paymentRequestRepository := payments.NewPaymentRequestMongoRepository(bootstrap.MongoDB)
	if err := bookingRepository.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	if err := paymentRequestRepository.EnsureIndexes(ctx); err != nil {
		return nil, err
	}

	// Payment gateway
	noqoodyConfig := internalConfig.Noqoody
	signer, err := payment_gateway.NewSigner(
		noqoodyConfig.ClientSecret,
		noqoodyConfig.SignatureFields,
		noqoodyConfig.CallbackSignatureFields,
		noqoodyConfig.SignatureEncoding,
	)
	if err != nil {
		return nil, err
	}
	paymentGateway := payment_gateway.NewNoqoodyService(internalConfig, redisRepository, appMetrics, log)

	// Usecases
	sessionService := session.NewSessionService(redisRepository, log)
	otpProvider, err := newOTPProvider(driverConfig, internalConfig, redisRepository, smsService, log)
	if err != nil {
		return nil, err
	}
	authUsecase, err := auth.NewAuthUsecase(redisRepository, otpProvider, sessionService, smsService, internalConfig, appMetrics, log)
	if err != nil {
		return nil, err
	}
	bookingUsecase := bookings.NewBookingUsecase(bookingRepository, paymentRequestRepository, internalConfig, appMetrics, log)
	paymentUsecase := payments.NewPaymentUsecase(payments.PaymentUsecaseDeps{
		BookingRepository:        bookingRepository,
		PaymentRequestRepository: paymentRequestRepository,
		PaymentGateway:           paymentGateway,
		Signer:                   signer,
		Locker:                   lockService,
		SMSService:               smsService,
		Storage:                  objectStorage,
		InternalConfig:           internalConfig,
		Metrics:                  appMetrics,
		Log:                      log,
	})

	// Delivery
	middlewareInstance := middlewares.NewMiddlewares(log, authUsecase, internalConfig)
	routers.SetupRoutes(bootstrap.Router, internalConfig, middlewareInstance, routers.Controllers{
		Auth:    controllers.NewAuthController(log, authUsecase),
		Booking: controllers.NewBookingController(log, bookingUsecase, internalConfig),
		Payment: controllers.NewPaymentController(log, paymentUsecase),
	}, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	reconcileWorker := payments.NewReconcileWorker(log, internalConfig, lockService, bookingRepository, paymentUsecase)
	return reconcileWorker, nil
}

func newOTPProvider(
	driverConfig *config.DriverConfig,
	internalConfig *config.InternalConfig,
	redisRepository contracts.RedisRepository,
	smsService contracts.SMSService,
	log *zap.Logger,
) (contracts.OTPProvider, error) {
	switch internalConfig.App.OTPProvider {
	case constvars.OTPProviderSupertokens:
		if err := auth.InitSupertokens(driverConfig, smsService, log); err != nil {
			return nil, err
		}
		log.Info("Successfully initialized supertokens passwordless OTP provider")
		return auth.NewSupertokensOTPProvider(redisRepository, driverConfig, log), nil
	default:
		return auth.NewRedisOTPProvider(redisRepository), nil
	}
}
