package config

import (
	"farmstay-service/internal/pkg/constvars"
	"farmstay-service/internal/pkg/utils"
	"log"
	"strings"

	"github.com/joho/godotenv"
)

func init() {
	godotenv.Load()
}

func NewDriverConfig() *DriverConfig {
	return &DriverConfig{
		MongoDB: MongoDB{
			Port:     utils.GetEnvString("MONGODB_PORT", "27017"),
			Host:     utils.GetEnvString("MONGODB_HOST", "localhost"),
			DbName:   utils.GetEnvString("MONGODB_DB_NAME", "farmstay"),
			Username: utils.GetEnvString("MONGODB_USERNAME", "defaultUsername"),
			Password: utils.GetEnvString("MONGODB_PASSWORD", "defaultPassword"),
		},
		Redis: Redis{
			Host:     utils.GetEnvString("REDIS_HOST", "localhost"),
			Port:     utils.GetEnvString("REDIS_PORT", "6379"),
			Password: utils.GetEnvString("REDIS_PASSWORD", ""),
		},
		Logger: Logger{
			Level:               utils.GetEnvString("LOGGER_LEVEL", "debug"),
			OutputFileName:      utils.GetEnvString("LOGGER_OUTPUT_FILENAME", "logger.log"),
			OutputErrorFileName: utils.GetEnvString("LOGGER_OUTPUT_ERROR_FILENAME", "logger_error.log"),
		},
		RabbitMQ: RabbitMQ{
			Port:     utils.GetEnvString("RABBITMQ_PORT", "5672"),
			Host:     utils.GetEnvString("RABBITMQ_HOST", "localhost"),
			Username: utils.GetEnvString("RABBITMQ_USERNAME", "guest"),
			Password: utils.GetEnvString("RABBITMQ_PASSWORD", "guest"),
		},
		Minio: Minio{
			Port:     utils.GetEnvString("MINIO_PORT", "9000"),
			Host:     utils.GetEnvString("MINIO_HOST", "localhost"),
			Username: utils.GetEnvString("MINIO_USERNAME", "defaultUsername"),
			Password: utils.GetEnvString("MINIO_PASSWORD", "defaultPassword"),
			UseSSL:   utils.GetEnvBool("MINIO_USE_SSL", false),
		},
		Supertoken: Supertoken{
			ConnectionURI: utils.GetEnvString("SUPERTOKEN_CONNECTION_URI", "http://localhost:3567"),
			APIKey:        utils.GetEnvString("SUPERTOKEN_API_KEY", ""),
			AppName:       utils.GetEnvString("SUPERTOKEN_APP_NAME", "farmstay"),
			ApiDomain:     utils.GetEnvString("SUPERTOKEN_API_DOMAIN", "http://localhost:8080"),
			WebsiteDomain: utils.GetEnvString("SUPERTOKEN_WEBSITE_DOMAIN", "http://localhost:3000"),
			ApiBasePath:   utils.GetEnvString("SUPERTOKEN_API_BASE_PATH", "/auth"),
			TenantID:      utils.GetEnvString("SUPERTOKEN_TENANT_ID", "public"),
		},
	}
}

func NewInternalConfig() *InternalConfig {
	return &InternalConfig{
		App: App{
			Env:                                   utils.GetEnvString("APP_ENV", "development"),
			Port:                                  utils.GetEnvString("APP_PORT", "8080"),
			Version:                               utils.GetEnvString("APP_VERSION", "v1"),
			Address:                               utils.GetEnvString("APP_ADDRESS", "localhost"),
			BaseUrl:                               utils.GetEnvString("APP_BASE_URL", "http://localhost:8080"),
			FrontendDomain:                        utils.GetEnvString("APP_FRONTEND_DOMAIN", "http://localhost:3000"),
			EndpointPrefix:                        utils.GetEnvString("APP_ENDPOINT_PREFIX", "api"),
			Currency:                              utils.GetEnvString("APP_CURRENCY", constvars.DefaultCurrency),
			MaxRequests:                           utils.GetEnvInt("APP_MAX_REQUEST", 100),
			ShutdownTimeoutInSeconds:              utils.GetEnvInt("APP_SHUTDOWN_TIMEOUT_IN_SECONDS", 10),
			MaxTimeRequestsPerSeconds:             utils.GetEnvInt("APP_MAX_TIME_REQUESTS_PER_SECONDS", 60),
			RequestBodyLimitInMegabyte:            utils.GetEnvInt("APP_REQUEST_BODY_LIMIT_IN_MEGABYTE", 1),
			LoginSessionExpiredTimeInHours:        utils.GetEnvInt("APP_LOGIN_SESSION_EXPIRED_TIME_IN_HOURS", 24),
			SMSOTPExpiredTimeInMinutes:            utils.GetEnvInt("APP_SMS_OTP_EXPIRED_TIME_IN_MINUTES", 5),
			SMSOTPRequestRateLimit:                utils.GetEnvInt("APP_SMS_OTP_REQUEST_RATE_LIMIT", 3),
			SMSOTPRequestWindowInSeconds:          utils.GetEnvInt("APP_SMS_OTP_REQUEST_WINDOW_IN_SECONDS", 600),
			PaymentGatewayRequestTimeoutInSeconds: utils.GetEnvInt("APP_PAYMENT_GATEWAY_REQUEST_TIMEOUT_IN_SECONDS", 15),
			PaymentLockExpiredTimeInSeconds:       utils.GetEnvInt("APP_PAYMENT_LOCK_EXPIRED_TIME_IN_SECONDS", 30),
			SuperadminAPIKey:                      utils.GetEnvString("APP_SUPERADMIN_API_KEY", ""),
			SuperadminAPIKeyRateLimit:             utils.GetEnvInt("APP_SUPERADMIN_API_KEY_RATE_LIMIT", 60),
			ReconcileWorkerCronSpec:               utils.GetEnvString("APP_RECONCILE_WORKER_CRON_SPEC", "@every 5m"),
			ReconcileStaleAfterInSeconds:          utils.GetEnvInt("APP_RECONCILE_STALE_AFTER_IN_SECONDS", 900),
			ReconcileBatchSize:                    utils.GetEnvInt("APP_RECONCILE_BATCH_SIZE", 50),
			OTPProvider:                           utils.GetEnvString("APP_OTP_PROVIDER", constvars.OTPProviderRedis),
		},
		JWT: AppJWT{
			Secret: utils.GetEnvString("JWT_SECRET", "anyjwt"),
		},
		Minio: AppMinio{
			CallbackArchiveBucketName: utils.GetEnvString("MINIO_CALLBACK_ARCHIVE_BUCKET_NAME", "payment-callbacks"),
		},
		RabbitMQ: AppRabbitMQ{
			SMSQueue: utils.GetEnvString("RABBITMQ_SMS_QUEUE", "sms"),
		},
		Noqoody: AppNoqoody{
			BaseUrl:            utils.GetEnvString("NOQOODY_BASE_URL", "https://sandbox.enoqoody.com"),
			Username:           utils.GetEnvString("NOQOODY_USERNAME", ""),
			Password:           utils.GetEnvString("NOQOODY_PASSWORD", ""),
			ProjectCode:        utils.GetEnvString("NOQOODY_PROJECT_CODE", ""),
			ClientSecret:       utils.GetEnvString("NOQOODY_CLIENT_SECRET", ""),
			CallbackUrl:        utils.GetEnvString("NOQOODY_CALLBACK_URL", ""),
			ReferencePrefix:    utils.GetEnvString("NOQOODY_REFERENCE_PREFIX", "BOOK"),
			PaymentDescription: utils.GetEnvString("NOQOODY_PAYMENT_DESCRIPTION", "Farm booking"),
			SignatureFields: utils.GetEnvStringSlice("NOQOODY_SIGNATURE_FIELDS", []string{
				constvars.SignatureFieldCustomerEmail,
				constvars.SignatureFieldCustomerName,
				constvars.SignatureFieldCustomerMobile,
				constvars.SignatureFieldProjectCode,
				constvars.SignatureFieldReference,
			}),
			CallbackSignatureFields: utils.GetEnvStringSlice("NOQOODY_CALLBACK_SIGNATURE_FIELDS", []string{
				constvars.SignatureFieldReference,
				constvars.SignatureFieldGatewayPaymentID,
				constvars.SignatureFieldStatus,
			}),
			SignatureEncoding:           utils.GetEnvString("NOQOODY_SIGNATURE_ENCODING", constvars.SignatureEncodingHex),
			BreakerMaxFailures:          utils.GetEnvInt("NOQOODY_BREAKER_MAX_FAILURES", 5),
			BreakerOpenTimeoutInSeconds: utils.GetEnvInt("NOQOODY_BREAKER_OPEN_TIMEOUT_IN_SECONDS", 30),
			TokenExpiryMarginInSeconds:  utils.GetEnvInt("NOQOODY_TOKEN_EXPIRY_MARGIN_IN_SECONDS", 60),
		},
		Pricing: AppPricing{
			RestHouseNightly:     getEnvAmount("PRICING_REST_HOUSE_NIGHTLY", "450.00"),
			HorseTrainingSession: getEnvAmount("PRICING_HORSE_TRAINING_SESSION", "250.00"),
			Plant:                getEnvAmount("PRICING_PLANT", "35.00"),
			SKUOverrides:         getEnvAmountMap("PRICING_SKU_OVERRIDES"),
		},
		Redirect: AppRedirect{
			FailurePatterns:  utils.GetEnvStringSlice("REDIRECT_FAILURE_PATTERNS", []string{"/failed", "/failure", "/error", "/cancel", "status=failed"}),
			SuccessPatterns:  utils.GetEnvStringSlice("REDIRECT_SUCCESS_PATTERNS", []string{"/success", "status=success", "status=paid"}),
			DelayInSeconds:   utils.GetEnvInt("REDIRECT_DELAY_IN_SECONDS", 3),
			DefaultLocale:    utils.GetEnvString("REDIRECT_DEFAULT_LOCALE", "en"),
			SupportedLocales: utils.GetEnvStringSlice("REDIRECT_SUPPORTED_LOCALES", []string{"en", "ar"}),
		},
	}
}

func getEnvAmount(key, defaultValue string) int64 {
	value := utils.GetEnvString(key, defaultValue)
	amount, err := utils.ParseMinorUnits(value)
	if err != nil {
		log.Printf("Error parsing %s: %v, will use default value", key, err)
		amount, _ = utils.ParseMinorUnits(defaultValue)
	}
	return amount
}

// getEnvAmountMap parses "sku=amount" pairs, e.g. "villa-royal=900.00,pony-ride=120.00".
func getEnvAmountMap(key string) map[string]int64 {
	result := make(map[string]int64)
	for _, pair := range utils.GetEnvStringSlice(key, nil) {
		sku, value, found := strings.Cut(pair, "=")
		if !found {
			log.Printf("Error parsing %s: entry %q is not sku=amount, skipped", key, pair)
			continue
		}
		amount, err := utils.ParseMinorUnits(strings.TrimSpace(value))
		if err != nil {
			log.Printf("Error parsing %s: entry %q has invalid amount, skipped", key, pair)
			continue
		}
		result[strings.TrimSpace(sku)] = amount
	}
	return result
}
