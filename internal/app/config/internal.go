package config

type InternalConfig struct {
	App      App         `mapstructure:"app"`
	JWT      AppJWT      `mapstructure:"jwt"`
	Minio    AppMinio    `mapstructure:"minio"`
	RabbitMQ AppRabbitMQ `mapstructure:"rabbitmq"`
	Noqoody  AppNoqoody  `mapstructure:"noqoody"`
	Pricing  AppPricing  `mapstructure:"pricing"`
	Redirect AppRedirect `mapstructure:"redirect"`
}

type App struct {
	Env                                   string `mapstructure:"env"`
	Port                                  string `mapstructure:"port"`
	Version                               string `mapstructure:"version"`
	Address                               string `mapstructure:"address"`
	BaseUrl                               string `mapstructure:"base_url"`
	FrontendDomain                        string `mapstructure:"frontend_domain"`
	EndpointPrefix                        string `mapstructure:"endpoint_prefix"`
	Currency                              string `mapstructure:"currency"`
	MaxRequests                           int    `mapstructure:"max_requests"`
	ShutdownTimeoutInSeconds              int    `mapstructure:"shutdown_timeout_in_seconds"`
	MaxTimeRequestsPerSeconds             int    `mapstructure:"max_time_requests_per_seconds"`
	RequestBodyLimitInMegabyte            int    `mapstructure:"request_body_limit_in_megabyte"`
	LoginSessionExpiredTimeInHours        int    `mapstructure:"login_session_expired_time_in_hours"`
	SMSOTPExpiredTimeInMinutes            int    `mapstructure:"sms_otp_expired_time_in_minutes"`
	SMSOTPRequestRateLimit                int    `mapstructure:"sms_otp_request_rate_limit"`
	SMSOTPRequestWindowInSeconds          int    `mapstructure:"sms_otp_request_window_in_seconds"`
	PaymentGatewayRequestTimeoutInSeconds int    `mapstructure:"payment_gateway_request_timeout_in_seconds"`
	PaymentLockExpiredTimeInSeconds       int    `mapstructure:"payment_lock_expired_time_in_seconds"`
	SuperadminAPIKey                      string `mapstructure:"superadmin_api_key"`
	SuperadminAPIKeyRateLimit             int    `mapstructure:"superadmin_api_key_rate_limit"`
	ReconcileWorkerCronSpec               string `mapstructure:"reconcile_worker_cron_spec"`
	ReconcileStaleAfterInSeconds          int    `mapstructure:"reconcile_stale_after_in_seconds"`
	ReconcileBatchSize                    int    `mapstructure:"reconcile_batch_size"`
	OTPProvider                           string `mapstructure:"otp_provider"`
}

type AppJWT struct {
	Secret string `mapstructure:"secret"`
}

type AppMinio struct {
	CallbackArchiveBucketName string `mapstructure:"callback_archive_bucket_name"`
}

type AppRabbitMQ struct {
	SMSQueue string `mapstructure:"sms_queue"`
}

// AppNoqoody holds the NoqoodyPay merchant credentials and signing setup.
type AppNoqoody struct {
	BaseUrl            string `mapstructure:"base_url"`
	Username           string `mapstructure:"username"`
	Password           string `mapstructure:"password"`
	ProjectCode        string `mapstructure:"project_code"`
	ClientSecret       string `mapstructure:"client_secret"`
	CallbackUrl        string `mapstructure:"callback_url"`
	ReferencePrefix    string `mapstructure:"reference_prefix"`
	PaymentDescription string `mapstructure:"payment_description"`
	// SignatureFields is the ordered list of fields concatenated into the payment request hash.
	SignatureFields []string `mapstructure:"signature_fields"`
	// CallbackSignatureFields is the ordered list of fields concatenated into the callback hash.
	CallbackSignatureFields     []string `mapstructure:"callback_signature_fields"`
	SignatureEncoding           string   `mapstructure:"signature_encoding"`
	BreakerMaxFailures          int      `mapstructure:"breaker_max_failures"`
	BreakerOpenTimeoutInSeconds int      `mapstructure:"breaker_open_timeout_in_seconds"`
	TokenExpiryMarginInSeconds  int      `mapstructure:"token_expiry_margin_in_seconds"`
}

// AppPricing values are minor units (dirham cents).
type AppPricing struct {
	RestHouseNightly     int64            `mapstructure:"rest_house_nightly"`
	HorseTrainingSession int64            `mapstructure:"horse_training_session"`
	Plant                int64            `mapstructure:"plant"`
	SKUOverrides         map[string]int64 `mapstructure:"sku_overrides"`
}

type AppRedirect struct {
	FailurePatterns  []string `mapstructure:"failure_patterns"`
	SuccessPatterns  []string `mapstructure:"success_patterns"`
	DelayInSeconds   int      `mapstructure:"delay_in_seconds"`
	DefaultLocale    string   `mapstructure:"default_locale"`
	SupportedLocales []string `mapstructure:"supported_locales"`
}
