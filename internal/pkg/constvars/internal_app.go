package constvars

type ContextKey string

const (
	ResourceBookings        = "bookings"
	ResourcePayments        = "payments"
	ResourceAuth            = "auth"
	ResourcePaymentRequests = "payment_requests"
)

const (
	AppPaginationUrlFormat = "%s?page=%d&page_size=%d"
	AppDefaultPageSize     = 20
	AppMaxPageSize         = 100
)

const (
	SMS_OTP_LENGTH = 6
)

const (
	CONTEXT_REQUEST_ID_KEY           ContextKey = "request_id"
	CONTEXT_SESSION_DATA_KEY         ContextKey = "session_data"
	CONTEXT_IS_CLIENT_REQUEST_ID_KEY ContextKey = "is_client_request_id"
	CONTEXT_RAW_BODY                 ContextKey = "raw_body"
)

const (
	REQUEST_ID_PREFIX = "FRMSTY_SVC_"
)

const (
	MongoCollectionBookings        = "bookings"
	MongoCollectionPaymentRequests = "payment_requests"
)

const (
	RedisKeyPrefixSession     = "session:"
	RedisKeyPrefixOTP         = "otp:"
	RedisKeyPrefixOTPDevice   = "otp_device:"
	RedisKeyPrefixPaymentLock = "lock:booking_payment:"
	RedisKeyNoqoodyToken      = "noqoody:access_token"
	RateLimiterGroupOTP       = "OTP_REQUEST"
	RateLimiterGroupOTPVerify = "OTP_VERIFY"
)

const (
	DefaultCurrency = "QAR"
)

const (
	OTPProviderRedis       = "redis"
	OTPProviderSupertokens = "supertokens"
)
