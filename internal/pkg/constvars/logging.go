package constvars

const (
	LoggingRequestIDKey        = "request_id"
	LoggingDataKey             = "data"
	LoggingRequestKey          = "request"
	LoggingResponseKey         = "response"
	LoggingMethodKey           = "method"
	LoggingEndpointKey         = "endpoint"
	LoggingRemoteAddrKey       = "remote_addr"
	LoggingUserAgentKey        = "user_agent"
	LoggingQueryKey            = "query"
	LoggingStatusCodeKey       = "status_code"
	LoggingDurationKey         = "duration"
	LoggingSuccessKey          = "success"
	LoggingErrorTypeKey        = "error_type"
	LoggingErrorCodeKey        = "error_code"
	LoggingErrorMessageKey     = "error_message"
	LoggingOperationKey        = "operation"
	LoggingRedisKey            = "redis_key"
	LoggingQueueNameKey        = "queue_name"
	LoggingBucketNameKey       = "bucket_name"
	LoggingObjectNameKey       = "object_name"
	LoggingLockValueKey        = "lock_value"
	LoggingLockExpirationKey   = "lock_expiration"
	LoggingBookingIDKey        = "booking_id"
	LoggingPaymentReferenceKey = "payment_reference"
	LoggingPaymentStatusKey    = "payment_status"
	LoggingGatewayStatusKey    = "gateway_status"
	LoggingGatewayPaymentIDKey = "gateway_payment_id"
	LoggingMobileKey           = "mobile"
	LoggingSessionIDKey        = "session_id"
)
