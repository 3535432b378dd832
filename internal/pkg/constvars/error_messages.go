package constvars

// Validation messages mapper
var CustomValidationErrorMessages = map[string]string{
	"required":     "is required",
	"email":        "must be a valid email",
	"min":          "must be at least %s",
	"max":          "maximum at %s",
	"len":          "must be %s characters long",
	"numeric":      "must be a number",
	"oneof":        "must be one of [%s]",
	"gt":           "must be greater than %s",
	"gte":          "must be greater than or equal to %s",
	"lte":          "must be less than or equal to %s",
	"url":          "must be a valid URL",
	"dive":         "is invalid",
	"phone_number": "phone number must be in international format, e.g. +97450001234",
	"item_type":    "must be one of [rest_house, horse_training, plant]",
	"sku":          "must contain only letters, digits, '-' or '_'",
}

// Tags that require parameter substitution
var TagsWithParams = map[string]bool{
	"min":   true,
	"max":   true,
	"len":   true,
	"gt":    true,
	"gte":   true,
	"lte":   true,
	"oneof": true,
}

// Error messages for clients
const (
	ErrClientCannotProcessRequest          = "failed to process your request"
	ErrClientSomethingWrongWithApplication = "there is something wrong with the application"
	ErrClientServerLongRespond             = "the app taking too long to respond"
	ErrClientNotAuthorized                 = "you can't access this feature"
	ErrClientNotLoggedIn                   = "your session ended, please login again"
	ErrClientBookingNotFound               = "booking not found"
	ErrClientBookingNotPayable             = "this booking can't be paid"
	ErrClientBookingStateConflict          = "this booking can't be changed in its current state"
	ErrClientPaymentUnavailable            = "payment service is unavailable, please try again later"
	ErrClientPaymentRequestNotFound        = "payment request not found"
	ErrClientInvalidSignature              = "invalid signature"
	ErrClientAmountMismatch                = "payment amount doesn't match the booking total"
	ErrClientPaymentInProgress             = "another payment request for this booking is in progress"
	ErrClientOTPExpired                    = "your otp has expired, please request a new one"
	ErrClientOTPInvalid                    = "invalid otp"
	ErrClientTooManyOTPRequests            = "too many otp requests, please try again later"
	ErrClientInvalidAPIKey                 = "invalid API key"
	ErrClientAPIKeyRequired                = "API key is required"
)

// Error messages for developers
const (
	ErrDevInvalidInput                = "invalid input"
	ErrDevCannotParseJSON             = "cannot parse JSON"
	ErrDevCannotMarshalJSON           = "cannot marshal JSON"
	ErrDevReadBody                    = "failed to read request body"
	ErrDevMissingRequestID            = "request id missing from context"
	ErrDevURLParamIDValidationFailed  = "url param %s is invalid"
	ErrDevCreateHTTPRequest           = "failed to create HTTP request"
	ErrDevSendHTTPRequest             = "failed to send HTTP request"
	ErrDevValidationFailed            = "validation failed"
	ErrDevServerProcess               = "server failed to process the request"
	ErrDevServerDeadlineExceeded      = "deadline exceeded"
	ErrDevInvalidAPIKey               = "invalid api key"
	ErrDevAPIKeyRequired              = "api key required"
	ErrDevAuthSigningMethod           = "unexpected signing method"
	ErrDevAuthTokenInvalid            = "invalid token"
	ErrDevAuthTokenMissing            = "token missing"
	ErrDevAuthInvalidSession          = "invalid session"
	ErrDevAuthGenerateToken           = "failed to generate token"
	ErrDevAuthOTPExpired              = "otp expired or never requested"
	ErrDevAuthOTPInvalid              = "otp does not match"
	ErrDevAuthOTPRateLimited          = "otp request rate limit exceeded"
	ErrDevFailedToHashOTP             = "failed to hash otp"
	ErrDevBookingNotFound             = "booking not found"
	ErrDevBookingAlreadyPaid          = "booking already paid"
	ErrDevBookingNotPayable           = "booking total must be greater than zero"
	ErrDevBookingInvalidTransition    = "invalid payment status transition from %s to %s"
	ErrDevBookingConcurrentUpdate     = "booking payment status changed concurrently"
	ErrDevBookingRetryRequired        = "booking payment failed, explicit retry required"
	ErrDevPaymentRequestNotFound      = "payment request not found for reference %s"
	ErrDevPaymentLockNotAcquired      = "payment lock for booking %s is held by another request"
	ErrDevGatewayUnavailable          = "payment gateway unavailable"
	ErrDevGatewayRejected             = "payment gateway rejected the request"
	ErrDevGatewayInvalidResponse      = "payment gateway returned an invalid response"
	ErrDevSignatureMismatch           = "callback signature mismatch"
	ErrDevSignatureUnsupportedField   = "unsupported signature field %s"
	ErrDevAmountMismatch              = "callback amount %s does not match booking total %s"
	ErrDevInvalidAmount               = "invalid amount"
	ErrDevDBFailedToInsertDocument    = "failed to insert document into database"
	ErrDevDBFailedToUpdateDocument    = "failed to update document into database"
	ErrDevDBFailedToFindDocument      = "failed when do find document on database"
	ErrDevDBFailedToIterateDocuments  = "failed to iterate documents on database"
	ErrDevDBFailedToCountDocuments    = "failed to count documents on database"
	ErrDevDBFailedToCreateIndex       = "failed to create index on database"
	ErrDevRedisGetNoData              = "failed to get data from redis with key %s"
	ErrDevRedisSetData                = "failed to set data into redis"
	ErrDevRedisDeleteData             = "failed to delete data from redis"
	ErrDevRedisIncrementValue         = "failed to increment value in redis"
	ErrDevRedisUnlock                 = "failed to release redis lock"
	ErrDevRabbitMQPublishMessage      = "failed to publish message to rabbitmq queue %s"
	ErrDevMinioFailedToCreateObject   = "failed to create object in minio bucket %s"
	ErrDevMinioFailedToPresignedURL   = "failed to create presigned url in minio bucket %s"
)
