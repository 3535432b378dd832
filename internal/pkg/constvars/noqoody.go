package constvars

const (
	NoqoodyTokenPath          = "/sdk/token"
	NoqoodyGenerateLinksPath  = "/api/PaymentLink/GenerateLinks"
	NoqoodyValidatePaymentURL = "/api/Members/GetTransactionDetailStatusByClientReference/"
	NoqoodyGrantTypePassword  = "password"
)

// Canonical field names accepted in the signature field order configuration.
const (
	SignatureFieldCustomerEmail    = "customer_email"
	SignatureFieldCustomerName     = "customer_name"
	SignatureFieldCustomerMobile   = "customer_mobile"
	SignatureFieldDescription      = "description"
	SignatureFieldProjectCode      = "project_code"
	SignatureFieldReference        = "reference"
	SignatureFieldAmount           = "amount"
	SignatureFieldStatus           = "status"
	SignatureFieldGatewayPaymentID = "gateway_payment_id"
)

const (
	SignatureEncodingHex    = "hex"
	SignatureEncodingBase64 = "base64"
)

// Gateway-side status strings, compared case-insensitively.
const (
	NoqoodyStatusSuccess   = "success"
	NoqoodyStatusPaid      = "paid"
	NoqoodyStatusCompleted = "completed"
	NoqoodyStatusFailed    = "failed"
	NoqoodyStatusFailure   = "failure"
	NoqoodyStatusDeclined  = "declined"
	NoqoodyStatusExpired   = "expired"
	NoqoodyStatusCancelled = "cancelled"
	NoqoodyStatusCanceled  = "canceled"
	NoqoodyStatusPending   = "pending"
)
