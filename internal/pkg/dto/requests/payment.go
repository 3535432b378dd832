package requests

import "github.com/shopspring/decimal"

// PaymentCallback is the notification NoqoodyPay posts once a payment settles.
type PaymentCallback struct {
	Reference        string           `json:"reference" validate:"required,max=128"`
	Status           string           `json:"status" validate:"required,max=32"`
	GatewayPaymentID string           `json:"gateway_payment_id" validate:"max=128"`
	SignatureHash    string           `json:"signature_hash" validate:"required"`
	Amount           *decimal.Decimal `json:"amount,omitempty"`
	Message          string           `json:"message,omitempty"`
	RawBody          []byte           `json:"-"`
}

type OverridePaymentStatus struct {
	BookingID string `json:"-"`
	Status    string `json:"status" validate:"required,oneof=pending paid failed cancelled"`
	Reason    string `json:"reason" validate:"required,min=3,max=500"`
}

type PaymentReturn struct {
	URL       string
	Locale    string
	Reference string
}
