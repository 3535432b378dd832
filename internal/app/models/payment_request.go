package models

type PaymentRequestStatus string

const (
	PaymentRequestStatusActive     PaymentRequestStatus = "active"
	PaymentRequestStatusFailed     PaymentRequestStatus = "failed"
	PaymentRequestStatusSuperseded PaymentRequestStatus = "superseded"
	PaymentRequestStatusCompleted  PaymentRequestStatus = "completed"
)

// PaymentRequest is one signed attempt to collect a booking's total through the gateway.
type PaymentRequest struct {
	ID               string               `bson:"_id"`
	Reference        string               `bson:"reference"`
	BookingID        string               `bson:"bookingId"`
	Attempt          int                  `bson:"attempt"`
	Amount           int64                `bson:"amount"`
	Currency         string               `bson:"currency"`
	CustomerEmail    string               `bson:"customerEmail"`
	CustomerMobile   string               `bson:"customerMobile"`
	CustomerName     string               `bson:"customerName"`
	ProjectCode      string               `bson:"projectCode"`
	Description      string               `bson:"description"`
	SignatureHash    string               `bson:"signatureHash"`
	GatewayPaymentID string               `bson:"gatewayPaymentId,omitempty"`
	RedirectURL      string               `bson:"redirectUrl,omitempty"`
	Status           PaymentRequestStatus `bson:"status"`
	FailureReason    string               `bson:"failureReason,omitempty"`
	TimeModel        `bson:",inline"`
}
