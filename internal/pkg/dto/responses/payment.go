package responses

type PaymentRequest struct {
	BookingID   string `json:"booking_id"`
	Reference   string `json:"reference"`
	RedirectURL string `json:"redirect_url"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	// Reused is true when an active request was returned instead of creating a new one.
	Reused bool `json:"reused"`
}

type PaymentStatus struct {
	BookingID        string `json:"booking_id"`
	Reference        string `json:"reference,omitempty"`
	PaymentStatus    string `json:"payment_status"`
	GatewayStatus    string `json:"gateway_status,omitempty"`
	GatewayPaymentID string `json:"gateway_payment_id,omitempty"`
	Changed          bool   `json:"changed"`
}

type PaymentReturn struct {
	Outcome      string `json:"outcome"`
	RedirectTo   string `json:"redirect_to"`
	DelaySeconds int    `json:"delay_seconds"`
}
