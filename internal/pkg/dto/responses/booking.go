package responses

import "time"

type BookingCustomer struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Mobile string `json:"mobile"`
}

type BookingLineItem struct {
	Type      string `json:"type"`
	SKU       string `json:"sku"`
	Quantity  int    `json:"quantity"`
	Nights    int    `json:"nights,omitempty"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

type BookingStatusChange struct {
	From   string    `json:"from"`
	To     string    `json:"to"`
	Source string    `json:"source"`
	Reason string    `json:"reason,omitempty"`
	At     time.Time `json:"at"`
}

type Booking struct {
	ID               string                `json:"id"`
	Customer         BookingCustomer       `json:"customer"`
	LineItems        []BookingLineItem     `json:"line_items"`
	ComputedTotal    string                `json:"computed_total"`
	Currency         string                `json:"currency"`
	PaymentStatus    string                `json:"payment_status"`
	PaymentReference string                `json:"payment_reference,omitempty"`
	GatewayPaymentID string                `json:"gateway_payment_id,omitempty"`
	RedirectURL      string                `json:"redirect_url,omitempty"`
	PaymentAttempts  int                   `json:"payment_attempts"`
	StatusHistory    []BookingStatusChange `json:"status_history,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
}
