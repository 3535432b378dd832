package models

import "time"

type LineItemType string

const (
	LineItemTypeRestHouse     LineItemType = "rest_house"
	LineItemTypeHorseTraining LineItemType = "horse_training"
	LineItemTypePlant         LineItemType = "plant"
)

type Customer struct {
	Name   string `bson:"name"`
	Email  string `bson:"email"`
	Mobile string `bson:"mobile"`
}

// LineItem amounts are minor units.
type LineItem struct {
	Type      LineItemType `bson:"type"`
	SKU       string       `bson:"sku"`
	Quantity  int          `bson:"quantity"`
	Nights    int          `bson:"nights,omitempty"`
	UnitPrice int64        `bson:"unitPrice"`
	Subtotal  int64        `bson:"subtotal"`
}

type StatusChange struct {
	From   PaymentStatus    `bson:"from"`
	To     PaymentStatus    `bson:"to"`
	Source TransitionSource `bson:"source"`
	Reason string           `bson:"reason,omitempty"`
	At     time.Time        `bson:"at"`
}

type Booking struct {
	ID               string         `bson:"_id"`
	Customer         Customer       `bson:"customer"`
	LineItems        []LineItem     `bson:"lineItems"`
	ComputedTotal    int64          `bson:"computedTotal"`
	Currency         string         `bson:"currency"`
	PaymentStatus    PaymentStatus  `bson:"paymentStatus"`
	PaymentReference string         `bson:"paymentReference,omitempty"`
	GatewayPaymentID string         `bson:"gatewayPaymentId,omitempty"`
	RedirectURL      string         `bson:"redirectUrl,omitempty"`
	PaymentAttempts  int            `bson:"paymentAttempts"`
	StatusHistory    []StatusChange `bson:"statusHistory,omitempty"`
	LastReconciledAt *time.Time     `bson:"lastReconciledAt,omitempty"`
	TimeModel        `bson:",inline"`
}

func (b *Booking) IsPayable() bool {
	return b.ComputedTotal > 0 && !b.PaymentStatus.IsTerminal()
}

// BookingFilter narrows ListBookings; empty fields match everything.
type BookingFilter struct {
	PaymentStatus PaymentStatus
	Mobile        string
}

// BookingPaymentUpdate is applied alongside a status transition.
type BookingPaymentUpdate struct {
	PaymentReference *string
	GatewayPaymentID *string
	RedirectURL      *string
}

// OwnedBy reports whether session belongs to the booking's customer.
func (b *Booking) OwnedBy(session *Session) bool {
	return session != nil && session.Mobile == b.Customer.Mobile
}
