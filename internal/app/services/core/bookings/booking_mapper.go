package bookings

import (
	"farmstay-service/internal/app/models"
	"farmstay-service/internal/pkg/dto/responses"
	"farmstay-service/internal/pkg/utils"
)

func ToBookingResponse(booking *models.Booking) *responses.Booking {
	lineItems := make([]responses.BookingLineItem, 0, len(booking.LineItems))
	for _, item := range booking.LineItems {
		lineItems = append(lineItems, responses.BookingLineItem{
			Type:      string(item.Type),
			SKU:       item.SKU,
			Quantity:  item.Quantity,
			Nights:    item.Nights,
			UnitPrice: utils.FormatMinorUnits(item.UnitPrice),
			Subtotal:  utils.FormatMinorUnits(item.Subtotal),
		})
	}

	history := make([]responses.BookingStatusChange, 0, len(booking.StatusHistory))
	for _, change := range booking.StatusHistory {
		history = append(history, responses.BookingStatusChange{
			From:   string(change.From),
			To:     string(change.To),
			Source: string(change.Source),
			Reason: change.Reason,
			At:     change.At,
		})
	}

	return &responses.Booking{
		ID: booking.ID,
		Customer: responses.BookingCustomer{
			Name:   booking.Customer.Name,
			Email:  booking.Customer.Email,
			Mobile: booking.Customer.Mobile,
		},
		LineItems:        lineItems,
		ComputedTotal:    utils.FormatMinorUnits(booking.ComputedTotal),
		Currency:         booking.Currency,
		PaymentStatus:    string(booking.PaymentStatus),
		PaymentReference: booking.PaymentReference,
		GatewayPaymentID: booking.GatewayPaymentID,
		RedirectURL:      booking.RedirectURL,
		PaymentAttempts:  booking.PaymentAttempts,
		StatusHistory:    history,
		CreatedAt:        booking.CreatedAt,
		UpdatedAt:        booking.UpdatedAt,
	}
}
