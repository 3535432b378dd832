package utils

import (
	"farmstay-service/internal/pkg/dto/requests"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validBooking() *requests.CreateBooking {
	return &requests.CreateBooking{
		Customer: requests.BookingCustomer{
			Name:   "Mariam Al Thani",
			Email:  "mariam@example.qa",
			Mobile: "+97450001234",
		},
		LineItems: []requests.BookingLineItem{
			{Type: "rest_house", SKU: "villa-1", Quantity: 1, Nights: 2},
		},
	}
}

func TestValidateStruct_CreateBooking(t *testing.T) {
	assert.NoError(t, ValidateStruct(validBooking()))

	t.Run("rejects local phone number", func(t *testing.T) {
		booking := validBooking()
		booking.Customer.Mobile = "50001234"
		assert.Error(t, ValidateStruct(booking))
	})

	t.Run("rejects unknown item type", func(t *testing.T) {
		booking := validBooking()
		booking.LineItems[0].Type = "camel_ride"
		assert.Error(t, ValidateStruct(booking))
	})

	t.Run("rejects sku with spaces", func(t *testing.T) {
		booking := validBooking()
		booking.LineItems[0].SKU = "villa 1"
		assert.Error(t, ValidateStruct(booking))
	})

	t.Run("rejects empty line items", func(t *testing.T) {
		booking := validBooking()
		booking.LineItems = nil
		assert.Error(t, ValidateStruct(booking))
	})
}

func TestValidateUrlParamID(t *testing.T) {
	assert.NoError(t, ValidateUrlParamID("7f1c2a4e-8d1b-4e0a-9b2f-3c5d6e7f8a9b"))
	assert.Error(t, ValidateUrlParamID(""))
	assert.Error(t, ValidateUrlParamID("not-a-uuid"))
}
