package utils

import (
	"farmstay-service/internal/pkg/dto/requests"
	"strings"
)

func normalizeMobile(input string) string {
	return strings.ReplaceAll(strings.TrimSpace(input), " ", "")
}

func SanitizeCreateBookingRequest(input *requests.CreateBooking) {
	input.Customer.Name = strings.Join(strings.Fields(input.Customer.Name), " ")
	input.Customer.Email = strings.ToLower(strings.TrimSpace(input.Customer.Email))
	input.Customer.Mobile = normalizeMobile(input.Customer.Mobile)
	for i := range input.LineItems {
		input.LineItems[i].Type = strings.ToLower(strings.TrimSpace(input.LineItems[i].Type))
		input.LineItems[i].SKU = strings.TrimSpace(input.LineItems[i].SKU)
	}
}

func SanitizeRequestOTPRequest(input *requests.RequestOTP) {
	input.Mobile = normalizeMobile(input.Mobile)
}

func SanitizeVerifyOTPRequest(input *requests.VerifyOTP) {
	input.Mobile = normalizeMobile(input.Mobile)
	input.OTP = strings.TrimSpace(input.OTP)
}

func SanitizeOverridePaymentStatusRequest(input *requests.OverridePaymentStatus) {
	input.Status = strings.ToLower(strings.TrimSpace(input.Status))
	input.Reason = strings.TrimSpace(input.Reason)
}
