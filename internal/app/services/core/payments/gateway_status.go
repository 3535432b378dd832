package payments

import (
	"farmstay-service/internal/app/models"
	"farmstay-service/internal/pkg/constvars"
	"fmt"
	"strings"
)

// MapGatewayStatus translates a NoqoodyPay status into a booking payment status.
// The second value is false for in-flight statuses that must not move the booking.
// A cancel on the hosted page is a failed payment, not a cancelled booking.
func MapGatewayStatus(gatewayStatus string) (models.PaymentStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(gatewayStatus)) {
	case constvars.NoqoodyStatusSuccess, constvars.NoqoodyStatusPaid, constvars.NoqoodyStatusCompleted:
		return models.PaymentStatusPaid, true
	case constvars.NoqoodyStatusFailed, constvars.NoqoodyStatusFailure, constvars.NoqoodyStatusDeclined,
		constvars.NoqoodyStatusExpired, constvars.NoqoodyStatusCancelled, constvars.NoqoodyStatusCanceled:
		return models.PaymentStatusFailed, true
	}
	return "", false
}

// BuildReference returns the gateway reference for one payment attempt of a booking.
func BuildReference(prefix, bookingID string, attempt int) string {
	if prefix == "" {
		prefix = "BOOK"
	}
	return fmt.Sprintf("%s-%s-%d", prefix, bookingID, attempt)
}
