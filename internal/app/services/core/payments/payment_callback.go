package payments

import (
	"context"
	"errors"
	"farmstay-service/internal/app/models"
	"farmstay-service/internal/pkg/constvars"
	"farmstay-service/internal/pkg/dto/requests"
	"farmstay-service/internal/pkg/dto/responses"
	"farmstay-service/internal/pkg/exceptions"
	"farmstay-service/internal/pkg/utils"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// gatewayOutcome is a status report from the gateway, either pushed by a
// callback or pulled during reconciliation.
type gatewayOutcome struct {
	source           models.TransitionSource
	gatewayStatus    string
	gatewayPaymentID string
}

func (uc *paymentUsecase) HandlePaymentCallback(ctx context.Context, request *requests.PaymentCallback) (*responses.PaymentStatus, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.HandlePaymentCallback called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPaymentReferenceKey, request.Reference),
		zap.String(constvars.LoggingGatewayStatusKey, request.Status),
	)

	paymentRequest, err := uc.PaymentRequestRepository.FindByReference(ctx, request.Reference)
	if err != nil {
		return nil, err
	}
	if paymentRequest == nil {
		uc.Metrics.RecordCallback("not_found")
		utils.LogSecurityEvent(uc.Log, "callback_unknown_reference", requestID, utils.SecuritySeverityMedium,
			zap.String(constvars.LoggingPaymentReferenceKey, request.Reference),
		)
		return nil, exceptions.ErrPaymentRequestNotFound(nil, request.Reference)
	}

	amount := ""
	if request.Amount != nil {
		amount = request.Amount.StringFixed(2)
	}
	valid, err := uc.Signer.VerifyCallback(map[string]string{
		constvars.SignatureFieldReference:        request.Reference,
		constvars.SignatureFieldGatewayPaymentID: request.GatewayPaymentID,
		constvars.SignatureFieldStatus:           request.Status,
		constvars.SignatureFieldAmount:           amount,
	}, request.SignatureHash)
	if err != nil {
		uc.Log.Error("paymentUsecase.HandlePaymentCallback error verifying signature",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	if !valid {
		uc.Metrics.RecordCallback("signature_mismatch")
		utils.LogSecurityEvent(uc.Log, "callback_signature_mismatch", requestID, utils.SecuritySeverityHigh,
			zap.String(constvars.LoggingPaymentReferenceKey, request.Reference),
		)
		return nil, exceptions.ErrSignatureMismatch(nil)
	}

	booking, err := uc.BookingRepository.FindByID(ctx, paymentRequest.BookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, exceptions.ErrBookingNotFound(fmt.Errorf("payment request %s points at a missing booking", paymentRequest.Reference))
	}

	if err := uc.checkAmount(ctx, booking, request.Amount); err != nil {
		uc.Metrics.RecordCallback("amount_mismatch")
		return nil, err
	}

	uc.archiveCallback(ctx, booking.ID, paymentRequest.Reference, request.RawBody)

	result, err := uc.applyGatewayOutcome(ctx, booking, paymentRequest, gatewayOutcome{
		source:           models.TransitionSourceCallback,
		gatewayStatus:    request.Status,
		gatewayPaymentID: request.GatewayPaymentID,
	})
	if err != nil {
		return nil, err
	}

	if result.Changed {
		uc.Metrics.RecordCallback("applied")
	} else {
		uc.Metrics.RecordCallback("noop")
	}
	return result, nil
}

func (uc *paymentUsecase) checkAmount(ctx context.Context, booking *models.Booking, amount *decimal.Decimal) error {
	if amount == nil {
		return nil
	}
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	want := utils.FormatMinorUnits(booking.ComputedTotal)

	minor, err := utils.DecimalToMinorUnits(*amount)
	if err == nil && minor == booking.ComputedTotal {
		return nil
	}

	got := amount.StringFixed(2)
	uc.Log.Warn("paymentUsecase.checkAmount gateway amount differs from booking total",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingBookingIDKey, booking.ID),
		zap.String("gateway_amount", amount.String()),
		zap.String("booking_total", want),
	)
	return exceptions.ErrAmountMismatch(err, got, want)
}

// archiveCallback keeps the raw payload for audits; failures are only logged.
func (uc *paymentUsecase) archiveCallback(ctx context.Context, bookingID, reference string, rawBody []byte) {
	bucket := uc.InternalConfig.Minio.CallbackArchiveBucketName
	if uc.Storage == nil || bucket == "" || len(rawBody) == 0 {
		return
	}
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	objectName := fmt.Sprintf("callbacks/%s/%s-%d.json", bookingID, reference, time.Now().UnixNano())
	if _, err := uc.Storage.PutObject(ctx, bucket, objectName, rawBody, constvars.MIMEApplicationJSON); err != nil {
		uc.Log.Warn("paymentUsecase.archiveCallback failed to archive callback",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingBucketNameKey, bucket),
			zap.String(constvars.LoggingObjectNameKey, objectName),
			zap.Error(err),
		)
	}
}

func statusResponse(booking *models.Booking, reference, gatewayStatus string, changed bool) *responses.PaymentStatus {
	return &responses.PaymentStatus{
		BookingID:        booking.ID,
		Reference:        reference,
		PaymentStatus:    booking.PaymentStatus.String(),
		GatewayStatus:    gatewayStatus,
		GatewayPaymentID: booking.GatewayPaymentID,
		Changed:          changed,
	}
}

// applyGatewayOutcome moves the booking to the status reported by the gateway
// when the transition rules allow it. Repeats and disallowed moves are no-ops.
func (uc *paymentUsecase) applyGatewayOutcome(ctx context.Context, booking *models.Booking, paymentRequest *models.PaymentRequest, outcome gatewayOutcome) (*responses.PaymentStatus, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	reference := paymentRequest.Reference

	target, ok := MapGatewayStatus(outcome.gatewayStatus)
	if !ok {
		uc.Log.Info("paymentUsecase.applyGatewayOutcome gateway status does not settle the payment",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingGatewayStatusKey, outcome.gatewayStatus),
		)
		return statusResponse(booking, reference, outcome.gatewayStatus, false), nil
	}

	// Only the live attempt may fail the booking. Older attempts can still pay it.
	if target != models.PaymentStatusPaid && !isCurrentAttempt(booking, paymentRequest) {
		uc.Log.Info("paymentUsecase.applyGatewayOutcome ignoring non-success result for an earlier attempt",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingPaymentReferenceKey, reference),
			zap.String("request_status", string(paymentRequest.Status)),
			zap.String("current_reference", booking.PaymentReference),
		)
		return statusResponse(booking, reference, outcome.gatewayStatus, false), nil
	}

	from := booking.PaymentStatus
	if from == target {
		return statusResponse(booking, reference, outcome.gatewayStatus, false), nil
	}

	if !from.CanTransitionTo(target, outcome.source) {
		event := "gateway_result_ignored"
		switch {
		case from == models.PaymentStatusFailed && target == models.PaymentStatusPaid:
			event = "late_success_on_failed_booking"
		case from == models.PaymentStatusCancelled && target == models.PaymentStatusPaid:
			event = "paid_after_cancel_refund_required"
		}
		utils.LogBusinessEvent(uc.Log, event, requestID,
			zap.String(constvars.LoggingBookingIDKey, booking.ID),
			zap.String(constvars.LoggingPaymentReferenceKey, reference),
			zap.String("from", from.String()),
			zap.String("to", target.String()),
			zap.String("source", string(outcome.source)),
		)
		return statusResponse(booking, reference, outcome.gatewayStatus, false), nil
	}

	change := models.StatusChange{
		From:   from,
		To:     target,
		Source: outcome.source,
		Reason: fmt.Sprintf("gateway reported %s for %s", outcome.gatewayStatus, reference),
		At:     time.Now(),
	}
	var update *models.BookingPaymentUpdate
	if outcome.gatewayPaymentID != "" {
		update = &models.BookingPaymentUpdate{GatewayPaymentID: &outcome.gatewayPaymentID}
	}

	applied, err := uc.BookingRepository.TransitionPaymentStatus(ctx, booking.ID, change, update)
	if err != nil {
		return nil, err
	}
	if !applied {
		current, err := uc.BookingRepository.FindByID(ctx, booking.ID)
		if err != nil {
			return nil, err
		}
		if current != nil && current.PaymentStatus == target {
			return statusResponse(current, reference, outcome.gatewayStatus, false), nil
		}
		return nil, exceptions.ErrBookingConcurrentUpdate(errors.New("booking status changed while applying gateway result"))
	}

	uc.Metrics.RecordTransition(from.String(), target.String(), string(outcome.source))
	utils.LogBusinessEvent(uc.Log, "booking_payment_status_changed", requestID,
		zap.String(constvars.LoggingBookingIDKey, booking.ID),
		zap.String(constvars.LoggingPaymentReferenceKey, reference),
		zap.String("from", from.String()),
		zap.String("to", target.String()),
		zap.String("source", string(outcome.source)),
	)

	booking.PaymentStatus = target
	if outcome.gatewayPaymentID != "" {
		booking.GatewayPaymentID = outcome.gatewayPaymentID
	}

	uc.settlePaymentRequest(ctx, paymentRequest, target)
	if target == models.PaymentStatusPaid {
		uc.sendPaymentConfirmation(ctx, booking, reference)
	}

	return statusResponse(booking, reference, outcome.gatewayStatus, true), nil
}

func isCurrentAttempt(booking *models.Booking, paymentRequest *models.PaymentRequest) bool {
	if paymentRequest.Status != models.PaymentRequestStatusActive {
		return false
	}
	return booking.PaymentReference == "" || booking.PaymentReference == paymentRequest.Reference
}

func (uc *paymentUsecase) settlePaymentRequest(ctx context.Context, paymentRequest *models.PaymentRequest, target models.PaymentStatus) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	to := models.PaymentRequestStatusCompleted
	reason := ""
	if target == models.PaymentStatusFailed {
		to = models.PaymentRequestStatusFailed
		reason = "gateway reported failure"
	}

	_, err := uc.PaymentRequestRepository.UpdateStatus(ctx, paymentRequest.ID, paymentRequest.Status, to, reason)
	if err != nil {
		uc.Log.Warn("paymentUsecase.settlePaymentRequest failed to update payment request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingPaymentReferenceKey, paymentRequest.Reference),
			zap.Error(err),
		)
		return
	}
	paymentRequest.Status = to
}

func (uc *paymentUsecase) sendPaymentConfirmation(ctx context.Context, booking *models.Booking, reference string) {
	if uc.SMSService == nil || booking.Customer.Mobile == "" {
		return
	}
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	message := fmt.Sprintf("Payment of %s %s received for your booking. Reference: %s",
		uc.currency(booking), utils.FormatMinorUnits(booking.ComputedTotal), reference)
	err := uc.SMSService.SendSMS(ctx, &requests.SMSMessage{
		To:      booking.Customer.Mobile,
		Type:    requests.SMSTypePaymentConfirmation,
		Message: message,
	})
	if err != nil {
		uc.Log.Warn("paymentUsecase.sendPaymentConfirmation failed to queue SMS",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingBookingIDKey, booking.ID),
			zap.Error(err),
		)
	}
}
