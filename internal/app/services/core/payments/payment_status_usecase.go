package payments

import (
	"context"
	"errors"
	"farmstay-service/internal/app/models"
	"farmstay-service/internal/pkg/constvars"
	"farmstay-service/internal/pkg/dto/requests"
	"farmstay-service/internal/pkg/dto/responses"
	"farmstay-service/internal/pkg/exceptions"
	"farmstay-service/internal/pkg/redirect"
	"farmstay-service/internal/pkg/utils"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const defaultRedirectDelaySeconds = 3

// ReconcilePayment asks the gateway for the status of the booking's latest
// reference and applies it like a callback would.
func (uc *paymentUsecase) ReconcilePayment(ctx context.Context, bookingID string) (*responses.PaymentStatus, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.ReconcilePayment called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingBookingIDKey, bookingID),
	)

	booking, err := uc.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.PaymentReference == "" {
		return nil, exceptions.ErrPaymentRequestNotFound(errors.New("booking has no payment reference"), "")
	}

	paymentRequest, err := uc.PaymentRequestRepository.FindByReference(ctx, booking.PaymentReference)
	if err != nil {
		return nil, err
	}
	if paymentRequest == nil {
		return nil, exceptions.ErrPaymentRequestNotFound(nil, booking.PaymentReference)
	}

	status, err := uc.PaymentGateway.GetTransactionStatus(ctx, booking.PaymentReference)
	if err != nil {
		uc.Log.Error("paymentUsecase.ReconcilePayment error calling gateway",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingPaymentReferenceKey, booking.PaymentReference),
			zap.Error(err),
		)
		return nil, err
	}

	if err := uc.checkAmount(ctx, booking, status.Amount); err != nil {
		return nil, err
	}

	return uc.applyGatewayOutcome(ctx, booking, paymentRequest, gatewayOutcome{
		source:           models.TransitionSourceReconcile,
		gatewayStatus:    status.TransactionStatus,
		gatewayPaymentID: status.TransactionID,
	})
}

func (uc *paymentUsecase) OverridePaymentStatus(ctx context.Context, request *requests.OverridePaymentStatus) (*responses.PaymentStatus, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.OverridePaymentStatus called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingBookingIDKey, request.BookingID),
		zap.String(constvars.LoggingPaymentStatusKey, request.Status),
	)

	target := models.PaymentStatus(request.Status)
	if !target.IsValid() {
		return nil, exceptions.ErrInputValidation(errors.New("unknown payment status"))
	}

	booking, err := uc.BookingRepository.FindByID(ctx, request.BookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, exceptions.ErrBookingNotFound(nil)
	}

	from := booking.PaymentStatus
	if from == target {
		return statusResponse(booking, booking.PaymentReference, "", false), nil
	}

	change := models.StatusChange{
		From:   from,
		To:     target,
		Source: models.TransitionSourceAdmin,
		Reason: request.Reason,
		At:     time.Now(),
	}
	applied, err := uc.BookingRepository.TransitionPaymentStatus(ctx, booking.ID, change, nil)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, exceptions.ErrBookingConcurrentUpdate(nil)
	}

	uc.Metrics.RecordTransition(from.String(), target.String(), string(change.Source))
	utils.LogSecurityEvent(uc.Log, "admin_payment_status_override", requestID, utils.SecuritySeverityMedium,
		zap.String(constvars.LoggingBookingIDKey, booking.ID),
		zap.String("from", from.String()),
		zap.String("to", target.String()),
		zap.String("reason", request.Reason),
	)

	booking.PaymentStatus = target
	return statusResponse(booking, booking.PaymentReference, "", true), nil
}

// ClassifyReturnURL decides where the browser goes after the hosted payment
// page. It never touches booking state.
func (uc *paymentUsecase) ClassifyReturnURL(ctx context.Context, request *requests.PaymentReturn) *responses.PaymentReturn {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	outcome := uc.Classifier.Classify(request.URL)
	uc.Metrics.RecordRedirect(string(outcome))
	uc.Log.Info("paymentUsecase.ClassifyReturnURL classified return url",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String("outcome", string(outcome)),
		zap.String(constvars.LoggingPaymentReferenceKey, request.Reference),
	)

	if outcome == redirect.OutcomeFailure {
		delay := uc.InternalConfig.Redirect.DelayInSeconds
		if delay <= 0 {
			delay = defaultRedirectDelaySeconds
		}
		return &responses.PaymentReturn{
			Outcome:      string(outcome),
			RedirectTo:   uc.Classifier.FailurePath(request.Locale),
			DelaySeconds: delay,
		}
	}

	target := uc.Classifier.SuccessPath(request.Locale)
	if request.Reference != "" {
		target += "?reference=" + url.QueryEscape(request.Reference)
	}
	return &responses.PaymentReturn{
		Outcome:    string(outcome),
		RedirectTo: target,
	}
}
