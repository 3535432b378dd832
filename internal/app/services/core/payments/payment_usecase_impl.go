package payments

import (
	"context"
	"errors"
	"farmstay-service/internal/app/config"
	"farmstay-service/internal/app/contracts"
	"farmstay-service/internal/app/models"
	"farmstay-service/internal/app/services/shared/metrics"
	"farmstay-service/internal/pkg/constvars"
	"farmstay-service/internal/pkg/dto/requests"
	"farmstay-service/internal/pkg/dto/responses"
	"farmstay-service/internal/pkg/exceptions"
	"farmstay-service/internal/pkg/redirect"
	"farmstay-service/internal/pkg/utils"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultPaymentLockTTL = 30 * time.Second

type paymentUsecase struct {
	BookingRepository        contracts.BookingRepository
	PaymentRequestRepository contracts.PaymentRequestRepository
	PaymentGateway           contracts.PaymentGatewayService
	Signer                   contracts.PaymentSigner
	Locker                   contracts.LockerService
	SMSService               contracts.SMSService
	Storage                  contracts.Storage
	Classifier               *redirect.Classifier
	InternalConfig           *config.InternalConfig
	Metrics                  *metrics.Metrics
	Log                      *zap.Logger
}

var (
	paymentUsecaseInstance contracts.PaymentUsecase
	oncePaymentUsecase     sync.Once
)

type PaymentUsecaseDeps struct {
	BookingRepository        contracts.BookingRepository
	PaymentRequestRepository contracts.PaymentRequestRepository
	PaymentGateway           contracts.PaymentGatewayService
	Signer                   contracts.PaymentSigner
	Locker                   contracts.LockerService
	SMSService               contracts.SMSService
	Storage                  contracts.Storage
	InternalConfig           *config.InternalConfig
	Metrics                  *metrics.Metrics
	Log                      *zap.Logger
}

func NewPaymentUsecase(deps PaymentUsecaseDeps) contracts.PaymentUsecase {
	oncePaymentUsecase.Do(func() {
		paymentUsecaseInstance = newPaymentUsecase(deps)
	})
	return paymentUsecaseInstance
}

func newPaymentUsecase(deps PaymentUsecaseDeps) *paymentUsecase {
	redirectCfg := deps.InternalConfig.Redirect
	return &paymentUsecase{
		BookingRepository:        deps.BookingRepository,
		PaymentRequestRepository: deps.PaymentRequestRepository,
		PaymentGateway:           deps.PaymentGateway,
		Signer:                   deps.Signer,
		Locker:                   deps.Locker,
		SMSService:               deps.SMSService,
		Storage:                  deps.Storage,
		Classifier: redirect.NewClassifier(redirect.Config{
			FailurePatterns:  redirectCfg.FailurePatterns,
			SuccessPatterns:  redirectCfg.SuccessPatterns,
			DefaultLocale:    redirectCfg.DefaultLocale,
			SupportedLocales: redirectCfg.SupportedLocales,
		}),
		InternalConfig: deps.InternalConfig,
		Metrics:        deps.Metrics,
		Log:            deps.Log,
	}
}

func (uc *paymentUsecase) lockTTL() time.Duration {
	if seconds := uc.InternalConfig.App.PaymentLockExpiredTimeInSeconds; seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return defaultPaymentLockTTL
}

func (uc *paymentUsecase) loadBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	booking, err := uc.BookingRepository.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, exceptions.ErrBookingNotFound(nil)
	}
	if session, ok := models.SessionFromContext(ctx); ok && !booking.OwnedBy(session) {
		return nil, exceptions.ErrBookingNotFound(errors.New("booking belongs to another customer"))
	}
	return booking, nil
}

func checkPayable(booking *models.Booking) error {
	switch booking.PaymentStatus {
	case models.PaymentStatusPaid:
		return exceptions.ErrBookingAlreadyPaid(nil)
	case models.PaymentStatusCancelled:
		return exceptions.ErrInvalidBookingState(nil, booking.PaymentStatus.String(), models.PaymentStatusPending.String())
	}
	if booking.ComputedTotal <= 0 {
		return exceptions.ErrBookingNotPayable(nil)
	}
	return nil
}

// reloadPayable re-reads the booking once the lock is held, since a callback
// or cancel may have moved it after the unlocked read.
func (uc *paymentUsecase) reloadPayable(ctx context.Context, bookingID string) (*models.Booking, error) {
	booking, err := uc.BookingRepository.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, exceptions.ErrBookingNotFound(nil)
	}
	if err := checkPayable(booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// withBookingLock runs fn while holding the per-booking payment lock.
func (uc *paymentUsecase) withBookingLock(ctx context.Context, bookingID string, fn func() (*responses.PaymentRequest, error)) (*responses.PaymentRequest, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	lockKey := constvars.RedisKeyPrefixPaymentLock + bookingID

	acquired, lockValue, err := uc.Locker.TryLock(ctx, lockKey, uc.lockTTL())
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, exceptions.ErrPaymentLockNotAcquired(nil, bookingID)
	}
	defer func() {
		if err := uc.Locker.Unlock(context.WithoutCancel(ctx), lockKey, lockValue); err != nil {
			uc.Log.Warn("paymentUsecase.withBookingLock failed to release lock",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingBookingIDKey, bookingID),
				zap.Error(err),
			)
		}
	}()

	return fn()
}

func reusedResponse(booking *models.Booking, active *models.PaymentRequest) *responses.PaymentRequest {
	return &responses.PaymentRequest{
		BookingID:   booking.ID,
		Reference:   active.Reference,
		RedirectURL: active.RedirectURL,
		Amount:      utils.FormatMinorUnits(active.Amount),
		Currency:    active.Currency,
		Reused:      true,
	}
}

func (uc *paymentUsecase) CreatePaymentRequest(ctx context.Context, bookingID string) (*responses.PaymentRequest, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.CreatePaymentRequest called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingBookingIDKey, bookingID),
	)

	booking, err := uc.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := checkPayable(booking); err != nil {
		return nil, err
	}
	if booking.PaymentStatus == models.PaymentStatusFailed {
		return nil, exceptions.ErrBookingRetryRequired(nil)
	}

	return uc.withBookingLock(ctx, booking.ID, func() (*responses.PaymentRequest, error) {
		booking, err := uc.reloadPayable(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		if booking.PaymentStatus == models.PaymentStatusFailed {
			return nil, exceptions.ErrBookingRetryRequired(nil)
		}

		active, err := uc.PaymentRequestRepository.FindActiveByBookingID(ctx, booking.ID)
		if err != nil {
			return nil, err
		}
		if active != nil {
			uc.Log.Info("paymentUsecase.CreatePaymentRequest reusing active payment request",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingPaymentReferenceKey, active.Reference),
			)
			uc.Metrics.RecordPaymentRequest("reused")
			return reusedResponse(booking, active), nil
		}
		return uc.requestPayment(ctx, booking)
	})
}

func (uc *paymentUsecase) RetryPaymentRequest(ctx context.Context, bookingID string) (*responses.PaymentRequest, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("paymentUsecase.RetryPaymentRequest called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingBookingIDKey, bookingID),
	)

	booking, err := uc.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := checkPayable(booking); err != nil {
		return nil, err
	}

	return uc.withBookingLock(ctx, booking.ID, func() (*responses.PaymentRequest, error) {
		booking, err := uc.reloadPayable(ctx, bookingID)
		if err != nil {
			return nil, err
		}

		if booking.PaymentStatus == models.PaymentStatusFailed {
			change := models.StatusChange{
				From:   models.PaymentStatusFailed,
				To:     models.PaymentStatusPending,
				Source: models.TransitionSourceRetry,
				Reason: "payment retried",
				At:     time.Now(),
			}
			applied, err := uc.BookingRepository.TransitionPaymentStatus(ctx, booking.ID, change, nil)
			if err != nil {
				return nil, err
			}
			if !applied {
				return nil, exceptions.ErrBookingConcurrentUpdate(nil)
			}
			uc.Metrics.RecordTransition(change.From.String(), change.To.String(), string(change.Source))
			booking.PaymentStatus = change.To
		}

		superseded, err := uc.PaymentRequestRepository.SupersedeActive(ctx, booking.ID)
		if err != nil {
			return nil, err
		}
		uc.Log.Info("paymentUsecase.RetryPaymentRequest superseded previous requests",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int64("superseded", superseded),
		)

		return uc.requestPayment(ctx, booking)
	})
}

func (uc *paymentUsecase) currency(booking *models.Booking) string {
	if booking.Currency != "" {
		return booking.Currency
	}
	if uc.InternalConfig.App.Currency != "" {
		return uc.InternalConfig.App.Currency
	}
	return constvars.DefaultCurrency
}

// requestPayment signs a new attempt and asks the gateway for a payment link.
// A gateway failure is recorded as a failed request and leaves the booking pending.
func (uc *paymentUsecase) requestPayment(ctx context.Context, booking *models.Booking) (*responses.PaymentRequest, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	noqoody := uc.InternalConfig.Noqoody

	attempt, err := uc.BookingRepository.IncrementPaymentAttempts(ctx, booking.ID)
	if err != nil {
		uc.Log.Error("paymentUsecase.requestPayment error incrementing attempts",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	reference := BuildReference(noqoody.ReferencePrefix, booking.ID, attempt)
	amount := utils.FormatMinorUnits(booking.ComputedTotal)
	description := noqoody.PaymentDescription
	if description == "" {
		description = "Booking " + booking.ID
	}

	signature, err := uc.Signer.SignPaymentRequest(map[string]string{
		constvars.SignatureFieldCustomerEmail:  booking.Customer.Email,
		constvars.SignatureFieldCustomerName:   booking.Customer.Name,
		constvars.SignatureFieldCustomerMobile: booking.Customer.Mobile,
		constvars.SignatureFieldDescription:    description,
		constvars.SignatureFieldProjectCode:    noqoody.ProjectCode,
		constvars.SignatureFieldReference:      reference,
		constvars.SignatureFieldAmount:         amount,
	})
	if err != nil {
		uc.Log.Error("paymentUsecase.requestPayment error signing request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	now := time.Now()
	paymentRequest := &models.PaymentRequest{
		ID:             uuid.NewString(),
		Reference:      reference,
		BookingID:      booking.ID,
		Attempt:        attempt,
		Amount:         booking.ComputedTotal,
		Currency:       uc.currency(booking),
		CustomerEmail:  booking.Customer.Email,
		CustomerMobile: booking.Customer.Mobile,
		CustomerName:   booking.Customer.Name,
		ProjectCode:    noqoody.ProjectCode,
		Description:    description,
		SignatureHash:  signature,
		Status:         models.PaymentRequestStatusActive,
		TimeModel:      models.TimeModel{CreatedAt: now, UpdatedAt: now},
	}

	link, err := uc.PaymentGateway.GenerateLinks(ctx, &requests.NoqoodyGenerateLinks{
		ProjectCode:    noqoody.ProjectCode,
		Description:    description,
		Amount:         amount,
		CustomerEmail:  booking.Customer.Email,
		CustomerMobile: booking.Customer.Mobile,
		CustomerName:   booking.Customer.Name,
		SecureHash:     signature,
		Reference:      reference,
		CallbackURL:    noqoody.CallbackUrl,
	})
	if err != nil {
		paymentRequest.Status = models.PaymentRequestStatusFailed
		paymentRequest.FailureReason = err.Error()
		if insertErr := uc.PaymentRequestRepository.Insert(ctx, paymentRequest); insertErr != nil {
			uc.Log.Error("paymentUsecase.requestPayment error storing failed request",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(insertErr),
			)
		}
		uc.Metrics.RecordPaymentRequest("gateway_error")
		uc.Log.Error("paymentUsecase.requestPayment gateway call failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingPaymentReferenceKey, reference),
			zap.Error(err),
		)
		return nil, err
	}

	if _, err := uc.PaymentRequestRepository.SupersedeActive(ctx, booking.ID); err != nil {
		return nil, err
	}

	paymentRequest.GatewayPaymentID = link.PaymentLinkID
	paymentRequest.RedirectURL = link.PaymentURL
	if err := uc.PaymentRequestRepository.Insert(ctx, paymentRequest); err != nil {
		uc.Log.Error("paymentUsecase.requestPayment error storing payment request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	err = uc.BookingRepository.UpdatePaymentDetails(ctx, booking.ID, models.BookingPaymentUpdate{
		PaymentReference: &reference,
		GatewayPaymentID: &link.PaymentLinkID,
		RedirectURL:      &link.PaymentURL,
	})
	if err != nil {
		uc.Log.Error("paymentUsecase.requestPayment error updating booking",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	uc.Metrics.RecordPaymentRequest("created")
	utils.LogBusinessEvent(uc.Log, "payment_request_created", requestID,
		zap.String(constvars.LoggingBookingIDKey, booking.ID),
		zap.String(constvars.LoggingPaymentReferenceKey, reference),
		zap.Int("attempt", attempt),
	)

	return &responses.PaymentRequest{
		BookingID:   booking.ID,
		Reference:   reference,
		RedirectURL: link.PaymentURL,
		Amount:      amount,
		Currency:    paymentRequest.Currency,
	}, nil
}
