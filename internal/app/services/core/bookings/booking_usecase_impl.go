package bookings

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
	"farmstay-service/internal/pkg/utils"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	bookingUsecaseInstance contracts.BookingUsecase
	onceBookingUsecase     sync.Once
)

type bookingUsecase struct {
	BookingRepository        contracts.BookingRepository
	PaymentRequestRepository contracts.PaymentRequestRepository
	Pricer                   *Pricer
	InternalConfig           *config.InternalConfig
	Metrics                  *metrics.Metrics
	Log                      *zap.Logger
}

func NewBookingUsecase(
	bookingRepository contracts.BookingRepository,
	paymentRequestRepository contracts.PaymentRequestRepository,
	internalConfig *config.InternalConfig,
	appMetrics *metrics.Metrics,
	logger *zap.Logger,
) contracts.BookingUsecase {
	onceBookingUsecase.Do(func() {
		bookingUsecaseInstance = newBookingUsecase(bookingRepository, paymentRequestRepository, internalConfig, appMetrics, logger)
	})
	return bookingUsecaseInstance
}

func newBookingUsecase(
	bookingRepository contracts.BookingRepository,
	paymentRequestRepository contracts.PaymentRequestRepository,
	internalConfig *config.InternalConfig,
	appMetrics *metrics.Metrics,
	logger *zap.Logger,
) *bookingUsecase {
	return &bookingUsecase{
		BookingRepository:        bookingRepository,
		PaymentRequestRepository: paymentRequestRepository,
		Pricer:                   NewPricer(internalConfig.Pricing),
		InternalConfig:           internalConfig,
		Metrics:                  appMetrics,
		Log:                      logger,
	}
}

func (uc *bookingUsecase) CreateBooking(ctx context.Context, request *requests.CreateBooking) (*responses.Booking, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("bookingUsecase.CreateBooking called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int("line_items", len(request.LineItems)),
	)

	if session, ok := models.SessionFromContext(ctx); ok {
		request.Customer.Mobile = session.Mobile
	}

	lineItems, total, err := uc.Pricer.Price(request.LineItems)
	if err != nil {
		uc.Log.Error("bookingUsecase.CreateBooking error pricing line items",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	currency := uc.InternalConfig.App.Currency
	if currency == "" {
		currency = constvars.DefaultCurrency
	}

	now := time.Now()
	booking := &models.Booking{
		ID: uuid.NewString(),
		Customer: models.Customer{
			Name:   request.Customer.Name,
			Email:  request.Customer.Email,
			Mobile: request.Customer.Mobile,
		},
		LineItems:     lineItems,
		ComputedTotal: total,
		Currency:      currency,
		PaymentStatus: models.PaymentStatusPending,
		TimeModel: models.TimeModel{
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	if err := uc.BookingRepository.Insert(ctx, booking); err != nil {
		uc.Log.Error("bookingUsecase.CreateBooking error inserting booking",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	utils.LogBusinessEvent(uc.Log, "booking_created", requestID,
		zap.String(constvars.LoggingBookingIDKey, booking.ID),
		zap.Int64("computed_total", booking.ComputedTotal),
	)
	return ToBookingResponse(booking), nil
}

// loadBooking hides bookings the session does not own behind a not found error.
func (uc *bookingUsecase) loadBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
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

func (uc *bookingUsecase) GetBooking(ctx context.Context, bookingID string) (*responses.Booking, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("bookingUsecase.GetBooking called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingBookingIDKey, bookingID),
	)

	booking, err := uc.loadBooking(ctx, bookingID)
	if err != nil {
		uc.Log.Error("bookingUsecase.GetBooking error loading booking",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	return ToBookingResponse(booking), nil
}

func (uc *bookingUsecase) ListBookings(ctx context.Context, request *requests.ListBookings) ([]responses.Booking, int, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("bookingUsecase.ListBookings called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPaymentStatusKey, request.PaymentStatus),
		zap.Int("page", request.Page),
		zap.Int("page_size", request.PageSize),
	)

	filter := models.BookingFilter{
		PaymentStatus: models.PaymentStatus(request.PaymentStatus),
		Mobile:        request.Mobile,
	}
	if session, ok := models.SessionFromContext(ctx); ok {
		filter.Mobile = session.Mobile
	}

	page, pageSize := request.Page, request.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > constvars.AppMaxPageSize {
		pageSize = constvars.AppDefaultPageSize
	}

	bookings, total, err := uc.BookingRepository.List(ctx, filter, page, pageSize)
	if err != nil {
		uc.Log.Error("bookingUsecase.ListBookings error listing bookings",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, 0, err
	}

	result := make([]responses.Booking, 0, len(bookings))
	for i := range bookings {
		result = append(result, *ToBookingResponse(&bookings[i]))
	}
	return result, total, nil
}

func (uc *bookingUsecase) CancelBooking(ctx context.Context, request *requests.CancelBooking) (*responses.Booking, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("bookingUsecase.CancelBooking called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingBookingIDKey, request.BookingID),
	)

	booking, err := uc.loadBooking(ctx, request.BookingID)
	if err != nil {
		return nil, err
	}

	from := booking.PaymentStatus
	if !from.CanTransitionTo(models.PaymentStatusCancelled, models.TransitionSourceCancel) {
		return nil, exceptions.ErrInvalidBookingState(nil, from.String(), models.PaymentStatusCancelled.String())
	}

	change := models.StatusChange{
		From:   from,
		To:     models.PaymentStatusCancelled,
		Source: models.TransitionSourceCancel,
		Reason: request.Reason,
		At:     time.Now(),
	}
	applied, err := uc.BookingRepository.TransitionPaymentStatus(ctx, booking.ID, change, nil)
	if err != nil {
		uc.Log.Error("bookingUsecase.CancelBooking error updating booking",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	if !applied {
		return nil, exceptions.ErrBookingConcurrentUpdate(nil)
	}

	uc.Metrics.RecordTransition(from.String(), change.To.String(), string(change.Source))

	// An open payment link must not stay payable. A paid callback that still
	// arrives for it is logged for a refund by the payment flow.
	superseded, err := uc.PaymentRequestRepository.SupersedeActive(ctx, booking.ID)
	if err != nil {
		uc.Log.Warn("bookingUsecase.CancelBooking failed to close open payment requests",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingBookingIDKey, booking.ID),
			zap.Error(err),
		)
	}
	utils.LogBusinessEvent(uc.Log, "booking_cancelled", requestID,
		zap.String(constvars.LoggingBookingIDKey, booking.ID),
		zap.String("from", from.String()),
		zap.Int64("payment_requests_closed", superseded),
	)

	booking.PaymentStatus = change.To
	booking.StatusHistory = append(booking.StatusHistory, change)
	booking.UpdatedAt = change.At
	return ToBookingResponse(booking), nil
}
