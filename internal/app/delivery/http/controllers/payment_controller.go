package controllers

import (
	"context"
	"farmstay-service/internal/app/contracts"
	"farmstay-service/internal/pkg/constvars"
	"farmstay-service/internal/pkg/dto/requests"
	"farmstay-service/internal/pkg/exceptions"
	"farmstay-service/internal/pkg/redirect"
	"farmstay-service/internal/pkg/utils"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Link generation makes two gateway round trips (token and links).
const paymentGatewayRequestTimeout = 30 * time.Second

type PaymentController struct {
	Log            *zap.Logger
	PaymentUsecase contracts.PaymentUsecase
}

var (
	paymentControllerInstance *PaymentController
	oncePaymentController     sync.Once
)

func NewPaymentController(logger *zap.Logger, paymentUsecase contracts.PaymentUsecase) *PaymentController {
	oncePaymentController.Do(func() {
		instance := &PaymentController{
			Log:            logger,
			PaymentUsecase: paymentUsecase,
		}
		paymentControllerInstance = instance
	})
	return paymentControllerInstance
}

func (ctrl *PaymentController) bookingIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	bookingID := chi.URLParam(r, constvars.URLParamBookingID)
	if err := utils.ValidateUrlParamID(bookingID); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrURLParamIDValidation(err, constvars.URLParamBookingID))
		return "", false
	}
	return bookingID, true
}

func (ctrl *PaymentController) CreatePaymentRequest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, _ := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	bookingID, ok := ctrl.bookingIDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), paymentGatewayRequestTimeout)
	defer cancel()

	result, err := ctrl.PaymentUsecase.CreatePaymentRequest(ctx, bookingID)
	if err != nil {
		ctrl.Log.Error("PaymentController.CreatePaymentRequest error from usecase",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingBookingIDKey, bookingID),
			zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
			zap.Error(err),
		)
		writeUsecaseError(ctrl.Log, w, err)
		return
	}

	code := constvars.StatusCreated
	if result.Reused {
		code = constvars.StatusOK
	}
	utils.BuildSuccessResponse(w, code, constvars.CreatePaymentRequestSuccessMessage, result)
}

func (ctrl *PaymentController) RetryPaymentRequest(w http.ResponseWriter, r *http.Request) {
	requestID, _ := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	bookingID, ok := ctrl.bookingIDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), paymentGatewayRequestTimeout)
	defer cancel()

	result, err := ctrl.PaymentUsecase.RetryPaymentRequest(ctx, bookingID)
	if err != nil {
		ctrl.Log.Error("PaymentController.RetryPaymentRequest error from usecase",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingBookingIDKey, bookingID),
			zap.Error(err),
		)
		writeUsecaseError(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusCreated, constvars.RetryPaymentRequestSuccessMessage, result)
}

func (ctrl *PaymentController) ReconcilePayment(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := ctrl.bookingIDParam(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), paymentGatewayRequestTimeout)
	defer cancel()

	result, err := ctrl.PaymentUsecase.ReconcilePayment(ctx, bookingID)
	if err != nil {
		writeUsecaseError(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.ReconcilePaymentSuccessMessage, result)
}

// PaymentCallback receives the gateway notification. BodyBuffer must run first so the raw payload can be archived.
func (ctrl *PaymentController) PaymentCallback(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID, _ := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	utils.LogSecurityEvent(ctrl.Log, "payment_callback_received", requestID, utils.SecuritySeverityLow,
		zap.String(constvars.LoggingRemoteAddrKey, r.RemoteAddr),
		zap.String(constvars.LoggingUserAgentKey, r.UserAgent()),
	)

	request := new(requests.PaymentCallback)
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		ctrl.Log.Error("PaymentController.PaymentCallback error decoding request body",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingErrorTypeKey, "JSON parsing"),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}
	request.RawBody, _ = r.Context().Value(constvars.CONTEXT_RAW_BODY).([]byte)
	request.Reference = strings.TrimSpace(request.Reference)
	request.Status = strings.TrimSpace(request.Status)

	if err := utils.ValidateStruct(request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	result, err := ctrl.PaymentUsecase.HandlePaymentCallback(ctx, request)
	if err != nil {
		ctrl.Log.Error("PaymentController.PaymentCallback error from usecase",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingPaymentReferenceKey, request.Reference),
			zap.String(constvars.LoggingGatewayStatusKey, request.Status),
			zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
			zap.Error(err),
		)
		writeUsecaseError(ctrl.Log, w, err)
		return
	}

	utils.LogBusinessEvent(ctrl.Log, "payment_callback_processed", requestID,
		zap.String(constvars.LoggingPaymentReferenceKey, request.Reference),
		zap.String(constvars.LoggingPaymentStatusKey, result.PaymentStatus),
		zap.Bool("changed", result.Changed),
		zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
	)
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.PaymentCallbackSuccessMessage, result)
}

// PaymentReturn sends the browser on from the gateway's return url. It never changes booking state.
func (ctrl *PaymentController) PaymentReturn(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	request := &requests.PaymentReturn{
		URL:       query.Get(constvars.QueryParamURL),
		Locale:    query.Get(constvars.QueryParamLocale),
		Reference: query.Get(constvars.QueryParamReference),
	}

	result := ctrl.PaymentUsecase.ClassifyReturnURL(r.Context(), request)

	if result.Outcome == string(redirect.OutcomeFailure) {
		w.Header().Set(constvars.HeaderRefresh, redirect.RefreshHeader(result.DelaySeconds, result.RedirectTo))
		utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.ResponseSuccess, result)
		return
	}

	http.Redirect(w, r, result.RedirectTo, http.StatusFound)
}

func (ctrl *PaymentController) OverridePaymentStatus(w http.ResponseWriter, r *http.Request) {
	requestID, _ := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	bookingID, ok := ctrl.bookingIDParam(w, r)
	if !ok {
		return
	}

	request := &requests.OverridePaymentStatus{}
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}
	request.BookingID = bookingID

	utils.SanitizeOverridePaymentStatusRequest(request)

	if err := utils.ValidateStruct(request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	result, err := ctrl.PaymentUsecase.OverridePaymentStatus(ctx, request)
	if err != nil {
		ctrl.Log.Error("PaymentController.OverridePaymentStatus error from usecase",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingBookingIDKey, bookingID),
			zap.Error(err),
		)
		writeUsecaseError(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.OverridePaymentStatusSuccessMessage, result)
}
