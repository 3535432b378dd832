package controllers

import (
	"context"
	"errors"
	"farmstay-service/internal/app/config"
	"farmstay-service/internal/app/contracts"
	"farmstay-service/internal/pkg/constvars"
	"farmstay-service/internal/pkg/dto/requests"
	"farmstay-service/internal/pkg/exceptions"
	"farmstay-service/internal/pkg/utils"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type BookingController struct {
	Log            *zap.Logger
	BookingUsecase contracts.BookingUsecase
	InternalConfig *config.InternalConfig
}

func NewBookingController(logger *zap.Logger, bookingUsecase contracts.BookingUsecase, internalConfig *config.InternalConfig) *BookingController {
	return &BookingController{
		Log:            logger,
		BookingUsecase: bookingUsecase,
		InternalConfig: internalConfig,
	}
}

func (ctrl *BookingController) CreateBooking(w http.ResponseWriter, r *http.Request) {
	requestID, _ := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	request := new(requests.CreateBooking)
	err := json.NewDecoder(r.Body).Decode(request)
	if err != nil {
		ctrl.Log.Error("BookingController.CreateBooking error decoding request body",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}

	utils.SanitizeCreateBookingRequest(request)

	err = utils.ValidateStruct(request)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	result, err := ctrl.BookingUsecase.CreateBooking(ctx, request)
	if err != nil {
		ctrl.Log.Error("BookingController.CreateBooking error from usecase",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		writeUsecaseError(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusCreated, constvars.CreateBookingSuccessMessage, result)
}

func (ctrl *BookingController) GetBooking(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, constvars.URLParamBookingID)
	if err := utils.ValidateUrlParamID(bookingID); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrURLParamIDValidation(err, constvars.URLParamBookingID))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	result, err := ctrl.BookingUsecase.GetBooking(ctx, bookingID)
	if err != nil {
		writeUsecaseError(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.GetBookingSuccessMessage, result)
}

// ListBookings serves the operator listing, filtered by status and mobile.
func (ctrl *BookingController) ListBookings(w http.ResponseWriter, r *http.Request) {
	pagination := utils.BuildPaginationRequest(r)
	query := r.URL.Query()

	request := &requests.ListBookings{
		PaymentStatus: strings.ToLower(strings.TrimSpace(query.Get(constvars.QueryParamStatus))),
		Mobile:        strings.TrimSpace(query.Get(constvars.QueryParamMobile)),
		Pagination:    *pagination,
	}

	err := utils.ValidateStruct(request)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	result, total, err := ctrl.BookingUsecase.ListBookings(ctx, request)
	if err != nil {
		writeUsecaseError(ctrl.Log, w, err)
		return
	}

	baseURL := strings.TrimRight(ctrl.InternalConfig.App.BaseUrl, "/") + r.URL.Path
	paginationData := utils.BuildPaginationResponse(total, request.Page, request.PageSize, baseURL)
	utils.BuildSuccessResponseWithPagination(w, constvars.StatusOK, constvars.ListBookingsSuccessMessage, paginationData, result)
}

func (ctrl *BookingController) CancelBooking(w http.ResponseWriter, r *http.Request) {
	requestID, _ := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	request := &requests.CancelBooking{BookingID: chi.URLParam(r, constvars.URLParamBookingID)}
	if err := utils.ValidateUrlParamID(request.BookingID); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrURLParamIDValidation(err, constvars.URLParamBookingID))
		return
	}

	// The reason is optional so an empty body is accepted.
	if err := json.NewDecoder(r.Body).Decode(request); err != nil && !errors.Is(err, io.EOF) {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}
	request.Reason = strings.TrimSpace(request.Reason)

	if err := utils.ValidateStruct(request); err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), defaultRequestTimeout)
	defer cancel()

	result, err := ctrl.BookingUsecase.CancelBooking(ctx, request)
	if err != nil {
		ctrl.Log.Error("BookingController.CancelBooking error from usecase",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingBookingIDKey, request.BookingID),
			zap.Error(err),
		)
		writeUsecaseError(ctrl.Log, w, err)
		return
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.CancelBookingSuccessMessage, result)
}
