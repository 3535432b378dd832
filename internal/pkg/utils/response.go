package utils

import (
	"errors"
	"farmstay-service/internal/pkg/constvars"
	"farmstay-service/internal/pkg/dto/responses"
	"farmstay-service/internal/pkg/exceptions"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func BuildPaginationResponse(total, page, pageSize int, baseURL string) *responses.Pagination {
	pagination := &responses.Pagination{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}

	if page*pageSize < total {
		pagination.NextURL = fmt.Sprintf(constvars.AppPaginationUrlFormat, baseURL, page+1, pageSize)
	}
	if page > 1 {
		pagination.PrevURL = fmt.Sprintf(constvars.AppPaginationUrlFormat, baseURL, page-1, pageSize)
	}

	return pagination
}

func BuildSuccessResponse(w http.ResponseWriter, code int, message string, data interface{}) {
	BuildSuccessResponseWithPagination(w, code, message, nil, data)
}

func BuildSuccessResponseWithPagination(w http.ResponseWriter, code int, message string, pagination *responses.Pagination, data interface{}) {
	writeJSON(w, code, responses.ResponseDTO{
		Success:    true,
		Message:    message,
		Data:       data,
		Pagination: pagination,
	})
}

// BuildErrorResponse writes err as a CustomError body. Anything that is not a
// CustomError is reported as a 500 with the generic client message. Dev
// messages and locations are only exposed outside production.
func BuildErrorResponse(log *zap.Logger, w http.ResponseWriter, err error) {
	response := exceptions.CustomError{
		StatusCode:    constvars.StatusInternalServerError,
		ClientMessage: constvars.ErrClientSomethingWrongWithApplication,
	}

	var customErr *exceptions.CustomError
	if errors.As(err, &customErr) {
		response.StatusCode = customErr.StatusCode
		response.ClientMessage = customErr.ClientMessage
		if GetEnvString("APP_ENV", "development") != "production" {
			response.DevMessage = customErr.DevMessage
			response.Locations = customErr.Locations
		}
	}
	logErrorResponse(log, response.StatusCode, customErr, err)

	writeJSON(w, response.StatusCode, response)
}

func logErrorResponse(log *zap.Logger, code int, customErr *exceptions.CustomError, err error) {
	if err == nil {
		return
	}
	level := zapcore.ErrorLevel
	if code < http.StatusInternalServerError {
		level = zapcore.WarnLevel
	}

	message := err.Error()
	fields := []zap.Field{zap.Int(constvars.LoggingStatusCodeKey, code)}
	if customErr != nil {
		message = customErr.DevMessage
		fields = append(fields, zap.String(constvars.LoggingErrorMessageKey, customErr.ClientMessage))
		if len(customErr.Locations) > 0 {
			fields = append(fields, zap.Any("locations", customErr.Locations))
		}
	}
	if ce := log.Check(level, message); ce != nil {
		ce.Write(fields...)
	}
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
