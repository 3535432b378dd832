package contracts

import (
	"context"
	"farmstay-service/internal/app/models"
	"farmstay-service/internal/pkg/dto/requests"
	"farmstay-service/internal/pkg/dto/responses"
)

type PaymentUsecase interface {
	CreatePaymentRequest(ctx context.Context, bookingID string) (*responses.PaymentRequest, error)
	RetryPaymentRequest(ctx context.Context, bookingID string) (*responses.PaymentRequest, error)
	HandlePaymentCallback(ctx context.Context, request *requests.PaymentCallback) (*responses.PaymentStatus, error)
	ReconcilePayment(ctx context.Context, bookingID string) (*responses.PaymentStatus, error)
	OverridePaymentStatus(ctx context.Context, request *requests.OverridePaymentStatus) (*responses.PaymentStatus, error)
	ClassifyReturnURL(ctx context.Context, request *requests.PaymentReturn) *responses.PaymentReturn
}

type PaymentRequestRepository interface {
	EnsureIndexes(ctx context.Context) error
	Insert(ctx context.Context, paymentRequest *models.PaymentRequest) error
	// FindByReference returns nil, nil when no request carries the reference.
	FindByReference(ctx context.Context, reference string) (*models.PaymentRequest, error)
	FindActiveByBookingID(ctx context.Context, bookingID string) (*models.PaymentRequest, error)
	SupersedeActive(ctx context.Context, bookingID string) (int64, error)
	UpdateStatus(ctx context.Context, paymentRequestID string, from, to models.PaymentRequestStatus, failureReason string) (bool, error)
}
