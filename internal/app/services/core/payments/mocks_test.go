package payments

import (
	"context"
	"farmstay-service/internal/app/models"
	"farmstay-service/internal/pkg/dto/requests"
	"farmstay-service/internal/pkg/dto/responses"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockBookingRepository) Insert(ctx context.Context, booking *models.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) FindByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	args := m.Called(ctx, bookingID)
	booking, _ := args.Get(0).(*models.Booking)
	return booking, args.Error(1)
}

func (m *MockBookingRepository) List(ctx context.Context, filter models.BookingFilter, page, pageSize int) ([]models.Booking, int, error) {
	args := m.Called(ctx, filter, page, pageSize)
	bookings, _ := args.Get(0).([]models.Booking)
	return bookings, args.Int(1), args.Error(2)
}

func (m *MockBookingRepository) ListStalePending(ctx context.Context, staleBefore time.Time, limit int) ([]models.Booking, error) {
	args := m.Called(ctx, staleBefore, limit)
	bookings, _ := args.Get(0).([]models.Booking)
	return bookings, args.Error(1)
}

func (m *MockBookingRepository) MarkReconcileAttempt(ctx context.Context, bookingID string, at time.Time) error {
	args := m.Called(ctx, bookingID, at)
	return args.Error(0)
}

func (m *MockBookingRepository) IncrementPaymentAttempts(ctx context.Context, bookingID string) (int, error) {
	args := m.Called(ctx, bookingID)
	return args.Int(0), args.Error(1)
}

func (m *MockBookingRepository) TransitionPaymentStatus(ctx context.Context, bookingID string, change models.StatusChange, update *models.BookingPaymentUpdate) (bool, error) {
	args := m.Called(ctx, bookingID, change, update)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepository) UpdatePaymentDetails(ctx context.Context, bookingID string, update models.BookingPaymentUpdate) error {
	args := m.Called(ctx, bookingID, update)
	return args.Error(0)
}

type MockPaymentRequestRepository struct {
	mock.Mock
}

func (m *MockPaymentRequestRepository) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockPaymentRequestRepository) Insert(ctx context.Context, paymentRequest *models.PaymentRequest) error {
	args := m.Called(ctx, paymentRequest)
	return args.Error(0)
}

func (m *MockPaymentRequestRepository) FindByReference(ctx context.Context, reference string) (*models.PaymentRequest, error) {
	args := m.Called(ctx, reference)
	pr, _ := args.Get(0).(*models.PaymentRequest)
	return pr, args.Error(1)
}

func (m *MockPaymentRequestRepository) FindActiveByBookingID(ctx context.Context, bookingID string) (*models.PaymentRequest, error) {
	args := m.Called(ctx, bookingID)
	pr, _ := args.Get(0).(*models.PaymentRequest)
	return pr, args.Error(1)
}

func (m *MockPaymentRequestRepository) SupersedeActive(ctx context.Context, bookingID string) (int64, error) {
	args := m.Called(ctx, bookingID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRequestRepository) UpdateStatus(ctx context.Context, paymentRequestID string, from, to models.PaymentRequestStatus, failureReason string) (bool, error) {
	args := m.Called(ctx, paymentRequestID, from, to, failureReason)
	return args.Bool(0), args.Error(1)
}

type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) GenerateLinks(ctx context.Context, request *requests.NoqoodyGenerateLinks) (*responses.NoqoodyGenerateLinks, error) {
	args := m.Called(ctx, request)
	resp, _ := args.Get(0).(*responses.NoqoodyGenerateLinks)
	return resp, args.Error(1)
}

func (m *MockPaymentGateway) GetTransactionStatus(ctx context.Context, reference string) (*responses.NoqoodyTransactionStatus, error) {
	args := m.Called(ctx, reference)
	resp, _ := args.Get(0).(*responses.NoqoodyTransactionStatus)
	return resp, args.Error(1)
}

type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) TryLock(ctx context.Context, key string, expiration time.Duration) (bool, string, error) {
	args := m.Called(ctx, key, expiration)
	return args.Bool(0), args.String(1), args.Error(2)
}

func (m *MockLocker) Unlock(ctx context.Context, key, lockValue string) error {
	args := m.Called(ctx, key, lockValue)
	return args.Error(0)
}

type MockSMSService struct {
	mock.Mock
}

func (m *MockSMSService) SendSMS(ctx context.Context, request *requests.SMSMessage) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) PutObject(ctx context.Context, bucketName, objectName string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, bucketName, objectName, data, contentType)
	return args.String(0), args.Error(1)
}
