package payments

import (
	"context"
	"errors"
	"farmstay-service/internal/app/config"
	"farmstay-service/internal/app/models"
	"farmstay-service/internal/app/services/shared/metrics"
	"farmstay-service/internal/app/services/shared/payment_gateway"
	"farmstay-service/internal/pkg/constvars"
	"farmstay-service/internal/pkg/dto/requests"
	"farmstay-service/internal/pkg/dto/responses"
	"farmstay-service/internal/pkg/exceptions"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const (
	testBookingID = "b-1"
	testLockKey   = constvars.RedisKeyPrefixPaymentLock + testBookingID
	testPayURL    = "https://pay.example.com/link/1"
)

type paymentFixture struct {
	bookings *MockBookingRepository
	requests *MockPaymentRequestRepository
	gateway  *MockPaymentGateway
	locker   *MockLocker
	sms      *MockSMSService
	storage  *MockStorage
	signer   *payment_gateway.Signer
	uc       *paymentUsecase
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	signer, err := payment_gateway.NewSigner("S3CR3T",
		[]string{
			constvars.SignatureFieldCustomerEmail,
			constvars.SignatureFieldCustomerName,
			constvars.SignatureFieldCustomerMobile,
			constvars.SignatureFieldProjectCode,
			constvars.SignatureFieldReference,
		},
		[]string{
			constvars.SignatureFieldReference,
			constvars.SignatureFieldGatewayPaymentID,
			constvars.SignatureFieldStatus,
		},
		constvars.SignatureEncodingHex,
	)
	require.NoError(t, err)

	f := &paymentFixture{
		bookings: new(MockBookingRepository),
		requests: new(MockPaymentRequestRepository),
		gateway:  new(MockPaymentGateway),
		locker:   new(MockLocker),
		sms:      new(MockSMSService),
		storage:  new(MockStorage),
		signer:   signer,
	}

	cfg := &config.InternalConfig{
		App: config.App{Currency: "QAR", PaymentLockExpiredTimeInSeconds: 30},
		Noqoody: config.AppNoqoody{
			ProjectCode:        "PRJ-1",
			ReferencePrefix:    "BOOK",
			PaymentDescription: "Farm stay booking",
			CallbackUrl:        "https://api.example.com/api/v1/payments/callback",
		},
		Minio: config.AppMinio{CallbackArchiveBucketName: "callbacks"},
		Redirect: config.AppRedirect{
			FailurePatterns:  []string{"/failed", "/failure", "/error", "/cancel", "status=failed"},
			SuccessPatterns:  []string{"/success", "status=success", "status=paid"},
			DefaultLocale:    "en",
			SupportedLocales: []string{"en", "ar"},
		},
	}

	f.uc = newPaymentUsecase(PaymentUsecaseDeps{
		BookingRepository:        f.bookings,
		PaymentRequestRepository: f.requests,
		PaymentGateway:           f.gateway,
		Signer:                   signer,
		Locker:                   f.locker,
		SMSService:               f.sms,
		Storage:                  f.storage,
		InternalConfig:           cfg,
		Metrics:                  metrics.New("test", prometheus.NewRegistry()),
		Log:                      zap.NewNop(),
	})
	return f
}

func (f *paymentFixture) expectLock() {
	f.locker.On("TryLock", mock.Anything, testLockKey, 30*time.Second).Return(true, "lock-value", nil)
	f.locker.On("Unlock", mock.Anything, testLockKey, "lock-value").Return(nil)
}

func testCtx() context.Context {
	return context.WithValue(context.Background(), constvars.CONTEXT_REQUEST_ID_KEY, "req-1")
}

func testBooking(status models.PaymentStatus) *models.Booking {
	return &models.Booking{
		ID: testBookingID,
		Customer: models.Customer{
			Name:   "Guest",
			Email:  "guest@example.com",
			Mobile: "+97450001234",
		},
		ComputedTotal: 50000,
		Currency:      "QAR",
		PaymentStatus: status,
	}
}

func (f *paymentFixture) expectedRequestSignature(t *testing.T, reference string) string {
	t.Helper()
	signature, err := f.signer.SignPaymentRequest(map[string]string{
		constvars.SignatureFieldCustomerEmail:  "guest@example.com",
		constvars.SignatureFieldCustomerName:   "Guest",
		constvars.SignatureFieldCustomerMobile: "+97450001234",
		constvars.SignatureFieldProjectCode:    "PRJ-1",
		constvars.SignatureFieldReference:      reference,
	})
	require.NoError(t, err)
	return signature
}

func (f *paymentFixture) expectGatewaySuccess(t *testing.T, attempt int) {
	reference := BuildReference("BOOK", testBookingID, attempt)
	signature := f.expectedRequestSignature(t, reference)

	f.bookings.On("IncrementPaymentAttempts", mock.Anything, testBookingID).Return(attempt, nil)
	f.gateway.On("GenerateLinks", mock.Anything, mock.MatchedBy(func(r *requests.NoqoodyGenerateLinks) bool {
		return r.Reference == reference && r.Amount == "500.00" && r.SecureHash == signature && r.ProjectCode == "PRJ-1"
	})).Return(&responses.NoqoodyGenerateLinks{Success: true, PaymentURL: testPayURL, PaymentLinkID: "LNK-1"}, nil)
	f.requests.On("SupersedeActive", mock.Anything, testBookingID).Return(int64(0), nil)
	f.requests.On("Insert", mock.Anything, mock.MatchedBy(func(pr *models.PaymentRequest) bool {
		return pr.Status == models.PaymentRequestStatusActive &&
			pr.Reference == reference &&
			pr.Attempt == attempt &&
			pr.RedirectURL == testPayURL &&
			pr.SignatureHash == signature
	})).Return(nil)
	f.bookings.On("UpdatePaymentDetails", mock.Anything, testBookingID, mock.MatchedBy(func(u models.BookingPaymentUpdate) bool {
		return *u.PaymentReference == reference && *u.RedirectURL == testPayURL && *u.GatewayPaymentID == "LNK-1"
	})).Return(nil)
}

func TestPaymentUsecase_CreatePaymentRequest(t *testing.T) {
	t.Run("creates signed request", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.bookings.On("FindByID", mock.Anything, testBookingID).Return(testBooking(models.PaymentStatusPending), nil)
		f.expectLock()
		f.requests.On("FindActiveByBookingID", mock.Anything, testBookingID).Return(nil, nil)
		f.expectGatewaySuccess(t, 1)

		resp, err := f.uc.CreatePaymentRequest(testCtx(), testBookingID)
		require.NoError(t, err)
		assert.Equal(t, "BOOK-b-1-1", resp.Reference)
		assert.Equal(t, testPayURL, resp.RedirectURL)
		assert.Equal(t, "500.00", resp.Amount)
		assert.False(t, resp.Reused)

		f.gateway.AssertExpectations(t)
		f.requests.AssertExpectations(t)
		f.locker.AssertExpectations(t)
	})

	t.Run("returns active request while pending", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.bookings.On("FindByID", mock.Anything, testBookingID).Return(testBooking(models.PaymentStatusPending), nil)
		f.expectLock()
		f.requests.On("FindActiveByBookingID", mock.Anything, testBookingID).Return(&models.PaymentRequest{
			Reference:   "BOOK-b-1-1",
			RedirectURL: testPayURL,
			Amount:      50000,
			Currency:    "QAR",
			Status:      models.PaymentRequestStatusActive,
		}, nil)

		resp, err := f.uc.CreatePaymentRequest(testCtx(), testBookingID)
		require.NoError(t, err)
		assert.True(t, resp.Reused)
		assert.Equal(t, testPayURL, resp.RedirectURL)
		f.gateway.AssertNotCalled(t, "GenerateLinks", mock.Anything, mock.Anything)
		f.bookings.AssertNotCalled(t, "IncrementPaymentAttempts", mock.Anything, mock.Anything)
	})

	t.Run("gateway failure leaves booking pending", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.bookings.On("FindByID", mock.Anything, testBookingID).Return(testBooking(models.PaymentStatusPending), nil)
		f.expectLock()
		f.requests.On("FindActiveByBookingID", mock.Anything, testBookingID).Return(nil, nil)
		f.bookings.On("IncrementPaymentAttempts", mock.Anything, testBookingID).Return(1, nil)
		f.gateway.On("GenerateLinks", mock.Anything, mock.Anything).
			Return(nil, exceptions.ErrGatewayUnavailable(errors.New("dial tcp: connection refused")))
		f.requests.On("Insert", mock.Anything, mock.MatchedBy(func(pr *models.PaymentRequest) bool {
			return pr.Status == models.PaymentRequestStatusFailed && pr.FailureReason != "" && pr.Reference == "BOOK-b-1-1"
		})).Return(nil)

		_, err := f.uc.CreatePaymentRequest(testCtx(), testBookingID)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadGateway, exceptions.StatusCodeOf(err))
		f.bookings.AssertNotCalled(t, "UpdatePaymentDetails", mock.Anything, mock.Anything, mock.Anything)
		f.bookings.AssertNotCalled(t, "TransitionPaymentStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.requests.AssertNotCalled(t, "SupersedeActive", mock.Anything, mock.Anything)
		f.locker.AssertExpectations(t)
	})

	t.Run("rejected states", func(t *testing.T) {
		tests := []struct {
			name    string
			booking *models.Booking
		}{
			{"paid", testBooking(models.PaymentStatusPaid)},
			{"cancelled", testBooking(models.PaymentStatusCancelled)},
			{"failed needs retry", testBooking(models.PaymentStatusFailed)},
			{"zero total", func() *models.Booking { b := testBooking(models.PaymentStatusPending); b.ComputedTotal = 0; return b }()},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newPaymentFixture(t)
				f.bookings.On("FindByID", mock.Anything, testBookingID).Return(tt.booking, nil)

				_, err := f.uc.CreatePaymentRequest(testCtx(), testBookingID)
				assert.Equal(t, http.StatusConflict, exceptions.StatusCodeOf(err))
				f.locker.AssertNotCalled(t, "TryLock", mock.Anything, mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("booking paid while waiting for the lock", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.bookings.On("FindByID", mock.Anything, testBookingID).Return(testBooking(models.PaymentStatusPending), nil).Once()
		f.bookings.On("FindByID", mock.Anything, testBookingID).Return(testBooking(models.PaymentStatusPaid), nil).Once()
		f.expectLock()

		_, err := f.uc.CreatePaymentRequest(testCtx(), testBookingID)
		assert.Equal(t, http.StatusConflict, exceptions.StatusCodeOf(err))
		f.requests.AssertNotCalled(t, "FindActiveByBookingID", mock.Anything, mock.Anything)
		f.gateway.AssertNotCalled(t, "GenerateLinks", mock.Anything, mock.Anything)
		f.bookings.AssertNotCalled(t, "IncrementPaymentAttempts", mock.Anything, mock.Anything)
		f.locker.AssertExpectations(t)
	})

	t.Run("booking failed while waiting for the lock", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.bookings.On("FindByID", mock.Anything, testBookingID).Return(testBooking(models.PaymentStatusPending), nil).Once()
		f.bookings.On("FindByID", mock.Anything, testBookingID).Return(testBooking(models.PaymentStatusFailed), nil).Once()
		f.expectLock()

		_, err := f.uc.CreatePaymentRequest(testCtx(), testBookingID)
		assert.Equal(t, http.StatusConflict, exceptions.StatusCodeOf(err))
		f.gateway.AssertNotCalled(t, "GenerateLinks", mock.Anything, mock.Anything)
	})

	t.Run("lock held elsewhere", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.bookings.On("FindByID", mock.Anything, testBookingID).Return(testBooking(models.PaymentStatusPending), nil)
		f.locker.On("TryLock", mock.Anything, testLockKey, 30*time.Second).Return(false, "", nil)

		_, err := f.uc.CreatePaymentRequest(testCtx(), testBookingID)
		assert.Equal(t, http.StatusConflict, exceptions.StatusCodeOf(err))
		f.locker.AssertNotCalled(t, "Unlock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("booking of another customer", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.bookings.On("FindByID", mock.Anything, testBookingID).Return(testBooking(models.PaymentStatusPending), nil)
		ctx := models.ContextWithSession(testCtx(), &models.Session{SessionID: "s-2", Mobile: "+97459999999"})

		_, err := f.uc.CreatePaymentRequest(ctx, testBookingID)
		assert.Equal(t, http.StatusNotFound, exceptions.StatusCodeOf(err))
	})
}

func TestPaymentUsecase_RetryPaymentRequest(t *testing.T) {
	f := newPaymentFixture(t)
	f.bookings.On("FindByID", mock.Anything, testBookingID).Return(testBooking(models.PaymentStatusFailed), nil)
	f.expectLock()
	f.bookings.On("TransitionPaymentStatus", mock.Anything, testBookingID, mock.MatchedBy(func(c models.StatusChange) bool {
		return c.From == models.PaymentStatusFailed && c.To == models.PaymentStatusPending && c.Source == models.TransitionSourceRetry
	}), (*models.BookingPaymentUpdate)(nil)).Return(true, nil)
	f.expectGatewaySuccess(t, 2)

	resp, err := f.uc.RetryPaymentRequest(testCtx(), testBookingID)
	require.NoError(t, err)
	assert.Equal(t, "BOOK-b-1-2", resp.Reference)
	f.requests.AssertNumberOfCalls(t, "SupersedeActive", 2)
	f.bookings.AssertExpectations(t)
}

func TestPaymentUsecase_RetryPaymentRequest_BookingCancelledWhileWaiting(t *testing.T) {
	f := newPaymentFixture(t)
	f.bookings.On("FindByID", mock.Anything, testBookingID).Return(testBooking(models.PaymentStatusFailed), nil).Once()
	f.bookings.On("FindByID", mock.Anything, testBookingID).Return(testBooking(models.PaymentStatusCancelled), nil).Once()
	f.expectLock()

	_, err := f.uc.RetryPaymentRequest(testCtx(), testBookingID)
	assert.Equal(t, http.StatusConflict, exceptions.StatusCodeOf(err))
	f.bookings.AssertNotCalled(t, "TransitionPaymentStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.requests.AssertNotCalled(t, "SupersedeActive", mock.Anything, mock.Anything)
	f.gateway.AssertNotCalled(t, "GenerateLinks", mock.Anything, mock.Anything)
}

func (f *paymentFixture) callback(t *testing.T, status string, amount *decimal.Decimal) *requests.PaymentCallback {
	t.Helper()
	signature, err := f.signer.SignCallback(map[string]string{
		constvars.SignatureFieldReference:        "BOOK-b-1-1",
		constvars.SignatureFieldGatewayPaymentID: "NQ-778",
		constvars.SignatureFieldStatus:           status,
	})
	require.NoError(t, err)
	return &requests.PaymentCallback{
		Reference:        "BOOK-b-1-1",
		Status:           status,
		GatewayPaymentID: "NQ-778",
		SignatureHash:    signature,
		Amount:           amount,
		RawBody:          []byte(`{"reference":"BOOK-b-1-1"}`),
	}
}

func activeRequest(status models.PaymentRequestStatus) *models.PaymentRequest {
	return &models.PaymentRequest{
		ID:        "pr-1",
		Reference: "BOOK-b-1-1",
		BookingID: testBookingID,
		Amount:    50000,
		Status:    status,
	}
}

func (f *paymentFixture) expectArchive() {
	f.storage.On("PutObject", mock.Anything, "callbacks", mock.AnythingOfType("string"), mock.Anything, constvars.MIMEApplicationJSON).
		Return("callbacks/b-1/BOOK-b-1-1.json", nil)
}

func transitionTo(from, to models.PaymentStatus, source models.TransitionSource) interface{} {
	return mock.MatchedBy(func(c models.StatusChange) bool {
		return c.From == from && c.To == to && c.Source == source
	})
}

func TestPaymentUsecase_HandlePaymentCallback(t *testing.T) {
	t.Run("marks booking paid", func(t *testing.T) {
		f := newPaymentFixture(t)
		amount := decimal.RequireFromString("500.00")
		f.requests.On("FindByReference", mock.Anything, "BOOK-b-1-1").Return(activeRequest(models.PaymentRequestStatusActive), nil)
		f.bookings.On("FindByID", mock.Anything, testBookingID).Return(testBooking(models.PaymentStatusPending), nil)
		f.expectArchive()
		f.bookings.On("TransitionPaymentStatus", mock.Anything, testBookingID,
			transitionTo(models.PaymentStatusPending, models.PaymentStatusPaid, models.TransitionSourceCallback),
			mock.MatchedBy(func(u *models.BookingPaymentUpdate) bool { return u != nil && *u.GatewayPaymentID == "NQ-778" }),
		).Return(true, nil)
		f.requests.On("UpdateStatus", mock.Anything, "pr-1", models.PaymentRequestStatusActive, models.PaymentRequestStatusCompleted, "").Return(true, nil)
		f.sms.On("SendSMS", mock.Anything, mock.MatchedBy(func(m *requests.SMSMessage) bool {
			return m.To == "+97450001234" && m.Type == requests.SMSTypePaymentConfirmation
		})).Return(nil)

		resp, err := f.uc.HandlePaymentCallback(testCtx(), f.callback(t, "success", &amount))
		require.NoError(t, err)
		assert.True(t, resp.Changed)
		assert.Equal(t, "paid", resp.PaymentStatus)
		assert.Equal(t, "NQ-778", resp.GatewayPaymentID)
		f.sms.AssertExpectations(t)
		f.storage.AssertExpectations(t)
		f.requests.AssertExpectations(t)
	})

	t.Run("signature mismatch writes nothing", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.requests.On("FindByReference", mock.Anything, "BOOK-b-1-1").Return(activeRequest(models.PaymentRequestStatusActive), nil)
		request := f.callback(t, "success", nil)
		request.Status = "failed"

		_, err := f.uc.HandlePaymentCallback(testCtx(), request)
		assert.Equal(t, http.StatusUnauthorized, exceptions.StatusCodeOf(err))
		f.bookings.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
		f.bookings.AssertNotCalled(t, "TransitionPaymentStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.storage.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown reference", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.requests.On("FindByReference", mock.Anything, "BOOK-b-1-1").Return(nil, nil)

		_, err := f.uc.HandlePaymentCallback(testCtx(), f.callback(t, "success", nil))
		assert.Equal(t, http.StatusNotFound, exceptions.StatusCodeOf(err))
	})

	t.Run("amount mismatch", func(t *testing.T) {
		f := newPaymentFixture(t)
		amount := decimal.RequireFromString("450.00")
		f.requests.On("FindByReference", mock.Anything, "BOOK-b-1-1").Return(activeRequest(models.PaymentRequestStatusActive), nil)
		f.bookings.On("FindByID", mock.Anything, testBookingID).Return(testBooking(models.PaymentStatusPending), nil)

		_, err := f.uc.HandlePaymentCallback(testCtx(), f.callback(t, "success", &amount))
		assert.Equal(t, http.StatusUnprocessableEntity, exceptions.StatusCodeOf(err))
		f.bookings.AssertNotCalled(t, "TransitionPaymentStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("repeated success is a no-op", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.requests.On("FindByReference", mock.Anything, "BOOK-b-1-1").Return(activeRequest(models.PaymentRequestStatusCompleted), nil)
		f.bookings.On("FindByID", mock.Anything, testBookingID).Return(testBooking(models.PaymentStatusPaid), nil)
		f.expectArchive()

		resp, err := f.uc.HandlePaymentCallback(testCtx(), f.callback(t, "success", nil))
		require.NoError(t, err)
		assert.False(t, resp.Changed)
		assert.Equal(t, "paid", resp.PaymentStatus)
		f.bookings.AssertNotCalled(t, "TransitionPaymentStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.sms.AssertNotCalled(t, "SendSMS", mock.Anything, mock.Anything)
	})

	t.Run("paid booking ignores failure", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.requests.On("FindByReference", mock.Anything, "BOOK-b-1-1").Return(activeRequest(models.PaymentRequestStatusCompleted), nil)
		f.bookings.On("FindByID", mock.Anything, testBookingID).Return(testBooking(models.PaymentStatusPaid), nil)
		f.expectArchive()

		resp, err := f.uc.HandlePaymentCallback(testCtx(), f.callback(t, "failed", nil))
		require.NoError(t, err)
		assert.False(t, resp.Changed)
		assert.Equal(t, "paid", resp.PaymentStatus)
	})

	t.Run("late success on failed booking is not applied", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.requests.On("FindByReference", mock.Anything, "BOOK-b-1-1").Return(activeRequest(models.PaymentRequestStatusFailed), nil)
		f.bookings.On("FindByID", mock.Anything, testBookingID).Return(testBooking(models.PaymentStatusFailed), nil)
		f.expectArchive()

		resp, err := f.uc.HandlePaymentCallback(testCtx(), f.callback(t, "success", nil))
		require.NoError(t, err)
		assert.False(t, resp.Changed)
		assert.Equal(t, "failed", resp.PaymentStatus)
	})

	t.Run("superseded request cannot fail the booking", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.requests.On("FindByReference", mock.Anything, "BOOK-b-1-1").Return(activeRequest(models.PaymentRequestStatusSuperseded), nil)
		f.bookings.On("FindByID", mock.Anything, testBookingID).Return(testBooking(models.PaymentStatusPending), nil)
		f.expectArchive()

		resp, err := f.uc.HandlePaymentCallback(testCtx(), f.callback(t, "declined", nil))
		require.NoError(t, err)
		assert.False(t, resp.Changed)
		assert.Equal(t, "pending", resp.PaymentStatus)
	})

	t.Run("redelivered failure for an earlier attempt leaves the retried booking pending", func(t *testing.T) {
		f := newPaymentFixture(t)
		retried := testBooking(models.PaymentStatusPending)
		retried.PaymentReference = "BOOK-b-1-2"
		f.requests.On("FindByReference", mock.Anything, "BOOK-b-1-1").Return(activeRequest(models.PaymentRequestStatusFailed), nil)
		f.bookings.On("FindByID", mock.Anything, testBookingID).Return(retried, nil)
		f.expectArchive()

		resp, err := f.uc.HandlePaymentCallback(testCtx(), f.callback(t, "failed", nil))
		require.NoError(t, err)
		assert.False(t, resp.Changed)
		assert.Equal(t, "pending", resp.PaymentStatus)
		f.bookings.AssertNotCalled(t, "TransitionPaymentStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.requests.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("active request that is no longer current cannot fail the booking", func(t *testing.T) {
		f := newPaymentFixture(t)
		retried := testBooking(models.PaymentStatusPending)
		retried.PaymentReference = "BOOK-b-1-2"
		f.requests.On("FindByReference", mock.Anything, "BOOK-b-1-1").Return(activeRequest(models.PaymentRequestStatusActive), nil)
		f.bookings.On("FindByID", mock.Anything, testBookingID).Return(retried, nil)
		f.expectArchive()

		resp, err := f.uc.HandlePaymentCallback(testCtx(), f.callback(t, "declined", nil))
		require.NoError(t, err)
		assert.False(t, resp.Changed)
		f.bookings.AssertNotCalled(t, "TransitionPaymentStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("paid callback on a cancelled booking is flagged for refund", func(t *testing.T) {
		f := newPaymentFixture(t)
		core, logs := observer.New(zapcore.InfoLevel)
		f.uc.Log = zap.New(core)
		f.requests.On("FindByReference", mock.Anything, "BOOK-b-1-1").Return(activeRequest(models.PaymentRequestStatusSuperseded), nil)
		f.bookings.On("FindByID", mock.Anything, testBookingID).Return(testBooking(models.PaymentStatusCancelled), nil)
		f.expectArchive()

		resp, err := f.uc.HandlePaymentCallback(testCtx(), f.callback(t, "success", nil))
		require.NoError(t, err)
		assert.False(t, resp.Changed)
		assert.Equal(t, "cancelled", resp.PaymentStatus)
		assert.Equal(t, 1, logs.FilterField(zap.String("business_event", "paid_after_cancel_refund_required")).Len())
		f.bookings.AssertNotCalled(t, "TransitionPaymentStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.sms.AssertNotCalled(t, "SendSMS", mock.Anything, mock.Anything)
	})

	t.Run("in-flight status changes nothing", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.requests.On("FindByReference", mock.Anything, "BOOK-b-1-1").Return(activeRequest(models.PaymentRequestStatusActive), nil)
		f.bookings.On("FindByID", mock.Anything, testBookingID).Return(testBooking(models.PaymentStatusPending), nil)
		f.expectArchive()

		resp, err := f.uc.HandlePaymentCallback(testCtx(), f.callback(t, "processing", nil))
		require.NoError(t, err)
		assert.False(t, resp.Changed)
	})

	t.Run("lost race to the same status", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.requests.On("FindByReference", mock.Anything, "BOOK-b-1-1").Return(activeRequest(models.PaymentRequestStatusActive), nil)
		f.bookings.On("FindByID", mock.Anything, testBookingID).Return(testBooking(models.PaymentStatusPending), nil).Once()
		f.bookings.On("FindByID", mock.Anything, testBookingID).Return(testBooking(models.PaymentStatusPaid), nil).Once()
		f.expectArchive()
		f.bookings.On("TransitionPaymentStatus", mock.Anything, testBookingID, mock.Anything, mock.Anything).Return(false, nil)

		resp, err := f.uc.HandlePaymentCallback(testCtx(), f.callback(t, "paid", nil))
		require.NoError(t, err)
		assert.False(t, resp.Changed)
		assert.Equal(t, "paid", resp.PaymentStatus)
		f.sms.AssertNotCalled(t, "SendSMS", mock.Anything, mock.Anything)
	})
}

func TestPaymentUsecase_ReconcilePayment(t *testing.T) {
	reconcilable := func() *models.Booking {
		b := testBooking(models.PaymentStatusPending)
		b.PaymentReference = "BOOK-b-1-1"
		return b
	}

	t.Run("applies gateway failure", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.bookings.On("FindByID", mock.Anything, testBookingID).Return(reconcilable(), nil)
		f.requests.On("FindByReference", mock.Anything, "BOOK-b-1-1").Return(activeRequest(models.PaymentRequestStatusActive), nil)
		f.gateway.On("GetTransactionStatus", mock.Anything, "BOOK-b-1-1").Return(&responses.NoqoodyTransactionStatus{
			Success:           true,
			Reference:         "BOOK-b-1-1",
			TransactionID:     "TX-1",
			TransactionStatus: "Failed",
		}, nil)
		f.bookings.On("TransitionPaymentStatus", mock.Anything, testBookingID,
			transitionTo(models.PaymentStatusPending, models.PaymentStatusFailed, models.TransitionSourceReconcile),
			mock.Anything,
		).Return(true, nil)
		f.requests.On("UpdateStatus", mock.Anything, "pr-1", models.PaymentRequestStatusActive, models.PaymentRequestStatusFailed, mock.AnythingOfType("string")).Return(true, nil)

		resp, err := f.uc.ReconcilePayment(testCtx(), testBookingID)
		require.NoError(t, err)
		assert.True(t, resp.Changed)
		assert.Equal(t, "failed", resp.PaymentStatus)
		assert.Equal(t, "Failed", resp.GatewayStatus)
		f.sms.AssertNotCalled(t, "SendSMS", mock.Anything, mock.Anything)
	})

	t.Run("gateway unavailable", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.bookings.On("FindByID", mock.Anything, testBookingID).Return(reconcilable(), nil)
		f.requests.On("FindByReference", mock.Anything, "BOOK-b-1-1").Return(activeRequest(models.PaymentRequestStatusActive), nil)
		f.gateway.On("GetTransactionStatus", mock.Anything, "BOOK-b-1-1").Return(nil, exceptions.ErrGatewayUnavailable(errors.New("timeout")))

		_, err := f.uc.ReconcilePayment(testCtx(), testBookingID)
		assert.Equal(t, http.StatusBadGateway, exceptions.StatusCodeOf(err))
	})

	t.Run("nothing to reconcile", func(t *testing.T) {
		f := newPaymentFixture(t)
		f.bookings.On("FindByID", mock.Anything, testBookingID).Return(testBooking(models.PaymentStatusPending), nil)

		_, err := f.uc.ReconcilePayment(testCtx(), testBookingID)
		assert.Equal(t, http.StatusNotFound, exceptions.StatusCodeOf(err))
	})
}

func TestPaymentUsecase_OverridePaymentStatus(t *testing.T) {
	f := newPaymentFixture(t)
	f.bookings.On("FindByID", mock.Anything, testBookingID).Return(testBooking(models.PaymentStatusPaid), nil)
	f.bookings.On("TransitionPaymentStatus", mock.Anything, testBookingID, mock.MatchedBy(func(c models.StatusChange) bool {
		return c.From == models.PaymentStatusPaid && c.To == models.PaymentStatusPending &&
			c.Source == models.TransitionSourceAdmin && c.Reason == "refund reissued"
	}), (*models.BookingPaymentUpdate)(nil)).Return(true, nil)

	resp, err := f.uc.OverridePaymentStatus(testCtx(), &requests.OverridePaymentStatus{
		BookingID: testBookingID,
		Status:    "pending",
		Reason:    "refund reissued",
	})
	require.NoError(t, err)
	assert.True(t, resp.Changed)
	assert.Equal(t, "pending", resp.PaymentStatus)
}

func TestPaymentUsecase_ClassifyReturnURL(t *testing.T) {
	f := newPaymentFixture(t)

	failure := f.uc.ClassifyReturnURL(testCtx(), &requests.PaymentReturn{
		URL:    "https://pay.example.com/payment/failed?ref=BOOK-b-1-1",
		Locale: "ar",
	})
	assert.Equal(t, "failure", failure.Outcome)
	assert.Equal(t, "/ar/payment/failed", failure.RedirectTo)
	assert.Equal(t, 3, failure.DelaySeconds)

	success := f.uc.ClassifyReturnURL(testCtx(), &requests.PaymentReturn{
		URL:       "https://pay.example.com/return?status=success",
		Locale:    "de",
		Reference: "BOOK-b-1-1",
	})
	assert.Equal(t, "success", success.Outcome)
	assert.Equal(t, "/en/payment/success?reference=BOOK-b-1-1", success.RedirectTo)
	assert.Zero(t, success.DelaySeconds)

	unknown := f.uc.ClassifyReturnURL(testCtx(), &requests.PaymentReturn{URL: "https://pay.example.com/return"})
	assert.Equal(t, "unknown", unknown.Outcome)
	f.bookings.AssertNotCalled(t, "TransitionPaymentStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
