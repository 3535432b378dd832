package auth

import (
	"errors"
	"farmstay-service/internal/app/models"
	"farmstay-service/internal/pkg/dto/requests"
	"farmstay-service/internal/pkg/exceptions"
	"net/http"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/supertokens/supertokens-golang/ingredients/smsdelivery"
	"go.uber.org/zap"
)

type MockPasswordlessClient struct {
	mock.Mock
}

func (m *MockPasswordlessClient) CreateCode(tenantID, phoneNumber string) (*passwordlessCode, error) {
	args := m.Called(tenantID, phoneNumber)
	code, _ := args.Get(0).(*passwordlessCode)
	return code, args.Error(1)
}

func (m *MockPasswordlessClient) ConsumeCode(tenantID, deviceID, preAuthSessionID, userInputCode string) (passwordlessOutcome, error) {
	args := m.Called(tenantID, deviceID, preAuthSessionID, userInputCode)
	return args.Get(0).(passwordlessOutcome), args.Error(1)
}

func storedDevice(t *testing.T) string {
	t.Helper()
	raw, err := json.Marshal(models.OTPDevice{Mobile: testMobile, DeviceID: "dev-1", PreAuthSessionID: "pre-1"})
	require.NoError(t, err)
	return string(raw)
}

func TestSupertokensOTPProvider_Issue(t *testing.T) {
	t.Run("remembers the device for the code lifetime", func(t *testing.T) {
		client := new(MockPasswordlessClient)
		redis := new(MockRedisRepository)
		provider := newSupertokensOTPProvider(client, redis, "", zap.NewNop())

		client.On("CreateCode", "public", testMobile).Return(&passwordlessCode{
			DeviceID: "dev-1", PreAuthSessionID: "pre-1", UserInputCode: "482913", Lifetime: 15 * time.Minute,
		}, nil)
		var device models.OTPDevice
		redis.On("Set", mock.Anything, "otp_device:"+testMobile, mock.AnythingOfType("models.OTPDevice"), 25*time.Minute).
			Run(func(args mock.Arguments) { device = args.Get(2).(models.OTPDevice) }).
			Return(nil)

		code, lifetime, err := provider.Issue(authCtx(), testMobile, 5*time.Minute)
		require.NoError(t, err)
		assert.Equal(t, "482913", code)
		assert.Equal(t, 15*time.Minute, lifetime)
		assert.Equal(t, "dev-1", device.DeviceID)
		assert.Equal(t, "pre-1", device.PreAuthSessionID)
	})

	t.Run("core unreachable", func(t *testing.T) {
		client := new(MockPasswordlessClient)
		redis := new(MockRedisRepository)
		provider := newSupertokensOTPProvider(client, redis, "public", zap.NewNop())
		client.On("CreateCode", "public", testMobile).Return(nil, errors.New("connection refused"))

		_, _, err := provider.Issue(authCtx(), testMobile, 5*time.Minute)
		assert.Equal(t, http.StatusInternalServerError, exceptions.StatusCodeOf(err))
		redis.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestSupertokensOTPProvider_Verify(t *testing.T) {
	tests := []struct {
		name        string
		outcome     passwordlessOutcome
		code        int
		dropsDevice bool
	}{
		{"consumed", passwordlessConsumed, 0, true},
		{"incorrect code keeps the device", passwordlessIncorrectCode, http.StatusBadRequest, false},
		{"expired code", passwordlessExpiredCode, http.StatusGone, true},
		{"restart flow", passwordlessRestartFlow, http.StatusGone, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(MockPasswordlessClient)
			redis := new(MockRedisRepository)
			provider := newSupertokensOTPProvider(client, redis, "public", zap.NewNop())

			redis.On("Get", mock.Anything, "otp_device:"+testMobile).Return(storedDevice(t), nil)
			redis.On("Delete", mock.Anything, "otp_device:"+testMobile).Return(nil)
			client.On("ConsumeCode", "public", "dev-1", "pre-1", "111222").Return(tt.outcome, nil)

			err := provider.Verify(authCtx(), testMobile, "111222")
			if tt.code == 0 {
				require.NoError(t, err)
			} else {
				assert.Equal(t, tt.code, exceptions.StatusCodeOf(err))
			}
			if tt.dropsDevice {
				redis.AssertCalled(t, "Delete", mock.Anything, "otp_device:"+testMobile)
			} else {
				redis.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
			}
		})
	}

	t.Run("no device on record", func(t *testing.T) {
		client := new(MockPasswordlessClient)
		redis := new(MockRedisRepository)
		provider := newSupertokensOTPProvider(client, redis, "public", zap.NewNop())
		redis.On("Get", mock.Anything, "otp_device:"+testMobile).Return("", nil)

		err := provider.Verify(authCtx(), testMobile, "111222")
		assert.Equal(t, http.StatusGone, exceptions.StatusCodeOf(err))
		client.AssertNotCalled(t, "ConsumeCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestSendPasswordlessSMS(t *testing.T) {
	sms := new(MockSMSService)
	var sent *requests.SMSMessage
	sms.On("SendSMS", mock.Anything, mock.AnythingOfType("*requests.SMSMessage")).
		Run(func(args mock.Arguments) { sent = args.Get(1).(*requests.SMSMessage) }).
		Return(nil)

	code := "482913"
	err := sendPasswordlessSMS(authCtx(), sms, smsdelivery.SmsType{
		PasswordlessLogin: &smsdelivery.PasswordlessLoginType{
			PhoneNumber:   testMobile,
			UserInputCode: &code,
			CodeLifetime:  uint64((10 * time.Minute).Milliseconds()),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, testMobile, sent.To)
	assert.Equal(t, requests.SMSTypeOTP, sent.Type)
	assert.Equal(t, "Your verification code is 482913. It expires in 10 minutes.", sent.Message)

	err = sendPasswordlessSMS(authCtx(), sms, smsdelivery.SmsType{})
	assert.Error(t, err)
}
