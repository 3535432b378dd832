package auth

import (
	"context"
	"errors"
	"farmstay-service/internal/app/config"
	"farmstay-service/internal/app/contracts"
	"farmstay-service/internal/app/models"
	"farmstay-service/internal/pkg/constvars"
	"farmstay-service/internal/pkg/dto/requests"
	"farmstay-service/internal/pkg/exceptions"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/supertokens/supertokens-golang/ingredients/smsdelivery"
	"github.com/supertokens/supertokens-golang/recipe/passwordless"
	"github.com/supertokens/supertokens-golang/recipe/passwordless/plessmodels"
	"github.com/supertokens/supertokens-golang/supertokens"
	"go.uber.org/zap"
)

const passwordlessFlowUserInputCode = "USER_INPUT_CODE"

type passwordlessCode struct {
	DeviceID         string
	PreAuthSessionID string
	UserInputCode    string
	Lifetime         time.Duration
}

type passwordlessOutcome int

const (
	passwordlessConsumed passwordlessOutcome = iota
	passwordlessIncorrectCode
	passwordlessExpiredCode
	passwordlessRestartFlow
)

// passwordlessClient is the slice of the SuperTokens passwordless recipe the
// OTP flow needs.
type passwordlessClient interface {
	CreateCode(tenantID, phoneNumber string) (*passwordlessCode, error)
	ConsumeCode(tenantID, deviceID, preAuthSessionID, userInputCode string) (passwordlessOutcome, error)
}

type sdkPasswordlessClient struct{}

func (sdkPasswordlessClient) CreateCode(tenantID, phoneNumber string) (*passwordlessCode, error) {
	response, err := passwordless.CreateCodeWithPhoneNumber(tenantID, phoneNumber, nil)
	if err != nil {
		return nil, err
	}
	if response.OK == nil {
		return nil, errors.New("supertokens did not create a passwordless code")
	}
	return &passwordlessCode{
		DeviceID:         response.OK.DeviceID,
		PreAuthSessionID: response.OK.PreAuthSessionID,
		UserInputCode:    response.OK.UserInputCode,
		Lifetime:         time.Duration(response.OK.CodeLifetime) * time.Millisecond,
	}, nil
}

func (sdkPasswordlessClient) ConsumeCode(tenantID, deviceID, preAuthSessionID, userInputCode string) (passwordlessOutcome, error) {
	response, err := passwordless.ConsumeCodeWithUserInputCode(tenantID, deviceID, userInputCode, preAuthSessionID)
	if err != nil {
		return 0, err
	}
	switch {
	case response.OK != nil:
		return passwordlessConsumed, nil
	case response.IncorrectUserInputCodeError != nil:
		return passwordlessIncorrectCode, nil
	case response.ExpiredUserInputCodeError != nil:
		return passwordlessExpiredCode, nil
	default:
		return passwordlessRestartFlow, nil
	}
}

// supertokensOTPProvider delegates code issuance and checks to a SuperTokens
// core. Redis only holds the device handle for the mobile's latest code.
type supertokensOTPProvider struct {
	client   passwordlessClient
	redis    contracts.RedisRepository
	tenantID string
	now      func() time.Time
	Log      *zap.Logger
}

func NewSupertokensOTPProvider(redisRepository contracts.RedisRepository, driverConfig *config.DriverConfig, logger *zap.Logger) contracts.OTPProvider {
	return newSupertokensOTPProvider(sdkPasswordlessClient{}, redisRepository, driverConfig.Supertoken.TenantID, logger)
}

func newSupertokensOTPProvider(client passwordlessClient, redisRepository contracts.RedisRepository, tenantID string, logger *zap.Logger) *supertokensOTPProvider {
	if tenantID == "" {
		tenantID = "public"
	}
	return &supertokensOTPProvider{
		client:   client,
		redis:    redisRepository,
		tenantID: tenantID,
		now:      time.Now,
		Log:      logger,
	}
}

func otpDeviceKey(mobile string) string {
	return constvars.RedisKeyPrefixOTPDevice + mobile
}

// Issue ignores ttl; the code lifetime is configured on the SuperTokens core.
func (p *supertokensOTPProvider) Issue(ctx context.Context, mobile string, ttl time.Duration) (string, time.Duration, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	code, err := p.client.CreateCode(p.tenantID, mobile)
	if err != nil {
		p.Log.Error("supertokensOTPProvider.Issue error creating passwordless code",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return "", 0, exceptions.ErrServerProcess(err)
	}
	lifetime := code.Lifetime
	if lifetime <= 0 {
		lifetime = ttl
	}

	device := models.OTPDevice{
		Mobile:           mobile,
		DeviceID:         code.DeviceID,
		PreAuthSessionID: code.PreAuthSessionID,
		ExpiresAt:        p.now().Add(lifetime),
	}
	if err := p.redis.Set(ctx, otpDeviceKey(mobile), device, lifetime+otpRetention); err != nil {
		return "", 0, err
	}
	return code.UserInputCode, lifetime, nil
}

func (p *supertokensOTPProvider) Verify(ctx context.Context, mobile, code string) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	stored, err := p.redis.Get(ctx, otpDeviceKey(mobile))
	if err != nil {
		return err
	}
	if stored == "" {
		return exceptions.ErrOTPExpired(errors.New("no pending passwordless device for mobile"))
	}
	device := new(models.OTPDevice)
	if err := json.Unmarshal([]byte(stored), device); err != nil {
		return exceptions.ErrCannotParseJSON(err)
	}

	outcome, err := p.client.ConsumeCode(p.tenantID, device.DeviceID, device.PreAuthSessionID, code)
	if err != nil {
		p.Log.Error("supertokensOTPProvider.Verify error consuming passwordless code",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return exceptions.ErrServerProcess(err)
	}

	switch outcome {
	case passwordlessConsumed:
		return p.redis.Delete(ctx, otpDeviceKey(mobile))
	case passwordlessIncorrectCode:
		return exceptions.ErrOTPInvalid(nil)
	default:
		if err := p.redis.Delete(ctx, otpDeviceKey(mobile)); err != nil {
			p.Log.Warn("supertokensOTPProvider.Verify failed to drop spent device",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(err),
			)
		}
		return exceptions.ErrOTPExpired(errors.New("passwordless code expired or flow restarted"))
	}
}

// InitSupertokens registers the passwordless recipe for phone numbers. Codes
// the SDK sends on its own go out through the SMS queue like every other OTP.
func InitSupertokens(driverConfig *config.DriverConfig, smsService contracts.SMSService, logger *zap.Logger) error {
	stConfig := driverConfig.Supertoken
	apiBasePath := stConfig.ApiBasePath

	return supertokens.Init(supertokens.TypeInput{
		OnSuperTokensAPIError: func(err error, req *http.Request, res http.ResponseWriter) {
			logger.Error("supertokens api error", zap.Error(err))
		},
		Supertokens: &supertokens.ConnectionInfo{
			ConnectionURI: stConfig.ConnectionURI,
			APIKey:        stConfig.APIKey,
		},
		AppInfo: supertokens.AppInfo{
			AppName:       stConfig.AppName,
			APIDomain:     stConfig.ApiDomain,
			WebsiteDomain: stConfig.WebsiteDomain,
			APIBasePath:   &apiBasePath,
		},
		RecipeList: []supertokens.Recipe{
			passwordless.Init(plessmodels.TypeInput{
				FlowType: passwordlessFlowUserInputCode,
				ContactMethodPhone: plessmodels.ContactMethodPhoneConfig{
					Enabled: true,
				},
				SmsDelivery: &smsdelivery.TypeInput{
					Override: func(originalImplementation smsdelivery.SmsDeliveryInterface) smsdelivery.SmsDeliveryInterface {
						(*originalImplementation.SendSms) = func(input smsdelivery.SmsType, userContext supertokens.UserContext) error {
							return sendPasswordlessSMS(context.Background(), smsService, input)
						}
						return originalImplementation
					},
				},
			}),
		},
	})
}

func sendPasswordlessSMS(ctx context.Context, smsService contracts.SMSService, input smsdelivery.SmsType) error {
	login := input.PasswordlessLogin
	if login == nil || login.UserInputCode == nil {
		return errors.New("passwordless sms without a user input code")
	}
	return smsService.SendSMS(ctx, &requests.SMSMessage{
		To:      login.PhoneNumber,
		Type:    requests.SMSTypeOTP,
		Message: otpMessage(*login.UserInputCode, time.Duration(login.CodeLifetime)*time.Millisecond),
	})
}

func otpMessage(code string, lifetime time.Duration) string {
	return fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(lifetime.Minutes()))
}
