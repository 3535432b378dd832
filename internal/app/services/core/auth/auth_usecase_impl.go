package auth

import (
	"context"
	"farmstay-service/internal/app/config"
	"farmstay-service/internal/app/contracts"
	"farmstay-service/internal/app/models"
	"farmstay-service/internal/app/services/shared/jwtmanager"
	"farmstay-service/internal/app/services/shared/metrics"
	"farmstay-service/internal/app/services/shared/ratelimiter"
	"farmstay-service/internal/pkg/constvars"
	"farmstay-service/internal/pkg/dto/requests"
	"farmstay-service/internal/pkg/dto/responses"
	"farmstay-service/internal/pkg/exceptions"
	"farmstay-service/internal/pkg/utils"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultOTPExpiry       = 5 * time.Minute
	defaultSessionExpiry   = 24 * time.Hour
	maxOTPVerifyAttempts   = 5
	otpVerifyWindowSeconds = 15 * 60
)

type authUsecase struct {
	RedisRepository contracts.RedisRepository
	OTPProvider     contracts.OTPProvider
	SessionService  contracts.SessionService
	SMSService      contracts.SMSService
	Limiter         *ratelimiter.ResourceLimiter
	JWTManager      *jwtmanager.JWTManager
	InternalConfig  *config.InternalConfig
	Metrics         *metrics.Metrics
	Log             *zap.Logger
}

var (
	authUsecaseInstance contracts.AuthUsecase
	onceAuthUsecase     sync.Once
	authUsecaseError    error
)

func NewAuthUsecase(
	redisRepository contracts.RedisRepository,
	otpProvider contracts.OTPProvider,
	sessionService contracts.SessionService,
	smsService contracts.SMSService,
	internalConfig *config.InternalConfig,
	appMetrics *metrics.Metrics,
	logger *zap.Logger,
) (contracts.AuthUsecase, error) {
	onceAuthUsecase.Do(func() {
		jwtManager, err := jwtmanager.NewJWTManager(internalConfig.JWT.Secret)
		if err != nil {
			authUsecaseError = err
			return
		}
		authUsecaseInstance = &authUsecase{
			RedisRepository: redisRepository,
			OTPProvider:     otpProvider,
			SessionService:  sessionService,
			SMSService:      smsService,
			Limiter:         ratelimiter.NewResourceLimiter(redisRepository, logger),
			JWTManager:      jwtManager,
			InternalConfig:  internalConfig,
			Metrics:         appMetrics,
			Log:             logger,
		}
	})
	return authUsecaseInstance, authUsecaseError
}

func (uc *authUsecase) otpExpiry() time.Duration {
	if minutes := uc.InternalConfig.App.SMSOTPExpiredTimeInMinutes; minutes > 0 {
		return time.Duration(minutes) * time.Minute
	}
	return defaultOTPExpiry
}

func (uc *authUsecase) sessionExpiry() time.Duration {
	if hours := uc.InternalConfig.App.LoginSessionExpiredTimeInHours; hours > 0 {
		return time.Duration(hours) * time.Hour
	}
	return defaultSessionExpiry
}

func (uc *authUsecase) RequestOTP(ctx context.Context, request *requests.RequestOTP) (*responses.RequestOTP, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("authUsecase.RequestOTP called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingMobileKey, request.Mobile),
	)

	limit, err := uc.Limiter.ApplyResourceLimiter(ctx, &ratelimiter.ApplyResourceLimiterInput{
		ResourceName:      request.Mobile,
		LimiterGroupName:  constvars.RateLimiterGroupOTP,
		WindowDurationSec: uc.InternalConfig.App.SMSOTPRequestWindowInSeconds,
		MaxQuota:          uc.InternalConfig.App.SMSOTPRequestRateLimit,
	})
	if err != nil {
		return nil, err
	}
	if !limit.Allowed {
		uc.Metrics.RecordOTP("rate_limited")
		utils.LogSecurityEvent(uc.Log, "otp_request_rate_limited", requestID, utils.SecuritySeverityLow,
			zap.String(constvars.LoggingMobileKey, request.Mobile),
			zap.Int("retry_after_seconds", limit.RetryAfterSecs),
		)
		return nil, exceptions.ErrOTPRateLimited(fmt.Errorf("retry after %d seconds", limit.RetryAfterSecs))
	}

	otp, expiry, err := uc.OTPProvider.Issue(ctx, request.Mobile, uc.otpExpiry())
	if err != nil {
		uc.Log.Error("authUsecase.RequestOTP error issuing otp",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	err = uc.SMSService.SendSMS(ctx, &requests.SMSMessage{
		To:      request.Mobile,
		Type:    requests.SMSTypeOTP,
		Message: otpMessage(otp, expiry),
	})
	if err != nil {
		uc.Log.Error("authUsecase.RequestOTP error queueing sms",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	uc.Metrics.RecordOTP("sent")
	return &responses.RequestOTP{
		Mobile:           request.Mobile,
		ExpiresInSeconds: int(expiry.Seconds()),
	}, nil
}

func (uc *authUsecase) VerifyOTP(ctx context.Context, request *requests.VerifyOTP) (*responses.VerifyOTP, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("authUsecase.VerifyOTP called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingMobileKey, request.Mobile),
	)

	limit, err := uc.Limiter.ApplyResourceLimiter(ctx, &ratelimiter.ApplyResourceLimiterInput{
		ResourceName:      request.Mobile,
		LimiterGroupName:  constvars.RateLimiterGroupOTPVerify,
		WindowDurationSec: otpVerifyWindowSeconds,
		MaxQuota:          maxOTPVerifyAttempts,
	})
	if err != nil {
		return nil, err
	}
	if !limit.Allowed {
		uc.Metrics.RecordOTP("rate_limited")
		utils.LogSecurityEvent(uc.Log, "otp_verify_rate_limited", requestID, utils.SecuritySeverityMedium,
			zap.String(constvars.LoggingMobileKey, request.Mobile),
		)
		return nil, exceptions.ErrOTPRateLimited(fmt.Errorf("retry after %d seconds", limit.RetryAfterSecs))
	}

	if err := uc.OTPProvider.Verify(ctx, request.Mobile, request.OTP); err != nil {
		switch exceptions.StatusCodeOf(err) {
		case constvars.StatusGone:
			uc.Metrics.RecordOTP("expired")
		case constvars.StatusBadRequest:
			uc.Metrics.RecordOTP("invalid")
			utils.LogSecurityEvent(uc.Log, "otp_invalid", requestID, utils.SecuritySeverityLow,
				zap.String(constvars.LoggingMobileKey, request.Mobile),
			)
		}
		return nil, err
	}

	session, err := uc.SessionService.CreateSession(ctx, request.Mobile, uc.sessionExpiry())
	if err != nil {
		return nil, err
	}

	token, err := uc.JWTManager.CreateToken(jwtmanager.CreateTokenInput{
		SessionID: session.SessionID,
		ExpiresAt: session.ExpiresAt,
	})
	if err != nil {
		return nil, exceptions.ErrTokenGenerate(err)
	}

	uc.Metrics.RecordOTP("verified")
	utils.LogBusinessEvent(uc.Log, "customer_logged_in", requestID,
		zap.String(constvars.LoggingSessionIDKey, session.SessionID),
	)
	return &responses.VerifyOTP{
		Token:     token.Token,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func (uc *authUsecase) Logout(ctx context.Context, sessionID string) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("authUsecase.Logout called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingSessionIDKey, sessionID),
	)

	if err := uc.SessionService.DeleteSession(ctx, sessionID); err != nil {
		uc.Log.Error("authUsecase.Logout error deleting session",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (uc *authUsecase) ResolveSession(ctx context.Context, token string) (*models.Session, error) {
	verified, err := uc.JWTManager.VerifyToken(jwtmanager.VerifyTokenInput{Token: token})
	if err != nil {
		return nil, exceptions.ErrTokenInvalid(err)
	}
	return uc.SessionService.GetSession(ctx, verified.SessionID)
}
