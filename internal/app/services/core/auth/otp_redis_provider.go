package auth

import (
	"context"
	"errors"
	"farmstay-service/internal/app/contracts"
	"farmstay-service/internal/app/models"
	"farmstay-service/internal/pkg/constvars"
	"farmstay-service/internal/pkg/exceptions"
	"farmstay-service/internal/pkg/utils"
	"time"

	"github.com/goccy/go-json"
)

const otpRetention = 10 * time.Minute

// redisOTPProvider keeps a bcrypt hash of the code in Redis.
type redisOTPProvider struct {
	redis contracts.RedisRepository
	now   func() time.Time
}

func NewRedisOTPProvider(redisRepository contracts.RedisRepository) contracts.OTPProvider {
	return &redisOTPProvider{redis: redisRepository, now: time.Now}
}

func otpKey(mobile string) string {
	return constvars.RedisKeyPrefixOTP + mobile
}

func (p *redisOTPProvider) Issue(ctx context.Context, mobile string, ttl time.Duration) (string, time.Duration, error) {
	otp, err := utils.GenerateOTP(constvars.SMS_OTP_LENGTH)
	if err != nil {
		return "", 0, exceptions.ErrServerProcess(err)
	}
	otpHash, err := utils.HashOTP(otp)
	if err != nil {
		return "", 0, exceptions.ErrHashOTP(err)
	}

	challenge := models.OTPChallenge{
		Mobile:    mobile,
		OTPHash:   otpHash,
		ExpiresAt: p.now().Add(ttl),
	}
	// Kept past its expiry so a late attempt is told the code expired.
	if err := p.redis.Set(ctx, otpKey(mobile), challenge, ttl+otpRetention); err != nil {
		return "", 0, err
	}
	return otp, ttl, nil
}

func (p *redisOTPProvider) Verify(ctx context.Context, mobile, code string) error {
	stored, err := p.redis.Get(ctx, otpKey(mobile))
	if err != nil {
		return err
	}
	if stored == "" {
		return exceptions.ErrOTPExpired(errors.New("no pending otp for mobile"))
	}

	challenge := new(models.OTPChallenge)
	if err := json.Unmarshal([]byte(stored), challenge); err != nil {
		return exceptions.ErrCannotParseJSON(err)
	}
	if p.now().After(challenge.ExpiresAt) {
		return exceptions.ErrOTPExpired(nil)
	}
	if !utils.CheckOTPHash(code, challenge.OTPHash) {
		return exceptions.ErrOTPInvalid(nil)
	}
	return p.redis.Delete(ctx, otpKey(mobile))
}
