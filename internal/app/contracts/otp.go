package contracts

import (
	"context"
	"time"
)

// OTPProvider issues and checks one-time codes for a mobile number.
type OTPProvider interface {
	// Issue starts a fresh challenge and returns the code to deliver with its lifetime.
	Issue(ctx context.Context, mobile string, ttl time.Duration) (string, time.Duration, error)
	// Verify consumes the pending challenge. It fails with ErrOTPExpired or ErrOTPInvalid.
	Verify(ctx context.Context, mobile, code string) error
}
