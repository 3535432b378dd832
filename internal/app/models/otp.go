package models

import "time"

type OTPChallenge struct {
	Mobile    string    `json:"mobile"`
	OTPHash   string    `json:"otp_hash"`
	ExpiresAt time.Time `json:"expires_at"`
}

// OTPDevice remembers the SuperTokens passwordless device a code was issued to.
type OTPDevice struct {
	Mobile           string    `json:"mobile"`
	DeviceID         string    `json:"device_id"`
	PreAuthSessionID string    `json:"pre_auth_session_id"`
	ExpiresAt        time.Time `json:"expires_at"`
}
