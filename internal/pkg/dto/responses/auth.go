package responses

import "time"

type RequestOTP struct {
	Mobile           string `json:"mobile"`
	ExpiresInSeconds int    `json:"expires_in_seconds"`
}

type VerifyOTP struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
