package requests

type RequestOTP struct {
	Mobile string `json:"mobile" validate:"required,phone_number"`
}

type VerifyOTP struct {
	Mobile string `json:"mobile" validate:"required,phone_number"`
	OTP    string `json:"otp" validate:"required,len=6,numeric"`
}
