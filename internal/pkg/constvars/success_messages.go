package constvars

const (
	// Generic messages
	ResponseUnknown = "unknown"
	ResponseSuccess = "success"
	ResponseError   = "error"

	// Booking messages
	CreateBookingSuccessMessage = "booking created successfully"
	GetBookingSuccessMessage    = "get booking successfully"
	ListBookingsSuccessMessage  = "get bookings successfully"
	CancelBookingSuccessMessage = "booking cancelled successfully"

	// Payment messages
	CreatePaymentRequestSuccessMessage  = "payment request created successfully"
	RetryPaymentRequestSuccessMessage   = "payment request retried successfully"
	ReconcilePaymentSuccessMessage      = "payment reconciled successfully"
	PaymentCallbackSuccessMessage       = "payment callback processed successfully"
	OverridePaymentStatusSuccessMessage = "payment status overridden successfully"

	// Auth messages
	RequestOTPSuccessMessage = "otp already sent to your mobile number"
	VerifyOTPSuccessMessage  = "successfully login"
	LogoutSuccessMessage     = "successfully logout"
)
