package requests

const (
	SMSTypeOTP                 = "otp"
	SMSTypePaymentConfirmation = "payment_confirmation"
)

// SMSMessage is the payload consumed by the SMS sender from the RabbitMQ queue.
type SMSMessage struct {
	To      string `json:"to"`
	Type    string `json:"type"`
	Message string `json:"message"`
}
