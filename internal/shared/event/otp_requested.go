package event

const OTPRequestedDestination string = "accounts_otp_requested"
const OTPRequestedConsumerNotification string = "accounts_otp_requested_notification"

// OTPRequestedMessage carries a freshly created code to the delivery side.
// ExpiresIn is the code validity in seconds at SentAt.
type OTPRequestedMessage struct {
	OTPID       int64  `json:"otp_id,string"`
	OTPUUID     string `json:"otp_uuid"`
	PhoneNumber string `json:"phone_number"`
	Code        string `json:"code"`
	SentAt      int64  `json:"sent_at"`
	ExpiresIn   int    `json:"expires_in"`
}
