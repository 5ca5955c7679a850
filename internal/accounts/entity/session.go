package entity

// LoginState is the position of a browser session in the two step login.
type LoginState string

const (
	LoginStateStart           LoginState = "start"
	LoginStateOTPPending      LoginState = "otp_pending"
	LoginStatePasswordPending LoginState = "password_pending"
	LoginStateAuthenticated   LoginState = "authenticated"
)

func (s LoginState) Valid() bool {
	switch s {
	case LoginStateStart, LoginStateOTPPending, LoginStatePasswordPending, LoginStateAuthenticated:
		return true
	default:
		return false
	}
}

// LoginSession is the server side state of one browser session.
//
// At most one of OTPID and Email is set. PhoneNumber travels with OTPID
// for display.
type LoginSession struct {
	State       LoginState
	OTPID       int64
	PhoneNumber string
	Email       string
	UserID      int64
}

// NewLoginSession returns a session in the Start state.
func NewLoginSession() *LoginSession {
	return &LoginSession{State: LoginStateStart}
}

func (s *LoginSession) IsAuthenticated() bool {
	return s.State == LoginStateAuthenticated && s.UserID > 0
}

// IdentifyPhone moves the session to OTPPending for the given request.
func (s *LoginSession) IdentifyPhone(otpID int64, phone string) {
	s.State = LoginStateOTPPending
	s.OTPID = otpID
	s.PhoneNumber = phone
	s.Email = ""
	s.UserID = 0
}

// IdentifyEmail moves the session to PasswordPending for email.
func (s *LoginSession) IdentifyEmail(email string) {
	s.State = LoginStatePasswordPending
	s.Email = email
	s.OTPID = 0
	s.PhoneNumber = ""
	s.UserID = 0
}

// CanConfirmOTP reports whether the OTP confirm step exists for this session.
func (s *LoginSession) CanConfirmOTP() bool {
	return s.State == LoginStateOTPPending && s.OTPID > 0 && s.PhoneNumber != "" && s.Email == ""
}

// CanConfirmEmail reports whether the password confirm step exists for this session.
func (s *LoginSession) CanConfirmEmail() bool {
	return s.State == LoginStatePasswordPending && s.Email != "" && s.PhoneNumber == "" && s.OTPID == 0
}

// Authenticate finishes the flow for userID and drops the pending keys.
func (s *LoginSession) Authenticate(userID int64) {
	s.State = LoginStateAuthenticated
	s.UserID = userID
	s.OTPID = 0
	s.PhoneNumber = ""
	s.Email = ""
}

// Reset returns the session to Start.
func (s *LoginSession) Reset() {
	*s = LoginSession{State: LoginStateStart}
}
