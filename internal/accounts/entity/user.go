package entity

import "errors"

// ErrCredentialsInvalid is the single failure outcome of an authentication
// backend. It never says which check failed.
var ErrCredentialsInvalid = errors.New("accounts: credentials are invalid or expired")

type UserStatus int16

const (
	UserStatusUnknown  UserStatus = 0
	UserStatusActive   UserStatus = 1
	UserStatusInactive UserStatus = 2
	UserStatusBanned   UserStatus = 3
)

func (us UserStatus) String() string {
	switch us {
	case UserStatusActive:
		return "Active"
	case UserStatusInactive:
		return "Inactive"
	case UserStatusBanned:
		return "Banned"
	default:
		return "Unknown"
	}
}

// User is an account. Phone and email are both optional but unique.
type User struct {
	ID          int64
	Username    string
	Email       string
	PhoneNumber string
	Password    string
	Status      UserStatus
}

// CanAuthenticate reports whether the account may log in.
func (u User) CanAuthenticate() bool {
	return u.Status == UserStatusActive
}

type NewUser struct {
	ID          int64
	Username    string
	PhoneNumber string
	Status      UserStatus
}
