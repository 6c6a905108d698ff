package auth

import "errors"

var (
	ErrRegistrationFailed        = errors.New("registration failed")
	ErrInvalidCredentials        = errors.New("invalid credentials")
	ErrInvalidTwoFactorCode      = errors.New("invalid two-factor code")
	ErrUserNotFoundOrNoTwoFactor = errors.New("user not found or two-factor not set up")
	ErrUnauthenticated           = errors.New("unauthenticated")
	ErrInvalidToken              = errors.New("invalid token")
	ErrStoreUnavailable          = errors.New("credential store unavailable")
)
