package identikit

import "errors"

// Error codes for controlled authentication failures
const (
	ErrCodeUserExists        = "user_already_exists"
	ErrCodeUserNotFound      = "user_not_found"
	ErrCodeIncorrectPassword = "incorrect_password"
	ErrCodeExchangeFailed    = "oauth_exchange_failed"
	ErrCodeProfileIncomplete = "oauth_profile_incomplete"
	ErrCodeTokenExpired      = "token_expired"
	ErrCodeTokenInvalid      = "token_invalid"
)

// AuthError is a controlled, anticipated failure. It carries a machine
// readable code, an HTTP-ish status and a message safe to show to clients.
// Anything that is not an AuthError must be translated to a generic failure
// at the boundary so internal details never leak.
type AuthError struct {
	Code    string `json:"code"`
	Status  int    `json:"-"`
	Message string `json:"error"`
}

func (e *AuthError) Error() string {
	return e.Message
}

// NewAuthError creates a controlled error with the given code, status and message
func NewAuthError(code string, status int, message string) *AuthError {
	return &AuthError{Code: code, Status: status, Message: message}
}

// The full controlled-error taxonomy. Token validation failures deliberately
// collapse to just ErrTokenExpired or ErrTokenInvalid so callers cannot tell
// a tampered token from a malformed one.
var (
	ErrUserAlreadyExists   = NewAuthError(ErrCodeUserExists, 409, "User already exists")
	ErrUserNotFound        = NewAuthError(ErrCodeUserNotFound, 404, "User not found")
	ErrIncorrectPassword   = NewAuthError(ErrCodeIncorrectPassword, 401, "Incorrect password")
	ErrOAuthExchangeFailed = NewAuthError(ErrCodeExchangeFailed, 400, "Could not obtain access token")
	ErrProfileIncomplete   = NewAuthError(ErrCodeProfileIncomplete, 400, "Provider profile is incomplete")
	ErrTokenExpired        = NewAuthError(ErrCodeTokenExpired, 401, "Token has expired")
	ErrTokenInvalid        = NewAuthError(ErrCodeTokenInvalid, 401, "Invalid token")
)

// AsAuthError extracts a controlled error from err, if there is one.
func AsAuthError(err error) (*AuthError, bool) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr, true
	}
	return nil, false
}
