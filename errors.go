package auth

import (
	"net/http"
	"strings"

	"github.com/goliatone/go-errors"
)

// Text codes attached to the package errors.
const (
	TextCodeInvalidCredentials = "INVALID_CREDENTIALS"
	TextCodeUnauthenticated    = "UNAUTHENTICATED"
	TextCodeTokenExpired       = "TOKEN_EXPIRED"
	TextCodeTokenMalformed     = "TOKEN_MALFORMED"
	TextCodeMissingToken       = "MISSING_TOKEN"
	TextCodeSigningKeyMissing  = "SIGNING_KEY_MISSING"
	TextCodeInternal           = "INTERNAL_ERROR"
)

// MsgInvalidCredentials is the user facing message for failed logins.
const MsgInvalidCredentials = "The provided username or password is incorrect"

// ErrInvalidCredentials is returned when the user is unknown, the password
// is missing, or the password does not match the stored hash.
var ErrInvalidCredentials = errors.New(MsgInvalidCredentials, errors.CategoryAuth).
	WithCode(http.StatusUnprocessableEntity).
	WithTextCode(TextCodeInvalidCredentials)

// ErrUnauthenticated is returned when a valid token names no known user
var ErrUnauthenticated = errors.New("Unauthorized", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeUnauthenticated)

// ErrTokenExpired is returned for tokens past their exp claim
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeTokenExpired)

// ErrTokenMalformed is returned for tokens that fail to parse or verify
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeTokenMalformed)

// ErrMissingToken is returned when the request carries no token
var ErrMissingToken = errors.New("missing or malformed JWT", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized).
	WithTextCode(TextCodeMissingToken)

// ErrSigningKeyMissing is returned when a token is signed without a key
var ErrSigningKeyMissing = errors.New("signing key is not configured", errors.CategoryInternal).
	WithCode(errors.CodeInternal).
	WithTextCode(TextCodeSigningKeyMissing)

// ErrNoEmptyString is returned when hashing an empty password
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryBadInput).
	WithCode(errors.CodeBadRequest)

// IsInvalidCredentials reports whether err is the invalid credentials kind
func IsInvalidCredentials(err error) bool {
	return hasTextCode(err, TextCodeInvalidCredentials)
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if hasTextCode(err, TextCodeTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if hasTextCode(err, TextCodeTokenMalformed) || hasTextCode(err, TextCodeMissingToken) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// HTTPStatus returns the response status for err. Rich errors use their
// code, then their category. Everything else is a 500.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return http.StatusInternalServerError
	}

	if richErr.Code != 0 {
		return richErr.Code
	}

	switch richErr.Category {
	case errors.CategoryAuth:
		return http.StatusUnauthorized
	case errors.CategoryAuthz:
		return http.StatusForbidden
	case errors.CategoryValidation:
		return http.StatusUnprocessableEntity
	case errors.CategoryBadInput:
		return http.StatusBadRequest
	case errors.CategoryNotFound:
		return http.StatusNotFound
	case errors.CategoryConflict:
		return http.StatusConflict
	case errors.CategoryRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// internalError wraps source as a 500. Unlike errors.Wrap it never inherits
// the category or code of a rich source error.
func internalError(source error, msg string) *errors.Error {
	err := errors.New(msg, errors.CategoryInternal).
		WithCode(errors.CodeInternal).
		WithTextCode(TextCodeInternal)
	err.Source = source
	return err
}

func hasTextCode(err error, code string) bool {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == code
}
