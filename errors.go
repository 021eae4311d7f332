package accounts

import (
	stderrors "errors"
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidCredentials = "invalid_credentials"
	TextCodeDuplicateEmail     = "duplicate_email"
	TextCodeInvalidToken       = "invalid_token"
	TextCodeUnauthenticated    = "unauthenticated"
	TextCodeAvatarNotFound     = "avatar_not_found"
	TextCodeInvalidFields      = "invalid_update_fields"
)

// ErrNoEmptyString is returned when hashing an empty password.
var ErrNoEmptyString = stderrors.New("password must not be empty")

// ErrMismatchedHashAndPassword is the single verification failure for
// password comparison. Callers never learn why verification failed.
var ErrMismatchedHashAndPassword = stderrors.New("hash and password mismatch")

// ErrInvalidCredentials is the generic login failure. Unknown email and wrong
// password both map here so responses cannot be used for account enumeration.
var ErrInvalidCredentials = errors.New("Unable to login", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeBadRequest)

// ErrDuplicateEmail is returned when registration or update collides with an
// existing email.
var ErrDuplicateEmail = errors.New("email already in use", errors.CategoryValidation).
	WithTextCode(TextCodeDuplicateEmail).
	WithCode(errors.CodeBadRequest)

// ErrInvalidToken is returned when a token is malformed, carries a bad
// signature, or has no subject claim.
var ErrInvalidToken = errors.New("invalid token", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidToken).
	WithCode(errors.CodeUnauthorized)

// ErrUnauthenticated covers every request-gate rejection: missing header,
// invalid token, revoked token, or deleted user.
var ErrUnauthenticated = errors.New("please authenticate", errors.CategoryAuth).
	WithTextCode(TextCodeUnauthenticated).
	WithCode(errors.CodeUnauthorized)

// ErrAvatarNotFound is returned when fetching an avatar for a user that has
// none, or does not exist.
var ErrAvatarNotFound = errors.New("user does not have avatar", errors.CategoryNotFound).
	WithTextCode(TextCodeAvatarNotFound).
	WithCode(errors.CodeBadRequest)

// ErrInvalidUpdateFields is returned when a profile update carries a field
// outside the allow list.
var ErrInvalidUpdateFields = errors.New("Invalid fields to update", errors.CategoryBadInput).
	WithTextCode(TextCodeInvalidFields).
	WithCode(errors.CodeBadRequest)

// IsDuplicateKeyError detects unique-constraint violations from the drivers
// we run against (sqlite and postgres).
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

// IsInvalidCredentials will check for the generic login failure
func IsInvalidCredentials(err error) bool {
	if err == nil {
		return false
	}
	var rich *errors.Error
	if stderrors.As(err, &rich) {
		return rich.TextCode == TextCodeInvalidCredentials
	}
	return false
}
