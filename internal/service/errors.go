package service

import "errors"

// Error kinds. Every error returned by this package that a client is
// allowed to see wraps one of these.
var (
	ErrValidation         = errors.New("validation error")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
)

// ErrSigningKeyMissing makes every token operation fail when no secret is configured.
var ErrSigningKeyMissing = errors.New("token signing secret is not configured")

// Error pairs an error kind with the message shown to clients.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Message returns the client-facing message carried by err, or "" for
// errors that did not originate from a service rule.
func Message(err error) string {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Message
	}
	return ""
}

var (
	errUserExists      = newError(ErrConflict, "User already exists")
	errUserNotFound    = newError(ErrNotFound, "User not found")
	errBadCredentials  = newError(ErrInvalidCredentials, "Invalid credentials")
	errNoToken         = newError(ErrUnauthorized, "No token, authorization denied")
	errInvalidToken    = newError(ErrUnauthorized, "Token is not valid")
	errAdminOnly       = newError(ErrForbidden, "Access denied, admin only")
	errAccessDenied    = newError(ErrForbidden, "Access denied")
	errRecipeNotFound  = newError(ErrNotFound, "Recipe not found")
	errFieldsRequired  = newError(ErrValidation, "All fields are required")
	errInvalidCategory = newError(ErrValidation, "Invalid category")
	errTitleTaken      = newError(ErrConflict, "A recipe with this title already exists")
	errRecipeIDMissing = newError(ErrValidation, "Recipe ID is required")
	errRecipeIDInvalid = newError(ErrValidation, "Invalid recipe ID")
	errInvalidImage    = newError(ErrValidation, "Invalid image type")
)
