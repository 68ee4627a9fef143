// Package apperror defines the application's error taxonomy.
//
// Every error that crosses the HTTP boundary carries a stable, machine-readable
// kind string (the "errorKind" field of the JSON error envelope). The kinds are
// explicit constants — they are part of the wire format and must never be
// derived from Go type or variable names.
package apperror

import "errors"

// Sentinel errors, one per kind. Handlers and services match on these with
// errors.Is; the HTTP layer maps them to status codes in writeError.
var (
	ErrNotFound              = errors.New("not found")
	ErrValidation            = errors.New("validation failed")
	ErrConflict              = errors.New("conflict")
	ErrMissingAuthentication = errors.New("missing authentication")
	ErrInvalidAuthentication = errors.New("invalid authentication")
	ErrInvalidSignature      = errors.New("invalid signature")
	ErrAccountGone           = errors.New("account gone")
	ErrTokenExchangeFailed   = errors.New("token exchange failed")
	ErrUserinfoFetchFailed   = errors.New("userinfo fetch failed")
	ErrStore                 = errors.New("store error")
)

// Kind strings as they appear on the wire.
const (
	KindNotFound              = "NotFound"
	KindValidation            = "Validation"
	KindConflict              = "Conflict"
	KindMissingAuthentication = "MissingAuthentication"
	KindInvalidAuthentication = "InvalidAuthentication"
	KindInvalidSignature      = "InvalidSignature"
	KindAccountGone           = "AccountGone"
	KindTokenExchangeFailed   = "TokenExchangeFailed"
	KindUserinfoFetchFailed   = "UserinfoFetchFailed"
	KindStoreError            = "StoreError"
)

// AppError pairs a sentinel (for errors.Is matching) with the wire kind and a
// client-safe message. The wrapped cause, if any, is for server-side logs only
// and never reaches the client.
type AppError struct {
	Err     error  // sentinel from the list above
	Kind    string // stable wire discriminant
	Message string // client-safe, human-readable
	Cause   error  // underlying error, logged but never serialized
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports a resource that is absent or not owned by the caller.
// The two cases are deliberately indistinguishable.
func NotFound() *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Kind:    KindNotFound,
		Message: "Resource not found.",
	}
}

// ValidationFailed reports a request payload that failed a business rule.
func ValidationFailed(message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Kind:    KindValidation,
		Message: message,
	}
}

// Conflict reports a storage uniqueness violation. Callers treat it as a
// benign race and re-fetch; it is not expected to reach the client.
func Conflict(cause error) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Kind:    KindConflict,
		Message: "Conflicting write. Try again.",
		Cause:   cause,
	}
}

// MissingAuthentication reports a request that presented no credential at all.
func MissingAuthentication() *AppError {
	return &AppError{
		Err:     ErrMissingAuthentication,
		Kind:    KindMissingAuthentication,
		Message: "Missing authentication. Supply a session token in the `codevault_jwt` cookie, or use a bearer in the `Authorization` header.",
	}
}

// InvalidAuthentication reports a credential that could not be parsed.
func InvalidAuthentication() *AppError {
	return &AppError{
		Err:     ErrInvalidAuthentication,
		Kind:    KindInvalidAuthentication,
		Message: "The supplied authentication is invalid.",
	}
}

// InvalidSignature reports a well-formed token whose signature or expiry
// failed validation.
func InvalidSignature() *AppError {
	return &AppError{
		Err:     ErrInvalidSignature,
		Kind:    KindInvalidSignature,
		Message: "The supplied authentication has an invalid signature. Try logging in again.",
	}
}

// AccountGone reports a valid token whose subject no longer resolves to an
// account — the account was deleted after the token was issued.
func AccountGone() *AppError {
	return &AppError{
		Err:     ErrAccountGone,
		Kind:    KindAccountGone,
		Message: "Authenticated account does not exist. Has it been deleted?",
	}
}

// TokenExchangeFailed reports that the identity provider rejected the
// authorization code. Expected for replayed or stale browser URLs, so it maps
// to a client-correctable 400.
func TokenExchangeFailed(cause error) *AppError {
	return &AppError{
		Err:     ErrTokenExchangeFailed,
		Kind:    KindTokenExchangeFailed,
		Message: "Failed to exchange token with the authentication provider. Make sure not to edit the URL, and try again.",
		Cause:   cause,
	}
}

// UserinfoFetchFailed reports that the provider accepted the token but the
// profile fetch failed. The provider just validated this token, so this is a
// server-side fault (500).
func UserinfoFetchFailed(cause error) *AppError {
	return &AppError{
		Err:     ErrUserinfoFetchFailed,
		Kind:    KindUserinfoFetchFailed,
		Message: "Failed to acquire userinfo from the authentication provider. Try again later.",
		Cause:   cause,
	}
}

// Store wraps an underlying persistence failure. The message stays generic so
// driver internals never leak to clients.
func Store(cause error) *AppError {
	return &AppError{
		Err:     ErrStore,
		Kind:    KindStoreError,
		Message: "Internal storage error. Try again later.",
		Cause:   cause,
	}
}
