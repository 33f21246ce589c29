package core

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

var (
	// ErrAuth matches every AuthError with errors.Is.
	ErrAuth = errors.New("sso authentication failed")

	// ErrEnumeration matches every EnumerationError with errors.Is.
	ErrEnumeration = errors.New("sso enumeration failed")

	// ErrValidation matches every ValidationError with errors.Is.
	ErrValidation = errors.New("invalid input")

	// ErrNaming matches every NamingError with errors.Is.
	ErrNaming = errors.New("profile naming warning")
)

// AuthErrorKind identifies the device authorization step that failed.
type AuthErrorKind string

// Device authorization failure kinds.
const (
	RegistrationFailed        AuthErrorKind = "registration failed"
	DeviceAuthorizationFailed AuthErrorKind = "device authorization failed"
	TokenExchangeFailed       AuthErrorKind = "token exchange failed"
)

// AuthError is returned by the device authorization flow. It is always fatal.
type AuthError struct {
	Kind   AuthErrorKind
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	msg := fmt.Sprintf("sso %s", e.Kind)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + describeAPIError(e.Err)
	}
	return msg
}

// Unwrap returns the underlying SDK error.
func (e *AuthError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrAuth.
func (e *AuthError) Is(target error) bool {
	return target == ErrAuth
}

// EnumerationErrorKind identifies the listing call that failed.
type EnumerationErrorKind string

// Enumeration failure kinds.
const (
	AccountListFailed EnumerationErrorKind = "account list failed"
	RoleListFailed    EnumerationErrorKind = "role list failed"
)

// EnumerationError is returned when accounts or roles cannot be listed.
// The run is aborted; partial results are never used.
type EnumerationError struct {
	Kind      EnumerationErrorKind
	AccountID string
	Err       error
}

func (e *EnumerationError) Error() string {
	msg := string(e.Kind)
	if e.AccountID != "" {
		msg += " for account " + e.AccountID
	}
	if e.Err != nil {
		msg += ": " + describeAPIError(e.Err)
	}
	return msg
}

// Unwrap returns the underlying SDK error.
func (e *EnumerationError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrEnumeration.
func (e *EnumerationError) Is(target error) bool {
	return target == ErrEnumeration
}

// NamingError reports a requested default profile that could not be produced.
// It is a warning: the run still succeeds.
type NamingError struct {
	Target string
	Reason string
}

func (e *NamingError) Error() string {
	return fmt.Sprintf("default profile %q %s", e.Target, e.Reason)
}

// Is reports whether target is ErrNaming.
func (e *NamingError) Is(target error) bool {
	return target == ErrNaming
}

// ValidationError reports malformed input detected before any network call.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// describeAPIError prefers the service error code and message over the
// SDK's verbose operation wrapper.
func describeAPIError(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if msg := apiErr.ErrorMessage(); msg != "" {
			return fmt.Sprintf("%s: %s", apiErr.ErrorCode(), msg)
		}
		return apiErr.ErrorCode()
	}
	return err.Error()
}
