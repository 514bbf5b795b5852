package model

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedPlatform reports that no public-key credential capability is present.
	ErrUnsupportedPlatform = errors.New("passkeys are not supported on this platform")
	// ErrMalformedEncoding reports a transport string that is not valid base64.
	ErrMalformedEncoding = errors.New("malformed encoding")
	// ErrUserCancelled reports that the user aborted local verification.
	ErrUserCancelled = errors.New("the operation was cancelled by the user")
	// ErrNotAllowed reports that the authenticator declined the request or timed out.
	ErrNotAllowed = errors.New("the operation is not allowed or timed out")
	// ErrInvalidState reports a duplicate credential for the authenticator and relying party.
	ErrInvalidState = errors.New("a passkey already exists for this account on this device")
	// ErrServerRejected reports a non-success response from the relying party.
	ErrServerRejected = errors.New("request rejected by server")
	// ErrNetworkFailure reports that the relying party could not be reached.
	ErrNetworkFailure = errors.New("network failure")

	ErrBusy         = errors.New("another sign-in operation is already in progress")
	ErrLastDevice   = errors.New("the last registered device cannot be deleted")
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

// ServerError carries the status and message of a rejected relying party call.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request rejected by server (status %d)", e.Status)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// Unwrap lets errors.Is match ErrServerRejected.
func (e *ServerError) Unwrap() error {
	return ErrServerRejected
}

// NewErrInvalidInput wraps ErrInvalidInput with a field-specific reason.
func NewErrInvalidInput(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, reason)
}
