// Package claude implements the OAuth 2.0 authorization-code-with-PKCE flow
// for Anthropic Claude accounts: PKCE parameter generation, callback input
// parsing, token exchange, token refresh, and profile enrichment. All
// network traffic can be routed through a caller-supplied forward proxy.
package claude

import (
	"errors"
	"fmt"
)

// ValidationKind identifies why caller input was rejected. Callers branch on
// the kind instead of matching message substrings.
type ValidationKind string

const (
	// KindInvalidInput means the input was empty or not usable text.
	KindInvalidInput ValidationKind = "invalid_input"
	// KindMalformedURL means the input looked like a URL but could not be parsed.
	KindMalformedURL ValidationKind = "malformed_url"
	// KindMissingCode means a callback URL carried no code query parameter.
	KindMissingCode ValidationKind = "missing_code"
	// KindInvalidFormat means a raw code was too short to be an authorization code.
	KindInvalidFormat ValidationKind = "invalid_format"
	// KindInvalidCharacters means a raw code contained characters outside [A-Za-z0-9_-].
	KindInvalidCharacters ValidationKind = "invalid_characters"
)

// ValidationError reports malformed caller input. It is always local and
// never worth retrying.
type ValidationError struct {
	Kind    ValidationKind
	Message string
}

// Error returns the human-readable message for the validation failure.
func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(kind ValidationKind, message string) *ValidationError {
	return &ValidationError{Kind: kind, Message: message}
}

// TransportError reports a request that produced no usable response: DNS or
// connect failures, timeouts, or a dropped connection. The caller may retry;
// this package never does.
type TransportError struct {
	// Op is the stable prefix identifying the failed operation.
	Op string
	// Err is the underlying transport failure.
	Err error
}

// Error returns the operation prefix plus the fixed no-response description.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: no response from server (network error or timeout): %v", e.Op, e.Err)
}

// Unwrap exposes the underlying transport failure.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProtocolError reports a received non-2xx response, decoded best-effort
// into a readable message.
type ProtocolError struct {
	// Op is the stable prefix identifying the failed operation.
	Op string
	// StatusCode is the HTTP status of the response.
	StatusCode int
	// Message is the decoded server message.
	Message string
}

// Error returns the operation prefix plus the decoded server message.
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// IsValidationError checks if an error is a ValidationError.
func IsValidationError(err error) bool {
	var validationError *ValidationError
	return errors.As(err, &validationError)
}

// IsTransportError checks if an error is a TransportError.
func IsTransportError(err error) bool {
	var transportError *TransportError
	return errors.As(err, &transportError)
}

// IsProtocolError checks if an error is a ProtocolError.
func IsProtocolError(err error) bool {
	var protocolError *ProtocolError
	return errors.As(err, &protocolError)
}
