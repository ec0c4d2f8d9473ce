package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the domain layer.
var (
	ErrUnknownProvider = errors.New("unknown federated provider")
	ErrNotConfigured   = errors.New("provider is not configured")
)

// ErrorKind classifies a ProviderError.
type ErrorKind int

const (
	ErrorUnknown ErrorKind = iota
	ErrorInvalidCredential
	ErrorEmailInUse
	ErrorWeakPassword
	ErrorInvalidEmail
	ErrorUserDisabled
	ErrorTooManyRequests
	ErrorNetwork
	ErrorFederated
	ErrorConfiguration
)

var errorKindNames = map[ErrorKind]string{
	ErrorUnknown:           "unknown",
	ErrorInvalidCredential: "invalid_credential",
	ErrorEmailInUse:        "email_in_use",
	ErrorWeakPassword:      "weak_password",
	ErrorInvalidEmail:      "invalid_email",
	ErrorUserDisabled:      "user_disabled",
	ErrorTooManyRequests:   "too_many_requests",
	ErrorNetwork:           "network",
	ErrorFederated:         "federated",
	ErrorConfiguration:     "configuration",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("error_kind(%d)", int(k))
}

// ProviderError is the single failure type produced by the identity
// provider abstraction. Message is shown to the visitor verbatim.
type ProviderError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// NewProviderError builds a ProviderError wrapping cause.
func NewProviderError(kind ErrorKind, message string, cause error) *ProviderError {
	return &ProviderError{Kind: kind, Message: message, Err: cause}
}

func (e *ProviderError) Error() string {
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// AsProviderError returns err as a *ProviderError. Errors of any other
// type are wrapped as ErrorUnknown carrying their own message.
func AsProviderError(err error) *ProviderError {
	if err == nil {
		return nil
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}
	return &ProviderError{Kind: ErrorUnknown, Message: err.Error(), Err: err}
}
