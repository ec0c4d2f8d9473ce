package identity

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/nfrund/portcullis/internal/domain"
	"google.golang.org/api/googleapi"
)

// Identity Toolkit error codes, as returned in the error message.
var firebaseErrorKinds = map[string]domain.ErrorKind{
	"INVALID_LOGIN_CREDENTIALS":        domain.ErrorInvalidCredential,
	"INVALID_PASSWORD":                 domain.ErrorInvalidCredential,
	"EMAIL_NOT_FOUND":                  domain.ErrorInvalidCredential,
	"INVALID_IDP_RESPONSE":             domain.ErrorFederated,
	"FEDERATED_USER_ID_ALREADY_LINKED": domain.ErrorFederated,
	"EMAIL_EXISTS":                     domain.ErrorEmailInUse,
	"WEAK_PASSWORD":                    domain.ErrorWeakPassword,
	"INVALID_EMAIL":                    domain.ErrorInvalidEmail,
	"MISSING_PASSWORD":                 domain.ErrorInvalidCredential,
	"USER_DISABLED":                    domain.ErrorUserDisabled,
	"TOO_MANY_ATTEMPTS_TRY_LATER":      domain.ErrorTooManyRequests,
	"OPERATION_NOT_ALLOWED":            domain.ErrorConfiguration,
	"API_KEY_INVALID":                  domain.ErrorConfiguration,
}

// classify converts any backend failure into a *domain.ProviderError,
// keeping the provider's message as-is.
func classify(err error) *domain.ProviderError {
	if pe := asDomainError(err); pe != nil {
		return pe
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		msg := gerr.Message
		if msg == "" {
			msg = http.StatusText(gerr.Code)
		}
		return domain.NewProviderError(kindForCode(msg), msg, err)
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) {
		return domain.NewProviderError(domain.ErrorNetwork, err.Error(), err)
	}
	return domain.NewProviderError(domain.ErrorUnknown, err.Error(), err)
}

// kindForCode reads the leading error code of messages such as
// "WEAK_PASSWORD : Password should be at least 6 characters".
func kindForCode(msg string) domain.ErrorKind {
	code, _, _ := strings.Cut(msg, " ")
	code = strings.TrimSuffix(code, ":")
	if kind, ok := firebaseErrorKinds[code]; ok {
		return kind
	}
	return domain.ErrorUnknown
}

func asDomainError(err error) *domain.ProviderError {
	var pe *domain.ProviderError
	if errors.As(err, &pe) {
		return pe
	}
	return nil
}
