package domain

import (
	"context"
	"fmt"
)

// ProviderKind is the closed set of federated identity providers.
type ProviderKind string

const (
	ProviderGoogle ProviderKind = "google"
	ProviderGitHub ProviderKind = "github"
)

// ProviderKinds lists every supported federated provider in display order.
var ProviderKinds = []ProviderKind{ProviderGoogle, ProviderGitHub}

// ParseProviderKind converts a path segment such as "github" into a ProviderKind.
func ParseProviderKind(s string) (ProviderKind, error) {
	for _, k := range ProviderKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProvider, s)
}

// Label is the human readable provider name shown on the social button.
func (k ProviderKind) Label() string {
	switch k {
	case ProviderGoogle:
		return "Google"
	case ProviderGitHub:
		return "GitHub"
	default:
		return string(k)
	}
}

// Session is the opaque result of a successful provider call. The auth
// screen only uses it to decide which notification to show.
type Session struct {
	UserID       string
	Email        string
	IDToken      string
	RefreshToken string
	NewUser      bool
}

// AuthorizationGrant is what the federated provider hands back to the
// callback once the visitor finishes the popup exchange.
type AuthorizationGrant struct {
	Code  string
	Error string
}

// FederatedAssertion is the proof of identity obtained from a federated
// provider, ready to be exchanged with the identity provider.
type FederatedAssertion struct {
	Kind        ProviderKind
	IDToken     string
	AccessToken string
	Subject     string
	Email       string
}

// IdentityProvider defines the operations the auth form delegates to the
// external identity service. Failures are returned as *ProviderError.
type IdentityProvider interface {
	Authenticate(ctx context.Context, email, password string) (*Session, error)
	CreateAccount(ctx context.Context, email, password string) (*Session, error)
	FederatedSignIn(ctx context.Context, kind ProviderKind, grant AuthorizationGrant) (*Session, error)
}
