// Package identity adapts external identity services to domain.IdentityProvider.
package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/nfrund/portcullis/internal/config"
	"github.com/nfrund/portcullis/internal/domain"
)

// Backend is an identity service able to verify passwords, create accounts
// and accept federated assertions.
type Backend interface {
	Authenticate(ctx context.Context, email, password string) (*domain.Session, error)
	CreateAccount(ctx context.Context, email, password string) (*domain.Session, error)
	SignInWithAssertion(ctx context.Context, assertion domain.FederatedAssertion) (*domain.Session, error)
}

// Popup turns an authorization grant from a federated provider into an
// assertion. federated.Broker implements it.
type Popup interface {
	Exchange(ctx context.Context, kind domain.ProviderKind, code string) (domain.FederatedAssertion, error)
}

// Provider implements domain.IdentityProvider on top of a Backend and a Popup.
type Provider struct {
	backend Backend
	popup   Popup
	timeout time.Duration
}

// Option customises Provider instances.
type Option func(*Provider)

// WithTimeout bounds every call to the backend.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// NewProvider wires backend and popup together. popup may be nil when no
// federated provider is configured.
func NewProvider(backend Backend, popup Popup, opts ...Option) *Provider {
	p := &Provider{backend: backend, popup: popup}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// New builds the provider selected by cfg.IdentityProvider.
func New(ctx context.Context, cfg *config.Config, popup Popup) (*Provider, error) {
	var backend Backend
	switch cfg.IdentityProvider {
	case config.ProviderFirebase:
		var opts []FirebaseOption
		if cfg.Firebase.VerifyIDTokens {
			verifier, err := NewFirebaseVerifier(ctx, cfg.Firebase, WithVerifyTimeout(cfg.Timeout))
			if err != nil {
				return nil, err
			}
			opts = append(opts, WithTokenVerifier(verifier))
		}
		fb, err := NewFirebase(ctx, cfg.Firebase.APIKey, cfg.BaseURL, opts...)
		if err != nil {
			return nil, err
		}
		backend = fb
	case config.ProviderMemory:
		backend = NewMemory()
	default:
		return nil, fmt.Errorf("unknown identity provider %q", cfg.IdentityProvider)
	}
	return NewProvider(backend, popup, WithTimeout(cfg.Timeout)), nil
}

// Authenticate implements domain.IdentityProvider.
func (p *Provider) Authenticate(ctx context.Context, email, password string) (*domain.Session, error) {
	ctx, cancel := p.bound(ctx)
	defer cancel()

	sess, err := p.backend.Authenticate(ctx, email, password)
	if err != nil {
		return nil, classify(err)
	}
	return sess, nil
}

// CreateAccount implements domain.IdentityProvider.
func (p *Provider) CreateAccount(ctx context.Context, email, password string) (*domain.Session, error) {
	ctx, cancel := p.bound(ctx)
	defer cancel()

	sess, err := p.backend.CreateAccount(ctx, email, password)
	if err != nil {
		return nil, classify(err)
	}
	return sess, nil
}

// FederatedSignIn implements domain.IdentityProvider. The grant carries
// either the authorization code or the error the provider redirected with.
func (p *Provider) FederatedSignIn(ctx context.Context, kind domain.ProviderKind, grant domain.AuthorizationGrant) (*domain.Session, error) {
	if grant.Error != "" {
		return nil, domain.NewProviderError(domain.ErrorFederated, grant.Error, nil)
	}
	if p.popup == nil {
		return nil, domain.NewProviderError(domain.ErrorConfiguration,
			fmt.Sprintf("%s sign-in is not configured", kind.Label()), domain.ErrNotConfigured)
	}

	ctx, cancel := p.bound(ctx)
	defer cancel()

	assertion, err := p.popup.Exchange(ctx, kind, grant.Code)
	if err != nil {
		if pe := asDomainError(err); pe != nil {
			return nil, pe
		}
		return nil, domain.NewProviderError(domain.ErrorFederated, err.Error(), err)
	}

	sess, err := p.backend.SignInWithAssertion(ctx, assertion)
	if err != nil {
		return nil, classify(err)
	}
	return sess, nil
}

func (p *Provider) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.timeout)
}
