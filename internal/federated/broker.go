// Package federated runs the OAuth2 authorization-code exchange that stands
// in for a sign-in popup: the visitor is sent to Google or GitHub and comes
// back with a code the broker turns into an assertion.
package federated

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/nfrund/portcullis/internal/config"
	"github.com/nfrund/portcullis/internal/domain"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
)

const (
	googleIssuer  = "https://accounts.google.com"
	googleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"
	githubUserURL = "https://api.github.com/user"
)

// IDTokenVerifier verifies Google ID tokens. *oidc.IDTokenVerifier satisfies it.
type IDTokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*oidc.IDToken, error)
}

// Broker holds one OAuth2 client per configured provider.
type Broker struct {
	clients  map[domain.ProviderKind]*oauth2.Config
	verifier IDTokenVerifier
	http     *http.Client
	userURL  string
}

// Option customises Broker instances.
type Option func(*Broker)

// WithEndpoint overrides the authorization and token endpoints of kind.
func WithEndpoint(kind domain.ProviderKind, endpoint oauth2.Endpoint) Option {
	return func(b *Broker) {
		if c, ok := b.clients[kind]; ok {
			c.Endpoint = endpoint
		}
	}
}

// WithIDTokenVerifier replaces the Google ID token verifier.
func WithIDTokenVerifier(v IDTokenVerifier) Option {
	return func(b *Broker) {
		b.verifier = v
	}
}

// WithHTTPClient sets the client used for token exchanges.
func WithHTTPClient(c *http.Client) Option {
	return func(b *Broker) {
		b.http = c
	}
}

// WithGitHubUserURL overrides the GitHub profile endpoint.
func WithGitHubUserURL(u string) Option {
	return func(b *Broker) {
		b.userURL = u
	}
}

// CallbackPath is where the provider sends the visitor back to.
func CallbackPath(kind domain.ProviderKind) string {
	return "/auth/federated/" + string(kind) + "/callback"
}

// NewBroker registers a client for every provider cfg has credentials for.
func NewBroker(ctx context.Context, cfg *config.Config, opts ...Option) *Broker {
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	b := &Broker{
		clients: make(map[domain.ProviderKind]*oauth2.Config),
		userURL: githubUserURL,
	}

	if cfg.Google.Enabled() {
		b.clients[domain.ProviderGoogle] = &oauth2.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  base + CallbackPath(domain.ProviderGoogle),
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		}
		keySet := oidc.NewRemoteKeySet(ctx, googleJWKSURL)
		b.verifier = oidc.NewVerifier(googleIssuer, keySet, &oidc.Config{ClientID: cfg.Google.ClientID})
	}
	if cfg.GitHub.Enabled() {
		b.clients[domain.ProviderGitHub] = &oauth2.Config{
			ClientID:     cfg.GitHub.ClientID,
			ClientSecret: cfg.GitHub.ClientSecret,
			Endpoint:     github.Endpoint,
			RedirectURL:  base + CallbackPath(domain.ProviderGitHub),
			Scopes:       []string{"read:user", "user:email"},
		}
	}

	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Enabled reports whether kind has a registered client.
func (b *Broker) Enabled(kind domain.ProviderKind) bool {
	_, ok := b.clients[kind]
	return ok
}

// AuthCodeURL is the provider consent page the visitor is redirected to.
func (b *Broker) AuthCodeURL(kind domain.ProviderKind, state string) (string, error) {
	client, err := b.client(kind)
	if err != nil {
		return "", err
	}
	return client.AuthCodeURL(state), nil
}

// Exchange trades the authorization code for provider tokens and returns
// them as an assertion for the identity provider.
func (b *Broker) Exchange(ctx context.Context, kind domain.ProviderKind, code string) (domain.FederatedAssertion, error) {
	client, err := b.client(kind)
	if err != nil {
		return domain.FederatedAssertion{}, err
	}
	if code == "" {
		return domain.FederatedAssertion{}, errors.New("missing authorization code")
	}
	if b.http != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, b.http)
	}

	token, err := client.Exchange(ctx, code)
	if err != nil {
		return domain.FederatedAssertion{}, fmt.Errorf("exchange %s code: %w", kind, err)
	}

	switch kind {
	case domain.ProviderGoogle:
		return b.googleAssertion(ctx, token)
	case domain.ProviderGitHub:
		return b.githubAssertion(ctx, client, token)
	default:
		return domain.FederatedAssertion{Kind: kind, AccessToken: token.AccessToken}, nil
	}
}

// githubAssertion looks the account up so the assertion carries the stable
// numeric user id rather than only the short-lived access token.
func (b *Broker) githubAssertion(ctx context.Context, client *oauth2.Config, token *oauth2.Token) (domain.FederatedAssertion, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.userURL, nil)
	if err != nil {
		return domain.FederatedAssertion{}, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Client(ctx, token).Do(req)
	if err != nil {
		return domain.FederatedAssertion{}, fmt.Errorf("fetch github user: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return domain.FederatedAssertion{}, fmt.Errorf("fetch github user: unexpected status %d", resp.StatusCode)
	}

	var user struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return domain.FederatedAssertion{}, fmt.Errorf("decode github user: %w", err)
	}
	if user.ID == 0 {
		return domain.FederatedAssertion{}, errors.New("github user response carries no id")
	}

	return domain.FederatedAssertion{
		Kind:        domain.ProviderGitHub,
		AccessToken: token.AccessToken,
		Subject:     strconv.FormatInt(user.ID, 10),
		Email:       user.Email,
	}, nil
}

func (b *Broker) googleAssertion(ctx context.Context, token *oauth2.Token) (domain.FederatedAssertion, error) {
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return domain.FederatedAssertion{}, errors.New("missing id_token in google response")
	}
	if b.verifier == nil {
		return domain.FederatedAssertion{}, errors.New("google id token verifier not configured")
	}

	idToken, err := b.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return domain.FederatedAssertion{}, fmt.Errorf("verify google id token: %w", err)
	}

	var claims struct {
		Email string `json:"email"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return domain.FederatedAssertion{}, fmt.Errorf("parse google claims: %w", err)
	}

	return domain.FederatedAssertion{
		Kind:        domain.ProviderGoogle,
		IDToken:     rawIDToken,
		AccessToken: token.AccessToken,
		Subject:     idToken.Subject,
		Email:       claims.Email,
	}, nil
}

func (b *Broker) client(kind domain.ProviderKind) (*oauth2.Config, error) {
	client, ok := b.clients[kind]
	if !ok {
		return nil, domain.NewProviderError(domain.ErrorConfiguration,
			fmt.Sprintf("%s sign-in is not configured", kind.Label()), domain.ErrNotConfigured)
	}
	return client, nil
}
