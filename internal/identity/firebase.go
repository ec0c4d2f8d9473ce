package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/nfrund/portcullis/internal/domain"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

// Provider ids the Identity Toolkit expects in a verifyAssertion post body.
var firebaseProviderIDs = map[domain.ProviderKind]string{
	domain.ProviderGoogle: "google.com",
	domain.ProviderGitHub: "github.com",
}

// TokenVerifier checks ID tokens issued by Firebase.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error)
}

// Firebase talks to the Firebase Authentication REST API (Identity Toolkit).
type Firebase struct {
	relyingParty *identitytoolkit.RelyingpartyService
	requestURI   string
	verifier     TokenVerifier
}

// FirebaseOption customises Firebase instances.
type FirebaseOption func(*firebaseSettings)

type firebaseSettings struct {
	clientOpts []option.ClientOption
	verifier   TokenVerifier
}

// WithTokenVerifier makes every successful call verify the returned ID
// token with the Admin SDK before it is accepted.
func WithTokenVerifier(v TokenVerifier) FirebaseOption {
	return func(s *firebaseSettings) {
		s.verifier = v
	}
}

// WithClientOptions passes extra options to the Identity Toolkit client,
// e.g. option.WithEndpoint for the auth emulator.
func WithClientOptions(opts ...option.ClientOption) FirebaseOption {
	return func(s *firebaseSettings) {
		s.clientOpts = append(s.clientOpts, opts...)
	}
}

// NewFirebase constructs the backend for the project identified by apiKey.
// requestURI is sent with federated assertions and must be an authorized
// domain of the project.
func NewFirebase(ctx context.Context, apiKey, requestURI string, opts ...FirebaseOption) (*Firebase, error) {
	if apiKey == "" {
		return nil, errors.New("firebase api key is required")
	}

	settings := &firebaseSettings{}
	for _, opt := range opts {
		if opt != nil {
			opt(settings)
		}
	}

	clientOpts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, settings.clientOpts...)
	svc, err := identitytoolkit.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise identity toolkit client: %w", err)
	}

	return &Firebase{
		relyingParty: svc.Relyingparty,
		requestURI:   requestURI,
		verifier:     settings.verifier,
	}, nil
}

// Authenticate signs in with email and password.
func (f *Firebase) Authenticate(ctx context.Context, email, password string) (*domain.Session, error) {
	resp, err := f.relyingParty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return f.session(ctx, &domain.Session{
		UserID:       resp.LocalId,
		Email:        resp.Email,
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
	})
}

// CreateAccount registers a new email/password account.
func (f *Firebase) CreateAccount(ctx context.Context, email, password string) (*domain.Session, error) {
	resp, err := f.relyingParty.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:    email,
		Password: password,
	}).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return f.session(ctx, &domain.Session{
		UserID:       resp.LocalId,
		Email:        resp.Email,
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
		NewUser:      true,
	})
}

// SignInWithAssertion exchanges a Google ID token or GitHub access token
// for a Firebase session, creating the account on first use.
func (f *Firebase) SignInWithAssertion(ctx context.Context, assertion domain.FederatedAssertion) (*domain.Session, error) {
	postBody, err := assertionPostBody(assertion)
	if err != nil {
		return nil, err
	}

	resp, err := f.relyingParty.VerifyAssertion(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyAssertionRequest{
		PostBody:          postBody,
		RequestUri:        f.requestURI,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	// verifyAssertion reports some rejections in a 200 body.
	switch {
	case resp.ErrorMessage != "":
		return nil, domain.NewProviderError(kindForCode(resp.ErrorMessage), resp.ErrorMessage, nil)
	case resp.NeedConfirmation:
		return nil, domain.NewProviderError(domain.ErrorFederated, msgNeedConfirmation, nil)
	case resp.IdToken == "":
		return nil, domain.NewProviderError(domain.ErrorFederated, msgNoSession, nil)
	}
	return f.session(ctx, &domain.Session{
		UserID:       resp.LocalId,
		Email:        resp.Email,
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
		NewUser:      resp.IsNewUser,
	})
}

const (
	msgNeedConfirmation = "An account already exists with the same email address but different sign-in credentials."
	msgNoSession        = "Sign-in did not return a session."
)

func (f *Firebase) session(ctx context.Context, sess *domain.Session) (*domain.Session, error) {
	if f.verifier == nil || sess.IDToken == "" {
		return sess, nil
	}
	token, err := f.verifier.VerifyIDToken(ctx, sess.IDToken)
	if err != nil {
		return nil, domain.NewProviderError(domain.ErrorInvalidCredential, err.Error(), err)
	}
	if token.UID != sess.UserID {
		slog.WarnContext(ctx, "Verified token subject differs from response", "local_id", sess.UserID, "uid", token.UID)
		sess.UserID = token.UID
	}
	return sess, nil
}

func assertionPostBody(a domain.FederatedAssertion) (string, error) {
	providerID, ok := firebaseProviderIDs[a.Kind]
	if !ok {
		return "", domain.NewProviderError(domain.ErrorFederated, fmt.Sprintf("unsupported provider %q", a.Kind), domain.ErrUnknownProvider)
	}

	v := url.Values{}
	v.Set("providerId", providerID)
	switch {
	case a.IDToken != "":
		v.Set("id_token", a.IDToken)
	case a.AccessToken != "":
		v.Set("access_token", a.AccessToken)
	default:
		return "", domain.NewProviderError(domain.ErrorFederated, "federated assertion carries no token", nil)
	}
	return v.Encode(), nil
}
