package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/nfrund/portcullis/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

// toolkitStub records requests made to the Identity Toolkit REST API.
type toolkitStub struct {
	mu       sync.Mutex
	requests map[string][]map[string]any
	fail     map[string]string
	// replies overrides the 200 body for a method.
	replies map[string]map[string]any
}

func (s *toolkitStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]

	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)
	s.mu.Lock()
	s.requests[method] = append(s.requests[method], body)
	failure := s.fail[method]
	reply := s.replies[method]
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if failure != "" {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"code":    400,
				"message": failure,
				"errors":  []map[string]any{{"message": failure, "domain": "global", "reason": "invalid"}},
			},
		})
		return
	}
	if reply != nil {
		_ = json.NewEncoder(w).Encode(reply)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"localId":      "uid-1",
		"email":        body["email"],
		"idToken":      "id-token",
		"refreshToken": "refresh-token",
	})
}

func (s *toolkitStub) calls(method string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[method]
}

func newFirebaseStub(t *testing.T, opts ...FirebaseOption) (*Firebase, *toolkitStub) {
	t.Helper()
	stub := &toolkitStub{
		requests: map[string][]map[string]any{},
		fail:     map[string]string{},
		replies:  map[string]map[string]any{},
	}
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	opts = append(opts, WithClientOptions(option.WithEndpoint(srv.URL+"/")))
	fb, err := NewFirebase(context.Background(), "test-api-key", "http://localhost:8080", opts...)
	require.NoError(t, err)
	return fb, stub
}

func TestFirebaseAuthenticate(t *testing.T) {
	fb, stub := newFirebaseStub(t)

	sess, err := fb.Authenticate(context.Background(), "user@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", sess.UserID)
	assert.Equal(t, "id-token", sess.IDToken)

	calls := stub.calls("verifyPassword")
	require.Len(t, calls, 1)
	assert.Equal(t, "user@example.com", calls[0]["email"])
	assert.Equal(t, "secret123", calls[0]["password"])
	assert.Equal(t, true, calls[0]["returnSecureToken"])
}

func TestFirebaseCreateAccountSendsNoDisplayName(t *testing.T) {
	fb, stub := newFirebaseStub(t)

	sess, err := fb.CreateAccount(context.Background(), "jane@example.com", "secret123")
	require.NoError(t, err)
	assert.True(t, sess.NewUser)

	calls := stub.calls("signupNewUser")
	require.Len(t, calls, 1)
	assert.Equal(t, "jane@example.com", calls[0]["email"])
	assert.NotContains(t, calls[0], "displayName")
}

func TestFirebaseErrorsAreClassified(t *testing.T) {
	fb, stub := newFirebaseStub(t)
	stub.fail["verifyPassword"] = "INVALID_LOGIN_CREDENTIALS"
	p := NewProvider(fb, nil)

	_, err := p.Authenticate(context.Background(), "user@example.com", "wrong")
	pe := domain.AsProviderError(err)
	require.NotNil(t, pe)
	assert.Equal(t, domain.ErrorInvalidCredential, pe.Kind)
	assert.Equal(t, "INVALID_LOGIN_CREDENTIALS", pe.Message)
}

func TestFirebaseSignInWithAssertion(t *testing.T) {
	fb, stub := newFirebaseStub(t)

	_, err := fb.SignInWithAssertion(context.Background(), domain.FederatedAssertion{
		Kind:        domain.ProviderGitHub,
		AccessToken: "gho_token",
	})
	require.NoError(t, err)

	calls := stub.calls("verifyAssertion")
	require.Len(t, calls, 1)
	body, err := url.ParseQuery(calls[0]["postBody"].(string))
	require.NoError(t, err)
	assert.Equal(t, "github.com", body.Get("providerId"))
	assert.Equal(t, "gho_token", body.Get("access_token"))
	assert.Equal(t, "http://localhost:8080", calls[0]["requestUri"])
}

func TestFirebaseSignInWithAssertionRejectedInBody(t *testing.T) {
	github := domain.FederatedAssertion{Kind: domain.ProviderGitHub, AccessToken: "gho_token"}

	tests := []struct {
		name    string
		reply   map[string]any
		kind    domain.ErrorKind
		message string
	}{
		{
			name:    "error message",
			reply:   map[string]any{"errorMessage": "FEDERATED_USER_ID_ALREADY_LINKED", "needConfirmation": true, "email": "x@example.com"},
			kind:    domain.ErrorFederated,
			message: "FEDERATED_USER_ID_ALREADY_LINKED",
		},
		{
			name:    "needs confirmation",
			reply:   map[string]any{"needConfirmation": true, "email": "x@example.com"},
			kind:    domain.ErrorFederated,
			message: msgNeedConfirmation,
		},
		{
			name:    "no id token",
			reply:   map[string]any{"email": "x@example.com"},
			kind:    domain.ErrorFederated,
			message: msgNoSession,
		},
		{
			name:    "unmapped error code",
			reply:   map[string]any{"errorMessage": "SOMETHING_NEW"},
			kind:    domain.ErrorUnknown,
			message: "SOMETHING_NEW",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb, stub := newFirebaseStub(t)
			stub.replies["verifyAssertion"] = tt.reply

			sess, err := fb.SignInWithAssertion(context.Background(), github)
			assert.Nil(t, sess)
			pe := domain.AsProviderError(err)
			require.NotNil(t, pe)
			assert.Equal(t, tt.kind, pe.Kind)
			assert.Equal(t, tt.message, pe.Message)
		})
	}
}

func TestFirebaseSignInWithAssertionNewUser(t *testing.T) {
	fb, stub := newFirebaseStub(t)
	stub.replies["verifyAssertion"] = map[string]any{"localId": "uid-9", "idToken": "id-token", "isNewUser": true}

	sess, err := fb.SignInWithAssertion(context.Background(), domain.FederatedAssertion{Kind: domain.ProviderGoogle, IDToken: "jwt"})
	require.NoError(t, err)
	assert.Equal(t, "uid-9", sess.UserID)
	assert.True(t, sess.NewUser)
}

type verifierFunc func(ctx context.Context, idToken string) (*firebaseauth.Token, error)

func (f verifierFunc) VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error) {
	return f(ctx, idToken)
}

func TestFirebaseTokenVerification(t *testing.T) {
	t.Run("accepts verified tokens", func(t *testing.T) {
		fb, _ := newFirebaseStub(t, WithTokenVerifier(verifierFunc(func(ctx context.Context, idToken string) (*firebaseauth.Token, error) {
			assert.Equal(t, "id-token", idToken)
			return &firebaseauth.Token{UID: "uid-1"}, nil
		})))

		sess, err := fb.Authenticate(context.Background(), "user@example.com", "secret123")
		require.NoError(t, err)
		assert.Equal(t, "uid-1", sess.UserID)
	})

	t.Run("rejects tokens that fail verification", func(t *testing.T) {
		fb, _ := newFirebaseStub(t, WithTokenVerifier(verifierFunc(func(ctx context.Context, idToken string) (*firebaseauth.Token, error) {
			return nil, errors.New("ID token has expired")
		})))

		_, err := fb.Authenticate(context.Background(), "user@example.com", "secret123")
		pe := domain.AsProviderError(err)
		require.NotNil(t, pe)
		assert.Equal(t, domain.ErrorInvalidCredential, pe.Kind)
	})
}

func TestAssertionPostBody(t *testing.T) {
	body, err := assertionPostBody(domain.FederatedAssertion{Kind: domain.ProviderGoogle, IDToken: "jwt"})
	require.NoError(t, err)
	values, err := url.ParseQuery(body)
	require.NoError(t, err)
	assert.Equal(t, "google.com", values.Get("providerId"))
	assert.Equal(t, "jwt", values.Get("id_token"))

	_, err = assertionPostBody(domain.FederatedAssertion{Kind: domain.ProviderGoogle})
	assert.Error(t, err)
}
