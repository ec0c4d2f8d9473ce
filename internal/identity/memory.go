package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/nfrund/portcullis/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// Messages mirror the Firebase client error codes so development and
// production show the same toasts.
const (
	msgInvalidCredential = "auth/invalid-credential"
	msgEmailInUse        = "auth/email-already-in-use"
	msgWeakPassword      = "auth/weak-password"
	msgInvalidEmail      = "auth/invalid-email"

	minPasswordLength = 6
)

type memoryAccount struct {
	id    string
	email string
	hash  []byte
}

// Memory is an in-process identity backend for local development and tests.
type Memory struct {
	mu         sync.RWMutex
	byEmail    map[string]*memoryAccount
	byFederate map[string]*memoryAccount
	cost       int
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{
		byEmail:    make(map[string]*memoryAccount),
		byFederate: make(map[string]*memoryAccount),
		cost:       bcrypt.DefaultCost,
	}
}

// Authenticate checks email and password against stored accounts.
func (m *Memory) Authenticate(ctx context.Context, email, password string) (*domain.Session, error) {
	m.mu.RLock()
	acct, ok := m.byEmail[normalizeEmail(email)]
	m.mu.RUnlock()

	if !ok || acct.hash == nil {
		return nil, domain.NewProviderError(domain.ErrorInvalidCredential, msgInvalidCredential, nil)
	}
	if err := bcrypt.CompareHashAndPassword(acct.hash, []byte(password)); err != nil {
		return nil, domain.NewProviderError(domain.ErrorInvalidCredential, msgInvalidCredential, err)
	}
	return acct.session(false), nil
}

// CreateAccount stores a new account.
func (m *Memory) CreateAccount(ctx context.Context, email, password string) (*domain.Session, error) {
	email = normalizeEmail(email)
	if !strings.Contains(email, "@") {
		return nil, domain.NewProviderError(domain.ErrorInvalidEmail, msgInvalidEmail, nil)
	}
	if len(password) < minPasswordLength {
		return nil, domain.NewProviderError(domain.ErrorWeakPassword, msgWeakPassword, nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), m.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.byEmail[email]; exists {
		return nil, domain.NewProviderError(domain.ErrorEmailInUse, msgEmailInUse, nil)
	}
	acct := &memoryAccount{id: uuid.NewString(), email: email, hash: hash}
	m.byEmail[email] = acct
	return acct.session(true), nil
}

// SignInWithAssertion accepts an assertion already verified by the
// federated broker, creating the account on first sign-in.
func (m *Memory) SignInWithAssertion(ctx context.Context, a domain.FederatedAssertion) (*domain.Session, error) {
	// Access tokens change on every sign-in, so only stable identifiers key accounts.
	key := string(a.Kind) + ":" + a.Subject
	if a.Subject == "" {
		email := normalizeEmail(a.Email)
		if email == "" {
			return nil, domain.NewProviderError(domain.ErrorFederated, "federated assertion carries no subject", errors.New("empty assertion"))
		}
		key = string(a.Kind) + ":email:" + email
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if acct, ok := m.byFederate[key]; ok {
		return acct.session(false), nil
	}
	acct := &memoryAccount{id: uuid.NewString(), email: normalizeEmail(a.Email)}
	m.byFederate[key] = acct
	return acct.session(true), nil
}

func (a *memoryAccount) session(isNew bool) *domain.Session {
	return &domain.Session{
		UserID:  a.id,
		Email:   a.email,
		IDToken: "memory." + a.id,
		NewUser: isNew,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
