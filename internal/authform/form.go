// Package authform holds the state and behaviour behind the sign-in /
// sign-up form: the typed credentials, the loading flag, and the calls to
// the identity provider whose outcome is reported as a notification.
package authform

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/nfrund/portcullis/internal/domain"
)

// Flow names the provider operation an attempt used.
type Flow string

const (
	FlowSignIn    Flow = "sign-in"
	FlowSignUp    Flow = "sign-up"
	FlowFederated Flow = "federated"
)

// Attempt describes one finished provider call.
type Attempt struct {
	Flow      Flow
	Provider  domain.ProviderKind
	Success   bool
	UserID    string
	ErrorKind domain.ErrorKind
	Duration  time.Duration
}

// AttemptRecorder receives every finished attempt.
type AttemptRecorder interface {
	RecordAttempt(ctx context.Context, a Attempt)
}

// Outcome is the result of Submit or SignInWith.
type Outcome struct {
	Notification domain.Notification
	Session      *domain.Session
	Err          *domain.ProviderError
	// Busy is set when Submit was ignored because an attempt is in flight.
	Busy bool
}

// OK reports whether the provider call succeeded.
func (o Outcome) OK() bool {
	return !o.Busy && o.Err == nil
}

var (
	signInWelcome = domain.Notification{
		Kind: domain.NotificationSuccess, Message: "Welcome back!", Icon: "👋", Style: domain.DarkToast,
	}
	signUpWelcome = domain.Notification{
		Kind: domain.NotificationSuccess, Message: "Welcome to our platform!", Icon: "🎉", Style: domain.DarkToast,
	}
	federatedWelcome = domain.Notification{
		Kind: domain.NotificationSuccess, Message: "Welcome!", Icon: "🎉", Style: domain.DarkToast,
	}
)

// Form is one instance of the auth form.
type Form struct {
	provider domain.IdentityProvider
	notifier domain.Notifier
	recorder AttemptRecorder
	logger   *slog.Logger

	mode    domain.ViewMode
	creds   domain.Credentials
	loading atomic.Bool
}

// Option customises Form instances.
type Option func(*Form)

// WithRecorder reports every attempt to r.
func WithRecorder(r AttemptRecorder) Option {
	return func(f *Form) {
		f.recorder = r
	}
}

// WithLogger replaces slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(f *Form) {
		if l != nil {
			f.logger = l
		}
	}
}

// New creates an empty form in the given mode. The notifier is the shared
// notification surface the composition root hands down.
func New(provider domain.IdentityProvider, notifier domain.Notifier, mode domain.ViewMode, opts ...Option) *Form {
	f := &Form{
		provider: provider,
		notifier: notifier,
		logger:   slog.Default(),
		mode:     mode,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Mode is the view mode the form was created for.
func (f *Form) Mode() domain.ViewMode { return f.mode }

// Credentials returns the current field values.
func (f *Form) Credentials() domain.Credentials { return f.creds }

// Loading reports whether a submit is waiting on the provider.
func (f *Form) Loading() bool { return f.loading.Load() }

func (f *Form) SetEmail(v string)       { f.creds.Email = v }
func (f *Form) SetPassword(v string)    { f.creds.Password = v }
func (f *Form) SetDisplayName(v string) { f.creds.DisplayName = v }

// Fill replaces all field values at once.
func (f *Form) Fill(c domain.Credentials) { f.creds = c }

// Submit sends the credentials to the provider: authenticate in sign-in
// mode, createAccount in sign-up mode. The display name is not sent.
// Fields are cleared afterwards whatever the outcome.
func (f *Form) Submit(ctx context.Context) Outcome {
	if !f.loading.CompareAndSwap(false, true) {
		return Outcome{Busy: true}
	}
	creds := f.creds
	defer func() {
		f.creds = domain.Credentials{}
		f.loading.Store(false)
	}()

	start := time.Now()
	var (
		sess    *domain.Session
		err     error
		flow    Flow
		welcome domain.Notification
	)
	if f.mode.IsLogin() {
		flow, welcome = FlowSignIn, signInWelcome
		sess, err = f.provider.Authenticate(ctx, creds.Email, creds.Password)
	} else {
		flow, welcome = FlowSignUp, signUpWelcome
		sess, err = f.provider.CreateAccount(ctx, creds.Email, creds.Password)
	}

	return f.finish(ctx, Attempt{Flow: flow, Duration: time.Since(start)}, sess, err, welcome,
		slog.String("email", creds.Email))
}

// SignInWith completes a federated sign-in for kind. No form field is read.
func (f *Form) SignInWith(ctx context.Context, kind domain.ProviderKind, grant domain.AuthorizationGrant) Outcome {
	start := time.Now()
	sess, err := f.provider.FederatedSignIn(ctx, kind, grant)
	return f.finish(ctx, Attempt{Flow: FlowFederated, Provider: kind, Duration: time.Since(start)}, sess, err, federatedWelcome,
		slog.String("provider", string(kind)))
}

func (f *Form) finish(ctx context.Context, attempt Attempt, sess *domain.Session, err error, welcome domain.Notification, attrs ...any) Outcome {
	out := Outcome{Session: sess, Notification: welcome}
	if err != nil {
		pe := domain.AsProviderError(err)
		out.Session = nil
		out.Err = pe
		out.Notification = domain.Notification{
			Kind:    domain.NotificationFailure,
			Message: pe.Message,
		}
		if attempt.Flow != FlowFederated {
			out.Notification.Style = domain.DarkToast
		}
		attempt.ErrorKind = pe.Kind
		f.logger.WarnContext(ctx, "Authentication attempt failed",
			append(attrs, "flow", attempt.Flow, "kind", pe.Kind.String(), "error", pe.Err)...)
	} else {
		attempt.Success = true
		if sess != nil {
			attempt.UserID = sess.UserID
		}
		f.logger.InfoContext(ctx, "Authentication attempt succeeded",
			append(attrs, "flow", attempt.Flow, "new_user", sess != nil && sess.NewUser)...)
	}

	if nerr := f.notifier.Notify(ctx, out.Notification); nerr != nil {
		f.logger.ErrorContext(ctx, "Failed to display notification", "error", nerr)
	}
	if f.recorder != nil {
		f.recorder.RecordAttempt(ctx, attempt)
	}
	return out
}
