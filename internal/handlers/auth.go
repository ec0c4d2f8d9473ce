package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/portcullis/internal/authform"
	"github.com/nfrund/portcullis/internal/domain"
	"github.com/nfrund/portcullis/internal/middleware"
	"github.com/nfrund/portcullis/internal/ui"
	"github.com/nfrund/portcullis/internal/view"
	g "maragu.dev/gomponents"
)

// ConsentURLer builds the provider consent page URL a social button leads to.
type ConsentURLer interface {
	AuthCodeURL(kind domain.ProviderKind, state string) (string, error)
}

// AuthHandler turns form posts and federated callbacks into AuthForm calls.
type AuthHandler struct {
	provider domain.IdentityProvider
	consent  ConsentURLer
	toaster  *view.Toaster
	recorder authform.AttemptRecorder
	modes    view.ModeStore
}

// NewAuthHandler creates a new AuthHandler. recorder may be nil.
func NewAuthHandler(provider domain.IdentityProvider, consent ConsentURLer, toaster *view.Toaster, recorder authform.AttemptRecorder) *AuthHandler {
	return &AuthHandler{
		provider: provider,
		consent:  consent,
		toaster:  toaster,
		recorder: recorder,
	}
}

// newForm builds the per-request AuthForm, bound to the visitor's mode and
// to the shared notification surface.
func (h *AuthHandler) newForm(c echo.Context) *authform.Form {
	opts := []authform.Option{authform.WithLogger(middleware.FromContext(c.Request().Context()))}
	if h.recorder != nil {
		opts = append(opts, authform.WithRecorder(h.recorder))
	}
	return authform.New(h.provider, h.toaster.Sink(c), h.modes.Get(c), opts...)
}

// SubmitPost handles the credential form (POST /auth/submit).
func (h *AuthHandler) SubmitPost(c echo.Context) error {
	var creds domain.Credentials
	if err := c.Bind(&creds); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed form")
	}

	form := h.newForm(c)
	// Mirrors the form's "required" attributes; no attempt is made without them.
	if err := c.Validate(&creds); err != nil {
		return h.rejectIncomplete(c, form, "Email and password are required.")
	}
	if !form.Mode().IsLogin() {
		if err := c.Validate(&signUpFields{DisplayName: creds.DisplayName}); err != nil {
			return h.rejectIncomplete(c, form, "Name is required.")
		}
	}

	form.Fill(creds)
	form.Submit(c.Request().Context())

	return h.respond(c, form)
}

// rejectIncomplete answers a submission missing required fields. htmx does
// not swap 4xx responses, so htmx callers get the card back with a failure
// toast instead of a bare 400.
func (h *AuthHandler) rejectIncomplete(c echo.Context, form *authform.Form, message string) error {
	if !isHTMX(c) {
		return echo.NewHTTPError(http.StatusBadRequest, message)
	}
	note := domain.Notification{Kind: domain.NotificationFailure, Message: message, Style: domain.DarkToast}
	if err := h.toaster.Sink(c).Notify(c.Request().Context(), note); err != nil {
		middleware.FromContext(c.Request().Context()).Error("Failed to display notification", "error", err)
	}
	return h.respond(c, form)
}

// respond re-renders the emptied card for htmx, or redirects home.
func (h *AuthHandler) respond(c echo.Context, form *authform.Form) error {
	if !isHTMX(c) {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	fragment := g.Group{
		ui.AuthForm(ui.AuthFormProps{Mode: form.Mode(), Loading: form.Loading()}),
		ui.Toaster(h.toaster.Drain(c), true),
	}
	return c.Render(http.StatusOK, "", fragment)
}
