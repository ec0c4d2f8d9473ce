package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/portcullis/internal/domain"
	"github.com/nfrund/portcullis/internal/middleware"
)

const (
	federatedSessionName = "federated-session"
	stateKey             = "state"
	stateProviderKey     = "provider"
)

var staleStateNotice = domain.Notification{
	Kind:    domain.NotificationFailure,
	Message: "Sign-in request expired. Please try again.",
}

// FederatedBegin is what a social button activates
// (GET /auth/federated/:provider): it remembers an anti-forgery state and
// sends the visitor to the provider's consent page.
func (h *AuthHandler) FederatedBegin(c echo.Context) error {
	kind, err := domain.ParseProviderKind(c.Param("provider"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	logger := middleware.FromContext(c.Request().Context())

	state := uuid.NewString()
	consentURL, err := h.consent.AuthCodeURL(kind, state)
	if err != nil {
		// Let the provider report the missing configuration as the attempt's failure.
		logger.Warn("Federated provider unavailable", "provider", kind, "error", err)
		h.newForm(c).SignInWith(c.Request().Context(), kind, domain.AuthorizationGrant{})
		return c.Redirect(http.StatusSeeOther, "/")
	}

	sess, err := session.Get(federatedSessionName, c)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
	}
	sess.Values[stateKey] = state
	sess.Values[stateProviderKey] = string(kind)
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		logger.Error("Failed to save federated state", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
	}

	return c.Redirect(http.StatusFound, consentURL)
}

// FederatedCallback completes the exchange
// (GET /auth/federated/:provider/callback).
func (h *AuthHandler) FederatedCallback(c echo.Context) error {
	kind, err := domain.ParseProviderKind(c.Param("provider"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	ctx := c.Request().Context()
	logger := middleware.FromContext(ctx)

	if !h.consumeState(c, kind) {
		logger.Warn("Federated callback with unknown state", "provider", kind)
		if err := h.toaster.Sink(c).Notify(ctx, staleStateNotice); err != nil {
			logger.Error("Failed to display notification", "error", err)
		}
		return c.Redirect(http.StatusSeeOther, "/")
	}

	grant := domain.AuthorizationGrant{
		Code:  c.QueryParam("code"),
		Error: c.QueryParam("error"),
	}
	h.newForm(c).SignInWith(ctx, kind, grant)
	return c.Redirect(http.StatusSeeOther, "/")
}

// consumeState checks the callback's state against the one stored by
// FederatedBegin and forgets it, so each state is usable once.
func (h *AuthHandler) consumeState(c echo.Context, kind domain.ProviderKind) bool {
	sess, err := session.Get(federatedSessionName, c)
	if err != nil {
		return false
	}
	expected, _ := sess.Values[stateKey].(string)
	expectedKind, _ := sess.Values[stateProviderKey].(string)
	delete(sess.Values, stateKey)
	delete(sess.Values, stateProviderKey)
	_ = sess.Save(c.Request(), c.Response())

	return expected != "" && expected == c.QueryParam("state") && expectedKind == string(kind)
}
