package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/portcullis/internal/middleware"
	"github.com/nfrund/portcullis/internal/ui"
	"github.com/nfrund/portcullis/internal/view"
)

// AppHandler serves the page and owns the view mode.
type AppHandler struct {
	toaster *view.Toaster
	modes   view.ModeStore
}

// NewAppHandler creates an AppHandler rendering notifications from toaster.
func NewAppHandler(toaster *view.Toaster) *AppHandler {
	return &AppHandler{toaster: toaster}
}

// AppGet renders the auth screen (GET /).
func (h *AppHandler) AppGet(c echo.Context) error {
	page := ui.App(ui.AppProps{
		Mode:          h.modes.Get(c),
		Notifications: h.toaster.Drain(c),
	})
	return c.Render(http.StatusOK, "", view.AdaptGomponentToTempl(page))
}

// ModePost flips between sign-in and sign-up (POST /auth/mode).
func (h *AppHandler) ModePost(c echo.Context) error {
	mode, err := h.modes.Toggle(c)
	if err != nil {
		middleware.FromContext(c.Request().Context()).Error("Failed to save view mode", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not switch form")
	}
	middleware.FromContext(c.Request().Context()).Debug("View mode toggled", slog.String("mode", mode.String()))

	if isHTMX(c) {
		return c.Render(http.StatusOK, "", ui.AuthForm(ui.AuthFormProps{Mode: mode}))
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func isHTMX(c echo.Context) bool {
	return c.Request().Header.Get("HX-Request") == "true"
}
