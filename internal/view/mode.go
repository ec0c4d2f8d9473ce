package view

import (
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/portcullis/internal/domain"
)

const (
	viewSessionName = "view-session"
	signUpKey       = "signup"
)

// ModeStore keeps each visitor's view mode in their session.
type ModeStore struct{}

// Get returns the visitor's mode, sign-in when nothing is stored.
func (ModeStore) Get(c echo.Context) domain.ViewMode {
	sess, err := session.Get(viewSessionName, c)
	if err != nil {
		return domain.ModeSignIn
	}
	if signUp, _ := sess.Values[signUpKey].(bool); signUp {
		return domain.ModeSignUp
	}
	return domain.ModeSignIn
}

// Toggle flips the stored mode and returns the new one.
func (m ModeStore) Toggle(c echo.Context) (domain.ViewMode, error) {
	next := m.Get(c).Toggle()
	sess, err := session.Get(viewSessionName, c)
	if err != nil {
		return m.Get(c), err
	}
	sess.Values[signUpKey] = !next.IsLogin()
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return next.Toggle(), err
	}
	return next, nil
}
