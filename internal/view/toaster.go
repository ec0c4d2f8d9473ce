package view

import (
	"context"
	"encoding/gob"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/portcullis/internal/domain"
)

const (
	toastSessionName = "toast-session"
	toastKey         = "toasts"
)

func init() {
	// Notifications travel through the cookie store as flash values.
	gob.Register(domain.Notification{})
}

// Toaster is the notification surface. One instance is shared by the whole
// application; each request writes to it through Sink.
type Toaster struct {
	sessionName string
}

// NewToaster creates the notification surface.
func NewToaster() *Toaster {
	return &Toaster{sessionName: toastSessionName}
}

// Sink binds the toaster to the visitor of c.
func (t *Toaster) Sink(c echo.Context) domain.Notifier {
	return &toastSink{toaster: t, c: c}
}

// Drain retrieves and clears pending notifications, oldest first.
func (t *Toaster) Drain(c echo.Context) []domain.Notification {
	sess, err := session.Get(t.sessionName, c)
	if err != nil {
		return nil
	}

	flashes := sess.Flashes(toastKey)
	if len(flashes) == 0 {
		return nil
	}
	// Flashes() clears the values; saving persists the clearing.
	_ = sess.Save(c.Request(), c.Response())

	notes := make([]domain.Notification, 0, len(flashes))
	for _, f := range flashes {
		if n, ok := f.(domain.Notification); ok {
			notes = append(notes, n)
		}
	}
	return notes
}

type toastSink struct {
	toaster *Toaster
	c       echo.Context
}

// Notify queues n for display on the next render.
func (s *toastSink) Notify(ctx context.Context, n domain.Notification) error {
	sess, err := session.Get(s.toaster.sessionName, s.c)
	if err != nil {
		return err
	}
	sess.AddFlash(n, toastKey)
	return sess.Save(s.c.Request(), s.c.Response())
}
