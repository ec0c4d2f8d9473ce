package ui

import (
	"fmt"

	"github.com/nfrund/portcullis/internal/domain"
	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	h "maragu.dev/gomponents/html"
)

// ToasterID is the id of the notification stack.
const ToasterID = "toaster"

// Toaster renders the notification stack in the top-right corner. Toasts
// remove themselves through the toast-dismiss CSS animation. With oob set
// the stack is meant to replace the page's copy in an htmx response.
func Toaster(notes []domain.Notification, oob bool) g.Node {
	return h.Div(
		h.ID(ToasterID),
		h.Class("toaster fixed top-4 right-4 z-50 flex flex-col gap-2"),
		g.Attr("aria-live", "polite"),
		g.If(oob, hx.SwapOOB("true")),
		g.Map(notes, toast),
	)
}

func toast(n domain.Notification) g.Node {
	return h.Div(
		h.Class("toast toast-"+string(n.Kind)),
		h.Role("status"),
		g.If(n.Style != (domain.ToastStyle{}), h.Style(toastStyle(n.Style))),
		g.If(n.Icon != "", h.Span(h.Class("toast-icon mr-2"), g.Text(n.Icon))),
		h.Span(h.Class("toast-message"), g.Text(n.Message)),
	)
}

func toastStyle(s domain.ToastStyle) string {
	return fmt.Sprintf("border-radius: %s; background: %s; color: %s;", s.BorderRadius, s.Background, s.Color)
}
