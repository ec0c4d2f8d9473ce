package ui

import (
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

// SocialButton renders a labeled control. action carries whatever makes
// it do something: an href, htmx attributes, an onclick.
func SocialButton(label string, icon g.Node, action ...g.Node) g.Node {
	return h.A(
		h.Role("button"),
		h.Class("social-button bg-white bg-opacity-90 hover:bg-opacity-100"),
		g.Group(action),
		h.Span(h.Class("mr-2"), icon),
		h.Span(h.Class("text-gray-800"), g.Text(label)),
	)
}
