package ui

import (
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

// InputField renders an input with a leading icon. attrs are passed to the
// <input> untouched.
func InputField(icon g.Node, attrs ...g.Node) g.Node {
	return h.Div(
		h.Class("relative"),
		h.Div(
			h.Class("absolute left-3 top-1/2 transform -translate-y-1/2 text-gray-600"),
			icon,
		),
		h.Input(
			g.Group(attrs),
			h.Class("input-field"),
		),
	)
}
