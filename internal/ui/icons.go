package ui

import (
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

// Icons are inline SVG paths in the lucide style.

func icon(paths ...string) g.Node {
	nodes := make([]g.Node, 0, len(paths))
	for _, d := range paths {
		nodes = append(nodes, g.El("path", g.Attr("d", d)))
	}
	return g.El("svg",
		g.Attr("xmlns", "http://www.w3.org/2000/svg"),
		g.Attr("viewBox", "0 0 24 24"),
		g.Attr("fill", "none"),
		g.Attr("stroke", "currentColor"),
		g.Attr("stroke-width", "2"),
		g.Attr("stroke-linecap", "round"),
		g.Attr("stroke-linejoin", "round"),
		h.Class("w-5 h-5"),
		g.Group(nodes),
	)
}

func userIcon() g.Node {
	return icon("M19 21v-2a4 4 0 0 0-4-4H9a4 4 0 0 0-4 4v2", "M12 3a4 4 0 1 0 0 8 4 4 0 0 0 0-8z")
}

func mailIcon() g.Node {
	return icon("M4 4h16c1.1 0 2 .9 2 2v12c0 1.1-.9 2-2 2H4c-1.1 0-2-.9-2-2V6c0-1.1.9-2 2-2z", "M22 6l-10 7L2 6")
}

func lockIcon() g.Node {
	return icon("M5 11h14v10H5z", "M7 11V7a5 5 0 0 1 10 0v4")
}

func githubIcon() g.Node {
	return icon("M15 22v-4a4.8 4.8 0 0 0-1-3.5c3 0 6-2 6-5.5.08-1.25-.27-2.48-1-3.5.28-1.15.28-2.35 0-3.5 0 0-1 0-3 1.5-2.64-.5-5.36-.5-8 0C6 2 5 2 5 2c-.3 1.15-.3 2.35 0 3.5A5.403 5.403 0 0 0 4 9c0 3.5 3 5.5 6 5.5-.39.49-.68 1.05-.85 1.65-.17.6-.22 1.23-.15 1.85v4", "M9 18c-4.51 2-5-2-7-2")
}

func googleIcon() g.Node {
	return h.Img(
		h.Src("https://www.gstatic.com/firebasejs/ui/2.0.0/images/auth/google.svg"),
		h.Alt("Google"),
		h.Class("w-5 h-5"),
	)
}

// providerIcon returns the icon shown on the social button of kind.
func providerIcon(kind string) g.Node {
	switch kind {
	case "google":
		return googleIcon()
	case "github":
		return githubIcon()
	default:
		return nil
	}
}
