package ui

import (
	"github.com/nfrund/portcullis/internal/domain"
	g "maragu.dev/gomponents"
	c "maragu.dev/gomponents/components"
	h "maragu.dev/gomponents/html"
)

// Page assets.
const (
	htmxURL        = "https://unpkg.com/htmx.org@2.0.4"
	tailwindURL    = "https://cdn.tailwindcss.com"
	StylesheetPath = "/static/app.css"
)

// AppProps is what App needs to render.
type AppProps struct {
	Title         string
	Mode          domain.ViewMode
	Notifications []domain.Notification
}

// App renders the whole page: one notification surface and one auth form.
func App(p AppProps) g.Node {
	title := p.Title
	if title == "" {
		title = "Portcullis"
	}
	return c.HTML5(c.HTML5Props{
		Title:    title,
		Language: "en",
		Head: []g.Node{
			h.Meta(h.Name("viewport"), h.Content("width=device-width, initial-scale=1")),
			h.Script(h.Src(htmxURL)),
			h.Script(h.Src(tailwindURL)),
			h.Link(h.Rel("stylesheet"), h.Href(StylesheetPath)),
		},
		Body: []g.Node{
			Toaster(p.Notifications, false),
			AuthForm(AuthFormProps{Mode: p.Mode}),
		},
	})
}
