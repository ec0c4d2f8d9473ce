package ui

import (
	"github.com/nfrund/portcullis/internal/domain"
	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	h "maragu.dev/gomponents/html"
)

// Routes the form talks to.
const (
	SubmitPath = "/auth/submit"
	ModePath   = "/auth/mode"
	CardID     = "auth-card"
)

// FederatedPath is where a social button sends the visitor.
func FederatedPath(kind domain.ProviderKind) string {
	return "/auth/federated/" + string(kind)
}

// AuthFormProps is what AuthForm needs to render.
type AuthFormProps struct {
	Mode    domain.ViewMode
	Loading bool
}

type copyText struct {
	heading, subheading, submit, prompt, toggle string
}

var formCopy = map[bool]copyText{
	true: {
		heading:    "Welcome back!",
		subheading: "Sign in to continue your journey",
		submit:     "Sign In",
		prompt:     "Don't have an account? ",
		toggle:     "Sign up",
	},
	false: {
		heading:    "Join us today",
		subheading: "Start your amazing journey with us",
		submit:     "Create Account",
		prompt:     "Already have an account? ",
		toggle:     "Sign in",
	},
}

// AuthForm renders the card holding the credential form, the social
// buttons and the mode toggle. The name field only exists in sign-up mode.
func AuthForm(p AuthFormProps) g.Node {
	isLogin := p.Mode.IsLogin()
	text := formCopy[isLogin]

	submitLabel := text.submit
	if p.Loading {
		submitLabel = "Processing..."
	}

	return h.Div(
		h.ID(CardID),
		h.Class("auth-container flex items-center justify-center p-4"),
		h.Div(
			h.Class("glass-card w-full max-w-md p-8 space-y-8"),
			h.Div(
				h.Class("text-center"),
				h.H1(h.Class("text-4xl font-bold text-white mb-2"), g.Text(text.heading)),
				h.P(h.Class("text-white text-opacity-90"), g.Text(text.subheading)),
			),

			h.Form(
				h.Method("post"),
				h.Action(SubmitPath),
				h.Class("space-y-6"),
				hx.Post(SubmitPath),
				hx.Target("#"+CardID),
				hx.Swap("outerHTML"),
				g.Attr("hx-disabled-elt", "find button[type='submit']"),

				g.If(!isLogin, InputField(userIcon(),
					h.Type("text"), h.Name("name"), h.Placeholder("Full Name"), h.Required(),
				)),
				InputField(mailIcon(),
					h.Type("email"), h.Name("email"), h.Placeholder("Email address"), h.Required(),
				),
				InputField(lockIcon(),
					h.Type("password"), h.Name("password"), h.Placeholder("Password"), h.Required(),
				),

				h.Button(
					h.Type("submit"),
					h.Class("primary-button"),
					g.If(p.Loading, h.Disabled()),
					h.Span(h.Class("submit-label"), g.Text(submitLabel)),
					h.Span(h.Class("submit-progress"), g.Text("Processing...")),
				),
			),

			h.Div(
				h.Class("relative"),
				h.Div(
					h.Class("absolute inset-0 flex items-center"),
					h.Div(h.Class("w-full border-t border-white border-opacity-20")),
				),
				h.Div(
					h.Class("relative flex justify-center text-sm"),
					h.Span(h.Class("px-2 text-white bg-transparent"), g.Text("Or continue with")),
				),
			),

			h.Div(
				h.Class("grid grid-cols-2 gap-4"),
				g.Map(domain.ProviderKinds, func(kind domain.ProviderKind) g.Node {
					return SocialButton(kind.Label(), providerIcon(string(kind)), h.Href(FederatedPath(kind)))
				}),
			),

			h.P(
				h.Class("text-center text-white text-opacity-90"),
				g.Text(text.prompt),
				h.Button(
					h.Type("button"),
					h.Class("font-medium text-white hover:text-opacity-75 transition-colors"),
					hx.Post(ModePath),
					hx.Target("#"+CardID),
					hx.Swap("outerHTML"),
					g.Text(text.toggle),
				),
			),
		),
	)
}
