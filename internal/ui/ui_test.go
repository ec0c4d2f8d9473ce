package ui_test

import (
	"strings"
	"testing"

	"github.com/nfrund/portcullis/internal/domain"
	"github.com/nfrund/portcullis/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

func render(t *testing.T, n g.Node) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, n.Render(&b))
	return b.String()
}

func TestAuthFormFieldsFollowMode(t *testing.T) {
	mode := domain.ModeSignIn
	for i := 0; i < 4; i++ {
		html := render(t, ui.AuthForm(ui.AuthFormProps{Mode: mode}))

		assert.Equal(t, !mode.IsLogin(), strings.Contains(html, `name="name"`), "name field in %s", mode)
		assert.Contains(t, html, `name="email"`)
		assert.Contains(t, html, `name="password"`)

		mode = mode.Toggle()
	}
}

func TestAuthFormCopy(t *testing.T) {
	signIn := render(t, ui.AuthForm(ui.AuthFormProps{Mode: domain.ModeSignIn}))
	assert.Contains(t, signIn, "Welcome back!")
	assert.Contains(t, signIn, "Sign In")
	assert.Contains(t, signIn, "Don&#39;t have an account?")

	signUp := render(t, ui.AuthForm(ui.AuthFormProps{Mode: domain.ModeSignUp}))
	assert.Contains(t, signUp, "Join us today")
	assert.Contains(t, signUp, "Create Account")
	assert.Contains(t, signUp, "Already have an account?")
}

func TestAuthFormLoading(t *testing.T) {
	html := render(t, ui.AuthForm(ui.AuthFormProps{Mode: domain.ModeSignIn, Loading: true}))
	assert.Contains(t, html, `<span class="submit-label">Processing...</span>`)
	assert.Contains(t, html, "disabled")
}

func TestAuthFormSocialButtons(t *testing.T) {
	html := render(t, ui.AuthForm(ui.AuthFormProps{Mode: domain.ModeSignIn}))
	assert.Contains(t, html, `href="/auth/federated/google"`)
	assert.Contains(t, html, `href="/auth/federated/github"`)
	assert.Contains(t, html, "GitHub")
}

func TestInputFieldForwardsAttributes(t *testing.T) {
	html := render(t, ui.InputField(g.Text("*"), h.Type("email"), h.Name("email"), h.Required(), g.Attr("autocomplete", "username")))
	assert.Contains(t, html, `<input type="email" name="email" required autocomplete="username" class="input-field">`)
}

func TestToaster(t *testing.T) {
	notes := []domain.Notification{
		{Kind: domain.NotificationSuccess, Message: "Welcome back!", Icon: "👋", Style: domain.DarkToast},
		{Kind: domain.NotificationFailure, Message: "invalid-credential", Style: domain.DarkToast},
		{Kind: domain.NotificationFailure, Message: "access_denied"},
	}

	html := render(t, ui.Toaster(notes, true))
	assert.Contains(t, html, `id="toaster"`)
	assert.Contains(t, html, `hx-swap-oob="true"`)
	assert.Contains(t, html, "toast-success")
	assert.Contains(t, html, "toast-failure")
	assert.Contains(t, html, "invalid-credential")
	assert.Equal(t, 2, strings.Count(html, "background: #333;"))
	assert.Equal(t, 3, strings.Count(html, `role="status"`))
	assert.Equal(t, 2, strings.Count(html, `style="`), "unstyled toasts carry no inline style")
}

func TestAppRendersOneToasterAndOneForm(t *testing.T) {
	html := render(t, ui.App(ui.AppProps{Mode: domain.ModeSignUp}))
	assert.Equal(t, 1, strings.Count(html, `id="toaster"`))
	assert.Equal(t, 1, strings.Count(html, `id="auth-card"`))
	assert.Contains(t, html, "<title>Portcullis</title>")
	assert.Contains(t, html, `href="`+ui.StylesheetPath+`"`)
}
