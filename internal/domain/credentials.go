package domain

// Credentials is what the visitor typed into the auth form. It lives only
// for the duration of one submit.
type Credentials struct {
	Email       string `form:"email" validate:"required"`
	Password    string `form:"password" validate:"required"`
	DisplayName string `form:"name"`
}

// ViewMode selects which variant of the auth form is shown.
type ViewMode int

const (
	ModeSignIn ViewMode = iota
	ModeSignUp
)

// IsLogin reports whether the form is in sign-in mode.
func (m ViewMode) IsLogin() bool {
	return m != ModeSignUp
}

// Toggle returns the opposite mode.
func (m ViewMode) Toggle() ViewMode {
	if m.IsLogin() {
		return ModeSignUp
	}
	return ModeSignIn
}

func (m ViewMode) String() string {
	if m.IsLogin() {
		return "sign-in"
	}
	return "sign-up"
}
