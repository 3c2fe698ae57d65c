package viewmodels

const (
	LoginModeSignIn = "signin"
	LoginModeSignUp = "signup"
)

type LoginViewData struct {
	CSRFToken    string
	Mode         string
	Email        string
	Name         string
	Next         string
	ErrorMessage string
	Message      string
	Toast        *ToastViewData
}

// IsSignUp reports whether the form renders the registration fields.
func (d LoginViewData) IsSignUp() bool {
	return d.Mode == LoginModeSignUp
}

// ModeLabel is the submit button label for the current mode.
func (d LoginViewData) ModeLabel() string {
	if d.IsSignUp() {
		return "Sign up"
	}
	return "Sign in"
}

// Action is the form target for the current mode.
func (d LoginViewData) Action() string {
	if d.IsSignUp() {
		return "/register"
	}
	return "/login"
}
