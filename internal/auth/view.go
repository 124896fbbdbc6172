package auth

import "github.com/pkg/errors"

// View is the form the authentication widget currently shows.
type View string

const (
	ViewSignIn         View = "sign-in"
	ViewSignUp         View = "sign-up"
	ViewForgotPassword View = "forgot-password"
	ViewResetPassword  View = "reset-password"
)

var Views = []View{ViewSignIn, ViewSignUp, ViewForgotPassword, ViewResetPassword}

// ParseView accepts the wire names above. An empty string means sign-in.
func ParseView(s string) (View, error) {
	if s == "" {
		return ViewSignIn, nil
	}
	for _, v := range Views {
		if string(v) == s {
			return v, nil
		}
	}
	return "", errors.Wrap(ErrUnknownView, s)
}

// IsTab reports whether v is reachable from the tab rail.
func (v View) IsTab() bool {
	return v == ViewSignIn || v == ViewSignUp
}

func (v View) String() string {
	return string(v)
}
