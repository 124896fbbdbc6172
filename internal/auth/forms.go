package auth

import (
	"github.com/go-playground/validator/v10"
)

// Fields are raw form values keyed by input name.
type Fields map[string]string

func (f Fields) clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

type SignInForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type SignUpForm struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
}

type ForgotPasswordForm struct {
	Email string `validate:"required,email"`
}

type ResetPasswordForm struct {
	Token    string `validate:"required"`
	Password string `validate:"required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Form builds the typed form of view from raw fields.
func Form(view View, f Fields) any {
	switch view {
	case ViewSignUp:
		return &SignUpForm{
			FirstName: f["first_name"],
			LastName:  f["last_name"],
			Email:     f["email"],
			Password:  f["password"],
		}
	case ViewForgotPassword:
		return &ForgotPasswordForm{Email: f["email"]}
	case ViewResetPassword:
		return &ResetPasswordForm{Token: f["token"], Password: f["password"]}
	default:
		return &SignInForm{Email: f["email"], Password: f["password"]}
	}
}

// Validate runs the local checks that gate submitting view.
func Validate(view View, f Fields) error {
	return validate.Struct(Form(view, f))
}
