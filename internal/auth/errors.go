package auth

import "github.com/pkg/errors"

var (
	ErrInvalidToken         = errors.New("invalid token")
	ErrInvalidSigningMethod = errors.New("invalid signing method")
	ErrEmptySubject         = errors.New("token subject is empty")
	ErrUnknownTokenType     = errors.New("unknown token type")

	ErrUnknownView = errors.New("unknown view")
	ErrInvalidForm = errors.New("form is incomplete")
	ErrInFlight    = errors.New("a request is already in flight")
	ErrClosed      = errors.New("flow is closed")
	ErrStale       = errors.New("result discarded")

	// ErrUnavailable marks transport failures and server errors of the
	// authentication service.
	ErrUnavailable = errors.New("authentication service unavailable")
)

const fallbackMessage = "Something went wrong. Please try again later."

// RejectionError is a refusal the user can act on, such as wrong
// credentials or an email that is already registered.
type RejectionError struct {
	Message string
}

func (e *RejectionError) Error() string {
	return e.Message
}

// DisplayMessage turns a service failure into the single line shown to the user.
func DisplayMessage(err error) string {
	var rejection *RejectionError
	if errors.As(err, &rejection) && rejection.Message != "" {
		return rejection.Message
	}
	return fallbackMessage
}
