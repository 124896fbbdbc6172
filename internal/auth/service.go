package auth

import (
	"context"

	"github.com/yakoovad/productsite/internal/model"
)

// Service is the remote authentication backend. Every method issues exactly
// one request.
type Service interface {
	Login(ctx context.Context, email, password string) (*model.User, error)
	SignUp(ctx context.Context, form SignUpForm) (*model.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
}
