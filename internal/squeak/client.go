// Package squeak talks to the Squeak community API that owns user accounts.
package squeak

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/yakoovad/productsite/internal/auth"
	"github.com/yakoovad/productsite/internal/model"
	"github.com/yakoovad/productsite/pkg/logger"
	"go.uber.org/zap"
)

const (
	loginPath          = "/api/login"
	registerPath       = "/api/register"
	forgotPasswordPath = "/api/password/forgot"
	resetPasswordPath  = "/api/password/reset"

	maxResponseSize = 1 << 20
)

var _ auth.Service = (*Client)(nil)

type Client struct {
	httpClient     *http.Client
	apiHost        string
	organizationID string
	resetRedirect  string
}

// NewClient builds a client for apiHost. resetRedirect is where the reset
// email links back to; the token is appended by the API.
func NewClient(apiHost, organizationID, resetRedirect string, timeout time.Duration) *Client {
	return &Client{
		httpClient:     &http.Client{Timeout: timeout},
		apiHost:        strings.TrimRight(apiHost, "/"),
		organizationID: organizationID,
		resetRedirect:  resetRedirect,
	}
}

type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*model.User, error) {
	var resp userResponse
	err := c.post(ctx, loginPath, map[string]string{
		"email":          email,
		"password":       password,
		"organizationId": c.organizationID,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.user()
}

func (c *Client) SignUp(ctx context.Context, form auth.SignUpForm) (*model.User, error) {
	var resp userResponse
	err := c.post(ctx, registerPath, map[string]string{
		"firstName":      form.FirstName,
		"lastName":       form.LastName,
		"email":          form.Email,
		"password":       form.Password,
		"organizationId": c.organizationID,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.user()
}

func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.post(ctx, forgotPasswordPath, map[string]string{
		"email":          email,
		"redirect":       c.resetRedirect,
		"organizationId": c.organizationID,
	}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	return c.post(ctx, resetPasswordPath, map[string]string{
		"token":    token,
		"password": password,
	}, nil)
}

// user converts the reply. A 2xx answer without an account id is treated as
// a server fault, not a sign-in.
func (r *userResponse) user() (*model.User, error) {
	if r.ID == "" {
		return nil, errors.Wrap(auth.ErrUnavailable, "empty user in response")
	}
	return &model.User{ID: r.ID, Email: r.Email, FirstName: r.FirstName, LastName: r.LastName}, nil
}

// post sends one request. 4xx answers become *auth.RejectionError, anything
// else that is not 2xx wraps auth.ErrUnavailable.
func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	l := logger.FromContext(ctx).With(zap.String("path", path))

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiHost+path, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		l.Warn("squeak request failed", zap.Error(err))
		return errors.Wrap(auth.ErrUnavailable, err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return errors.Wrap(auth.ErrUnavailable, err.Error())
	}

	l.Debug("squeak response", zap.Int("status", resp.StatusCode), zap.Duration("latency", time.Since(start)))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil || len(bytes.TrimSpace(raw)) == 0 {
			return nil
		}
		if err = json.Unmarshal(raw, out); err != nil {
			return errors.Wrap(auth.ErrUnavailable, "decode response: "+err.Error())
		}
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &auth.RejectionError{Message: rejectionMessage(resp.StatusCode, raw)}
	default:
		l.Error("squeak server error", zap.Int("status", resp.StatusCode), zap.ByteString("body", raw))
		return errors.Wrapf(auth.ErrUnavailable, "status %d", resp.StatusCode)
	}
}

func rejectionMessage(status int, raw []byte) string {
	var e errorResponse
	if json.Unmarshal(raw, &e) == nil {
		if e.Error != "" {
			return e.Error
		}
		if e.Message != "" {
			return e.Message
		}
	}
	if status == http.StatusUnauthorized {
		return "Incorrect email or password."
	}
	return "The request could not be completed."
}
