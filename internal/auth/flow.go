package auth

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/yakoovad/productsite/internal/model"
	"github.com/yakoovad/productsite/pkg/logger"
	"go.uber.org/zap"
)

const (
	resetRequestedMessage = "Check your email for a link to reset your password."
	resetDoneMessage      = "Your password has been reset. Please sign in."
)

type MessageKind string

const (
	MessageNone  MessageKind = ""
	MessageError MessageKind = "error"
	MessageInfo  MessageKind = "info"
)

type Message struct {
	Kind MessageKind `json:"kind,omitempty"`
	Text string      `json:"text,omitempty"`
}

func (m Message) Empty() bool {
	return m.Text == ""
}

// OnSuccess runs after a sign-in or sign-up succeeds. Establishing the
// session is up to the callee.
type OnSuccess func(ctx context.Context, user *model.User)

// State is a snapshot of a flow for rendering.
type State struct {
	View    View    `json:"view"`
	Message Message `json:"message"`
	Fields  Fields  `json:"-"`
	// TabsVisible is false while the tab rail is faded out. The rail is
	// still rendered.
	TabsVisible    bool `json:"tabs_visible"`
	ShowForgotLink bool `json:"show_forgot_link"`
	Loading        bool `json:"loading"`
	CanSubmit      bool `json:"can_submit"`
}

// Flow is the authentication widget state machine. It is safe for
// concurrent use; at most one request is in flight at a time.
type Flow struct {
	svc       Service
	onSuccess OnSuccess

	mu      sync.Mutex
	view    View
	message Message
	// messageView is where message was produced. The two tabs share one
	// message slot; the other views show only their own.
	messageView View
	fields      map[View]Fields
	inFlight    bool
	gen         uint64
	cancel      context.CancelFunc
	closed      bool
}

func NewFlow(svc Service, initial View, onSuccess OnSuccess) *Flow {
	if initial == "" {
		initial = ViewSignIn
	}
	fields := make(map[View]Fields, len(Views))
	for _, v := range Views {
		fields[v] = Fields{}
	}
	return &Flow{
		svc:       svc,
		onSuccess: onSuccess,
		view:      initial,
		fields:    fields,
	}
}

// SetView switches forms. Values typed into each form are kept, the message
// is kept, and a pending request is abandoned.
func (f *Flow) SetView(v View) error {
	if _, err := ParseView(string(v)); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrClosed
	}
	if f.view != v {
		f.abandonLocked()
		f.view = v
	}
	return nil
}

// ForgotPassword follows the forgot-password link.
func (f *Flow) ForgotPassword() error {
	return f.SetView(ViewForgotPassword)
}

// BeginReset moves to the reset form carrying the token from the reset email.
func (f *Flow) BeginReset(token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrClosed
	}
	f.abandonLocked()
	f.view = ViewResetPassword
	f.fields[ViewResetPassword]["token"] = token
	return nil
}

// Update merges values into the current form. It is allowed while a request
// is in flight.
func (f *Flow) Update(values Fields) {
	f.mu.Lock()
	defer f.mu.Unlock()

	form := f.fields[f.view]
	for k, v := range values {
		form[k] = v
	}
}

func (f *Flow) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.canSubmitLocked()
}

func (f *Flow) canSubmitLocked() bool {
	return !f.closed && !f.inFlight && Validate(f.view, f.fields[f.view]) == nil
}

// Submit sends the current form to the service. Local rejections are
// returned as errors and never reach the network; remote outcomes land in
// the state. ErrStale means the result arrived after the flow moved on and
// was dropped.
func (f *Flow) Submit(ctx context.Context) error {
	f.mu.Lock()
	switch {
	case f.closed:
		f.mu.Unlock()
		return ErrClosed
	case f.inFlight:
		f.mu.Unlock()
		return ErrInFlight
	}
	view := f.view
	form := Form(view, f.fields[view])
	if err := validate.Struct(form); err != nil {
		f.mu.Unlock()
		return errors.Wrap(ErrInvalidForm, err.Error())
	}

	reqCtx, cancel := context.WithCancel(ctx)
	f.inFlight = true
	f.gen++
	gen := f.gen
	f.cancel = cancel
	f.mu.Unlock()

	user, err := f.call(reqCtx, view, form)
	cancel()

	f.mu.Lock()
	if f.gen != gen || f.closed || ctx.Err() != nil {
		if f.gen == gen {
			f.inFlight = false
			f.cancel = nil
		}
		f.mu.Unlock()
		logger.FromContext(ctx).Debug("stale auth result dropped", zap.String("view", view.String()))
		return ErrStale
	}
	f.inFlight = false
	f.cancel = nil

	if err != nil {
		f.message = Message{Kind: MessageError, Text: DisplayMessage(err)}
		f.messageView = view
		f.mu.Unlock()
		logger.FromContext(ctx).Info("auth request failed", zap.String("view", view.String()), zap.Error(err))
		return nil
	}

	switch view {
	case ViewForgotPassword:
		f.message = Message{Kind: MessageInfo, Text: resetRequestedMessage}
	case ViewResetPassword:
		f.fields[ViewResetPassword] = Fields{}
		f.view = ViewSignIn
		f.message = Message{Kind: MessageInfo, Text: resetDoneMessage}
	default:
		f.message = Message{}
	}
	f.messageView = f.view
	f.mu.Unlock()

	if user != nil && f.onSuccess != nil {
		f.onSuccess(ctx, user)
	}
	return nil
}

func (f *Flow) call(ctx context.Context, view View, form any) (*model.User, error) {
	switch form := form.(type) {
	case *SignUpForm:
		return signedIn(f.svc.SignUp(ctx, *form))
	case *ForgotPasswordForm:
		return nil, f.svc.RequestPasswordReset(ctx, form.Email)
	case *ResetPasswordForm:
		return nil, f.svc.ResetPassword(ctx, form.Token, form.Password)
	case *SignInForm:
		return signedIn(f.svc.Login(ctx, form.Email, form.Password))
	}
	return nil, errors.Wrap(ErrUnknownView, view.String())
}

// signedIn rejects a sign-in or sign-up that reported no error but no
// account either.
func signedIn(user *model.User, err error) (*model.User, error) {
	if err != nil {
		return nil, err
	}
	if user == nil || user.ID == "" {
		return nil, errors.Wrap(ErrUnavailable, "no user returned")
	}
	return user, nil
}

// Close abandons any pending request. Further calls fail with ErrClosed.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.abandonLocked()
	f.closed = true
}

func (f *Flow) abandonLocked() {
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.inFlight = false
	f.gen++
}

// Fields returns a copy of the values entered in view.
func (f *Flow) Fields(view View) Fields {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields[view].clone()
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	message := f.message
	if f.messageView != f.view && !(f.messageView.IsTab() && f.view.IsTab()) {
		message = Message{}
	}

	return State{
		View:           f.view,
		Message:        message,
		Fields:         f.fields[f.view].clone(),
		TabsVisible:    f.view.IsTab(),
		ShowForgotLink: f.view.IsTab(),
		Loading:        f.inFlight,
		CanSubmit:      f.canSubmitLocked(),
	}
}
