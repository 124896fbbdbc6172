package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yakoovad/productsite/internal/model"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Login(ctx context.Context, email, password string) (*model.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockService) SignUp(ctx context.Context, form SignUpForm) (*model.User, error) {
	args := m.Called(ctx, form)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockService) RequestPasswordReset(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockService) ResetPassword(ctx context.Context, token, password string) error {
	args := m.Called(ctx, token, password)
	return args.Error(0)
}

type successRecorder struct {
	mu    sync.Mutex
	users []*model.User
}

func (r *successRecorder) record(_ context.Context, user *model.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, user)
}

func (r *successRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

var validSignIn = Fields{"email": "max@example.com", "password": "hunter2"}

func TestParseView(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    View
		expectedErr error
	}{
		{name: "success: empty means sign-in", input: "", expected: ViewSignIn},
		{name: "success: sign-up", input: "sign-up", expected: ViewSignUp},
		{name: "success: reset-password", input: "reset-password", expected: ViewResetPassword},
		{name: "failure: unknown view", input: "profile", expectedErr: ErrUnknownView},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseView(tt.input)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestFlow_ValidationGatesSubmit(t *testing.T) {
	tests := []struct {
		name     string
		view     View
		fields   Fields
		expected bool
	}{
		{name: "failure: sign-in without password", view: ViewSignIn, fields: Fields{"email": "max@example.com"}, expected: false},
		{name: "failure: sign-in with bad email", view: ViewSignIn, fields: Fields{"email": "max", "password": "x"}, expected: false},
		{name: "success: sign-in complete", view: ViewSignIn, fields: validSignIn, expected: true},
		{name: "failure: sign-up without first name", view: ViewSignUp, fields: Fields{"email": "max@example.com", "password": "x"}, expected: false},
		{name: "success: sign-up complete", view: ViewSignUp, fields: Fields{"first_name": "Max", "email": "max@example.com", "password": "x"}, expected: true},
		{name: "success: forgot-password needs only email", view: ViewForgotPassword, fields: Fields{"email": "max@example.com"}, expected: true},
		{name: "failure: reset-password without token", view: ViewResetPassword, fields: Fields{"password": "x"}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			f := NewFlow(svc, tt.view, nil)
			f.Update(tt.fields)

			assert.Equal(t, tt.expected, f.CanSubmit())
			assert.Equal(t, tt.expected, f.State().CanSubmit)

			if !tt.expected {
				err := f.Submit(context.Background())
				assert.ErrorIs(t, err, ErrInvalidForm)
				svc.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
				svc.AssertNotCalled(t, "SignUp", mock.Anything, mock.Anything)
				assert.True(t, f.State().Message.Empty())
			}
		})
	}
}

func TestFlow_RemoteRejection(t *testing.T) {
	svc := new(MockService)
	svc.On("Login", mock.Anything, "max@example.com", "hunter2").
		Return(nil, &RejectionError{Message: "Invalid email or password"}).Once()

	rec := &successRecorder{}
	f := NewFlow(svc, ViewSignIn, rec.record)
	f.Update(validSignIn)

	require.NoError(t, f.Submit(context.Background()))

	state := f.State()
	assert.Equal(t, ViewSignIn, state.View)
	assert.Equal(t, Message{Kind: MessageError, Text: "Invalid email or password"}, state.Message)
	assert.False(t, state.Loading)
	assert.True(t, state.CanSubmit)
	assert.Equal(t, 0, rec.count())
	svc.AssertExpectations(t)
}

func TestFlow_ServiceUnavailable(t *testing.T) {
	svc := new(MockService)
	svc.On("Login", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.Wrap(ErrUnavailable, "status 502")).Once()

	f := NewFlow(svc, ViewSignIn, nil)
	f.Update(validSignIn)

	require.NoError(t, f.Submit(context.Background()))
	assert.Equal(t, fallbackMessage, f.State().Message.Text)
}

func TestFlow_NoUserReturned(t *testing.T) {
	tests := []struct {
		name string
		user *model.User
	}{
		{name: "failure: nil user", user: nil},
		{name: "failure: user without id", user: &model.User{Email: "max@example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			if tt.user == nil {
				svc.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil).Once()
			} else {
				svc.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(tt.user, nil).Once()
			}

			rec := &successRecorder{}
			f := NewFlow(svc, ViewSignIn, rec.record)
			f.Update(validSignIn)

			require.NoError(t, f.Submit(context.Background()))

			state := f.State()
			assert.Equal(t, ViewSignIn, state.View)
			assert.Equal(t, Message{Kind: MessageError, Text: fallbackMessage}, state.Message)
			assert.Equal(t, 0, rec.count())
		})
	}
}

func TestFlow_SignInSuccess(t *testing.T) {
	user := &model.User{ID: "u1", Email: "max@example.com"}

	svc := new(MockService)
	svc.On("Login", mock.Anything, "max@example.com", "wrong").
		Return(nil, &RejectionError{Message: "Invalid email or password"}).Once()
	svc.On("Login", mock.Anything, "max@example.com", "hunter2").Return(user, nil).Once()

	rec := &successRecorder{}
	f := NewFlow(svc, ViewSignIn, rec.record)

	f.Update(Fields{"email": "max@example.com", "password": "wrong"})
	require.NoError(t, f.Submit(context.Background()))
	require.False(t, f.State().Message.Empty())

	f.Update(Fields{"password": "hunter2"})
	require.NoError(t, f.Submit(context.Background()))

	assert.True(t, f.State().Message.Empty())
	require.Equal(t, 1, rec.count())
	assert.Equal(t, user, rec.users[0])
	svc.AssertNumberOfCalls(t, "Login", 2)
}

func TestFlow_SignUpSuccess(t *testing.T) {
	user := &model.User{ID: "u2", Email: "new@example.com", FirstName: "New"}

	svc := new(MockService)
	svc.On("SignUp", mock.Anything, SignUpForm{FirstName: "New", Email: "new@example.com", Password: "pw"}).
		Return(user, nil).Once()

	rec := &successRecorder{}
	f := NewFlow(svc, ViewSignIn, rec.record)
	require.NoError(t, f.SetView(ViewSignUp))
	f.Update(Fields{"first_name": "New", "email": "new@example.com", "password": "pw"})

	require.NoError(t, f.Submit(context.Background()))
	assert.Equal(t, 1, rec.count())
	assert.Equal(t, ViewSignUp, f.State().View)
	svc.AssertExpectations(t)
}

func TestFlow_FieldsSurviveViewChanges(t *testing.T) {
	f := NewFlow(new(MockService), ViewSignIn, nil)
	f.Update(validSignIn)

	require.NoError(t, f.ForgotPassword())
	f.Update(Fields{"email": "other@example.com"})
	require.NoError(t, f.SetView(ViewSignIn))

	assert.Equal(t, validSignIn, f.Fields(ViewSignIn))
	assert.Equal(t, validSignIn, f.State().Fields)
	assert.Equal(t, Fields{"email": "other@example.com"}, f.Fields(ViewForgotPassword))
}

func TestFlow_MessagePersistsAcrossTabs(t *testing.T) {
	svc := new(MockService)
	svc.On("Login", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &RejectionError{Message: "Invalid email or password"}).Once()

	f := NewFlow(svc, ViewSignIn, nil)
	f.Update(validSignIn)
	require.NoError(t, f.Submit(context.Background()))

	require.NoError(t, f.SetView(ViewSignUp))
	assert.Equal(t, "Invalid email or password", f.State().Message.Text)
}

func TestFlow_StateChrome(t *testing.T) {
	tests := []struct {
		name         string
		view         View
		expectedTabs bool
	}{
		{name: "success: sign-in shows rail and link", view: ViewSignIn, expectedTabs: true},
		{name: "success: sign-up shows rail and link", view: ViewSignUp, expectedTabs: true},
		{name: "success: forgot-password hides both", view: ViewForgotPassword, expectedTabs: false},
		{name: "success: reset-password hides both", view: ViewResetPassword, expectedTabs: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := NewFlow(new(MockService), tt.view, nil).State()
			assert.Equal(t, tt.view, state.View)
			assert.Equal(t, tt.expectedTabs, state.TabsVisible)
			assert.Equal(t, tt.expectedTabs, state.ShowForgotLink)
		})
	}
}

func TestFlow_ForgotPassword(t *testing.T) {
	svc := new(MockService)
	svc.On("RequestPasswordReset", mock.Anything, "max@example.com").Return(nil).Once()

	rec := &successRecorder{}
	f := NewFlow(svc, ViewSignIn, rec.record)
	require.NoError(t, f.ForgotPassword())
	f.Update(Fields{"email": "max@example.com"})

	require.NoError(t, f.Submit(context.Background()))

	state := f.State()
	assert.Equal(t, ViewForgotPassword, state.View)
	assert.Equal(t, MessageInfo, state.Message.Kind)
	assert.Equal(t, 0, rec.count())
	svc.AssertExpectations(t)
}

func TestFlow_ResetPassword(t *testing.T) {
	svc := new(MockService)
	svc.On("ResetPassword", mock.Anything, "tok-1", "new-pass").Return(nil).Once()

	f := NewFlow(svc, ViewSignIn, nil)
	require.NoError(t, f.BeginReset("tok-1"))
	assert.False(t, f.CanSubmit())

	f.Update(Fields{"password": "new-pass"})
	require.NoError(t, f.Submit(context.Background()))

	state := f.State()
	assert.Equal(t, ViewSignIn, state.View)
	assert.Equal(t, Message{Kind: MessageInfo, Text: resetDoneMessage}, state.Message)
	assert.Empty(t, f.Fields(ViewResetPassword))
	svc.AssertExpectations(t)
}

func TestFlow_StaleResultDiscarded(t *testing.T) {
	started := make(chan struct{})

	svc := new(MockService)
	svc.On("Login", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			close(started)
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, &RejectionError{Message: "too late"}).Once()

	rec := &successRecorder{}
	f := NewFlow(svc, ViewSignIn, rec.record)
	f.Update(validSignIn)

	done := make(chan error, 1)
	go func() { done <- f.Submit(context.Background()) }()

	<-started
	assert.True(t, f.State().Loading)
	require.NoError(t, f.SetView(ViewSignUp))

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrStale)
	case <-time.After(2 * time.Second):
		t.Fatal("submit did not return after the view changed")
	}

	state := f.State()
	assert.Equal(t, ViewSignUp, state.View)
	assert.True(t, state.Message.Empty())
	assert.False(t, state.Loading)
	assert.Equal(t, 0, rec.count())
}

func TestFlow_DoubleSubmit(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	svc := new(MockService)
	svc.On("Login", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(&model.User{ID: "u1"}, nil).Once()

	rec := &successRecorder{}
	f := NewFlow(svc, ViewSignIn, rec.record)
	f.Update(validSignIn)

	done := make(chan error, 1)
	go func() { done <- f.Submit(context.Background()) }()
	<-started

	assert.False(t, f.CanSubmit())
	assert.ErrorIs(t, f.Submit(context.Background()), ErrInFlight)

	close(release)
	require.NoError(t, <-done)

	svc.AssertNumberOfCalls(t, "Login", 1)
	assert.Equal(t, 1, rec.count())
}

func TestFlow_Close(t *testing.T) {
	svc := new(MockService)
	f := NewFlow(svc, ViewSignIn, nil)
	f.Update(validSignIn)

	f.Close()

	assert.ErrorIs(t, f.Submit(context.Background()), ErrClosed)
	assert.ErrorIs(t, f.SetView(ViewSignUp), ErrClosed)
	assert.False(t, f.CanSubmit())
	svc.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
}

func TestDisplayMessage(t *testing.T) {
	assert.Equal(t, "Email taken", DisplayMessage(errors.Wrap(&RejectionError{Message: "Email taken"}, "sign up")))
	assert.Equal(t, fallbackMessage, DisplayMessage(&RejectionError{}))
	assert.Equal(t, fallbackMessage, DisplayMessage(ErrUnavailable))
}

func TestFlow_MessageSlotPerView(t *testing.T) {
	svc := new(MockService)
	svc.On("Login", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &RejectionError{Message: "Invalid email or password"}).Once()

	f := NewFlow(svc, ViewSignIn, nil)
	f.Update(validSignIn)
	require.NoError(t, f.Submit(context.Background()))

	require.NoError(t, f.ForgotPassword())
	assert.True(t, f.State().Message.Empty())

	require.NoError(t, f.SetView(ViewSignIn))
	assert.Equal(t, "Invalid email or password", f.State().Message.Text)
}
