package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/yakoovad/productsite/internal/auth"
	"github.com/yakoovad/productsite/internal/model"
	"github.com/yakoovad/productsite/pkg/logger"
	"go.uber.org/zap"
)

const DefaultFlowTTL = 30 * time.Minute

type flowEntry struct {
	flow     *auth.Flow
	lastSeen time.Time

	mu   sync.Mutex
	user *model.User
}

func (e *flowEntry) setUser(_ context.Context, u *model.User) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.user = u
}

func (e *flowEntry) takeUser() *model.User {
	e.mu.Lock()
	defer e.mu.Unlock()
	u := e.user
	e.user = nil
	return u
}

// AuthResult is the state after an action. User is set once, right after
// a sign-in or sign-up succeeded.
type AuthResult struct {
	ID    string      `json:"id"`
	State auth.State  `json:"state"`
	User  *model.User `json:"user,omitempty"`
}

// AuthService keeps one authentication flow per visitor.
type AuthService struct {
	svc auth.Service
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	flows map[string]*flowEntry
}

func NewAuthService(svc auth.Service) *AuthService {
	return &AuthService{
		svc:   svc,
		ttl:   DefaultFlowTTL,
		now:   time.Now,
		flows: make(map[string]*flowEntry),
	}
}

func (s *AuthService) WithTTL(ttl time.Duration) *AuthService {
	s.ttl = ttl
	return s
}

// Start opens a flow on view. A non-empty resetToken opens the reset form.
func (s *AuthService) Start(ctx context.Context, view string, resetToken string) (*AuthResult, *Error) {
	l := logger.FromContext(ctx)

	v, err := auth.ParseView(view)
	if err != nil {
		l.Warn("unknown auth view", zap.String("view", view))
		return nil, NewError(ErrorCodeInvalidBody, err.Error())
	}

	entry := &flowEntry{lastSeen: s.now()}
	entry.flow = auth.NewFlow(s.svc, v, entry.setUser)
	if resetToken != "" {
		if err = entry.flow.BeginReset(resetToken); err != nil {
			return nil, NewError(ErrorCodeUnspecified, err.Error())
		}
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.flows[id] = entry
	s.mu.Unlock()

	l.Debug("auth flow started", zap.String("flow_id", id), zap.String("view", entry.flow.State().View.String()))
	return &AuthResult{ID: id, State: entry.flow.State()}, nil
}

// Resume returns the flow for id, or starts a fresh one when id is unknown
// or expired.
func (s *AuthService) Resume(ctx context.Context, id, view, resetToken string) (*AuthResult, *Error) {
	if entry, ok := s.get(id); ok && resetToken == "" {
		if view != "" {
			return s.SetView(ctx, id, view)
		}
		return &AuthResult{ID: id, State: entry.flow.State()}, nil
	}
	return s.Start(ctx, view, resetToken)
}

func (s *AuthService) SetView(ctx context.Context, id, view string) (*AuthResult, *Error) {
	entry, ok := s.get(id)
	if !ok {
		return nil, NewError(ErrorCodeNotFound, "auth flow not found")
	}

	v, err := auth.ParseView(view)
	if err != nil {
		return nil, NewError(ErrorCodeInvalidBody, err.Error())
	}

	if err = entry.flow.SetView(v); err != nil {
		return nil, s.flowError(ctx, err)
	}
	return &AuthResult{ID: id, State: entry.flow.State()}, nil
}

// Submit merges fields into the current form and submits it.
func (s *AuthService) Submit(ctx context.Context, id string, fields auth.Fields) (*AuthResult, *Error) {
	l := logger.FromContext(ctx).With(zap.String("flow_id", id))

	entry, ok := s.get(id)
	if !ok {
		return nil, NewError(ErrorCodeNotFound, "auth flow not found")
	}

	entry.flow.Update(fields)
	if err := entry.flow.Submit(ctx); err != nil {
		if errors.Is(err, auth.ErrInvalidForm) {
			// The visitor sees the disabled form again, not an error.
			l.Debug("submit rejected by validation", zap.Error(err))
			return &AuthResult{ID: id, State: entry.flow.State()}, nil
		}
		return nil, s.flowError(ctx, err)
	}

	res := &AuthResult{ID: id, State: entry.flow.State(), User: entry.takeUser()}
	if res.User != nil {
		l.Info("visitor authenticated", zap.String("user_id", res.User.ID))
	}
	return res, nil
}

func (s *AuthService) Close(ctx context.Context, id string) {
	s.mu.Lock()
	entry, ok := s.flows[id]
	delete(s.flows, id)
	s.mu.Unlock()

	if ok {
		entry.flow.Close()
		logger.FromContext(ctx).Debug("auth flow closed", zap.String("flow_id", id))
	}
}

// Sweep closes flows idle for longer than the ttl.
func (s *AuthService) Sweep(ctx context.Context) int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	var expired []*flowEntry
	for id, entry := range s.flows {
		if entry.lastSeen.Before(cutoff) {
			expired = append(expired, entry)
			delete(s.flows, id)
		}
	}
	s.mu.Unlock()

	for _, entry := range expired {
		entry.flow.Close()
	}
	if len(expired) > 0 {
		logger.FromContext(ctx).Debug("expired auth flows swept", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// RunSweeper sweeps every interval until ctx is done.
func (s *AuthService) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

func (s *AuthService) get(id string) (*flowEntry, bool) {
	if id == "" {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.flows[id]
	if !ok {
		return nil, false
	}
	if s.now().Sub(entry.lastSeen) > s.ttl {
		delete(s.flows, id)
		entry.flow.Close()
		return nil, false
	}
	entry.lastSeen = s.now()
	return entry, true
}

func (s *AuthService) flowError(ctx context.Context, err error) *Error {
	l := logger.FromContext(ctx)

	switch {
	case errors.Is(err, auth.ErrInFlight):
		return NewError(ErrorCodeSubmitBlocked, "a request is already in progress")
	case errors.Is(err, auth.ErrStale):
		return NewError(ErrorCodeSubmitBlocked, "the request was superseded")
	case errors.Is(err, auth.ErrClosed):
		return NewError(ErrorCodeNotFound, "auth flow not found")
	case errors.Is(err, auth.ErrUnknownView):
		return NewError(ErrorCodeInvalidBody, err.Error())
	}
	l.Error("auth flow failed", zap.Error(err))
	return NewError(ErrorCodeUnspecified, "authentication failed")
}
