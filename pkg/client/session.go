package client

import (
	"context"
	"errors"
	"sync"
)

// ErrSessionClosed is returned once a session has been torn down.
var ErrSessionClosed = errors.New("auth session closed")

// RefreshFunc obtains a fresh token from the auth provider.
type RefreshFunc func(ctx context.Context) (string, error)

// AuthSession holds the caller's token and coalesces concurrent refreshes.
// It is created on login and torn down on logout or on a failed refresh.
// Callers inject one session per user; all client calls go through it.
type AuthSession struct {
	mu       sync.Mutex
	token    string
	closed   bool
	inflight *pendingRefresh

	refreshFn     RefreshFunc
	onAuthFailure func()
}

// pendingRefresh is the single in-flight refresh slot. Waiters block on done
// and then read the shared result.
type pendingRefresh struct {
	done  chan struct{}
	token string
	err   error
}

// NewAuthSession creates a session seeded with the login token.
// onAuthFailure may be nil; when set it fires once per failed refresh.
func NewAuthSession(token string, refreshFn RefreshFunc, onAuthFailure func()) *AuthSession {
	return &AuthSession{
		token:         token,
		refreshFn:     refreshFn,
		onAuthFailure: onAuthFailure,
	}
}

// GetToken returns the current token, or false when the session holds none.
func (s *AuthSession) GetToken() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.token == "" {
		return "", false
	}
	return s.token, true
}

// Refresh obtains a new token. At most one refresh is in flight at any time:
// the first caller starts it and every concurrent caller awaits that same
// result. A caller whose context expires stops waiting but does not cancel
// the shared refresh.
func (s *AuthSession) Refresh(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", ErrSessionClosed
	}
	if s.refreshFn == nil {
		s.mu.Unlock()
		return "", errors.New("auth session has no refresh function")
	}
	if p := s.inflight; p != nil {
		s.mu.Unlock()
		select {
		case <-p.done:
			return p.token, p.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	p := &pendingRefresh{done: make(chan struct{})}
	s.inflight = p
	s.mu.Unlock()

	token, err := s.refreshFn(ctx)

	s.mu.Lock()
	if err == nil {
		s.token = token
	} else {
		// A session that cannot refresh is dead.
		s.token = ""
		s.closed = true
	}
	s.inflight = nil
	p.token, p.err = token, err
	s.mu.Unlock()
	close(p.done)

	if err != nil && s.onAuthFailure != nil {
		s.onAuthFailure()
	}
	return token, err
}

// Close tears the session down, e.g. on logout. Subsequent calls fail with
// ErrSessionClosed.
func (s *AuthSession) Close() {
	s.mu.Lock()
	s.token = ""
	s.closed = true
	s.mu.Unlock()
}
