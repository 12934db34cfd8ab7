// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ericfisherdev/classfeed/internal/domain/model"
	"github.com/ericfisherdev/classfeed/internal/domain/port/driven"
)

// TokenSecretName is the fixed secret store key holding the bearer token.
const TokenSecretName = "token"

// AuthError is returned by SignIn when the credentials could not be turned
// into a session. Message is suitable for display.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sign in: %s: %v", e.Message, e.Err)
	}
	return "sign in: " + e.Message
}

func (e *AuthError) Unwrap() error { return e.Err }

// SessionService owns the single authenticated session of the process. The
// in-memory credential is authoritative; the secret and profile stores are
// written only by SignIn and SignOut and read back by Restore.
type SessionService struct {
	auth     driven.Authenticator
	secrets  driven.SecretStore
	profiles driven.ProfileStore

	mu        sync.RWMutex
	cred      *model.Credential
	signedOut bool // set by SignOut; stops Token falling back to the store
}

// NewSessionService creates a logged-out SessionService.
func NewSessionService(auth driven.Authenticator, secrets driven.SecretStore, profiles driven.ProfileStore) *SessionService {
	return &SessionService{
		auth:     auth,
		secrets:  secrets,
		profiles: profiles,
	}
}

// SignIn authenticates against the server and replaces the current session.
// On any failure the in-memory and persisted state are left untouched.
func (s *SessionService) SignIn(ctx context.Context, email, password string) (*model.Credential, error) {
	cred, err := s.auth.SignIn(ctx, email, password)
	if err != nil {
		return nil, newAuthError(err)
	}
	if cred == nil || cred.Token == "" {
		return nil, &AuthError{Message: "no token in response"}
	}

	if err := s.secrets.Set(ctx, TokenSecretName, cred.Token); err != nil {
		if !errors.Is(err, driven.ErrEncryptionKeyNotSet) {
			return nil, fmt.Errorf("persist token: %w", err)
		}
		slog.Warn("token not persisted; session will not survive restart", "error", err)
	}
	if err := s.profiles.Save(ctx, cred.User); err != nil {
		slog.Warn("failed to persist profile", "error", err)
	}

	s.mu.Lock()
	s.cred = &model.Credential{Token: cred.Token, User: cred.User}
	s.signedOut = false
	s.mu.Unlock()

	slog.Info("signed in", "user_id", cred.User.ID)

	out := *cred
	return &out, nil
}

// newAuthError surfaces the server's message verbatim when it sent one and a
// generic network message otherwise.
func newAuthError(err error) *AuthError {
	var apiErr *driven.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return &AuthError{Message: apiErr.Message, Err: err}
	}
	return &AuthError{Message: "network error", Err: err}
}

// SignOut drops the in-memory credential and removes the persisted token and
// profile. Signing out while logged out is a no-op. The process is signed out
// even when the store cannot be cleared; the token left behind is never sent.
func (s *SessionService) SignOut(ctx context.Context) error {
	s.mu.Lock()
	s.cred = nil
	s.signedOut = true
	s.mu.Unlock()

	if err := s.secrets.Delete(ctx, TokenSecretName); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	if err := s.profiles.Clear(ctx); err != nil {
		return fmt.Errorf("clear profile: %w", err)
	}
	return nil
}

// Current returns a copy of the in-memory credential.
func (s *SessionService) Current() (*model.Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cred == nil {
		return nil, false
	}
	out := *s.cred
	return &out, true
}

// UserID returns the signed-in user's ID, or "" when logged out.
func (s *SessionService) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cred == nil {
		return ""
	}
	return s.cred.User.ID
}

// Restore loads a persisted session into memory. A missing token leaves the
// session logged out.
func (s *SessionService) Restore(ctx context.Context) error {
	token, err := s.secrets.Get(ctx, TokenSecretName)
	if err != nil {
		if errors.Is(err, driven.ErrEncryptionKeyNotSet) {
			return nil
		}
		return fmt.Errorf("read token: %w", err)
	}
	if token == "" {
		return nil
	}

	user, err := s.profiles.Get(ctx)
	if err != nil {
		return fmt.Errorf("read profile: %w", err)
	}

	cred := &model.Credential{Token: token}
	if user != nil {
		cred.User = *user
	} else {
		slog.Warn("restored token has no stored profile")
	}

	s.mu.Lock()
	s.cred = cred
	s.signedOut = false
	s.mu.Unlock()

	slog.Debug("session restored", "user_id", cred.User.ID)
	return nil
}

// Token implements driven.TokenSource. It falls back to the persisted token
// when nothing is held in memory, without caching the result. After SignOut
// there is no fallback.
func (s *SessionService) Token(ctx context.Context) (string, error) {
	s.mu.RLock()
	cred, signedOut := s.cred, s.signedOut
	s.mu.RUnlock()
	if cred != nil {
		return cred.Token, nil
	}
	if signedOut {
		return "", nil
	}

	token, err := s.secrets.Get(ctx, TokenSecretName)
	if err != nil {
		if errors.Is(err, driven.ErrEncryptionKeyNotSet) {
			return "", nil
		}
		return "", fmt.Errorf("read token: %w", err)
	}
	return token, nil
}
