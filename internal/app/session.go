package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type AuthFailure int

const (
	InvalidCredentials AuthFailure = iota
	LoginUnavailable
	InvalidLoginInput
)

type AuthError struct {
	Reason  AuthFailure
	Message string
}

func (e *AuthError) Error() string { return e.Message }

type RegistrationFailure int

const (
	AlreadyExists RegistrationFailure = iota
	RegistrationUnavailable
	InvalidRegistrationInput
)

type RegistrationError struct {
	Reason  RegistrationFailure
	Message string
}

func (e *RegistrationError) Error() string { return e.Message }

var validate = validator.New()

type loginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type registerInput struct {
	Username string `validate:"required,min=3,max=32,alphanum"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

// SessionStore owns the authentication token and the derived authenticated
// flag. It is the only component allowed to write the token file. Route
// decisions must wait until Initialize has run; Initialized reports that.
type SessionStore struct {
	mu          sync.Mutex
	file        *TokenFile
	api         *APIClient
	log         *zap.Logger
	token       string
	initialized bool
}

func NewSessionStore(file *TokenFile, api *APIClient, log *zap.Logger) *SessionStore {
	return &SessionStore{file: file, api: api, log: log}
}

// Initialize reads the persisted token. Storage errors are treated as "no
// token": the user simply has to log in again.
func (s *SessionStore) Initialize() {
	token, err := s.file.Load()
	if err != nil {
		s.log.Warn("failed to read persisted token, treating as logged out", zap.Error(err))
		token = ""
	}

	s.mu.Lock()
	s.token = token
	s.initialized = true
	s.mu.Unlock()
}

func (s *SessionStore) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

func (s *SessionStore) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != ""
}

// Token returns the current session token, or "" when logged out. The token
// is opaque; nothing in this program ever parses it.
func (s *SessionStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Login exchanges credentials for a token and persists it. A failed login
// leaves no token behind, including any stale one from a previous session.
func (s *SessionStore) Login(ctx context.Context, email, password string) error {
	if err := validate.Struct(loginInput{Email: email, Password: password}); err != nil {
		return &AuthError{Reason: InvalidLoginInput, Message: "enter a valid email and password"}
	}

	token, err := s.api.LoginUser(ctx, email, password)
	if err != nil {
		s.clear()
		if apiErr, ok := AsAPIError(err); ok && apiErr.Kind == ErrAuthRejected {
			s.log.Info("login rejected", zap.String("email", email))
			return &AuthError{Reason: InvalidCredentials, Message: "invalid email or password"}
		}
		s.log.Warn("login unavailable", zap.Error(err))
		return &AuthError{Reason: LoginUnavailable, Message: "login failed, please try again"}
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	if err := s.file.Save(token); err != nil {
		// The session still works for this process; it just won't survive a
		// restart.
		s.log.Warn("failed to persist token", zap.Error(err))
	}
	s.log.Info("login succeeded", zap.String("email", email))
	return nil
}

// Register creates an account. It does not authenticate the caller; the user
// logs in afterwards.
func (s *SessionStore) Register(ctx context.Context, username, email, password string) error {
	if err := validate.Struct(registerInput{Username: username, Email: email, Password: password}); err != nil {
		return &RegistrationError{
			Reason:  InvalidRegistrationInput,
			Message: "username must be alphanumeric (3-32 chars), email valid, password at least 8 chars",
		}
	}

	if err := s.api.RegisterUser(ctx, username, email, password); err != nil {
		if apiErr, ok := AsAPIError(err); ok && apiErr.Kind == ErrConflict {
			return &RegistrationError{Reason: AlreadyExists, Message: "email or username already registered"}
		}
		s.log.Warn("registration unavailable", zap.Error(err))
		return &RegistrationError{Reason: RegistrationUnavailable, Message: "registration failed, please try again"}
	}
	s.log.Info("registration succeeded", zap.String("username", username))
	return nil
}

// Logout clears the session synchronously and never touches the network.
func (s *SessionStore) Logout() {
	s.clear()
	s.log.Info("logged out")
}

// HandleAuthRejected is the gateway's 401 hook: the server no longer accepts
// the token, so drop it everywhere.
func (s *SessionStore) HandleAuthRejected() {
	s.clear()
	s.log.Info("session cleared after auth rejection")
}

func (s *SessionStore) clear() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	if err := s.file.Clear(); err != nil {
		s.log.Warn("failed to clear persisted token", zap.Error(err))
	}
}

// UserMessage renders any session/registry/query error for inline display.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	switch e := err.(type) {
	case *AuthError:
		return e.Message
	case *RegistrationError:
		return e.Message
	case *APIError:
		return e.Message
	default:
		return fmt.Sprintf("%v", err)
	}
}
