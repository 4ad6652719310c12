package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/console-client/internal/api/dto"
	"github.com/spec-kit/console-client/internal/domain"
	"github.com/spec-kit/console-client/internal/events"
	"github.com/spec-kit/console-client/internal/observability"
	"github.com/spec-kit/console-client/internal/repository"
	apperrors "github.com/spec-kit/console-client/pkg/util"
)

const (
	loginPath    = "/api/auth/login"
	registerPath = "/api/auth/register"
	profilePath  = "/api/user/profile"

	loginFailed        = "Login failed"
	registrationFailed = "Registration failed"
)

// ErrNotAuthenticated is returned by operations that need a credential when none is held.
var ErrNotAuthenticated = errors.New("not authenticated")

// API is the slice of the request gateway the store talks to.
type API interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, in, out any) error
}

// AuthError carries the user-facing message of a failed login or registration.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Unwrap() error { return e.Err }

// Store is the single source of truth for the client's authentication state.
//
// Every mutation of credential and profile happens in one locked assignment
// and bumps the generation, so a profile fetched under an older generation is
// never installed. The lock is never held across network calls: a failing call
// can re-enter the store through the reaction policy.
type Store struct {
	api        API
	repo       repository.CredentialRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger

	mu            sync.RWMutex
	credential    string
	hasCredential bool
	profile       *domain.UserProfile
	generation    uint64
}

// NewStore builds an empty store. Call Hydrate to pick up a persisted credential.
func NewStore(api API, repo repository.CredentialRepository, dispatcher events.Dispatcher, logger *zap.Logger) *Store {
	if repo == nil {
		repo = repository.NewMemoryCredentialRepository()
	}
	return &Store{
		api:        api,
		repo:       repo,
		dispatcher: dispatcher,
		logger:     observability.OrNop(logger),
	}
}

// Hydrate loads the credential persisted by a previous run. The profile stays
// absent until fetched.
func (s *Store) Hydrate(ctx context.Context) error {
	credential, err := s.repo.Load(ctx)
	if errors.Is(err, repository.ErrNoCredential) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("hydrate session: %w", err)
	}

	s.mu.Lock()
	s.credential = credential
	s.hasCredential = true
	s.profile = nil
	s.generation++
	s.mu.Unlock()

	s.logger.Debug("session hydrated")
	return nil
}

// Login exchanges credentials for a session. On failure the state is left
// untouched and the returned *AuthError carries the server's message.
func (s *Store) Login(ctx context.Context, creds domain.Credentials) error {
	var resp dto.LoginResponse
	err := s.api.Post(ctx, loginPath, dto.UserLoginRequest{Email: creds.Email, Password: creds.Password}, &resp)
	if err != nil {
		return &AuthError{Message: apperrors.MessageOr(err, loginFailed), Err: err}
	}
	token := strings.TrimSpace(resp.Token)
	if token == "" {
		return &AuthError{Message: loginFailed, Err: errors.New("login response carried no token")}
	}

	profile := resp.User.ToDomain()
	s.mu.Lock()
	s.credential = token
	s.hasCredential = true
	s.profile = profile
	s.generation++
	s.mu.Unlock()

	s.persist(ctx, token)

	payload := events.LoggedInPayload{}
	if profile != nil {
		payload.UserID = profile.ID
		payload.IsAdmin = profile.IsAdmin
	}
	s.publish(ctx, events.New(events.EventLoggedIn, payload))
	s.logger.Info("logged in", zap.Int64("user_id", payload.UserID), zap.Bool("is_admin", payload.IsAdmin))
	return nil
}

// Register creates an account. It never changes the session; the server's
// acknowledgement message is returned.
func (s *Store) Register(ctx context.Context, reg domain.Registration) (string, error) {
	var resp dto.MessageResponse
	if err := s.api.Post(ctx, registerPath, dto.NewUserRegisterRequest(reg), &resp); err != nil {
		return "", &AuthError{Message: apperrors.MessageOr(err, registrationFailed), Err: err}
	}
	return resp.Message, nil
}

// FetchProfile refreshes the profile from the server.
//
// A result that arrives after the session changed underneath it is dropped.
// An expired credential ends the session and is not reported to the caller.
func (s *Store) FetchProfile(ctx context.Context) error {
	s.mu.RLock()
	has := s.hasCredential
	gen := s.generation
	s.mu.RUnlock()
	if !has {
		return ErrNotAuthenticated
	}

	var resp dto.UserProfile
	if err := s.api.Get(ctx, profilePath, &resp); err != nil {
		if apperrors.IsKind(err, apperrors.KindAuthorizationExpired) {
			s.EndSession(ctx, events.LogoutReasonExpired)
			return nil
		}
		return fmt.Errorf("fetch profile: %w", err)
	}

	profile := resp.ToDomain()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen || !s.hasCredential {
		s.logger.Debug("discarding stale profile", zap.Uint64("fetched_at", gen), zap.Uint64("current", s.generation))
		return nil
	}
	s.profile = profile
	return nil
}

// Logout ends the session at the user's request. Safe to call repeatedly.
func (s *Store) Logout(ctx context.Context) {
	s.EndSession(ctx, events.LogoutReasonUser)
}

// EndSession clears credential, profile and the persisted copy. It reports
// whether a session was actually held; only then is the logged out event published.
func (s *Store) EndSession(ctx context.Context, reason string) bool {
	s.mu.Lock()
	held := s.hasCredential || s.profile != nil
	s.credential = ""
	s.hasCredential = false
	s.profile = nil
	s.generation++
	s.mu.Unlock()

	if err := s.repo.Clear(ctx); err != nil {
		s.logger.Warn("failed to clear persisted credential", zap.Error(err))
	}
	if !held {
		return false
	}
	s.publish(ctx, events.New(events.EventLoggedOut, events.LoggedOutPayload{Reason: reason}))
	s.logger.Info("logged out", zap.String("reason", reason))
	return true
}

// AdoptCredential installs a credential handed over by an external sign-in
// flow and loads the matching profile.
func (s *Store) AdoptCredential(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apperrors.NewValidationError("missing token", 0, "")
	}

	s.mu.Lock()
	s.credential = token
	s.hasCredential = true
	s.profile = nil
	s.generation++
	s.mu.Unlock()

	s.persist(ctx, token)

	if err := s.FetchProfile(ctx); err != nil {
		return err
	}
	profile, ok := s.Profile()
	if !ok {
		return apperrors.NewStaleProfile(errors.New("credential was not accepted"))
	}
	s.publish(ctx, events.New(events.EventLoggedIn, events.LoggedInPayload{UserID: profile.ID, IsAdmin: profile.IsAdmin}))
	return nil
}

// ValidateAdmin reports whether the current session holds admin rights,
// fetching the profile first when it is not known yet.
func (s *Store) ValidateAdmin(ctx context.Context) bool {
	if !s.IsAuthenticated() {
		return false
	}
	if !s.HasProfile() {
		if err := s.FetchProfile(ctx); err != nil {
			s.logger.Warn("admin validation could not fetch profile", zap.Error(err))
			return false
		}
	}
	return s.IsAdmin()
}

// IsAuthenticated reports whether a credential is held.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasCredential
}

// IsAdmin reports whether the known profile carries admin rights.
func (s *Store) IsAdmin() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile != nil && s.profile.IsAdmin
}

// HasProfile reports whether a profile snapshot is loaded.
func (s *Store) HasProfile() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile != nil
}

// Profile returns a copy of the current profile.
func (s *Store) Profile() (domain.UserProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return domain.UserProfile{}, false
	}
	return *s.profile, true
}

// Credential implements gateway.CredentialSource.
func (s *Store) Credential() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.credential, s.hasCredential
}

// Generation changes every time the session is replaced or ended.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

func (s *Store) persist(ctx context.Context, token string) {
	if err := s.repo.Save(ctx, token); err != nil {
		s.logger.Warn("failed to persist credential", zap.Error(err))
	}
}

func (s *Store) publish(ctx context.Context, ev events.Event) {
	if err := events.Publish(ctx, s.dispatcher, ev); err != nil {
		s.logger.Warn("event handler failed", zap.String("event", string(ev.Type)), zap.Error(err))
	}
}
