package policy

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/console-client/internal/events"
	"github.com/spec-kit/console-client/internal/observability"
	apperrors "github.com/spec-kit/console-client/pkg/util"
)

// Action is what the client does in response to a classified failure.
type Action string

const (
	ActionPassThrough     Action = "pass_through"
	ActionExpireSession   Action = "expire_session"
	ActionPromptAdminExit Action = "prompt_admin_exit"
)

// Choices offered by the admin exit prompt.
const (
	ChoiceLogout   = "logout"
	ChoiceContinue = "continue"
)

// AdminExitMessage is shown when a non-admin hits an admin endpoint.
const AdminExitMessage = "You need admin privileges to access this page. Would you like to logout and login with an admin account?"

var (
	ErrPromptNotFound = errors.New("prompt not found")
	ErrUnknownChoice  = errors.New("unknown prompt choice")
)

// Table maps failure kinds to actions. Kinds not listed pass through.
type Table map[apperrors.Kind]Action

// DefaultTable returns the standard reactions.
func DefaultTable() Table {
	return Table{
		apperrors.KindAuthorizationExpired: ActionExpireSession,
		apperrors.KindAuthorizationDenied:  ActionPromptAdminExit,
		apperrors.KindValidation:           ActionPassThrough,
		apperrors.KindNetworkUnavailable:   ActionPassThrough,
	}
}

// Session is the part of the session store the reactor ends.
type Session interface {
	EndSession(ctx context.Context, reason string) bool
}

// Navigator performs hard redirects.
type Navigator interface {
	Redirect(ctx context.Context, path string)
}

// Dependencies wires the reactor.
type Dependencies struct {
	Table       Table
	Session     Session
	Navigator   Navigator
	Dispatcher  events.Dispatcher
	LoginPath   string
	LandingPath string
	Logger      *zap.Logger
}

type pendingPrompt struct {
	path string
}

// Reactor applies the reaction table to failures reported by the gateway.
type Reactor struct {
	table       Table
	session     Session
	dispatcher  events.Dispatcher
	loginPath   string
	landingPath string
	logger      *zap.Logger

	mu        sync.Mutex
	navigator Navigator
	pending   map[string]pendingPrompt
}

// NewReactor builds a reactor. A nil table means DefaultTable.
func NewReactor(deps Dependencies) *Reactor {
	table := deps.Table
	if table == nil {
		table = DefaultTable()
	}
	loginPath := deps.LoginPath
	if loginPath == "" {
		loginPath = "/login"
	}
	landingPath := deps.LandingPath
	if landingPath == "" {
		landingPath = "/dashboard"
	}
	return &Reactor{
		table:       table,
		session:     deps.Session,
		navigator:   deps.Navigator,
		dispatcher:  deps.Dispatcher,
		loginPath:   loginPath,
		landingPath: landingPath,
		logger:      observability.OrNop(deps.Logger),
		pending:     map[string]pendingPrompt{},
	}
}

// UseNavigator sets the navigator once the router exists.
func (r *Reactor) UseNavigator(n Navigator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.navigator = n
}

// Decide returns the action for kind.
func (r *Reactor) Decide(kind apperrors.Kind) Action {
	if action, ok := r.table[kind]; ok {
		return action
	}
	return ActionPassThrough
}

// React implements gateway.Reactor.
func (r *Reactor) React(ctx context.Context, failure *apperrors.APIError) {
	if failure == nil {
		return
	}
	switch r.Decide(failure.Kind) {
	case ActionExpireSession:
		r.expireSession(ctx, failure)
	case ActionPromptAdminExit:
		r.promptAdminExit(ctx, failure)
	}
}

// expireSession always redirects; the expiry event is only raised when a session was held.
func (r *Reactor) expireSession(ctx context.Context, failure *apperrors.APIError) {
	r.logger.Warn("authorization expired", zap.String("path", failure.Path), zap.String("method", failure.Method))
	if r.session != nil && r.session.EndSession(ctx, events.LogoutReasonExpired) {
		r.publish(ctx, events.New(events.EventSessionExpired, events.SessionExpiredPayload{Path: failure.Path}))
	}
	r.redirect(ctx, r.loginPath)
}

// promptAdminExit raises at most one outstanding prompt at a time.
func (r *Reactor) promptAdminExit(ctx context.Context, failure *apperrors.APIError) {
	r.mu.Lock()
	if len(r.pending) > 0 {
		r.mu.Unlock()
		r.logger.Info("admin prompt already pending, not raising another", zap.String("path", failure.Path))
		return
	}
	id := uuid.NewString()
	r.pending[id] = pendingPrompt{path: failure.Path}
	r.mu.Unlock()

	r.logger.Warn("admin access denied", zap.String("path", failure.Path), zap.String("prompt_id", id))
	r.publish(ctx, events.New(events.EventAdminPrompt, events.AdminPromptPayload{
		PromptID: id,
		Path:     failure.Path,
		Message:  AdminExitMessage,
		Choices:  []string{ChoiceLogout, ChoiceContinue},
	}))
}

// ResolvePrompt applies the user's answer to an admin exit prompt.
func (r *Reactor) ResolvePrompt(ctx context.Context, id, choice string) error {
	if choice != ChoiceLogout && choice != ChoiceContinue {
		return fmt.Errorf("%w: %q", ErrUnknownChoice, choice)
	}

	r.mu.Lock()
	prompt, ok := r.pending[id]
	if ok {
		delete(r.pending, id)
	}
	r.mu.Unlock()
	if !ok {
		return ErrPromptNotFound
	}

	r.logger.Info("admin prompt resolved", zap.String("prompt_id", id), zap.String("choice", choice), zap.String("path", prompt.path))
	if choice == ChoiceLogout {
		if r.session != nil {
			r.session.EndSession(ctx, events.LogoutReasonPrompt)
		}
		r.redirect(ctx, r.loginPath)
		return nil
	}
	r.redirect(ctx, r.landingPath)
	return nil
}

// PendingPrompts lists unresolved prompt ids.
func (r *Reactor) PendingPrompts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.pending))
	for id := range r.pending {
		ids = append(ids, id)
	}
	return ids
}

func (r *Reactor) redirect(ctx context.Context, path string) {
	r.mu.Lock()
	nav := r.navigator
	r.mu.Unlock()
	if nav == nil {
		return
	}
	nav.Redirect(ctx, path)
}

func (r *Reactor) publish(ctx context.Context, ev events.Event) {
	if err := events.Publish(ctx, r.dispatcher, ev); err != nil {
		r.logger.Warn("event handler failed", zap.String("event", string(ev.Type)), zap.Error(err))
	}
}
