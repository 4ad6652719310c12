package navigation

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/console-client/internal/events"
	"github.com/spec-kit/console-client/internal/observability"
)

// AccessDeniedMessage is published when a non-admin targets an admin route.
const AccessDeniedMessage = "Access denied: Admin privileges required"

// SessionView is what the guard reads from the session store.
type SessionView interface {
	IsAuthenticated() bool
	IsAdmin() bool
	HasProfile() bool
	FetchProfile(ctx context.Context) error
	Generation() uint64
}

// Decision is the guard's verdict for one target.
type Decision struct {
	Allow      bool
	RedirectTo string
	Reason     string
}

// Redirect reasons.
const (
	ReasonLoginRequired = "login_required"
	ReasonAlreadySigned = "already_authenticated"
	ReasonNotAdmin      = "admin_required"
	ReasonForced        = "forced"
)

// Guard decides whether a navigation may proceed.
type Guard struct {
	session     SessionView
	dispatcher  events.Dispatcher
	loginPath   string
	landingPath string
	logger      *zap.Logger
}

// NewGuard builds a guard redirecting to loginPath and landingPath.
func NewGuard(session SessionView, dispatcher events.Dispatcher, loginPath, landingPath string, logger *zap.Logger) *Guard {
	if loginPath == "" {
		loginPath = "/login"
	}
	if landingPath == "" {
		landingPath = "/dashboard"
	}
	return &Guard{
		session:     session,
		dispatcher:  dispatcher,
		loginPath:   loginPath,
		landingPath: landingPath,
		logger:      observability.OrNop(logger),
	}
}

// Decide evaluates the target route. It fetches the profile at most once,
// and only for admin routes when no profile is loaded.
func (g *Guard) Decide(ctx context.Context, to Match) Decision {
	route := to.Route
	authenticated := g.session.IsAuthenticated()

	if route.RequiresAuth && !authenticated {
		return Decision{RedirectTo: g.loginPath, Reason: ReasonLoginRequired}
	}
	if (route.Name == RouteLogin || route.Name == RouteRegister) && authenticated {
		return Decision{RedirectTo: g.landingPath, Reason: ReasonAlreadySigned}
	}
	if route.RequiresAdmin {
		if !g.session.HasProfile() {
			if err := g.session.FetchProfile(ctx); err != nil {
				g.logger.Warn("profile fetch failed during navigation", zap.String("path", to.Path), zap.Error(err))
			}
			if !g.session.IsAuthenticated() {
				return Decision{RedirectTo: g.loginPath, Reason: ReasonLoginRequired}
			}
		}
		if !g.session.IsAdmin() {
			payload := events.AccessDeniedPayload{Route: route.Name, Path: to.Path, Message: AccessDeniedMessage}
			if err := events.Publish(ctx, g.dispatcher, events.New(events.EventAccessDenied, payload)); err != nil {
				g.logger.Warn("event handler failed", zap.String("event", string(events.EventAccessDenied)), zap.Error(err))
			}
			return Decision{RedirectTo: g.landingPath, Reason: ReasonNotAdmin}
		}
	}
	return Decision{Allow: true}
}

func (g *Guard) generation() uint64 {
	return g.session.Generation()
}
