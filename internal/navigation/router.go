package navigation

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/console-client/internal/events"
	"github.com/spec-kit/console-client/internal/observability"
)

// MaxRedirects bounds how many guard redirects one navigation follows.
const MaxRedirects = 10

const reasonSessionChanged = "session_changed"

// ErrRedirectLoop is returned when a navigation keeps being redirected.
var ErrRedirectLoop = errors.New("too many redirects")

// Location is the committed current view.
type Location struct {
	Path   string
	Route  Route
	Params map[string]string
	Query  url.Values
}

// Router runs navigations through the guard, one at a time.
type Router struct {
	resolver   *Resolver
	guard      *Guard
	dispatcher events.Dispatcher
	logger     *zap.Logger

	transition sync.Mutex

	mu       sync.Mutex
	current  Location
	inFlight bool
	forced   string
}

// NewRouter builds a router positioned nowhere until the first Navigate.
func NewRouter(resolver *Resolver, guard *Guard, dispatcher events.Dispatcher, logger *zap.Logger) *Router {
	return &Router{
		resolver:   resolver,
		guard:      guard,
		dispatcher: dispatcher,
		logger:     observability.OrNop(logger),
	}
}

// Navigate moves to target, following guard redirects. A redirect requested
// through Redirect while the guard runs replaces the guard's verdict, and a
// verdict reached while the session changed underneath it is re-evaluated.
func (r *Router) Navigate(ctx context.Context, target string) (Location, error) {
	r.transition.Lock()
	defer r.transition.Unlock()

	r.mu.Lock()
	r.inFlight = true
	r.forced = ""
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.inFlight = false
		r.mu.Unlock()
	}()

	for hop := 0; hop <= MaxRedirects; hop++ {
		gen := r.guard.generation()
		match := r.resolver.Resolve(target)
		decision := r.guard.Decide(ctx, match)
		changed := r.guard.generation() != gen

		var next, reason string
		r.mu.Lock()
		switch {
		case r.forced != "":
			next, reason = r.forced, ReasonForced
			r.forced = ""
		case changed:
			next, reason = target, reasonSessionChanged
		case !decision.Allow:
			next, reason = decision.RedirectTo, decision.Reason
		default:
			loc := Location{Path: match.Path, Route: match.Route, Params: match.Params, Query: match.Query}
			r.current = loc
			r.inFlight = false
			r.mu.Unlock()
			r.logger.Debug("navigated", zap.String("path", loc.Path), zap.String("route", loc.Route.Name))
			return loc, nil
		}
		r.mu.Unlock()

		if next != target {
			r.publishRedirect(ctx, target, next, reason)
		}
		target = next
	}

	r.logger.Error("navigation redirect loop", zap.String("last_target", target))
	return r.Current(), fmt.Errorf("navigate: %w (last target %s)", ErrRedirectLoop, target)
}

// Redirect performs a hard redirect. Called during a navigation, it takes
// effect once the running guard step returns.
func (r *Router) Redirect(ctx context.Context, path string) {
	r.mu.Lock()
	if r.inFlight {
		r.forced = path
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	if _, err := r.Navigate(ctx, path); err != nil {
		r.logger.Warn("redirect failed", zap.String("path", path), zap.Error(err))
	}
}

// Current returns the committed location.
func (r *Router) Current() Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func (r *Router) publishRedirect(ctx context.Context, from, to, reason string) {
	r.logger.Debug("redirect", zap.String("from", from), zap.String("to", to), zap.String("reason", reason))
	ev := events.New(events.EventRedirected, events.RedirectedPayload{From: from, To: to, Reason: reason})
	if err := events.Publish(ctx, r.dispatcher, ev); err != nil {
		r.logger.Warn("event handler failed", zap.String("event", string(ev.Type)), zap.Error(err))
	}
}
