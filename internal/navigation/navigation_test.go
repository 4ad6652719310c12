package navigation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/console-client/internal/events"
)

type fakeSession struct {
	authed     bool
	admin      bool
	hasProfile bool
	gen        uint64
	fetches    int
	onFetch    func(*fakeSession)
}

func (f *fakeSession) IsAuthenticated() bool { return f.authed }
func (f *fakeSession) IsAdmin() bool         { return f.hasProfile && f.admin }
func (f *fakeSession) HasProfile() bool      { return f.hasProfile }
func (f *fakeSession) Generation() uint64    { return f.gen }

func (f *fakeSession) FetchProfile(context.Context) error {
	f.fetches++
	if f.onFetch != nil {
		f.onFetch(f)
	}
	return nil
}

func (f *fakeSession) logout() {
	f.authed, f.admin, f.hasProfile = false, false, false
	f.gen++
}

type harness struct {
	router    *Router
	session   *fakeSession
	published []events.Event
}

func newHarness(t *testing.T, sess *fakeSession) *harness {
	t.Helper()
	h := &harness{session: sess}
	d := events.NewInMemoryDispatcher()
	record := func(_ context.Context, ev events.Event) error {
		h.published = append(h.published, ev)
		return nil
	}
	d.Subscribe(events.EventAccessDenied, record)
	d.Subscribe(events.EventRedirected, record)

	resolver, err := NewResolver(DefaultRoutes())
	require.NoError(t, err)
	h.router = NewRouter(resolver, NewGuard(sess, d, "/login", "/dashboard", nil), d, nil)
	return h
}

func (h *harness) count(t events.EventType) int {
	n := 0
	for _, ev := range h.published {
		if ev.Type == t {
			n++
		}
	}
	return n
}

func TestResolve(t *testing.T) {
	r, err := NewResolver(DefaultRoutes())
	require.NoError(t, err)

	m := r.Resolve("/domains/42/dns?tab=records#top")
	require.Equal(t, "DNSManagement", m.Route.Name)
	require.Equal(t, "42", m.Params["domainId"])
	require.Equal(t, "records", m.Query.Get("tab"))
	require.True(t, m.Route.RequiresAuth)

	m = r.Resolve("/admin/root-domains/7/domains")
	require.Equal(t, "AdminRootDomainDomains", m.Route.Name)
	require.True(t, m.Route.RequiresAdmin)

	m = r.Resolve("/auth/callback?token=abc")
	require.Equal(t, "AuthCallback", m.Route.Name)
	require.Equal(t, "abc", m.Query.Get("token"))

	require.Equal(t, "Home", r.Resolve("").Route.Name)

	m = r.Resolve("/nowhere")
	require.Equal(t, RouteNotFound, m.Route.Name)
	require.False(t, m.Route.RequiresAuth)
	require.False(t, m.Route.RequiresAdmin)

	route, ok := r.Route("Admin")
	require.True(t, ok)
	require.Equal(t, "/admin", route.Path)
}

func TestResolverRejectsBadRoutes(t *testing.T) {
	_, err := NewResolver([]Route{{Name: "x", Path: "x"}})
	require.Error(t, err)
	_, err = NewResolver([]Route{{Name: "a", Path: "/a/:id"}, {Name: "b", Path: "/a/:id"}})
	require.Error(t, err)
}

func TestUnauthenticatedProtectedRouteRedirectsToLogin(t *testing.T) {
	h := newHarness(t, &fakeSession{})

	loc, err := h.router.Navigate(context.Background(), "/dashboard")
	require.NoError(t, err)
	require.Equal(t, "/login", loc.Path)
	require.Equal(t, RouteLogin, loc.Route.Name)
	require.Equal(t, 1, h.count(events.EventRedirected))
}

func TestAuthenticatedLoginRedirectsToLanding(t *testing.T) {
	h := newHarness(t, &fakeSession{authed: true})

	for _, target := range []string{"/login", "/register"} {
		loc, err := h.router.Navigate(context.Background(), target)
		require.NoError(t, err)
		require.Equal(t, "/dashboard", loc.Path)
	}
}

func TestPublicRoutesAreAllowed(t *testing.T) {
	h := newHarness(t, &fakeSession{})
	for _, target := range []string{"/", "/login", "/announcements/3", "/pages/terms", "/nowhere"} {
		loc, err := h.router.Navigate(context.Background(), target)
		require.NoError(t, err)
		require.Equal(t, target, loc.Path)
	}
	require.Zero(t, h.session.fetches)
}

func TestAdminRouteFetchesProfileOnce(t *testing.T) {
	sess := &fakeSession{authed: true, onFetch: func(f *fakeSession) {
		f.hasProfile = true
		f.admin = true
	}}
	h := newHarness(t, sess)

	loc, err := h.router.Navigate(context.Background(), "/admin/users")
	require.NoError(t, err)
	require.Equal(t, "/admin/users", loc.Path)
	require.Equal(t, 1, sess.fetches)

	_, err = h.router.Navigate(context.Background(), "/admin/orders")
	require.NoError(t, err)
	require.Equal(t, 1, sess.fetches)
}

func TestNonAdminIsDeniedOnce(t *testing.T) {
	sess := &fakeSession{authed: true, hasProfile: true}
	h := newHarness(t, sess)

	loc, err := h.router.Navigate(context.Background(), "/admin")
	require.NoError(t, err)
	require.Equal(t, "/dashboard", loc.Path)
	require.Zero(t, sess.fetches)
	require.Equal(t, 1, h.count(events.EventAccessDenied))

	for _, ev := range h.published {
		if ev.Type == events.EventAccessDenied {
			require.Equal(t, AccessDeniedMessage, ev.Payload.(events.AccessDeniedPayload).Message)
		}
	}
}

func TestFailedFetchDeniesAdminRoute(t *testing.T) {
	sess := &fakeSession{authed: true}
	h := newHarness(t, sess)

	loc, err := h.router.Navigate(context.Background(), "/admin/settings")
	require.NoError(t, err)
	require.Equal(t, "/dashboard", loc.Path)
	require.Equal(t, 1, sess.fetches)
}

func TestForcedRedirectSupersedesGuard(t *testing.T) {
	sess := &fakeSession{authed: true}
	h := newHarness(t, sess)
	sess.onFetch = func(f *fakeSession) {
		// What the reaction policy does when the fetch comes back 401.
		f.logout()
		h.router.Redirect(context.Background(), "/login")
	}

	loc, err := h.router.Navigate(context.Background(), "/admin")
	require.NoError(t, err)
	require.Equal(t, "/login", loc.Path)
	require.Zero(t, h.count(events.EventAccessDenied))
	require.Equal(t, 1, sess.fetches)

	var reasons []string
	for _, ev := range h.published {
		if ev.Type == events.EventRedirected {
			reasons = append(reasons, ev.Payload.(events.RedirectedPayload).Reason)
		}
	}
	require.Equal(t, []string{ReasonForced}, reasons)
}

func TestSessionChangeReevaluatesTarget(t *testing.T) {
	sess := &fakeSession{authed: true}
	sess.onFetch = func(f *fakeSession) { f.logout() }
	h := newHarness(t, sess)

	loc, err := h.router.Navigate(context.Background(), "/admin")
	require.NoError(t, err)
	require.Equal(t, "/login", loc.Path)
}

func TestRedirectOutsideNavigation(t *testing.T) {
	h := newHarness(t, &fakeSession{authed: true})
	h.router.Redirect(context.Background(), "/domains")
	require.Equal(t, "/domains", h.router.Current().Path)
}

func TestRedirectLoopIsBounded(t *testing.T) {
	d := events.NewInMemoryDispatcher()
	resolver, err := NewResolver(DefaultRoutes())
	require.NoError(t, err)
	// A login path that itself requires auth never settles for a signed-out user.
	guard := NewGuard(&fakeSession{}, d, "/dashboard", "/dashboard", nil)
	router := NewRouter(resolver, guard, d, nil)

	_, err = router.Navigate(context.Background(), "/domains")
	require.ErrorIs(t, err, ErrRedirectLoop)
	require.Empty(t, router.Current().Path)
}
