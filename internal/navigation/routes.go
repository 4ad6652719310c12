package navigation

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Route names the guard treats specially.
const (
	RouteLogin    = "Login"
	RouteRegister = "Register"
	RouteNotFound = "NotFound"
)

// Route is one navigable view and its access requirements.
// Path uses ":name" for parameter segments.
type Route struct {
	Name          string
	Path          string
	RequiresAuth  bool
	RequiresAdmin bool
}

// DefaultRoutes is the console's route table.
func DefaultRoutes() []Route {
	public := func(name, path string) Route { return Route{Name: name, Path: path} }
	authed := func(name, path string) Route { return Route{Name: name, Path: path, RequiresAuth: true} }
	admin := func(name, path string) Route {
		return Route{Name: name, Path: path, RequiresAuth: true, RequiresAdmin: true}
	}

	return []Route{
		public("Home", "/"),
		public(RouteLogin, "/login"),
		public(RouteRegister, "/register"),
		public("Announcements", "/announcements"),
		public("AnnouncementDetail", "/announcements/:id"),
		public("PendingDomains", "/pending-domains"),
		public("DomainHealth", "/domain-health"),
		public("AuthCallback", "/auth/callback"),
		public("PaymentSuccess", "/payment/success"),
		public("PaymentFailure", "/payment/failure"),
		public("PageView", "/pages/:slug"),

		authed("Dashboard", "/dashboard"),
		authed("Domains", "/domains"),
		authed("Profile", "/profile"),
		authed("DNSManagement", "/domains/:domainId/dns"),
		authed("Coupons", "/coupons"),
		authed("Invitations", "/invitations"),
		authed("Checkout", "/checkout"),
		authed("Orders", "/orders"),

		admin("Admin", "/admin"),
		admin("AdminCoupons", "/admin/coupons"),
		admin("AdminAnnouncements", "/admin/announcements"),
		admin("AdminRootDomains", "/admin/root-domains"),
		admin("AdminRootDomainDomains", "/admin/root-domains/:id/domains"),
		admin("AdminPages", "/admin/pages"),
		admin("AdminUsers", "/admin/users"),
		admin("AdminOrders", "/admin/orders"),
		admin("AdminSettings", "/admin/settings"),
		admin("AdminDomains", "/admin/domains"),
		admin("AdminPendingDomains", "/admin/pending-domains"),
		admin("AdminScanStatus", "/admin/scan-status"),
	}
}

// Match is a resolved navigation target.
type Match struct {
	Route  Route
	Path   string
	Params map[string]string
	Query  url.Values
}

// Resolver maps paths onto routes with chi's tree matcher.
type Resolver struct {
	mux       *chi.Mux
	byPattern map[string]Route
	byName    map[string]Route
}

// NewResolver indexes routes. Unknown paths resolve to a NotFound route with no requirements.
func NewResolver(routes []Route) (*Resolver, error) {
	r := &Resolver{
		mux:       chi.NewRouter(),
		byPattern: make(map[string]Route, len(routes)),
		byName:    make(map[string]Route, len(routes)),
	}
	noop := func(http.ResponseWriter, *http.Request) {}
	for _, route := range routes {
		if !strings.HasPrefix(route.Path, "/") {
			return nil, fmt.Errorf("route %s: path %q must begin with '/'", route.Name, route.Path)
		}
		pattern := chiPattern(route.Path)
		if _, dup := r.byPattern[pattern]; dup {
			return nil, fmt.Errorf("route %s: duplicate path %q", route.Name, route.Path)
		}
		r.byPattern[pattern] = route
		r.byName[route.Name] = route
		r.mux.Get(pattern, noop)
	}
	return r, nil
}

// Resolve matches target, which may carry a query string.
func (r *Resolver) Resolve(target string) Match {
	target, _, _ = strings.Cut(target, "#")
	path, rawQuery, _ := strings.Cut(target, "?")
	if path == "" {
		path = "/"
	}
	query, _ := url.ParseQuery(rawQuery)

	m := Match{Path: path, Query: query, Params: map[string]string{}}
	rctx := chi.NewRouteContext()
	if !r.mux.Match(rctx, http.MethodGet, path) {
		m.Route = Route{Name: RouteNotFound, Path: path}
		return m
	}
	route, ok := r.byPattern[rctx.RoutePattern()]
	if !ok {
		m.Route = Route{Name: RouteNotFound, Path: path}
		return m
	}
	m.Route = route
	for i, key := range rctx.URLParams.Keys {
		m.Params[key] = rctx.URLParams.Values[i]
	}
	return m
}

// Route looks up a route by name.
func (r *Resolver) Route(name string) (Route, bool) {
	route, ok := r.byName[name]
	return route, ok
}

// chiPattern converts "/a/:id/b" into "/a/{id}/b".
func chiPattern(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if strings.HasPrefix(seg, ":") && len(seg) > 1 {
			segments[i] = "{" + seg[1:] + "}"
		}
	}
	return strings.Join(segments, "/")
}
