package gateway

import (
	"fmt"
	"net/url"
	"strings"
)

// PublicPrefix is stripped from every path before it is forwarded upstream
const PublicPrefix = "/api"

// Route maps a public path prefix to an upstream service
type Route struct {
	Name   string
	Prefix string
	Target *url.URL
}

// matches reports whether path falls under the route prefix, on a segment boundary
func (r Route) matches(path string) bool {
	return path == r.Prefix || strings.HasPrefix(path, r.Prefix+"/")
}

// upstreamPath rewrites a public path to the upstream path
func (r Route) upstreamPath(path string) string {
	rewritten := strings.TrimPrefix(path, PublicPrefix)
	if rewritten == "" {
		return "/"
	}
	return rewritten
}

// DefaultRoutes is the route table of the system. Identity owns accounts,
// booking owns the catalog, listings and bookings.
func DefaultRoutes(identityURL, bookingURL string) ([]Route, error) {
	identity, err := parseTarget(identityURL)
	if err != nil {
		return nil, err
	}
	booking, err := parseTarget(bookingURL)
	if err != nil {
		return nil, err
	}

	return []Route{
		{Name: "auth", Prefix: "/api/auth", Target: identity},
		{Name: "users", Prefix: "/api/users", Target: identity},
		{Name: "services", Prefix: "/api/services", Target: booking},
		{Name: "helpers", Prefix: "/api/helpers", Target: booking},
		{Name: "listings", Prefix: "/api/listings", Target: booking},
		{Name: "bookings", Prefix: "/api/bookings", Target: booking},
	}, nil
}

func parseTarget(raw string) (*url.URL, error) {
	target, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream url %q: %w", raw, err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid upstream url %q: scheme and host are required", raw)
	}
	return target, nil
}

// lookup returns the first route matching path
func lookup(routes []Route, path string) (Route, bool) {
	for _, route := range routes {
		if route.matches(path) {
			return route, true
		}
	}
	return Route{}, false
}
