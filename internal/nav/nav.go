// Package nav carries the fire-and-forget navigation side effects of
// authentication transitions. The session manager calls Go and never
// inspects an outcome.
package nav

type Route string

const (
	// RouteHome is the authenticated area entry point.
	RouteHome Route = "/home"
	// RouteLanding is the unauthenticated landing screen.
	RouteLanding Route = "/welcome"
)

type Navigator interface {
	Go(route Route)
}

// Nop discards every navigation request.
type Nop struct{}

func (Nop) Go(Route) {}
