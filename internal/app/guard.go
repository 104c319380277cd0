package app

// Route names the two destinations navigation can resolve to.
type Route string

const (
	RouteHome  Route = "home"
	RouteLogin Route = "login"
)

// SessionState is the read-only slice of the session store the guard needs.
type SessionState interface {
	Initialized() bool
	IsAuthenticated() bool
}

// Guard gates navigation. Both predicates are pure reads of session state and
// must not be consulted before the store finished initializing; Resolve
// reports that case explicitly so callers can hold rendering.
type Guard struct {
	session SessionState
}

func NewGuard(session SessionState) Guard {
	return Guard{session: session}
}

func (g Guard) CanEnterProtected() bool {
	return g.session.IsAuthenticated()
}

func (g Guard) CanEnterPublic() bool {
	return !g.session.IsAuthenticated()
}

// Resolve picks the route for the current session state. ok is false while
// the store is still initializing; no decision may be made then.
func (g Guard) Resolve() (route Route, ok bool) {
	if !g.session.Initialized() {
		return "", false
	}
	if g.CanEnterProtected() {
		return RouteHome, true
	}
	return RouteLogin, true
}
