// Package nav decides which top-level area of the app an identity may be
// in and redirects on auth transitions.
package nav

import (
	"sync"

	"github.com/isaac-const/upple/internal/models"
	"github.com/isaac-const/upple/internal/session"
)

type Area int

const (
	AreaGuest Area = iota
	AreaUser
	AreaAdmin
)

func (a Area) String() string {
	switch a {
	case AreaUser:
		return "user"
	case AreaAdmin:
		return "admin"
	default:
		return "guest"
	}
}

// Target maps an identity snapshot to the area it belongs in. ok is false
// while identity is still resolving: no decision is made then.
func Target(snap session.Snapshot) (Area, bool) {
	if snap.Loading {
		return AreaGuest, false
	}
	if snap.Session == nil {
		return AreaGuest, true
	}
	if snap.Role == models.RoleAdmin {
		return AreaAdmin, true
	}
	return AreaUser, true
}

// Guard tracks the area currently shown and fires navigate only when the
// identity does not belong there. Redirects are idempotent: routes inside
// the right area are never touched.
type Guard struct {
	mu       sync.Mutex
	current  Area
	navigate func(Area)
}

func NewGuard(start Area, navigate func(Area)) *Guard {
	return &Guard{current: start, navigate: navigate}
}

func (g *Guard) Current() Area {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// SetCurrent records a navigation the user performed themselves.
func (g *Guard) SetCurrent(a Area) {
	g.mu.Lock()
	g.current = a
	g.mu.Unlock()
}

// Evaluate re-checks the identity against the shown area; it runs on
// every identity change, not just at startup.
func (g *Guard) Evaluate(snap session.Snapshot) {
	target, ok := Target(snap)
	if !ok {
		return
	}

	g.mu.Lock()
	redirect := g.current != target
	if redirect {
		g.current = target
	}
	navigate := g.navigate
	g.mu.Unlock()

	if redirect && navigate != nil {
		navigate(target)
	}
}

// Attach wires the guard to a resolver: one immediate evaluation, then one
// per committed snapshot. The returned func detaches.
func (g *Guard) Attach(r *session.Resolver) func() {
	unsub := r.Subscribe(g.Evaluate)
	g.Evaluate(r.Snapshot())
	return unsub
}
