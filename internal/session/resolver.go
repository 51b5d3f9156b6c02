// Package session derives the client's identity from the remote auth
// state: who is signed in, their role and their profile username. The
// Resolver is an explicitly-owned store with a subscription interface;
// consumers pull snapshots instead of reading ambient globals.
package session

import (
	"context"
	"sync"

	"github.com/isaac-const/upple/internal/models"
	"github.com/isaac-const/upple/internal/remote"
)

// Snapshot is one consistent view of the resolved identity. User and the
// identity fields are set iff Session is set. Loading is true only until
// the first resolution completes.
type Snapshot struct {
	User     *models.User
	Session  *models.Session
	Loading  bool
	Role     string
	Username string
}

type Resolver struct {
	auth     remote.Auth
	profiles remote.Profiles

	mu        sync.Mutex
	snap      Snapshot
	gen       uint64
	listeners map[int]func(Snapshot)
	nextID    int
	unsub     func()
}

func NewResolver(auth remote.Auth, profiles remote.Profiles) *Resolver {
	return &Resolver{
		auth:      auth,
		profiles:  profiles,
		snap:      Snapshot{Loading: true},
		listeners: make(map[int]func(Snapshot)),
	}
}

// Start subscribes to auth-state changes and performs the initial
// resolution. Each auth event claims a fresh generation the moment it is
// received; a resolution that lost its generation while fetching is
// dropped, so a stale fetch can never overwrite a newer session's state.
// The initial resolution claims its generation before the session fetch
// for the same reason: an auth event arriving mid-fetch supersedes it.
func (r *Resolver) Start(ctx context.Context) {
	r.mu.Lock()
	r.unsub = r.auth.OnAuthChange(func(sess *models.Session) {
		r.resolve(ctx, r.claim(), sess)
	})
	r.mu.Unlock()

	gen := r.claim()
	sess, err := r.auth.Session(ctx)
	if err != nil {
		sess = nil
	}
	r.resolve(ctx, gen, sess)
}

// Stop detaches from auth events. The last snapshot stays readable.
func (r *Resolver) Stop() {
	r.mu.Lock()
	unsub := r.unsub
	r.unsub = nil
	r.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

func (r *Resolver) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap
}

// Subscribe registers a listener called with every committed snapshot.
// The returned func removes it.
func (r *Resolver) Subscribe(fn func(Snapshot)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = fn
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.listeners, id)
	}
}

// claim allocates the next generation number.
func (r *Resolver) claim() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	return r.gen
}

func (r *Resolver) resolve(ctx context.Context, gen uint64, sess *models.Session) {
	if sess == nil {
		r.commit(gen, Snapshot{})
		return
	}

	user := sess.User
	snap := Snapshot{
		User:    &user,
		Session: sess,
		Role:    user.Role(),
	}

	// Username comes from the profile row; a missing or failing lookup
	// leaves it empty rather than failing the resolution.
	if profile, err := r.profiles.ProfileByID(ctx, user.ID); err == nil {
		snap.Username = profile.Username
	}

	r.commit(gen, snap)
}

func (r *Resolver) commit(gen uint64, snap Snapshot) {
	r.mu.Lock()
	if gen != r.gen {
		// A newer auth event superseded this resolution.
		r.mu.Unlock()
		return
	}
	r.snap = snap
	fns := make([]func(Snapshot), 0, len(r.listeners))
	for _, fn := range r.listeners {
		fns = append(fns, fn)
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
