package nav_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isaac-const/upple/internal/models"
	"github.com/isaac-const/upple/internal/nav"
	"github.com/isaac-const/upple/internal/remote/remotetest"
	"github.com/isaac-const/upple/internal/session"
)

func snapFor(role string, signedIn, loading bool) session.Snapshot {
	s := session.Snapshot{Loading: loading, Role: role}
	if signedIn {
		s.Session = &models.Session{Token: "t"}
	}
	return s
}

func TestTarget(t *testing.T) {
	tests := []struct {
		name     string
		snap     session.Snapshot
		wantArea nav.Area
		wantOK   bool
	}{
		{"loading makes no decision", snapFor("", false, true), nav.AreaGuest, false},
		{"signed out is guest", snapFor("", false, false), nav.AreaGuest, true},
		{"user role", snapFor(models.RoleUser, true, false), nav.AreaUser, true},
		{"admin role", snapFor(models.RoleAdmin, true, false), nav.AreaAdmin, true},
		{"unknown role falls back to user", snapFor("moderator", true, false), nav.AreaUser, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			area, ok := nav.Target(tt.snap)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.wantArea, area)
			}
		})
	}
}

func TestEvaluateRedirectsOnlyOutOfPlace(t *testing.T) {
	var moves []nav.Area
	g := nav.NewGuard(nav.AreaGuest, func(a nav.Area) { moves = append(moves, a) })

	// Already in the right area: no redirect, however often evaluated.
	g.Evaluate(snapFor("", false, false))
	g.Evaluate(snapFor("", false, false))
	assert.Empty(t, moves)

	// Sign-in moves to the user area, exactly once.
	g.Evaluate(snapFor(models.RoleUser, true, false))
	g.Evaluate(snapFor(models.RoleUser, true, false))
	assert.Equal(t, []nav.Area{nav.AreaUser}, moves)
	assert.Equal(t, nav.AreaUser, g.Current())

	// Sign-out from anywhere lands on guest.
	g.Evaluate(snapFor("", false, false))
	assert.Equal(t, []nav.Area{nav.AreaUser, nav.AreaGuest}, moves)
}

func TestAdminNeverRedirectedToUserArea(t *testing.T) {
	var moves []nav.Area
	g := nav.NewGuard(nav.AreaGuest, func(a nav.Area) { moves = append(moves, a) })

	g.Evaluate(snapFor(models.RoleAdmin, true, false))
	require.Equal(t, []nav.Area{nav.AreaAdmin}, moves)

	for range [5]int{} {
		g.Evaluate(snapFor(models.RoleAdmin, true, false))
	}
	assert.Equal(t, []nav.Area{nav.AreaAdmin}, moves)
	assert.NotContains(t, moves, nav.AreaUser)
}

func TestEvaluateIgnoresLoadingSnapshots(t *testing.T) {
	var moves []nav.Area
	g := nav.NewGuard(nav.AreaUser, func(a nav.Area) { moves = append(moves, a) })

	g.Evaluate(snapFor("", false, true))
	assert.Empty(t, moves)
	assert.Equal(t, nav.AreaUser, g.Current())
}

func TestAttachFollowsAuthTransitions(t *testing.T) {
	f := remotetest.New()
	f.SeedProfile(models.Profile{ID: "u1", Username: "isaac", Role: models.RoleAdmin})

	r := session.NewResolver(f, f)
	defer r.Stop()
	r.Start(context.Background())

	var moves []nav.Area
	g := nav.NewGuard(nav.AreaUser, func(a nav.Area) { moves = append(moves, a) })
	detach := g.Attach(r)
	defer detach()

	// The immediate evaluation moves the signed-out start to guest.
	require.Equal(t, []nav.Area{nav.AreaGuest}, moves)

	f.SetSession(&models.Session{
		Token: "t",
		User:  models.User{ID: "u1", Metadata: map[string]any{models.MetaRoleKey: models.RoleAdmin}},
	})
	assert.Equal(t, []nav.Area{nav.AreaGuest, nav.AreaAdmin}, moves)

	f.SetSession(nil)
	assert.Equal(t, []nav.Area{nav.AreaGuest, nav.AreaAdmin, nav.AreaGuest}, moves)
}
