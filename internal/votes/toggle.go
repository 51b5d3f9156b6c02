// Package votes implements the two-state optimistic vote toggle used on
// every post card and on the post detail screen.
package votes

import (
	"context"
	"errors"
	"sync"

	"github.com/isaac-const/upple/internal/listview"
	"github.com/isaac-const/upple/internal/remote"
)

// Toggle tracks one (post, user) pair: whether the user's vote row exists
// and the post's visible counter. Flips are apply-then-confirm with an
// exact symmetric rollback on failure.
type Toggle struct {
	ledger remote.Votes
	postID string
	userID string

	mu     sync.Mutex
	voted  bool
	voteID int64
	count  int
}

func NewToggle(ledger remote.Votes, postID, userID string, initialCount int) *Toggle {
	return &Toggle{ledger: ledger, postID: postID, userID: userID, count: initialCount}
}

// Load derives the current vote state from row existence.
func (t *Toggle) Load(ctx context.Context) error {
	vote, err := t.ledger.FindVote(ctx, t.postID, t.userID)
	if err != nil {
		if errors.Is(err, remote.ErrNotFound) {
			t.mu.Lock()
			t.voted, t.voteID = false, 0
			t.mu.Unlock()
			return nil
		}
		return err
	}
	t.mu.Lock()
	t.voted, t.voteID = true, vote.ID
	t.mu.Unlock()
	return nil
}

// State returns the flag and counter as one consistent pair.
func (t *Toggle) State() (voted bool, count int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.voted, t.count
}

// Toggle flips the local state and counter immediately, then issues the
// matching insert or delete. A failed request aborts the speculation:
// post-state equals pre-toggle state exactly. The store's uniqueness
// constraint is the real guard against duplicate votes; a concurrent
// insert from another device surfaces here as an error and rolls back.
func (t *Toggle) Toggle(ctx context.Context) error {
	t.mu.Lock()
	wasVoted, oldVoteID := t.voted, t.voteID
	t.mu.Unlock()

	if wasVoted {
		u := listview.Begin(
			func() { t.set(false, 0, -1) },
			func() { t.set(true, oldVoteID, +1) },
		)
		if err := t.ledger.RetractVote(ctx, oldVoteID); err != nil {
			u.Abort()
			return err
		}
		u.Commit()
		return nil
	}

	u := listview.Begin(
		func() { t.set(true, 0, +1) },
		func() { t.set(false, 0, -1) },
	)
	vote, err := t.ledger.CastVote(ctx, t.postID, t.userID)
	if err != nil {
		u.Abort()
		return err
	}
	u.Commit()
	t.mu.Lock()
	t.voteID = vote.ID
	t.mu.Unlock()
	return nil
}

func (t *Toggle) set(voted bool, voteID int64, delta int) {
	t.mu.Lock()
	t.voted = voted
	t.voteID = voteID
	t.count += delta
	t.mu.Unlock()
}
