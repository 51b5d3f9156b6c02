package screens

import (
	"context"
	"strings"
	"sync"

	"github.com/isaac-const/upple/internal/listview"
	"github.com/isaac-const/upple/internal/models"
	"github.com/isaac-const/upple/internal/remote"
	"github.com/isaac-const/upple/internal/votes"
)

// DetailBackend is the slice of the service the post detail screen needs.
type DetailBackend interface {
	remote.Posts
	remote.Comments
	remote.Votes
	remote.Reports
}

// Detail is the post detail screen: the post itself, its comments, the
// viewer's vote toggle, the comment composer and reporting.
type Detail struct {
	backend DetailBackend
	postID  string
	userID  string

	mu    sync.Mutex
	post  *models.Post
	draft string

	Comments listview.List[models.Comment]
	Vote     *votes.Toggle
}

func NewDetail(backend DetailBackend, postID, userID string) *Detail {
	return &Detail{backend: backend, postID: postID, userID: userID}
}

// Refresh loads the post, its comments and the viewer's current vote.
func (d *Detail) Refresh(ctx context.Context) error {
	post, err := d.backend.GetPost(ctx, d.postID)
	if err != nil {
		return err
	}
	comments, err := d.backend.ListComments(ctx, d.postID)
	if err != nil {
		return err
	}
	toggle := votes.NewToggle(d.backend, d.postID, d.userID, post.VoteCount)
	if err := toggle.Load(ctx); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	d.mu.Lock()
	d.post = post
	d.Vote = toggle
	d.mu.Unlock()
	d.Comments.Replace(comments)
	return nil
}

// Post returns the last fetched post, nil before the first Refresh.
func (d *Detail) Post() *models.Post {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.post
}

// SetDraft stores the comment box contents.
func (d *Detail) SetDraft(text string) {
	d.mu.Lock()
	d.draft = text
	d.mu.Unlock()
}

// Draft returns the current comment box contents.
func (d *Detail) Draft() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.draft
}

// AddComment submits the draft. A blank draft is a no-op. On failure the
// draft and the comment list are left untouched so the user can retry; on
// success the new comment is prepended and the draft cleared.
func (d *Detail) AddComment(ctx context.Context) error {
	content := strings.TrimSpace(d.Draft())
	if content == "" {
		return nil
	}
	c, err := d.backend.AddComment(ctx, d.postID, content)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return nil
	}
	d.Comments.Prepend(*c)
	d.SetDraft("")
	return nil
}

// ToggleVote flips the viewer's vote, optimistically.
func (d *Detail) ToggleVote(ctx context.Context) error {
	d.mu.Lock()
	toggle := d.Vote
	d.mu.Unlock()
	if toggle == nil {
		return remote.ErrNotFound
	}
	return toggle.Toggle(ctx)
}

// Report files a report for this post by the viewer.
func (d *Detail) Report(ctx context.Context) error {
	return d.backend.ReportPost(ctx, d.postID)
}
