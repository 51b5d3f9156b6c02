package screens

import (
	"context"
	"fmt"
	"sync"

	"github.com/isaac-const/upple/internal/listview"
	"github.com/isaac-const/upple/internal/models"
	"github.com/isaac-const/upple/internal/remote"
)

// Profile is the signed-in user's own screen: their profile row plus
// every post they own, with deletion.
type Profile struct {
	posts    remote.Posts
	profiles remote.Profiles
	blobs    remote.Blobs
	userID   string

	// ImagePolicy applies to DeletePost. The default is best effort:
	// a failed image removal is reported through OnImageError but does
	// not keep the post row alive.
	ImagePolicy  ImagePolicy
	OnImageError func(error)

	mu      sync.Mutex
	profile *models.Profile

	Posts listview.List[models.Post]
}

func NewProfile(posts remote.Posts, profiles remote.Profiles, blobs remote.Blobs, userID string) *Profile {
	return &Profile{posts: posts, profiles: profiles, blobs: blobs, userID: userID}
}

// Refresh re-fetches the profile row and the user's posts.
func (p *Profile) Refresh(ctx context.Context) error {
	prof, err := p.profiles.ProfileByID(ctx, p.userID)
	if err != nil {
		return err
	}
	posts, err := p.posts.ListPostsByOwner(ctx, p.userID)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	p.mu.Lock()
	p.profile = prof
	p.mu.Unlock()
	p.Posts.Replace(posts)
	return nil
}

// Current returns the last fetched profile, nil before the first Refresh.
func (p *Profile) Current() *models.Profile {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.profile
}

// DeletePost removes one of the user's posts: the stored image first,
// then the row. The local list only changes after the row delete is
// confirmed.
func (p *Profile) DeletePost(ctx context.Context, postID string) error {
	post, ok := p.Posts.Find(func(pp models.Post) bool { return pp.ID == postID })
	if !ok {
		return remote.ErrNotFound
	}
	if err := removeImage(ctx, p.blobs, post.ImageURL); err != nil {
		if p.ImagePolicy == ImageRequired {
			return fmt.Errorf("remove image: %w", err)
		}
		if p.OnImageError != nil {
			p.OnImageError(err)
		}
	}
	if err := p.posts.DeletePost(ctx, post.ID); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return nil
	}
	p.Posts.RemoveFirst(func(pp models.Post) bool { return pp.ID == postID })
	return nil
}
