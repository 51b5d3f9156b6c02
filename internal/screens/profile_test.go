package screens_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isaac-const/upple/internal/models"
	"github.com/isaac-const/upple/internal/remote/remotetest"
	"github.com/isaac-const/upple/internal/screens"
)

func seedProfileScreen(t *testing.T) (*remotetest.Fake, *screens.Profile) {
	t.Helper()
	f := remotetest.New()
	f.SeedProfile(models.Profile{ID: "u1", Username: "isaac", Role: models.RoleUser})
	f.PutBlob("public/u1/1.png", []byte("img"))
	f.SeedPost(models.Post{
		ID:       "p1",
		UserID:   "u1",
		Name:     "eslinter",
		ImageURL: f.PublicURL("public/u1/1.png"),
	})
	f.SeedPost(models.Post{ID: "p2", UserID: "u1", Name: "bun"})
	f.SeedPost(models.Post{ID: "p9", UserID: "other", Name: "not mine"})

	p := screens.NewProfile(f, f, f, "u1")
	require.NoError(t, p.Refresh(context.Background()))
	return f, p
}

func TestProfileRefreshShowsOwnPostsOnly(t *testing.T) {
	_, p := seedProfileScreen(t)

	require.NotNil(t, p.Current())
	assert.Equal(t, "isaac", p.Current().Username)

	posts := p.Posts.Items()
	require.Len(t, posts, 2)
	for _, post := range posts {
		assert.Equal(t, "u1", post.UserID)
	}
}

func TestDeletePostRemovesImageThenRow(t *testing.T) {
	ctx := context.Background()
	f, p := seedProfileScreen(t)

	require.NoError(t, p.DeletePost(ctx, "p1"))

	assert.False(t, f.HasBlob("public/u1/1.png"))
	_, err := f.GetPost(ctx, "p1")
	assert.Error(t, err)

	// Only the deleted post left the list.
	posts := p.Posts.Items()
	require.Len(t, posts, 1)
	assert.Equal(t, "p2", posts[0].ID)
}

func TestDeletePostBestEffortProceedsPastImageFailure(t *testing.T) {
	ctx := context.Background()
	f, p := seedProfileScreen(t)

	var imgErr error
	p.OnImageError = func(err error) { imgErr = err }
	f.Fail("Remove", errors.New("bucket down"))

	require.NoError(t, p.DeletePost(ctx, "p1"))

	assert.Error(t, imgErr)
	_, err := f.GetPost(ctx, "p1")
	assert.Error(t, err)
	assert.Equal(t, 1, p.Posts.Len())
}

func TestDeletePostRequiredAbortsOnImageFailure(t *testing.T) {
	ctx := context.Background()
	f, p := seedProfileScreen(t)

	p.ImagePolicy = screens.ImageRequired
	f.Fail("Remove", errors.New("bucket down"))

	err := p.DeletePost(ctx, "p1")
	require.Error(t, err)

	// Row and list are untouched.
	_, err = f.GetPost(ctx, "p1")
	assert.NoError(t, err)
	assert.Equal(t, 2, p.Posts.Len())
}

func TestDeletePostKeepsListWhenRowDeleteFails(t *testing.T) {
	ctx := context.Background()
	f, p := seedProfileScreen(t)

	f.Fail("DeletePost", errors.New("offline"))

	err := p.DeletePost(ctx, "p2")
	require.Error(t, err)
	assert.Equal(t, 2, p.Posts.Len())
}
