package screens_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isaac-const/upple/internal/models"
	"github.com/isaac-const/upple/internal/remote/remotetest"
	"github.com/isaac-const/upple/internal/screens"
)

func TestComposerCreatesPost(t *testing.T) {
	ctx := context.Background()
	f := remotetest.New()
	f.SetSession(&models.Session{Token: "t", User: models.User{ID: "u1"}})

	c := screens.NewComposer(f, f, "u1")
	c.Name = " eslinter "
	c.Description = "lints javascript"
	c.Type = models.PostTypeSoftware
	c.GithubLink = "https://github.com/isaac/eslinter"

	post, err := c.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "eslinter", post.Name)
	assert.Equal(t, models.PostTypeSoftware, post.Type)
	assert.Equal(t, "u1", post.UserID)
	assert.Empty(t, post.ImageURL)
}

func TestComposerUploadsImageUnderOwnPrefix(t *testing.T) {
	ctx := context.Background()
	f := remotetest.New()
	f.SetSession(&models.Session{Token: "t", User: models.User{ID: "u1"}})

	c := screens.NewComposer(f, f, "u1")
	c.Name = "eslinter"
	c.Description = "lints javascript"
	c.Image = []byte("png-bytes")
	c.ImageExt = "png"

	post, err := c.Submit(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, post.ImageURL)
	assert.Contains(t, post.ImageURL, "/images/public/u1/")
	assert.True(t, strings.HasSuffix(post.ImageURL, ".png"))
}

func TestComposerAbortsWhenUploadFails(t *testing.T) {
	ctx := context.Background()
	f := remotetest.New()

	c := screens.NewComposer(f, f, "u1")
	c.Name = "eslinter"
	c.Description = "lints javascript"
	c.Image = []byte("png-bytes")
	c.ImageExt = "png"
	f.Fail("Upload", errors.New("bucket down"))

	_, err := c.Submit(ctx)
	require.Error(t, err)

	// No post row was written.
	posts, err := f.ListPosts(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestComposerValidatesRequiredFields(t *testing.T) {
	ctx := context.Background()
	f := remotetest.New()

	c := screens.NewComposer(f, f, "u1")
	c.Name = "   "
	c.Description = "x"
	_, err := c.Submit(ctx)
	assert.ErrorIs(t, err, screens.ErrInvalidForm)

	c.Name = "eslinter"
	c.Description = "x"
	c.Type = "GAME"
	_, err = c.Submit(ctx)
	assert.ErrorIs(t, err, screens.ErrInvalidForm)
}

func TestEditorKeepsExistingImageWhenNoneAttached(t *testing.T) {
	ctx := context.Background()
	f := remotetest.New()
	f.SetSession(&models.Session{Token: "t", User: models.User{ID: "u1"}})
	f.SeedPost(models.Post{
		ID:          "p1",
		UserID:      "u1",
		Name:        "eslinter",
		Description: "old",
		Type:        models.PostTypeApp,
		ImageURL:    f.PublicURL("public/u1/1.png"),
	})
	existing, err := f.GetPost(ctx, "p1")
	require.NoError(t, err)

	c := screens.NewEditor(f, f, "u1", existing)
	c.Description = "new description"

	post, err := c.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new description", post.Description)
	assert.Equal(t, existing.ImageURL, post.ImageURL)
}
