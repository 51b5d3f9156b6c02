package screens

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/isaac-const/upple/internal/models"
	"github.com/isaac-const/upple/internal/remote"
)

// ErrInvalidForm is returned when the required project fields are blank.
var ErrInvalidForm = errors.New("name, description and type are required")

// Composer backs the create-project and edit-project forms. Set the
// fields, optionally attach an image, then Submit.
type Composer struct {
	posts  remote.Posts
	blobs  remote.Blobs
	userID string

	// editing holds the post under edit, nil when creating.
	editing *models.Post

	Name         string
	Description  string
	Type         string
	GithubLink   string
	OfficialLink string

	// Image replaces the stored image when non-empty. ImageExt is the
	// file extension without the dot, e.g. "png".
	Image    []byte
	ImageExt string
}

func NewComposer(posts remote.Posts, blobs remote.Blobs, userID string) *Composer {
	return &Composer{posts: posts, blobs: blobs, userID: userID, Type: models.PostTypeApp}
}

// NewEditor returns a composer prefilled from an existing post.
func NewEditor(posts remote.Posts, blobs remote.Blobs, userID string, post *models.Post) *Composer {
	return &Composer{
		posts:        posts,
		blobs:        blobs,
		userID:       userID,
		editing:      post,
		Name:         post.Name,
		Description:  post.Description,
		Type:         post.Type,
		GithubLink:   post.GithubLink,
		OfficialLink: post.OfficialLink,
	}
}

// Submit validates the form, uploads the attached image if any, and
// creates or updates the post. An image upload failure aborts the submit.
func (c *Composer) Submit(ctx context.Context) (*models.Post, error) {
	name := strings.TrimSpace(c.Name)
	desc := strings.TrimSpace(c.Description)
	if name == "" || desc == "" || (c.Type != models.PostTypeApp && c.Type != models.PostTypeSoftware) {
		return nil, ErrInvalidForm
	}

	imageURL := ""
	if c.editing != nil {
		imageURL = c.editing.ImageURL
	}
	if len(c.Image) > 0 {
		path := fmt.Sprintf("public/%s/%d.%s", c.userID, time.Now().UnixNano(), c.ImageExt)
		url, err := c.blobs.Upload(ctx, path, c.Image, contentTypeFor(c.ImageExt))
		if err != nil {
			return nil, fmt.Errorf("upload image: %w", err)
		}
		imageURL = url
	}

	in := remote.NewPost{
		Name:         name,
		Description:  desc,
		Type:         c.Type,
		ImageURL:     imageURL,
		GithubLink:   strings.TrimSpace(c.GithubLink),
		OfficialLink: strings.TrimSpace(c.OfficialLink),
	}
	if c.editing != nil {
		if err := c.posts.UpdatePost(ctx, c.editing.ID, in); err != nil {
			return nil, err
		}
		return c.posts.GetPost(ctx, c.editing.ID)
	}
	return c.posts.CreatePost(ctx, in)
}

func contentTypeFor(ext string) string {
	switch strings.ToLower(ext) {
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
