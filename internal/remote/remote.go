// Package remote defines the capability surface of the hosted data
// service as the app core consumes it: auth, relational queries,
// privileged RPCs and blob storage. internal/client implements it over
// the JSON API; tests implement it in memory.
package remote

import (
	"context"
	"errors"
	"strings"

	"github.com/isaac-const/upple/internal/models"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrDuplicateVote = errors.New("vote already exists")
)

// Auth is the authentication surface. Session returns (nil, nil) when
// signed out. OnAuthChange registers a listener for session transitions
// (sign-in, sign-up, sign-out, restore); the returned func unsubscribes.
type Auth interface {
	SignUp(ctx context.Context, email, password, username string) error
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	SignOut(ctx context.Context) error
	Session(ctx context.Context) (*models.Session, error)
	OnAuthChange(fn func(*models.Session)) (unsubscribe func())
}

// NewPost is the insertable slice of a post; the owner comes from the
// acting session.
type NewPost struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Type         string `json:"type"`
	ImageURL     string `json:"image_url,omitempty"`
	GithubLink   string `json:"github_link,omitempty"`
	OfficialLink string `json:"official_link,omitempty"`
}

type Posts interface {
	// ListPosts returns all posts newest first. A non-empty search term
	// filters case-insensitively over name OR description.
	ListPosts(ctx context.Context, search string) ([]models.Post, error)
	ListPostsByOwner(ctx context.Context, userID string) ([]models.Post, error)
	GetPost(ctx context.Context, id string) (*models.Post, error)
	CreatePost(ctx context.Context, p NewPost) (*models.Post, error)
	UpdatePost(ctx context.Context, id string, p NewPost) error
	DeletePost(ctx context.Context, id string) error
	WeeklyRanking(ctx context.Context, limit int) ([]models.RankingItem, error)
}

type Profiles interface {
	// ListProfiles returns all profiles newest first; a non-empty search
	// term filters case-insensitively over the username.
	ListProfiles(ctx context.Context, search string) ([]models.Profile, error)
	ProfileByID(ctx context.Context, id string) (*models.Profile, error)
}

type Votes interface {
	// FindVote reports this user's vote on the post, ErrNotFound when the
	// row does not exist.
	FindVote(ctx context.Context, postID, userID string) (*models.Vote, error)
	CastVote(ctx context.Context, postID, userID string) (*models.Vote, error)
	RetractVote(ctx context.Context, voteID int64) error
}

type Comments interface {
	// ListComments returns the post's comments newest first with the
	// author embedded.
	ListComments(ctx context.Context, postID string) ([]models.Comment, error)
	AddComment(ctx context.Context, postID, content string) (*models.Comment, error)
}

type Reports interface {
	ReportPost(ctx context.Context, postID string) error
	ListReports(ctx context.Context) ([]models.Report, error)
}

// Admin is the privileged RPC surface; the service rejects callers whose
// role is not admin.
type Admin interface {
	ChangeUserRole(ctx context.Context, targetUserID, newRole string) error
	DeleteUser(ctx context.Context, targetUserID string) error
}

type Blobs interface {
	// Upload stores the object and returns its public URL.
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
	PublicURL(path string) string
	// Remove is best-effort on the service side: missing objects are not
	// an error.
	Remove(ctx context.Context, paths ...string) error
}

// Backend is the full service as one dependency, for wiring convenience.
type Backend interface {
	Auth
	Posts
	Profiles
	Votes
	Comments
	Reports
	Admin
	Blobs
}

// ObjectPath extracts the storage object path from a public image URL.
// Image deletion is not cascaded by the service, so clients derive the
// path from the URL they stored on the post row.
func ObjectPath(imageURL string) string {
	_, after, ok := strings.Cut(imageURL, "/images/")
	if !ok {
		return ""
	}
	return after
}
