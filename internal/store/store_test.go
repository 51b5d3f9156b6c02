package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isaac-const/upple/internal/auth"
	"github.com/isaac-const/upple/internal/models"
)

// The store tests run against a real database; set TEST_DATABASE_URL with
// the schema from schema.sql applied, or they are skipped.
func testStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db)
}

// newUser registers a throwaway account and removes it (and everything it
// owns, via cascades) when the test ends.
func newUser(t *testing.T, s *Store) string {
	t.Helper()
	tag := fmt.Sprintf("%d", time.Now().UnixNano())
	uid, err := auth.Register(s.DB, "store-"+tag+"@example.com", "store"+tag, "secret123")
	require.NoError(t, err)
	t.Cleanup(func() { s.DB.Exec(`DELETE FROM users WHERE id = $1`, uid) })
	return uid
}

func newPost(t *testing.T, s *Store, ownerID, name, desc string) *models.Post {
	t.Helper()
	post, err := s.CreatePost(context.Background(), ownerID, models.Post{
		Name: name, Description: desc, Type: models.PostTypeApp,
	})
	require.NoError(t, err)
	return post
}

func TestPostCRUD(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	uid := newUser(t, s)

	post := newPost(t, s, uid, "eslinter", "lints javascript")
	assert.Equal(t, uid, post.UserID)
	assert.NotEmpty(t, post.Author)

	require.NoError(t, s.UpdatePost(ctx, post.ID, models.Post{
		Name: "eslinter", Description: "lints and fixes", Type: models.PostTypeSoftware,
	}))
	got, err := s.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "lints and fixes", got.Description)
	assert.Equal(t, models.PostTypeSoftware, got.Type)

	require.NoError(t, s.DeletePost(ctx, post.ID))
	_, err = s.GetPost(ctx, post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeletePost(ctx, post.ID), ErrNotFound)
}

func TestSearchMatchesNameOrDescription(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	uid := newUser(t, s)
	tag := fmt.Sprintf("%d", time.Now().UnixNano())

	newPost(t, s, uid, "eslinter-"+tag, "javascript linting")
	newPost(t, s, uid, "prettier-"+tag, "formats source")

	posts, err := s.ListPosts(ctx, "LINT")
	require.NoError(t, err)
	names := make([]string, 0, len(posts))
	for _, p := range posts {
		names = append(names, p.Name)
	}
	assert.Contains(t, names, "eslinter-"+tag)
	assert.NotContains(t, names, "prettier-"+tag)
}

func TestVoteUniqueness(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	uid := newUser(t, s)
	post := newPost(t, s, uid, "voted", "desc")

	_, err := s.FindVote(ctx, post.ID, uid)
	require.ErrorIs(t, err, ErrNotFound)

	v, err := s.InsertVote(ctx, post.ID, uid)
	require.NoError(t, err)

	_, err = s.InsertVote(ctx, post.ID, uid)
	assert.ErrorIs(t, err, ErrDuplicateVote)

	got, err := s.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.VoteCount)

	// Deletion is scoped to the vote's owner.
	other := newUser(t, s)
	assert.ErrorIs(t, s.DeleteVote(ctx, v.ID, other), ErrNotFound)
	require.NoError(t, s.DeleteVote(ctx, v.ID, uid))
}

func TestCommentsEmbedAuthor(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	uid := newUser(t, s)
	post := newPost(t, s, uid, "commented", "desc")

	c, err := s.InsertComment(ctx, post.ID, uid, "first!")
	require.NoError(t, err)
	assert.NotEmpty(t, c.Author)

	comments, err := s.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "first!", comments[0].Content)
	assert.Equal(t, c.Author, comments[0].Author)
}

func TestReportSurvivesPostDeletion(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	uid := newUser(t, s)
	post := newPost(t, s, uid, "reported", "desc")

	require.NoError(t, s.InsertReport(ctx, post.ID, uid))
	require.NoError(t, s.DeletePost(ctx, post.ID))

	reports, err := s.ListReports(ctx)
	require.NoError(t, err)

	var found *models.Report
	for i := range reports {
		if reports[i].Reporter.ID == uid {
			found = &reports[i]
		}
	}
	require.NotNil(t, found)
	assert.Nil(t, found.Post)
}

func TestChangeUserRoleUpdatesBothSides(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	uid := newUser(t, s)

	require.NoError(t, s.ChangeUserRole(ctx, uid, models.RoleAdmin))

	p, err := s.ProfileByID(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, p.Role)

	// The auth metadata carries the new role too; a fresh session sees it.
	var raw []byte
	require.NoError(t, s.DB.QueryRow(`SELECT metadata FROM users WHERE id = $1`, uid).Scan(&raw))
	assert.Contains(t, string(raw), `"user_role": "admin"`)

	assert.Error(t, s.ChangeUserRole(ctx, uid, "superuser"))
}

func TestDeleteUserCascades(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	uid := newUser(t, s)
	post := newPost(t, s, uid, "owned", "desc")

	require.NoError(t, s.DeleteUser(ctx, uid))

	_, err := s.ProfileByID(ctx, uid)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetPost(ctx, post.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
