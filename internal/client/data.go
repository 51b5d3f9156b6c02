package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/isaac-const/upple/internal/models"
	"github.com/isaac-const/upple/internal/remote"
)

// ------------------------------------------------------------------
// posts
// ------------------------------------------------------------------

func (c *Client) ListPosts(ctx context.Context, search string) ([]models.Post, error) {
	path := "/api/posts"
	if search != "" {
		path += "?search=" + url.QueryEscape(search)
	}
	var posts []models.Post
	if err := c.do(ctx, http.MethodGet, path, nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *Client) ListPostsByOwner(ctx context.Context, userID string) ([]models.Post, error) {
	var posts []models.Post
	if err := c.do(ctx, http.MethodGet, "/api/profiles/"+url.PathEscape(userID)+"/posts", nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *Client) GetPost(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := c.do(ctx, http.MethodGet, "/api/posts/"+url.PathEscape(id), nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) CreatePost(ctx context.Context, p remote.NewPost) (*models.Post, error) {
	var post models.Post
	if err := c.do(ctx, http.MethodPost, "/api/posts", p, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) UpdatePost(ctx context.Context, id string, p remote.NewPost) error {
	return c.do(ctx, http.MethodPut, "/api/posts/"+url.PathEscape(id), p, nil)
}

func (c *Client) DeletePost(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/posts/"+url.PathEscape(id), nil, nil)
}

func (c *Client) WeeklyRanking(ctx context.Context, limit int) ([]models.RankingItem, error) {
	var items []models.RankingItem
	path := fmt.Sprintf("/api/ranking?limit=%d", limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ------------------------------------------------------------------
// profiles
// ------------------------------------------------------------------

func (c *Client) ListProfiles(ctx context.Context, search string) ([]models.Profile, error) {
	path := "/api/profiles"
	if search != "" {
		path += "?search=" + url.QueryEscape(search)
	}
	var profiles []models.Profile
	if err := c.do(ctx, http.MethodGet, path, nil, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (c *Client) ProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	if err := c.do(ctx, http.MethodGet, "/api/profiles/"+url.PathEscape(id), nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ------------------------------------------------------------------
// votes
// ------------------------------------------------------------------

// FindVote asks for the acting user's vote; the service derives the user
// from the session, so userID is only checked for interface symmetry.
func (c *Client) FindVote(ctx context.Context, postID, _ string) (*models.Vote, error) {
	var vote models.Vote
	if err := c.do(ctx, http.MethodGet, "/api/posts/"+url.PathEscape(postID)+"/vote", nil, &vote); err != nil {
		return nil, err
	}
	return &vote, nil
}

func (c *Client) CastVote(ctx context.Context, postID, _ string) (*models.Vote, error) {
	var vote models.Vote
	if err := c.do(ctx, http.MethodPost, "/api/posts/"+url.PathEscape(postID)+"/votes", nil, &vote); err != nil {
		return nil, err
	}
	return &vote, nil
}

func (c *Client) RetractVote(ctx context.Context, voteID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/votes/%d", voteID), nil, nil)
}

// ------------------------------------------------------------------
// comments
// ------------------------------------------------------------------

func (c *Client) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	var comments []models.Comment
	if err := c.do(ctx, http.MethodGet, "/api/posts/"+url.PathEscape(postID)+"/comments", nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (c *Client) AddComment(ctx context.Context, postID, content string) (*models.Comment, error) {
	var comment models.Comment
	req := map[string]string{"content": content}
	if err := c.do(ctx, http.MethodPost, "/api/posts/"+url.PathEscape(postID)+"/comments", req, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// ------------------------------------------------------------------
// reports
// ------------------------------------------------------------------

func (c *Client) ReportPost(ctx context.Context, postID string) error {
	return c.do(ctx, http.MethodPost, "/api/posts/"+url.PathEscape(postID)+"/reports", nil, nil)
}

func (c *Client) ListReports(ctx context.Context) ([]models.Report, error) {
	var reports []models.Report
	if err := c.do(ctx, http.MethodGet, "/api/reports", nil, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// ------------------------------------------------------------------
// admin RPCs
// ------------------------------------------------------------------

func (c *Client) ChangeUserRole(ctx context.Context, targetUserID, newRole string) error {
	req := map[string]string{"target_user_id": targetUserID, "new_role": newRole}
	return c.do(ctx, http.MethodPost, "/api/rpc/change_user_role", req, nil)
}

func (c *Client) DeleteUser(ctx context.Context, targetUserID string) error {
	req := map[string]string{"target_user_id": targetUserID}
	return c.do(ctx, http.MethodPost, "/api/rpc/delete_user", req, nil)
}

// ------------------------------------------------------------------
// blob storage
// ------------------------------------------------------------------

func (c *Client) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	req := struct {
		Path        string `json:"path"`
		ContentType string `json:"content_type"`
		Data        []byte `json:"data"`
	}{Path: path, ContentType: contentType, Data: data}

	var resp struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/storage/images", req, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

func (c *Client) PublicURL(path string) string {
	return c.BaseURL + "/images/" + path
}

func (c *Client) Remove(ctx context.Context, paths ...string) error {
	req := map[string][]string{"paths": paths}
	return c.do(ctx, http.MethodDelete, "/api/storage/images", req, nil)
}
