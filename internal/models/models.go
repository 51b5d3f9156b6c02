package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	PostTypeApp      = "APP"
	PostTypeSoftware = "SOFTWARE"
)

// MetaRoleKey is where the authorization tier lives inside the auth user's
// metadata. Role is derived from here at session-resolution time, not from
// the profiles table.
const MetaRoleKey = "user_role"

// User is an auth account. Metadata carries username and user_role set at
// sign-up and maintained by the change_user_role RPC.
type User struct {
	ID        string         `json:"id"`
	Email     string         `json:"email"`
	Metadata  map[string]any `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
}

// Role returns the tier stored in the user metadata, RoleUser when absent.
func (u *User) Role() string {
	if u == nil {
		return ""
	}
	if r, ok := u.Metadata[MetaRoleKey].(string); ok && r != "" {
		return r
	}
	return RoleUser
}

// Session is the client-side projection of a server session: the opaque
// token, its owner and the expiry.
type Session struct {
	Token     string    `json:"token"`
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Post carries the embeds every list screen renders: the owner's username
// and the vote/comment aggregates.
type Post struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Type         string    `json:"type"`
	ImageURL     string    `json:"image_url,omitempty"`
	GithubLink   string    `json:"github_link,omitempty"`
	OfficialLink string    `json:"official_link,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	Author       string    `json:"author"`
	VoteCount    int       `json:"vote_count"`
	CommentCount int       `json:"comment_count"`
}

type Comment struct {
	ID        int64     `json:"id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Author    string    `json:"author"`
}

type Vote struct {
	ID        int64     `json:"id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ReportedPost is the slice of a post the moderation view needs.
type ReportedPost struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
}

type Reporter struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Report of a post. Post is nil when the reported post was already deleted
// out from under the report.
type Report struct {
	ID        int64         `json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	Post      *ReportedPost `json:"post"`
	Reporter  Reporter      `json:"reporter"`
}

// RankingItem is one entry of the weekly ranking: votes cast in the
// trailing seven days, most voted first.
type RankingItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	VoteCount int    `json:"vote_count"`
	ImageURL  string `json:"image_url,omitempty"`
}
