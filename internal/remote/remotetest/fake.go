// Package remotetest is an in-memory implementation of the service
// surface for tests: deterministic, no network, with per-operation
// error injection.
package remotetest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/isaac-const/upple/internal/models"
	"github.com/isaac-const/upple/internal/remote"
)

// Fake implements remote.Backend in memory. The zero value is not
// usable; call New.
type Fake struct {
	mu        sync.Mutex
	session   *models.Session
	listeners map[int]func(*models.Session)
	nextSub   int

	profiles map[string]models.Profile
	posts    []models.Post
	votes    []models.Vote
	comments []models.Comment
	reports  []models.Report
	blobs    map[string][]byte

	nextVoteID    int64
	nextCommentID int64
	nextReportID  int64

	failures map[string]error
	calls    []string
}

var _ remote.Backend = (*Fake)(nil)

func New() *Fake {
	return &Fake{
		listeners: make(map[int]func(*models.Session)),
		profiles:  make(map[string]models.Profile),
		blobs:     make(map[string][]byte),
		failures:  make(map[string]error),
	}
}

// Fail makes the named operation return err until cleared with a nil err.
func (f *Fake) Fail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failures, op)
		return
	}
	f.failures[op] = err
}

// Calls returns the operations invoked so far, in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// enter records the call and returns the injected failure, if any.
func (f *Fake) enter(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op)
	return f.failures[op]
}

// --- seeding helpers ---

func (f *Fake) SeedProfile(p models.Profile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[p.ID] = p
}

func (f *Fake) SeedPost(p models.Post) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	f.posts = append(f.posts, p)
}

func (f *Fake) SeedComment(c models.Comment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextCommentID++
	if c.ID == 0 {
		c.ID = f.nextCommentID
	}
	f.comments = append(f.comments, c)
}

func (f *Fake) SeedReport(r models.Report) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextReportID++
	if r.ID == 0 {
		r.ID = f.nextReportID
	}
	f.reports = append(f.reports, r)
}

// PutBlob seeds a stored object.
func (f *Fake) PutBlob(path string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blobs[path] = data
}

// HasBlob reports whether the object is currently stored.
func (f *Fake) HasBlob(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.blobs[path]
	return ok
}

// SetSession installs a session (nil signs out) and notifies auth
// listeners, the way a real sign-in or token restore would.
func (f *Fake) SetSession(s *models.Session) {
	f.mu.Lock()
	f.session = s
	fns := make([]func(*models.Session), 0, len(f.listeners))
	for _, fn := range f.listeners {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}

// --- remote.Auth ---

func (f *Fake) SignUp(ctx context.Context, email, password, username string) error {
	if err := f.enter("SignUp"); err != nil {
		return err
	}
	id := uuid.NewString()
	f.SeedProfile(models.Profile{ID: id, Username: username, Email: email, Role: models.RoleUser, CreatedAt: time.Now()})
	f.SetSession(&models.Session{
		Token: uuid.NewString(),
		User:  models.User{ID: id, Email: email, Metadata: map[string]any{"username": username, models.MetaRoleKey: models.RoleUser}},
	})
	return nil
}

func (f *Fake) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	if err := f.enter("SignIn"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	var found *models.Profile
	for _, p := range f.profiles {
		if p.Email == email {
			pp := p
			found = &pp
			break
		}
	}
	f.mu.Unlock()
	if found == nil {
		return nil, remote.ErrUnauthorized
	}
	s := &models.Session{
		Token: uuid.NewString(),
		User: models.User{
			ID:    found.ID,
			Email: found.Email,
			Metadata: map[string]any{
				"username":         found.Username,
				models.MetaRoleKey: found.Role,
			},
		},
	}
	f.SetSession(s)
	return s, nil
}

func (f *Fake) SignOut(ctx context.Context) error {
	if err := f.enter("SignOut"); err != nil {
		return err
	}
	f.SetSession(nil)
	return nil
}

func (f *Fake) Session(ctx context.Context) (*models.Session, error) {
	if err := f.enter("Session"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session, nil
}

func (f *Fake) OnAuthChange(fn func(*models.Session)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextSub++
	id := f.nextSub
	f.listeners[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.listeners, id)
	}
}

// --- remote.Posts ---

func (f *Fake) ListPosts(ctx context.Context, search string) ([]models.Post, error) {
	if err := f.enter("ListPosts"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Post
	needle := strings.ToLower(search)
	for _, p := range f.posts {
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			continue
		}
		out = append(out, f.withCountsLocked(p))
	}
	return out, nil
}

func (f *Fake) ListPostsByOwner(ctx context.Context, userID string) ([]models.Post, error) {
	if err := f.enter("ListPostsByOwner"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Post
	for _, p := range f.posts {
		if p.UserID == userID {
			out = append(out, f.withCountsLocked(p))
		}
	}
	return out, nil
}

func (f *Fake) GetPost(ctx context.Context, id string) (*models.Post, error) {
	if err := f.enter("GetPost"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.posts {
		if p.ID == id {
			pp := f.withCountsLocked(p)
			return &pp, nil
		}
	}
	return nil, remote.ErrNotFound
}

func (f *Fake) CreatePost(ctx context.Context, in remote.NewPost) (*models.Post, error) {
	if err := f.enter("CreatePost"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	owner := ""
	if f.session != nil {
		owner = f.session.User.ID
	}
	p := models.Post{
		ID:           uuid.NewString(),
		UserID:       owner,
		Name:         in.Name,
		Description:  in.Description,
		Type:         in.Type,
		ImageURL:     in.ImageURL,
		GithubLink:   in.GithubLink,
		OfficialLink: in.OfficialLink,
		CreatedAt:    time.Now(),
	}
	f.posts = append(f.posts, p)
	return &p, nil
}

func (f *Fake) UpdatePost(ctx context.Context, id string, in remote.NewPost) error {
	if err := f.enter("UpdatePost"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.posts {
		if f.posts[i].ID == id {
			f.posts[i].Name = in.Name
			f.posts[i].Description = in.Description
			f.posts[i].Type = in.Type
			f.posts[i].ImageURL = in.ImageURL
			f.posts[i].GithubLink = in.GithubLink
			f.posts[i].OfficialLink = in.OfficialLink
			return nil
		}
	}
	return remote.ErrNotFound
}

func (f *Fake) DeletePost(ctx context.Context, id string) error {
	if err := f.enter("DeletePost"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.posts {
		if f.posts[i].ID == id {
			f.posts = append(f.posts[:i], f.posts[i+1:]...)
			return nil
		}
	}
	return remote.ErrNotFound
}

func (f *Fake) WeeklyRanking(ctx context.Context, limit int) ([]models.RankingItem, error) {
	if err := f.enter("WeeklyRanking"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.RankingItem
	for _, p := range f.posts {
		n := 0
		for _, v := range f.votes {
			if v.PostID == p.ID {
				n++
			}
		}
		if n == 0 {
			continue
		}
		out = append(out, models.RankingItem{ID: p.ID, Name: p.Name, VoteCount: n, ImageURL: p.ImageURL})
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].VoteCount > out[i].VoteCount {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *Fake) withCountsLocked(p models.Post) models.Post {
	p.VoteCount = 0
	p.CommentCount = 0
	for _, v := range f.votes {
		if v.PostID == p.ID {
			p.VoteCount++
		}
	}
	for _, c := range f.comments {
		if c.PostID == p.ID {
			p.CommentCount++
		}
	}
	if prof, ok := f.profiles[p.UserID]; ok {
		p.Author = prof.Username
	}
	return p
}

// --- remote.Profiles ---

func (f *Fake) ListProfiles(ctx context.Context, search string) ([]models.Profile, error) {
	if err := f.enter("ListProfiles"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	needle := strings.ToLower(search)
	var out []models.Profile
	for _, p := range f.profiles {
		if needle != "" && !strings.Contains(strings.ToLower(p.Username), needle) {
			continue
		}
		out = append(out, p)
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Username < out[i].Username {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (f *Fake) ProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	if err := f.enter("ProfileByID"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.profiles[id]; ok {
		return &p, nil
	}
	return nil, remote.ErrNotFound
}

// --- remote.Votes ---

func (f *Fake) FindVote(ctx context.Context, postID, userID string) (*models.Vote, error) {
	if err := f.enter("FindVote"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.votes {
		if v.PostID == postID && v.UserID == userID {
			vv := v
			return &vv, nil
		}
	}
	return nil, remote.ErrNotFound
}

func (f *Fake) CastVote(ctx context.Context, postID, userID string) (*models.Vote, error) {
	if err := f.enter("CastVote"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.votes {
		if v.PostID == postID && v.UserID == userID {
			return nil, remote.ErrDuplicateVote
		}
	}
	f.nextVoteID++
	v := models.Vote{ID: f.nextVoteID, PostID: postID, UserID: userID, CreatedAt: time.Now()}
	f.votes = append(f.votes, v)
	return &v, nil
}

func (f *Fake) RetractVote(ctx context.Context, voteID int64) error {
	if err := f.enter("RetractVote"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.votes {
		if f.votes[i].ID == voteID {
			f.votes = append(f.votes[:i], f.votes[i+1:]...)
			return nil
		}
	}
	return remote.ErrNotFound
}

// --- remote.Comments ---

func (f *Fake) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	if err := f.enter("ListComments"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Comment
	for i := len(f.comments) - 1; i >= 0; i-- {
		if f.comments[i].PostID == postID {
			out = append(out, f.comments[i])
		}
	}
	return out, nil
}

func (f *Fake) AddComment(ctx context.Context, postID, content string) (*models.Comment, error) {
	if err := f.enter("AddComment"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	author := ""
	userID := ""
	if f.session != nil {
		userID = f.session.User.ID
		if prof, ok := f.profiles[userID]; ok {
			author = prof.Username
		}
	}
	f.nextCommentID++
	c := models.Comment{ID: f.nextCommentID, PostID: postID, UserID: userID, Content: content, CreatedAt: time.Now(), Author: author}
	f.comments = append(f.comments, c)
	return &c, nil
}

// --- remote.Reports ---

func (f *Fake) ReportPost(ctx context.Context, postID string) error {
	if err := f.enter("ReportPost"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var post *models.ReportedPost
	for _, p := range f.posts {
		if p.ID == postID {
			post = &models.ReportedPost{ID: p.ID, Name: p.Name, ImageURL: p.ImageURL}
			break
		}
	}
	reporter := models.Reporter{}
	if f.session != nil {
		reporter.ID = f.session.User.ID
		if prof, ok := f.profiles[reporter.ID]; ok {
			reporter.Username = prof.Username
		}
	}
	f.nextReportID++
	f.reports = append(f.reports, models.Report{ID: f.nextReportID, CreatedAt: time.Now(), Post: post, Reporter: reporter})
	return nil
}

func (f *Fake) ListReports(ctx context.Context) ([]models.Report, error) {
	if err := f.enter("ListReports"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Report
	for _, r := range f.reports {
		rr := r
		if rr.Post != nil {
			alive := false
			for _, p := range f.posts {
				if p.ID == rr.Post.ID {
					alive = true
					break
				}
			}
			if !alive {
				rr.Post = nil
			}
		}
		out = append(out, rr)
	}
	return out, nil
}

// --- remote.Admin ---

func (f *Fake) ChangeUserRole(ctx context.Context, targetUserID, newRole string) error {
	if err := f.enter("ChangeUserRole"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[targetUserID]
	if !ok {
		return remote.ErrNotFound
	}
	p.Role = newRole
	f.profiles[targetUserID] = p
	return nil
}

func (f *Fake) DeleteUser(ctx context.Context, targetUserID string) error {
	if err := f.enter("DeleteUser"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.profiles[targetUserID]; !ok {
		return remote.ErrNotFound
	}
	delete(f.profiles, targetUserID)
	for i := 0; i < len(f.posts); {
		if f.posts[i].UserID == targetUserID {
			f.posts = append(f.posts[:i], f.posts[i+1:]...)
			continue
		}
		i++
	}
	return nil
}

// --- remote.Blobs ---

func (f *Fake) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	if err := f.enter("Upload"); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blobs[path] = append([]byte(nil), data...)
	return f.publicURLLocked(path), nil
}

func (f *Fake) PublicURL(path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.publicURLLocked(path)
}

func (f *Fake) publicURLLocked(path string) string {
	return "http://fake.test/images/" + path
}

func (f *Fake) Remove(ctx context.Context, paths ...string) error {
	if err := f.enter("Remove"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range paths {
		delete(f.blobs, p)
	}
	return nil
}
