package screens

import (
	"context"

	"github.com/isaac-const/upple/internal/listview"
	"github.com/isaac-const/upple/internal/models"
	"github.com/isaac-const/upple/internal/remote"
)

// AdminUsers is the user management screen: list and search accounts,
// flip roles, delete accounts.
type AdminUsers struct {
	profiles remote.Profiles
	admin    remote.Admin
	actingID string

	Users listview.List[models.Profile]
}

func NewAdminUsers(profiles remote.Profiles, admin remote.Admin, actingID string) *AdminUsers {
	return &AdminUsers{profiles: profiles, admin: admin, actingID: actingID}
}

func (a *AdminUsers) Refresh(ctx context.Context, search string) error {
	users, err := a.profiles.ListProfiles(ctx, search)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	a.Users.Replace(users)
	return nil
}

// CanToggleRole reports whether the role switch is enabled for a row.
// Admins cannot demote themselves.
func (a *AdminUsers) CanToggleRole(p models.Profile) bool {
	return p.ID != a.actingID
}

// ToggleRole flips a user between the user and admin roles. The local
// row is patched in place only after the service confirms; no re-fetch.
func (a *AdminUsers) ToggleRole(ctx context.Context, userID string) (string, error) {
	p, ok := a.Users.Find(func(u models.Profile) bool { return u.ID == userID })
	if !ok {
		return "", remote.ErrNotFound
	}
	if !a.CanToggleRole(p) {
		return "", remote.ErrForbidden
	}
	newRole := models.RoleAdmin
	if p.Role == models.RoleAdmin {
		newRole = models.RoleUser
	}
	if err := a.admin.ChangeUserRole(ctx, userID, newRole); err != nil {
		return "", err
	}
	if ctx.Err() != nil {
		return newRole, nil
	}
	a.Users.PatchFirst(
		func(u models.Profile) bool { return u.ID == userID },
		func(u models.Profile) models.Profile { u.Role = newRole; return u },
	)
	return newRole, nil
}

// DeleteUser deletes an account and everything it owns. Other admins are
// refused locally before any request is made.
func (a *AdminUsers) DeleteUser(ctx context.Context, userID string) error {
	p, ok := a.Users.Find(func(u models.Profile) bool { return u.ID == userID })
	if !ok {
		return remote.ErrNotFound
	}
	if p.Role == models.RoleAdmin {
		return ErrAdminProtected
	}
	if err := a.admin.DeleteUser(ctx, userID); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return nil
	}
	a.Users.RemoveFirst(func(u models.Profile) bool { return u.ID == userID })
	return nil
}

// AdminPosts is the post management screen: list and search every post,
// delete any of them.
type AdminPosts struct {
	posts remote.Posts
	blobs remote.Blobs

	Posts listview.List[models.Post]
}

func NewAdminPosts(posts remote.Posts, blobs remote.Blobs) *AdminPosts {
	return &AdminPosts{posts: posts, blobs: blobs}
}

func (a *AdminPosts) Refresh(ctx context.Context, search string) error {
	posts, err := a.posts.ListPosts(ctx, search)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	a.Posts.Replace(posts)
	return nil
}

// DeletePost removes any post regardless of owner, image first. The
// image removal is best effort here.
func (a *AdminPosts) DeletePost(ctx context.Context, postID string) error {
	post, ok := a.Posts.Find(func(p models.Post) bool { return p.ID == postID })
	if !ok {
		return remote.ErrNotFound
	}
	_ = removeImage(ctx, a.blobs, post.ImageURL)
	if err := a.posts.DeletePost(ctx, postID); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return nil
	}
	a.Posts.RemoveFirst(func(p models.Post) bool { return p.ID == postID })
	return nil
}

// AdminReports is the moderation queue: user reports with the reported
// post embedded when it still exists.
type AdminReports struct {
	reports remote.Reports
	posts   remote.Posts
	blobs   remote.Blobs

	Reports listview.List[models.Report]
}

func NewAdminReports(reports remote.Reports, posts remote.Posts, blobs remote.Blobs) *AdminReports {
	return &AdminReports{reports: reports, posts: posts, blobs: blobs}
}

func (a *AdminReports) Refresh(ctx context.Context) error {
	reports, err := a.reports.ListReports(ctx)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	a.Reports.Replace(reports)
	return nil
}

// DeleteReportedPost removes the post a report points at, then re-fetches
// the whole queue since every report on that post is affected. A report
// whose post is already gone just triggers the re-fetch.
func (a *AdminReports) DeleteReportedPost(ctx context.Context, reportID int64) error {
	rep, ok := a.Reports.Find(func(r models.Report) bool { return r.ID == reportID })
	if !ok {
		return remote.ErrNotFound
	}
	if rep.Post == nil {
		return a.Refresh(ctx)
	}
	_ = removeImage(ctx, a.blobs, rep.Post.ImageURL)
	if err := a.posts.DeletePost(ctx, rep.Post.ID); err != nil {
		return err
	}
	return a.Refresh(ctx)
}
