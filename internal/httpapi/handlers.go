// Package httpapi exposes the service over a JSON API: auth, posts,
// votes, comments, reports, admin RPCs and image storage.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/isaac-const/upple/internal/app"
	"github.com/isaac-const/upple/internal/auth"
	"github.com/isaac-const/upple/internal/models"
	"github.com/isaac-const/upple/internal/store"
)

// AuthService is what the API needs from internal/auth.
type AuthService interface {
	Register(email, username, password string) (string, error)
	Login(email, password string) (*models.Session, error)
	Logout(token string) error
	SessionFromToken(token string) (*models.Session, error)
}

// DataStore is what the API needs from internal/store.
type DataStore interface {
	ListPosts(ctx context.Context, search string) ([]models.Post, error)
	ListPostsByOwner(ctx context.Context, userID string) ([]models.Post, error)
	GetPost(ctx context.Context, id string) (*models.Post, error)
	CreatePost(ctx context.Context, ownerID string, in models.Post) (*models.Post, error)
	UpdatePost(ctx context.Context, id string, in models.Post) error
	DeletePost(ctx context.Context, id string) error
	WeeklyRanking(ctx context.Context, limit int) ([]models.RankingItem, error)

	ListProfiles(ctx context.Context, search string) ([]models.Profile, error)
	ProfileByID(ctx context.Context, id string) (*models.Profile, error)

	FindVote(ctx context.Context, postID, userID string) (*models.Vote, error)
	InsertVote(ctx context.Context, postID, userID string) (*models.Vote, error)
	DeleteVote(ctx context.Context, voteID int64, userID string) error

	ListComments(ctx context.Context, postID string) ([]models.Comment, error)
	InsertComment(ctx context.Context, postID, userID, content string) (*models.Comment, error)

	InsertReport(ctx context.Context, postID, reporterID string) error
	ListReports(ctx context.Context) ([]models.Report, error)

	ChangeUserRole(ctx context.Context, targetUserID, newRole string) error
	DeleteUser(ctx context.Context, targetUserID string) error
}

// BlobStore is what the API needs from internal/storage.
type BlobStore interface {
	Upload(path string, data []byte, contentType string) (string, error)
	Remove(paths ...string) error
	File(path string) (string, error)
}

type Server struct {
	Auth   AuthService
	Store  DataStore
	Blobs  BlobStore
	Cfg    app.Config
	Router *mux.Router
}

func NewServer(a AuthService, st DataStore, b BlobStore, cfg app.Config) *Server {
	s := &Server{Auth: a, Store: st, Blobs: b, Cfg: cfg, Router: mux.NewRouter()}

	api := s.Router.PathPrefix("/api").Subrouter()
	api.Use(s.withSession)

	// auth
	api.HandleFunc("/auth/signup", s.handleSignUp).Methods(http.MethodPost)
	api.HandleFunc("/auth/signin", s.handleSignIn).Methods(http.MethodPost)
	api.Handle("/auth/signout", s.requireAuth(http.HandlerFunc(s.handleSignOut))).Methods(http.MethodPost)
	api.Handle("/auth/session", s.requireAuth(http.HandlerFunc(s.handleSession))).Methods(http.MethodGet)

	// posts
	api.HandleFunc("/posts", s.handleListPosts).Methods(http.MethodGet)
	api.Handle("/posts", s.requireAuth(http.HandlerFunc(s.handleCreatePost))).Methods(http.MethodPost)
	api.HandleFunc("/posts/{id}", s.handleGetPost).Methods(http.MethodGet)
	api.Handle("/posts/{id}", s.requireAuth(http.HandlerFunc(s.handleUpdatePost))).Methods(http.MethodPut)
	api.Handle("/posts/{id}", s.requireAuth(http.HandlerFunc(s.handleDeletePost))).Methods(http.MethodDelete)
	api.HandleFunc("/ranking", s.handleRanking).Methods(http.MethodGet)

	// profiles
	api.Handle("/profiles", s.requireAdmin(http.HandlerFunc(s.handleListProfiles))).Methods(http.MethodGet)
	api.Handle("/profiles/{id}", s.requireAuth(http.HandlerFunc(s.handleGetProfile))).Methods(http.MethodGet)
	api.HandleFunc("/profiles/{id}/posts", s.handleListPostsByOwner).Methods(http.MethodGet)

	// votes
	api.Handle("/posts/{id}/vote", s.requireAuth(http.HandlerFunc(s.handleGetMyVote))).Methods(http.MethodGet)
	api.Handle("/posts/{id}/votes", s.requireAuth(http.HandlerFunc(s.handleCastVote))).Methods(http.MethodPost)
	api.Handle("/votes/{id}", s.requireAuth(http.HandlerFunc(s.handleRetractVote))).Methods(http.MethodDelete)

	// comments
	api.HandleFunc("/posts/{id}/comments", s.handleListComments).Methods(http.MethodGet)
	api.Handle("/posts/{id}/comments", s.requireAuth(http.HandlerFunc(s.handleAddComment))).Methods(http.MethodPost)

	// reports
	api.Handle("/posts/{id}/reports", s.requireAuth(http.HandlerFunc(s.handleReportPost))).Methods(http.MethodPost)
	api.Handle("/reports", s.requireAdmin(http.HandlerFunc(s.handleListReports))).Methods(http.MethodGet)

	// admin RPCs
	api.Handle("/rpc/change_user_role", s.requireAdmin(http.HandlerFunc(s.handleChangeUserRole))).Methods(http.MethodPost)
	api.Handle("/rpc/delete_user", s.requireAdmin(http.HandlerFunc(s.handleDeleteUser))).Methods(http.MethodPost)

	// blob storage
	api.Handle("/storage/images", s.requireAuth(http.HandlerFunc(s.handleUploadImage))).Methods(http.MethodPost)
	api.Handle("/storage/images", s.requireAuth(http.HandlerFunc(s.handleRemoveImages))).Methods(http.MethodDelete)

	// public image serving
	s.Router.HandleFunc("/images/{path:.*}", s.handleImage).Methods(http.MethodGet)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.Router.ServeHTTP(w, r) }

// storeErr maps store sentinels onto the wire taxonomy.
func storeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeErr(w, http.StatusNotFound, CodeNotFound, "not found")
	case errors.Is(err, store.ErrDuplicateVote):
		writeErr(w, http.StatusConflict, CodeDuplicateVote, "vote already exists")
	default:
		writeErr(w, http.StatusInternalServerError, CodeInternal, err.Error())
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeErr(w, http.StatusBadRequest, CodeParsing, "bad request body: "+err.Error())
		return false
	}
	return true
}

// ------------------------------------------------------------------
// auth
// ------------------------------------------------------------------

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Username string `json:"username"`
	}
	if !decode(w, r, &req) {
		return
	}

	uid, err := s.Auth.Register(req.Email, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			writeErr(w, http.StatusConflict, CodeEmailTaken, err.Error())
		case errors.Is(err, auth.ErrUsernameTaken):
			writeErr(w, http.StatusConflict, CodeUsernameTaken, err.Error())
		default:
			writeErr(w, http.StatusBadRequest, CodeInvalidData, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"user_id": uid})
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}

	sess, err := s.Auth.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidLogin) {
			writeErr(w, http.StatusUnauthorized, CodeInvalidLogin, err.Error())
			return
		}
		writeErr(w, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFrom(r.Context())
	if err := s.Auth.Logout(sess.Token); err != nil {
		writeErr(w, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFrom(r.Context())
	writeJSON(w, http.StatusOK, sess)
}

// ------------------------------------------------------------------
// posts
// ------------------------------------------------------------------

// postPayload is the insertable/updatable slice of a post.
type postPayload struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Type         string `json:"type"`
	ImageURL     string `json:"image_url"`
	GithubLink   string `json:"github_link"`
	OfficialLink string `json:"official_link"`
}

func (p postPayload) validate() string {
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Description) == "" {
		return "name and description are required"
	}
	if p.Type != models.PostTypeApp && p.Type != models.PostTypeSoftware {
		return "type must be APP or SOFTWARE"
	}
	return ""
}

func (p postPayload) model() models.Post {
	return models.Post{
		Name:         strings.TrimSpace(p.Name),
		Description:  strings.TrimSpace(p.Description),
		Type:         p.Type,
		ImageURL:     p.ImageURL,
		GithubLink:   p.GithubLink,
		OfficialLink: p.OfficialLink,
	}
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.Store.ListPosts(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		storeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (s *Server) handleListPostsByOwner(w http.ResponseWriter, r *http.Request) {
	posts, err := s.Store.ListPostsByOwner(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		storeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.Store.GetPost(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		storeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFrom(r.Context())
	var req postPayload
	if !decode(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		writeErr(w, http.StatusBadRequest, CodeInvalidData, msg)
		return
	}

	post, err := s.Store.CreatePost(r.Context(), sess.User.ID, req.model())
	if err != nil {
		storeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// canTouchPost: owners manage their own posts, admins manage all.
func canTouchPost(sess *models.Session, post *models.Post) bool {
	return post.UserID == sess.User.ID || sess.User.Role() == models.RoleAdmin
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFrom(r.Context())
	id := mux.Vars(r)["id"]

	post, err := s.Store.GetPost(r.Context(), id)
	if err != nil {
		storeErr(w, err)
		return
	}
	if !canTouchPost(sess, post) {
		writeErr(w, http.StatusForbidden, CodeForbidden, "not your post")
		return
	}

	var req postPayload
	if !decode(w, r, &req) {
		return
	}
	if msg := req.validate(); msg != "" {
		writeErr(w, http.StatusBadRequest, CodeInvalidData, msg)
		return
	}
	if err := s.Store.UpdatePost(r.Context(), id, req.model()); err != nil {
		storeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFrom(r.Context())
	id := mux.Vars(r)["id"]

	post, err := s.Store.GetPost(r.Context(), id)
	if err != nil {
		storeErr(w, err)
		return
	}
	if !canTouchPost(sess, post) {
		writeErr(w, http.StatusForbidden, CodeForbidden, "not your post")
		return
	}
	if err := s.Store.DeletePost(r.Context(), id); err != nil {
		storeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRanking(w http.ResponseWriter, r *http.Request) {
	limit := 3
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}
	items, err := s.Store.WeeklyRanking(r.Context(), limit)
	if err != nil {
		storeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// ------------------------------------------------------------------
// profiles
// ------------------------------------------------------------------

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.Store.ListProfiles(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		storeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.Store.ProfileByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		storeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// ------------------------------------------------------------------
// votes
// ------------------------------------------------------------------

func (s *Server) handleGetMyVote(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFrom(r.Context())
	vote, err := s.Store.FindVote(r.Context(), mux.Vars(r)["id"], sess.User.ID)
	if err != nil {
		storeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vote)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFrom(r.Context())
	vote, err := s.Store.InsertVote(r.Context(), mux.Vars(r)["id"], sess.User.ID)
	if err != nil {
		storeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, vote)
}

func (s *Server) handleRetractVote(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFrom(r.Context())
	voteID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeErr(w, http.StatusBadRequest, CodeInvalidData, "bad vote id")
		return
	}
	if err := s.Store.DeleteVote(r.Context(), voteID, sess.User.ID); err != nil {
		storeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ------------------------------------------------------------------
// comments
// ------------------------------------------------------------------

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := s.Store.ListComments(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		storeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFrom(r.Context())
	var req struct {
		Content string `json:"content"`
	}
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeErr(w, http.StatusBadRequest, CodeInvalidData, "content is required")
		return
	}

	comment, err := s.Store.InsertComment(r.Context(), mux.Vars(r)["id"], sess.User.ID, strings.TrimSpace(req.Content))
	if err != nil {
		storeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// ------------------------------------------------------------------
// reports
// ------------------------------------------------------------------

func (s *Server) handleReportPost(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFrom(r.Context())
	if err := s.Store.InsertReport(r.Context(), mux.Vars(r)["id"], sess.User.ID); err != nil {
		storeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := s.Store.ListReports(r.Context())
	if err != nil {
		storeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

// ------------------------------------------------------------------
// admin RPCs
// ------------------------------------------------------------------

func (s *Server) handleChangeUserRole(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFrom(r.Context())
	var req struct {
		TargetUserID string `json:"target_user_id"`
		NewRole      string `json:"new_role"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.TargetUserID == sess.User.ID {
		writeErr(w, http.StatusForbidden, CodeForbidden, "cannot change own role")
		return
	}
	if req.NewRole != models.RoleUser && req.NewRole != models.RoleAdmin {
		writeErr(w, http.StatusBadRequest, CodeInvalidData, "new_role must be user or admin")
		return
	}
	if err := s.Store.ChangeUserRole(r.Context(), req.TargetUserID, req.NewRole); err != nil {
		storeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TargetUserID string `json:"target_user_id"`
	}
	if !decode(w, r, &req) {
		return
	}

	target, err := s.Store.ProfileByID(r.Context(), req.TargetUserID)
	if err != nil {
		storeErr(w, err)
		return
	}
	if target.Role == models.RoleAdmin {
		writeErr(w, http.StatusForbidden, CodeForbidden, "cannot delete an administrator")
		return
	}
	if err := s.Store.DeleteUser(r.Context(), req.TargetUserID); err != nil {
		storeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ------------------------------------------------------------------
// blob storage
// ------------------------------------------------------------------

func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFrom(r.Context())
	var req struct {
		Path        string `json:"path"`
		ContentType string `json:"content_type"`
		Data        []byte `json:"data"` // base64 on the wire
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Path == "" || len(req.Data) == 0 {
		writeErr(w, http.StatusBadRequest, CodeInvalidData, "path and data are required")
		return
	}
	// Users write only below their own prefix.
	if !strings.HasPrefix(req.Path, "public/"+sess.User.ID+"/") {
		writeErr(w, http.StatusForbidden, CodeForbidden, "path outside own prefix")
		return
	}

	url, err := s.Blobs.Upload(req.Path, req.Data, req.ContentType)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}

func (s *Server) handleRemoveImages(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.SessionFrom(r.Context())
	var req struct {
		Paths []string `json:"paths"`
	}
	if !decode(w, r, &req) {
		return
	}
	if sess.User.Role() != models.RoleAdmin {
		for _, p := range req.Paths {
			if !strings.HasPrefix(p, "public/"+sess.User.ID+"/") {
				writeErr(w, http.StatusForbidden, CodeForbidden, "path outside own prefix")
				return
			}
		}
	}
	if err := s.Blobs.Remove(req.Paths...); err != nil {
		writeErr(w, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	full, err := s.Blobs.File(mux.Vars(r)["path"])
	if err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, full)
}
