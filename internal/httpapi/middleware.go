package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/isaac-const/upple/internal/auth"
	"github.com/isaac-const/upple/internal/log"
	"github.com/isaac-const/upple/internal/models"
)

// withSession resolves the bearer token, if any, and injects the session
// into the request context. Anonymous requests pass through untouched.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := bearerToken(r); token != "" {
			if sess, err := s.Auth.SessionFromToken(token); err == nil {
				r = r.WithContext(auth.WithSession(r.Context(), sess))
			} else {
				// Invalid or expired token; the request proceeds anonymous.
				log.Warn.Printf("session FAIL token=%s err=%v", token, err)
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.SessionFrom(r.Context()); !ok {
			writeErr(w, http.StatusUnauthorized, CodeUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAdmin gates the privileged RPC surface on the role carried in the
// session's auth metadata.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return s.requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := auth.SessionFrom(r.Context())
		if sess.User.Role() != models.RoleAdmin {
			writeErr(w, http.StatusForbidden, CodeForbidden, "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

// ------------------------------------------------------------------
// access log
// ------------------------------------------------------------------

type statusRW struct {
	http.ResponseWriter
	status int
}

func (w *statusRW) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// WithAccessLog wraps a handler and logs METHOD PATH -> STATUS (duration).
func WithAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusRW{ResponseWriter: w, status: 200}
		next.ServeHTTP(sw, r)
		log.Info.Printf("%s %s -> %d (%s)", r.Method, r.URL.Path, sw.status, time.Since(start).Truncate(time.Millisecond))
	})
}

// WithTimeout applies a 10s timeout to the whole request.
func WithTimeout(next http.Handler) http.Handler {
	return http.TimeoutHandler(next, 10*time.Second, "request timeout")
}
