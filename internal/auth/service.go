package auth

import (
	"context"
	"database/sql"
	"time"

	"github.com/isaac-const/upple/internal/models"
)

// Service binds the package functions to a database and session lifetime
// so callers can take an interface instead of a *sql.DB.
type Service struct {
	DB       *sql.DB
	Lifetime time.Duration
}

func (s *Service) Register(email, username, password string) (string, error) {
	return Register(s.DB, email, username, password)
}

func (s *Service) Login(email, password string) (*models.Session, error) {
	return Login(s.DB, email, password, s.Lifetime)
}

func (s *Service) Logout(token string) error {
	return Logout(s.DB, token)
}

func (s *Service) SessionFromToken(token string) (*models.Session, error) {
	return SessionFromToken(s.DB, token)
}

// ----------------------------
// Context helpers (for middleware and handlers)
// ----------------------------

type ctxKeySession struct{}

func WithSession(ctx context.Context, sess *models.Session) context.Context {
	return context.WithValue(ctx, ctxKeySession{}, sess)
}

func SessionFrom(ctx context.Context) (*models.Session, bool) {
	sess, _ := ctx.Value(ctxKeySession{}).(*models.Session)
	return sess, sess != nil
}
