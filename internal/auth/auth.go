package auth

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/isaac-const/upple/internal/log"
	"github.com/isaac-const/upple/internal/models"
)

var (
	ErrEmailTaken    = errors.New("email already taken")
	ErrUsernameTaken = errors.New("username already taken")
	ErrInvalidLogin  = errors.New("invalid email or password")
	ErrNoSession     = errors.New("session not found")
)

// Register creates the auth account and its profile row in one transaction.
// The username is also stored in the auth metadata, the way the hosted
// sign-up carried it, and the role starts as "user".
func Register(db *sql.DB, email, username, password string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	username = strings.TrimSpace(username)

	if email == "" || username == "" || password == "" {
		return "", errors.New("email, username and password are required")
	}
	if len(password) < 6 {
		return "", errors.New("password must be at least 6 characters")
	}

	// Duplicate checks up front for clear errors; the UNIQUE constraints
	// still back them up against races.
	var exists int
	if err := db.QueryRow(`SELECT COUNT(1) FROM users WHERE email = $1`, email).Scan(&exists); err != nil {
		return "", err
	}
	if exists > 0 {
		return "", ErrEmailTaken
	}
	if err := db.QueryRow(`SELECT COUNT(1) FROM profiles WHERE username = $1`, username).Scan(&exists); err != nil {
		return "", err
	}
	if exists > 0 {
		return "", ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	meta, err := json.Marshal(map[string]any{
		"username":         username,
		models.MetaRoleKey: models.RoleUser,
	})
	if err != nil {
		return "", err
	}

	uid := uuid.New().String()

	tx, err := db.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO users (id, email, password_hash, metadata) VALUES ($1, $2, $3, $4)`,
		uid, email, string(hash), string(meta),
	); err != nil {
		if isUniqueErr(err, "users_email_key") {
			return "", ErrEmailTaken
		}
		return "", err
	}

	if _, err := tx.Exec(
		`INSERT INTO profiles (id, username, email) VALUES ($1, $2, $3)`,
		uid, username, email,
	); err != nil {
		if isUniqueErr(err, "profiles_username_key") {
			return "", ErrUsernameTaken
		}
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return uid, nil
}

// Login verifies the credentials and replaces any previous session of the
// user with a fresh UUID token.
func Login(db *sql.DB, email, password string, lifetime time.Duration) (*models.Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	var (
		user       models.User
		passwdHash string
		rawMeta    []byte
	)
	err := db.QueryRow(
		`SELECT id, email, password_hash, metadata, created_at FROM users WHERE email = $1`,
		email,
	).Scan(&user.ID, &user.Email, &passwdHash, &rawMeta, &user.CreatedAt)
	if err == sql.ErrNoRows {
		log.Warn.Printf("auth.Login: no user for email=%s", email)
		return nil, ErrInvalidLogin
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(rawMeta, &user.Metadata); err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwdHash), []byte(password)); err != nil {
		log.Warn.Printf("auth.Login: bad password for email=%s", email)
		return nil, ErrInvalidLogin
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM sessions WHERE user_id = $1`, user.ID); err != nil {
		return nil, err
	}

	token := uuid.New().String()
	exp := time.Now().Add(lifetime)

	if _, err := tx.Exec(
		`INSERT INTO sessions (id, user_id, expires_at) VALUES ($1, $2, $3)`,
		token, user.ID, exp,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Info.Printf("auth.Login: OK email=%s uid=%s", email, user.ID)
	return &models.Session{Token: token, User: user, ExpiresAt: exp}, nil
}

func Logout(db *sql.DB, token string) error {
	_, err := db.Exec(`DELETE FROM sessions WHERE id = $1`, token)
	return err
}

// SessionFromToken resolves a bearer token to the session and its user.
// Expired sessions count as absent.
func SessionFromToken(db *sql.DB, token string) (*models.Session, error) {
	if _, err := uuid.Parse(token); err != nil {
		return nil, ErrNoSession
	}

	var (
		sess    models.Session
		rawMeta []byte
	)
	err := db.QueryRow(`
SELECT s.id, s.expires_at, u.id, u.email, u.metadata, u.created_at
  FROM sessions s
  JOIN users u ON u.id = s.user_id
 WHERE s.id = $1
`, token).Scan(&sess.Token, &sess.ExpiresAt, &sess.User.ID, &sess.User.Email, &rawMeta, &sess.User.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	if !sess.ExpiresAt.After(time.Now()) {
		return nil, ErrNoSession
	}
	if err := json.Unmarshal(rawMeta, &sess.User.Metadata); err != nil {
		return nil, err
	}
	return &sess, nil
}

func isUniqueErr(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && (constraint == "" || pgErr.ConstraintName == constraint)
	}
	return false
}
