package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/isaac-const/upple/internal/models"
)

// ListProfiles returns every profile newest first; a non-empty search term
// is a case-insensitive substring match over the username.
func (s *Store) ListProfiles(ctx context.Context, search string) ([]models.Profile, error) {
	var (
		args []any
		sb   strings.Builder
	)
	sb.WriteString(`SELECT id, username, email, role, created_at FROM profiles
`)
	if term := strings.TrimSpace(search); term != "" {
		sb.WriteString(`WHERE username ILIKE $1
`)
		args = append(args, "%"+term+"%")
	}
	sb.WriteString(`ORDER BY created_at DESC`)

	rows, err := s.DB.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.ID, &p.Username, &p.Email, &p.Role, &p.CreatedAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (s *Store) ProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, username, email, role, created_at FROM profiles WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Username, &p.Email, &p.Role, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
