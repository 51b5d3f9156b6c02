package store

import (
	"context"
	"fmt"

	"github.com/isaac-const/upple/internal/models"
)

// ChangeUserRole updates the profile row and the auth metadata together,
// so the role seen at session resolution and the role shown in the admin
// list cannot drift apart.
func (s *Store) ChangeUserRole(ctx context.Context, targetUserID, newRole string) error {
	if newRole != models.RoleUser && newRole != models.RoleAdmin {
		return fmt.Errorf("invalid role %q", newRole)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE profiles SET role = $2 WHERE id = $1`, targetUserID, newRole)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET metadata = jsonb_set(metadata, '{user_role}', to_jsonb($2::text)) WHERE id = $1`,
		targetUserID, newRole); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteUser removes the auth account; profile, posts, votes, comments and
// reports all cascade in the database. Stored images are orphaned, an
// accepted inconsistency.
func (s *Store) DeleteUser(ctx context.Context, targetUserID string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, targetUserID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
