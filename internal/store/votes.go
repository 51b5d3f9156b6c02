package store

import (
	"context"
	"database/sql"

	"github.com/isaac-const/upple/internal/models"
)

// FindVote reports the user's vote on a post, ErrNotFound when no row
// exists. Row existence is the vote state the client toggle derives from.
func (s *Store) FindVote(ctx context.Context, postID, userID string) (*models.Vote, error) {
	var v models.Vote
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, post_id, user_id, created_at FROM votes WHERE post_id = $1 AND user_id = $2`,
		postID, userID,
	).Scan(&v.ID, &v.PostID, &v.UserID, &v.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// InsertVote relies on the UNIQUE(post_id, user_id) constraint; a second
// insert for the same pair comes back as ErrDuplicateVote.
func (s *Store) InsertVote(ctx context.Context, postID, userID string) (*models.Vote, error) {
	var v models.Vote
	v.PostID, v.UserID = postID, userID
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO votes (post_id, user_id) VALUES ($1, $2) RETURNING id, created_at`,
		postID, userID,
	).Scan(&v.ID, &v.CreatedAt)
	if isUniqueErr(err) {
		return nil, ErrDuplicateVote
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// DeleteVote removes the user's own vote row; someone else's vote id
// comes back as ErrNotFound.
func (s *Store) DeleteVote(ctx context.Context, voteID int64, userID string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM votes WHERE id = $1 AND user_id = $2`, voteID, userID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
