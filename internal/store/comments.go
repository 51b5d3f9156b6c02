package store

import (
	"context"

	"github.com/isaac-const/upple/internal/models"
)

// ListComments returns a post's comments newest first with the author
// username embedded.
func (s *Store) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT c.id, c.post_id, c.user_id, c.content, c.created_at, COALESCE(pr.username, '')
  FROM comments c
  LEFT JOIN profiles pr ON pr.id = c.user_id
 WHERE c.post_id = $1
 ORDER BY c.created_at DESC`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Content, &c.CreatedAt, &c.Author); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// InsertComment appends a comment and returns it with the author embedded,
// ready to prepend to a displayed list.
func (s *Store) InsertComment(ctx context.Context, postID, userID, content string) (*models.Comment, error) {
	c := models.Comment{PostID: postID, UserID: userID, Content: content}
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO comments (post_id, user_id, content) VALUES ($1, $2, $3) RETURNING id, created_at`,
		postID, userID, content,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	// The author embed is best effort: a failed lookup leaves Author
	// empty, the same as ListComments shows for a missing profile.
	_ = s.DB.QueryRowContext(ctx, `SELECT username FROM profiles WHERE id = $1`, userID).Scan(&c.Author)
	return &c, nil
}
